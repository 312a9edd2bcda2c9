package implementation

import (
	"context"
	"database/sql"

	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
)

type PostgresTelemetryRepository struct {
	db *sql.DB
}

func NewPostgresTelemetryRepository(db *sql.DB) *PostgresTelemetryRepository {
	return &PostgresTelemetryRepository{db: db}
}

// InsertReading appends one sensor reading. Readings are never updated.
func (r *PostgresTelemetryRepository) InsertReading(ctx context.Context, deviceID string, distance float64) (int64, error) {
	query := `
		INSERT INTO sensor_readings (device_id, distance)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, deviceID, distance).Scan(&id); err != nil {
		return 0, storeErr("insert reading", err)
	}

	return id, nil
}

func (r *PostgresTelemetryRepository) ListReadings(ctx context.Context, deviceID string, limit int) ([]espmodels.SensorReading, error) {
	query := `
		SELECT id, device_id, distance, created_at
		FROM sensor_readings
		WHERE device_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, storeErr("list readings", err)
	}
	defer rows.Close()

	readings := make([]espmodels.SensorReading, 0)
	for rows.Next() {
		var reading espmodels.SensorReading
		if err := rows.Scan(&reading.ID, &reading.DeviceID, &reading.Distance, &reading.CreatedAt); err != nil {
			return nil, storeErr("scan reading", err)
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("list readings", err)
	}

	return readings, nil
}

func (r *PostgresTelemetryRepository) ListLedStates(ctx context.Context, deviceID string) ([]espmodels.LedState, error) {
	query := `
		SELECT id, device_id, led_number, state, updated_at
		FROM led_states
		WHERE device_id = $1
		ORDER BY led_number
	`

	rows, err := r.db.QueryContext(ctx, query, deviceID)
	if err != nil {
		return nil, storeErr("list led states", err)
	}
	defer rows.Close()

	states := make([]espmodels.LedState, 0)
	for rows.Next() {
		var state espmodels.LedState
		if err := rows.Scan(&state.ID, &state.DeviceID, &state.LedNumber, &state.State, &state.UpdatedAt); err != nil {
			return nil, storeErr("scan led state", err)
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, storeErr("list led states", err)
	}

	return states, nil
}
