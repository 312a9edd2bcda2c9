package implementation

import (
	"context"
	"database/sql"

	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
)

// PostgresDeviceStateRepository is the single writer of led_states and
// lcd_messages. Every stimulus runs as one transaction; toggles rely on the
// row lock Postgres takes on the conflict target, so concurrent presses on the
// same (device_id, led_number) serialize instead of collapsing onto a stale
// read.
type PostgresDeviceStateRepository struct {
	db *sql.DB
}

func NewPostgresDeviceStateRepository(db *sql.DB) *PostgresDeviceStateRepository {
	return &PostgresDeviceStateRepository{db: db}
}

const upsertLedQuery = `
	INSERT INTO led_states (device_id, led_number, state, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (device_id, led_number)
	DO UPDATE SET state = EXCLUDED.state, updated_at = now()
`

// toggleLedQuery flips the LED in a single conditional write. A first touch
// inserts true (toggle from the default OFF); on conflict the row is locked
// and negated in place, so no read-then-write gap exists.
const toggleLedQuery = `
	INSERT INTO led_states (device_id, led_number, state, updated_at)
	VALUES ($1, $2, true, now())
	ON CONFLICT (device_id, led_number)
	DO UPDATE SET state = NOT led_states.state, updated_at = now()
	RETURNING state
`

const upsertMessageQuery = `
	INSERT INTO lcd_messages (device_id, line1, line2, updated_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (device_id)
	DO UPDATE SET line1 = EXCLUDED.line1, line2 = EXCLUDED.line2, updated_at = now()
`

const insertButtonEventQuery = `
	INSERT INTO button_events (device_id, button_number, event_type)
	VALUES ($1, $2, $3)
`

// SetLed writes the LED state and its display summary atomically.
func (r *PostgresDeviceStateRepository) SetLed(ctx context.Context, deviceID string, ledNumber int, state bool, line1, line2 string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin set led", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertLedQuery, deviceID, ledNumber, state); err != nil {
		return storeErr("upsert led state", err)
	}

	if _, err := tx.ExecContext(ctx, upsertMessageQuery, deviceID, line1, line2); err != nil {
		return storeErr("upsert display message", err)
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit set led", err)
	}

	return nil
}

// ToggleLed records the press, flips the LED, and updates the display as one
// unit. A failure anywhere rolls the whole stimulus back, including the event.
func (r *PostgresDeviceStateRepository) ToggleLed(ctx context.Context, deviceID string, buttonNumber, ledNumber int, summary func(newState bool) (string, string)) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, storeErr("begin toggle", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertButtonEventQuery, deviceID, buttonNumber, espmodels.EventTypePress); err != nil {
		return false, storeErr("insert button event", err)
	}

	var newState bool
	if err := tx.QueryRowContext(ctx, toggleLedQuery, deviceID, ledNumber).Scan(&newState); err != nil {
		return false, storeErr("toggle led state", err)
	}

	line1, line2 := summary(newState)
	if _, err := tx.ExecContext(ctx, upsertMessageQuery, deviceID, line1, line2); err != nil {
		return false, storeErr("upsert display message", err)
	}

	if err := tx.Commit(); err != nil {
		return false, storeErr("commit toggle", err)
	}

	return newState, nil
}

func (r *PostgresDeviceStateRepository) GetDisplayMessage(ctx context.Context, deviceID string) (*espmodels.DisplayMessage, error) {
	query := `SELECT device_id, line1, line2, updated_at FROM lcd_messages WHERE device_id = $1`

	var msg espmodels.DisplayMessage
	err := r.db.QueryRowContext(ctx, query, deviceID).Scan(&msg.DeviceID, &msg.Line1, &msg.Line2, &msg.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, storeErr("get display message", err)
	}

	return &msg, nil
}
