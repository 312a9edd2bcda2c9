package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	config "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Config"
)

// HealthChecker provides health check functionality
type HealthChecker struct {
	db *sql.DB
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(db *sql.DB) *HealthChecker {
	return &HealthChecker{db: db}
}

// CheckDatabaseHealth verifies the connection with a round trip query
func (h *HealthChecker) CheckDatabaseHealth(ctx context.Context) error {
	if h.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := h.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var result int
	if err := h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query failed: %w", err)
	}

	return nil
}

// ConnectPostgresWithTimeout creates a PostgreSQL connection with a timeout context
func ConnectPostgresWithTimeout(cfg *config.Config, timeout time.Duration) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("unable to open PostgreSQL connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping PostgreSQL: %w", err)
	}

	// Bounded pool shared by all request flows
	db.SetMaxOpenConns(cfg.Database.MaxConns)
	db.SetMaxIdleConns(cfg.Database.MinConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

// DatabaseManager handles database schema operations
type DatabaseManager struct {
	db *sql.DB
}

// NewDatabaseManager creates a new database manager
func NewDatabaseManager(db *sql.DB) *DatabaseManager {
	return &DatabaseManager{db: db}
}

// CreateTables creates the required tables if they don't exist
func (dm *DatabaseManager) CreateTables(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	createUsersTable := `
		CREATE TABLE IF NOT EXISTS users (
			user_id     TEXT PRIMARY KEY,
			email       TEXT NOT NULL UNIQUE,
			password    TEXT NOT NULL,
			name        TEXT NOT NULL,
			role        TEXT NOT NULL DEFAULT 'user',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	createSensorReadingsTable := `
		CREATE TABLE IF NOT EXISTS sensor_readings (
			id          BIGSERIAL PRIMARY KEY,
			device_id   TEXT NOT NULL,
			distance    DOUBLE PRECISION NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	createButtonEventsTable := `
		CREATE TABLE IF NOT EXISTS button_events (
			id            BIGSERIAL PRIMARY KEY,
			device_id     TEXT NOT NULL,
			button_number INTEGER NOT NULL,
			event_type    TEXT NOT NULL DEFAULT 'press',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	// The unique key on (device_id, led_number) is the upsert and locking
	// target for LED writes.
	createLedStatesTable := `
		CREATE TABLE IF NOT EXISTS led_states (
			id          BIGSERIAL PRIMARY KEY,
			device_id   TEXT NOT NULL,
			led_number  INTEGER NOT NULL,
			state       BOOLEAN NOT NULL DEFAULT false,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (device_id, led_number)
		);
	`

	createLcdMessagesTable := `
		CREATE TABLE IF NOT EXISTS lcd_messages (
			device_id   TEXT PRIMARY KEY,
			line1       TEXT NOT NULL DEFAULT '',
			line2       TEXT NOT NULL DEFAULT '',
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	createIndexes := `
		CREATE INDEX IF NOT EXISTS idx_sensor_readings_device_ts ON sensor_readings (device_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_button_events_device_ts ON button_events (device_id, created_at DESC);
	`

	queries := []string{
		createUsersTable,
		createSensorReadingsTable,
		createButtonEventsTable,
		createLedStatesTable,
		createLcdMessagesTable,
		createIndexes,
	}

	for _, query := range queries {
		if _, err := dm.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (dm *DatabaseManager) Close() error {
	if dm.db != nil {
		return dm.db.Close()
	}
	return nil
}
