package interfaces

import (
	"context"

	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
)

// TelemetryRepository is the append-only telemetry log plus its read side.
// Inserts are independent of each other; reads never fail on "no rows".
type TelemetryRepository interface {
	// InsertReading appends a sensor reading and returns its generated id.
	InsertReading(ctx context.Context, deviceID string, distance float64) (int64, error)

	// ListReadings returns the most recent readings for a device, newest first.
	ListReadings(ctx context.Context, deviceID string, limit int) ([]espmodels.SensorReading, error)

	// ListLedStates returns all LED rows for a device ordered by led_number
	// ascending. An unknown device yields an empty slice.
	ListLedStates(ctx context.Context, deviceID string) ([]espmodels.LedState, error)
}
