package espmodels

import (
	"time"
)

// LedState is the last written state of one LED on a device.
// There is at most one row per (device_id, led_number); writes upsert in place.
type LedState struct {
	ID        int64     `json:"id" db:"id"`
	DeviceID  string    `json:"device_id" db:"device_id"`
	LedNumber int       `json:"led_number" db:"led_number"`
	State     bool      `json:"state" db:"state"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayMessage is the current two-line LCD content of a device.
// One row per device, overwritten on every actuation.
type DisplayMessage struct {
	DeviceID  string    `json:"device_id" db:"device_id"`
	Line1     string    `json:"line1" db:"line1"`
	Line2     string    `json:"line2" db:"line2"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayLine is the per-line wire representation returned by the LCD endpoint.
type DisplayLine struct {
	Line      int       `json:"line"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Default greeting shown before any actuation has written a message.
const (
	DefaultDisplayLine1 = "Welcome"
	DefaultDisplayLine2 = "System ready"
)

// Lines splits a DisplayMessage into its wire representation.
func (m *DisplayMessage) Lines() []DisplayLine {
	return []DisplayLine{
		{Line: 1, Message: m.Line1, Timestamp: m.UpdatedAt},
		{Line: 2, Message: m.Line2, Timestamp: m.UpdatedAt},
	}
}
