package espmodels

import (
	"time"
)

// SensorReading is one distance measurement reported by a device.
// Readings are append-only and never mutated after insert.
type SensorReading struct {
	ID        int64     `json:"id" db:"id"`
	DeviceID  string    `json:"device_id" db:"device_id"`
	Distance  float64   `json:"distance" db:"distance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ButtonEvent records one physical button press on a device.
// Events are append-only, same lifecycle as SensorReading.
type ButtonEvent struct {
	ID           int64     `json:"id" db:"id"`
	DeviceID     string    `json:"device_id" db:"device_id"`
	ButtonNumber int       `json:"button_number" db:"button_number"`
	EventType    string    `json:"event_type" db:"event_type"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// EventTypePress is the only button event type the devices report today.
const EventTypePress = "press"
