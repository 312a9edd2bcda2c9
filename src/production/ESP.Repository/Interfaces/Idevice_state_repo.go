package interfaces

import (
	"context"

	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
)

// DeviceStateRepository owns the led_states and lcd_messages rows. All writes
// go through single transactions so a stimulus either lands completely or not
// at all, and toggles of the same (device_id, led_number) key are serialized by
// the store's row locking.
type DeviceStateRepository interface {
	// SetLed upserts the LED state and the display message in one transaction.
	SetLed(ctx context.Context, deviceID string, ledNumber int, state bool, line1, line2 string) error

	// ToggleLed records the button event, flips the LED (absent rows count as
	// OFF), and writes the display summary for the new state, all in one
	// transaction. summary is called with the committed new state to produce
	// the two display lines. Returns the new state.
	ToggleLed(ctx context.Context, deviceID string, buttonNumber, ledNumber int, summary func(newState bool) (line1, line2 string)) (bool, error)

	// GetDisplayMessage returns the device's current message, or (nil, nil)
	// when nothing has been written yet.
	GetDisplayMessage(ctx context.Context, deviceID string) (*espmodels.DisplayMessage, error)
}
