package actuation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	interfaces "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Repository/Interfaces"
)

// Service maps incoming stimuli (explicit LED writes and physical button
// presses) onto deterministic device-state transitions. It is the only
// component that mutates LED and display state, and it validates every input
// before touching storage.
type Service struct {
	stateRepo     interfaces.DeviceStateRepository
	telemetryRepo interfaces.TelemetryRepository
	buttonLedMap  map[int]int
}

// NewService creates a new actuation service. buttonLedMap overrides which LED
// a button controls; buttons without an entry control the LED with the same
// number.
func NewService(stateRepo interfaces.DeviceStateRepository, telemetryRepo interfaces.TelemetryRepository, buttonLedMap map[int]int) *Service {
	return &Service{
		stateRepo:     stateRepo,
		telemetryRepo: telemetryRepo,
		buttonLedMap:  buttonLedMap,
	}
}

// SetLed writes the desired state for one LED and updates the display summary
// atomically with it.
func (s *Service) SetLed(ctx context.Context, deviceID string, ledNumber int, state bool) error {
	if deviceID == "" {
		return fmt.Errorf("%w: device_id is required", espmodels.ErrInvalidArgument)
	}
	if ledNumber <= 0 {
		return fmt.Errorf("%w: led_number must be a positive integer", espmodels.ErrInvalidArgument)
	}

	line1 := fmt.Sprintf("LED %d %s", ledNumber, onOff(state))
	line2 := ""
	if state {
		line2 = fmt.Sprintf("Control: Button %d", ledNumber)
	}

	return s.stateRepo.SetLed(ctx, deviceID, ledNumber, state, line1, line2)
}

// HandleButtonPress records the press and toggles the mapped LED. Absent state
// counts as OFF, so the first press turns the LED on. Returns the LED that was
// toggled and its new state.
func (s *Service) HandleButtonPress(ctx context.Context, deviceID string, buttonNumber int) (int, bool, error) {
	if deviceID == "" {
		return 0, false, fmt.Errorf("%w: device_id is required", espmodels.ErrInvalidArgument)
	}
	if buttonNumber <= 0 {
		return 0, false, fmt.Errorf("%w: button_number must be a positive integer", espmodels.ErrInvalidArgument)
	}

	ledNumber := s.ledForButton(buttonNumber)

	newState, err := s.stateRepo.ToggleLed(ctx, deviceID, buttonNumber, ledNumber, func(state bool) (string, string) {
		line1 := fmt.Sprintf("Button %d - LED %d %s", buttonNumber, ledNumber, onOff(state))
		line2 := "State: Off"
		if state {
			line2 = "State: On"
		}
		return line1, line2
	})
	if err != nil {
		return 0, false, err
	}

	return ledNumber, newState, nil
}

// GetLedStatus returns the state of every LED ever touched on the device,
// keyed by led_number. An unknown device yields an empty map.
func (s *Service) GetLedStatus(ctx context.Context, deviceID string) (map[string]bool, error) {
	states, err := s.telemetryRepo.ListLedStates(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	leds := make(map[string]bool, len(states))
	for _, state := range states {
		leds[strconv.Itoa(state.LedNumber)] = state.State
	}

	return leds, nil
}

// GetDisplayMessage returns the current two display lines. Devices with no
// history get the default greeting with a fresh timestamp.
func (s *Service) GetDisplayMessage(ctx context.Context, deviceID string) ([]espmodels.DisplayLine, error) {
	msg, err := s.stateRepo.GetDisplayMessage(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if msg == nil {
		msg = &espmodels.DisplayMessage{
			DeviceID:  deviceID,
			Line1:     espmodels.DefaultDisplayLine1,
			Line2:     espmodels.DefaultDisplayLine2,
			UpdatedAt: time.Now(),
		}
	}

	return msg.Lines(), nil
}

func (s *Service) ledForButton(buttonNumber int) int {
	if led, ok := s.buttonLedMap[buttonNumber]; ok {
		return led
	}
	return buttonNumber
}

func onOff(state bool) string {
	if state {
		return "ON"
	}
	return "OFF"
}
