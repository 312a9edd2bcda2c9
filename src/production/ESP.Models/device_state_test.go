package espmodels

import (
	"testing"
	"time"
)

func TestDisplayMessageLines(t *testing.T) {
	now := time.Now()
	msg := &DisplayMessage{
		DeviceID:  "ESP32-001",
		Line1:     "Welcome",
		Line2:     "System ready",
		UpdatedAt: now,
	}

	lines := msg.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Line != 1 || lines[0].Message != "Welcome" || !lines[0].Timestamp.Equal(now) {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
	if lines[1].Line != 2 || lines[1].Message != "System ready" || !lines[1].Timestamp.Equal(now) {
		t.Fatalf("unexpected second line: %+v", lines[1])
	}
}
