package espingestor

import "testing"

func TestParseTopic(t *testing.T) {
	tests := []struct {
		topic    string
		deviceID string
		kind     string
		wantErr  bool
	}{
		{"devices/ESP32-001/distance", "ESP32-001", "distance", false},
		{"devices/ESP32-001/button", "ESP32-001", "button", false},
		{"devices/kitchen-sensor/distance", "kitchen-sensor", "distance", false},
		{"devices/ESP32-001", "", "", true},
		{"devices//distance", "", "", true},
		{"sensors/ESP32-001/distance", "", "", true},
		{"devices/ESP32-001/distance/extra", "", "", true},
	}

	for _, tt := range tests {
		deviceID, kind, err := parseTopic(tt.topic)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseTopic(%q): expected error, got device=%q kind=%q", tt.topic, deviceID, kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTopic(%q): %v", tt.topic, err)
			continue
		}
		if deviceID != tt.deviceID || kind != tt.kind {
			t.Errorf("parseTopic(%q) = (%q, %q), want (%q, %q)", tt.topic, deviceID, kind, tt.deviceID, tt.kind)
		}
	}
}

func TestParseTopicKeepsDeviceIDForErrorReporting(t *testing.T) {
	deviceID, _, err := parseTopic("sensors/ESP32-001/distance")
	if err == nil {
		t.Fatalf("expected error for foreign topic prefix")
	}
	if deviceID != "ESP32-001" {
		t.Fatalf("expected recovered device id for the error topic, got %q", deviceID)
	}
}

func TestParseDistance(t *testing.T) {
	if d, err := parseDistance([]byte(`{"distance": 42.5}`)); err != nil || d != 42.5 {
		t.Fatalf("object payload: d=%v err=%v", d, err)
	}
	if d, err := parseDistance([]byte(`17.25`)); err != nil || d != 17.25 {
		t.Fatalf("bare number payload: d=%v err=%v", d, err)
	}
	if d, err := parseDistance([]byte(" 3 \n")); err != nil || d != 3 {
		t.Fatalf("padded number payload: d=%v err=%v", d, err)
	}
	if _, err := parseDistance([]byte(`{"other": 1}`)); err == nil {
		t.Fatalf("expected error for object without distance")
	}
	if _, err := parseDistance([]byte(`garbage`)); err == nil {
		t.Fatalf("expected error for garbage payload")
	}
}

func TestParseButton(t *testing.T) {
	if b, err := parseButton([]byte(`{"button_number": 2}`)); err != nil || b != 2 {
		t.Fatalf("object payload: b=%v err=%v", b, err)
	}
	if b, err := parseButton([]byte(`4`)); err != nil || b != 4 {
		t.Fatalf("bare integer payload: b=%v err=%v", b, err)
	}
	if _, err := parseButton([]byte(`2.5`)); err == nil {
		t.Fatalf("expected error for non-integer payload")
	}
	if _, err := parseButton([]byte(`{}`)); err == nil {
		t.Fatalf("expected error for object without button_number")
	}
}
