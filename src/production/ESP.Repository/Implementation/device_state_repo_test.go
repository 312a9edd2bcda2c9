package implementation

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestSetLedWritesStateAndMessageInOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresDeviceStateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO led_states").
		WithArgs("ESP32-001", 1, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO lcd_messages").
		WithArgs("ESP32-001", "LED 1 ON", "Control: Button 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetLed(context.Background(), "ESP32-001", 1, true, "LED 1 ON", "Control: Button 1")
	if err != nil {
		t.Fatalf("set led: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSetLedRollsBackWhenMessageWriteFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresDeviceStateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO led_states").
		WithArgs("ESP32-001", 2, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO lcd_messages").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.SetLed(context.Background(), "ESP32-001", 2, false, "LED 2 OFF", "")
	if !errors.Is(err, espmodels.ErrStoreUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestToggleLedFirstPressTurnsOn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresDeviceStateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO button_events").
		WithArgs("ESP32-001", 1, espmodels.EventTypePress).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO led_states").
		WithArgs("ESP32-001", 1).
		WillReturnRows(sqlmock.NewRows([]string{"state"}).AddRow(true))
	mock.ExpectExec("INSERT INTO lcd_messages").
		WithArgs("ESP32-001", "Button 1 - LED 1 ON", "State: On").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var summarized bool
	newState, err := repo.ToggleLed(context.Background(), "ESP32-001", 1, 1, func(on bool) (string, string) {
		summarized = true
		if !on {
			t.Fatalf("summary called with off state on first press")
		}
		return "Button 1 - LED 1 ON", "State: On"
	})
	if err != nil {
		t.Fatalf("toggle led: %v", err)
	}
	if !newState {
		t.Fatalf("expected first press to turn the LED on")
	}
	if !summarized {
		t.Fatalf("summary callback was not invoked")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestToggleLedSecondPressTurnsOff(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresDeviceStateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO button_events").
		WithArgs("ESP32-001", 3, espmodels.EventTypePress).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO led_states").
		WithArgs("ESP32-001", 3).
		WillReturnRows(sqlmock.NewRows([]string{"state"}).AddRow(false))
	mock.ExpectExec("INSERT INTO lcd_messages").
		WithArgs("ESP32-001", "Button 3 - LED 3 OFF", "State: Off").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	newState, err := repo.ToggleLed(context.Background(), "ESP32-001", 3, 3, func(on bool) (string, string) {
		return "Button 3 - LED 3 OFF", "State: Off"
	})
	if err != nil {
		t.Fatalf("toggle led: %v", err)
	}
	if newState {
		t.Fatalf("expected toggle of an on LED to report off")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestToggleLedRollsBackWholeStimulusOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresDeviceStateRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO button_events").
		WithArgs("ESP32-001", 1, espmodels.EventTypePress).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("INSERT INTO led_states").
		WithArgs("ESP32-001", 1).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.ToggleLed(context.Background(), "ESP32-001", 1, 1, func(on bool) (string, string) {
		return "", ""
	})
	if !errors.Is(err, espmodels.ErrStoreUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetDisplayMessageReturnsNilWhenAbsent(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresDeviceStateRepository(db)

	mock.ExpectQuery("SELECT device_id, line1, line2, updated_at FROM lcd_messages").
		WithArgs("ESP32-001").
		WillReturnError(sql.ErrNoRows)

	msg, err := repo.GetDisplayMessage(context.Background(), "ESP32-001")
	if err != nil {
		t.Fatalf("get display message: %v", err)
	}
	if msg != nil {
		t.Fatalf("expected nil message for unknown device, got %+v", msg)
	}
}
