package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCreateReadingSendsSecretAndPayload(t *testing.T) {
	var gotAuth string
	var gotBody CreateReadingRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/sensor" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "s3cret")
	if err := c.CreateReading(context.Background(), "ESP32-001", 42.5); err != nil {
		t.Fatalf("create reading: %v", err)
	}

	if gotAuth != "Bearer s3cret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody.DeviceID != "ESP32-001" || gotBody.Distance != 42.5 {
		t.Fatalf("unexpected body: %+v", gotBody)
	}
}

func TestPressButtonRetriesUntilSuccess(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "s3cret")
	c.retryDelay = time.Millisecond

	if err := c.PressButton(context.Background(), "ESP32-001", 1); err != nil {
		t.Fatalf("press button: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestPostJSONSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false,"message":"device_id and distance are required"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "s3cret")
	c.retryDelay = time.Millisecond

	err := c.CreateReading(context.Background(), "ESP32-001", 1)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestCircuitBreakerOpensAfterMaxFailures(t *testing.T) {
	cb := &CircuitBreaker{maxFailures: 3, resetTimeout: time.Minute, state: StateClosed}

	for i := 0; i < 3; i++ {
		if !cb.canExecute() && cb.state == StateClosed {
			t.Fatalf("closed breaker refused execution")
		}
		cb.onFailure()
	}

	if cb.state != StateOpen {
		t.Fatalf("expected open state after max failures, got %v", cb.state)
	}
	if cb.canExecute() {
		t.Fatalf("open breaker allowed execution before reset timeout")
	}

	cb.lastFailTime = time.Now().Add(-2 * time.Minute)
	if !cb.canExecute() {
		t.Fatalf("breaker should probe after reset timeout")
	}

	cb.onSuccess()
	if cb.state != StateClosed || cb.failureCount != 0 {
		t.Fatalf("success should close breaker, got state=%v count=%d", cb.state, cb.failureCount)
	}
}

func TestHealthReportsNon200AsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, "s3cret")
	if err := c.Health(context.Background()); err == nil {
		t.Fatalf("expected error for unhealthy service")
	}
}
