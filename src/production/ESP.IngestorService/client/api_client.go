package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// CircuitBreakerState represents the state of the circuit breaker
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreaker implements circuit breaker pattern for resilience
type CircuitBreaker struct {
	maxFailures  int
	resetTimeout time.Duration
	state        CircuitBreakerState
	failureCount int
	lastFailTime time.Time
	mutex        sync.RWMutex
}

// APIClient handles communication with the API Service's internal endpoints
type APIClient struct {
	baseURL        string
	httpClient     *http.Client
	apiSecret      string
	circuitBreaker *CircuitBreaker
	maxRetries     int
	retryDelay     time.Duration
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL, apiSecret string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiSecret: apiSecret,
		circuitBreaker: &CircuitBreaker{
			maxFailures:  5,
			resetTimeout: 30 * time.Second,
			state:        StateClosed,
		},
		maxRetries: 3,
		retryDelay: 1 * time.Second,
	}
}

// CreateReadingRequest represents the request to forward a sensor reading
type CreateReadingRequest struct {
	DeviceID string  `json:"device_id"`
	Distance float64 `json:"distance"`
}

// PressButtonRequest represents the request to forward a button press
type PressButtonRequest struct {
	DeviceID     string `json:"device_id"`
	ButtonNumber int    `json:"button_number"`
}

// Circuit breaker methods
func (cb *CircuitBreaker) canExecute() bool {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		return time.Since(cb.lastFailTime) > cb.resetTimeout
	case StateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount = 0
	cb.state = StateClosed
}

func (cb *CircuitBreaker) onFailure() {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	cb.failureCount++
	cb.lastFailTime = time.Now()

	if cb.failureCount >= cb.maxFailures {
		cb.state = StateOpen
	}
}

// retryWithBackoff executes a function with retry logic behind the breaker
func (c *APIClient) retryWithBackoff(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if !c.circuitBreaker.canExecute() {
			return fmt.Errorf("circuit breaker is open")
		}

		err := operation()
		if err == nil {
			c.circuitBreaker.onSuccess()
			return nil
		}

		lastErr = err
		c.circuitBreaker.onFailure()

		if attempt < c.maxRetries {
			delay := c.retryDelay * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// CreateReading forwards one sensor reading to the API service
func (c *APIClient) CreateReading(ctx context.Context, deviceID string, distance float64) error {
	return c.retryWithBackoff(ctx, func() error {
		return c.postJSON(ctx, "/internal/sensor", CreateReadingRequest{
			DeviceID: deviceID,
			Distance: distance,
		})
	})
}

// PressButton forwards one button press to the API service
func (c *APIClient) PressButton(ctx context.Context, deviceID string, buttonNumber int) error {
	return c.retryWithBackoff(ctx, func() error {
		return c.postJSON(ctx, "/internal/button/press", PressButtonRequest{
			DeviceID:     deviceID,
			ButtonNumber: buttonNumber,
		})
	})
}

// Health checks whether the API service answers its health endpoint
func (c *APIClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("api service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// GetCircuitBreakerStatus returns the breaker state for health reporting
func (c *APIClient) GetCircuitBreakerStatus() map[string]interface{} {
	c.circuitBreaker.mutex.RLock()
	defer c.circuitBreaker.mutex.RUnlock()

	stateNames := map[CircuitBreakerState]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
	}

	return map[string]interface{}{
		"state":         stateNames[c.circuitBreaker.state],
		"failure_count": c.circuitBreaker.failureCount,
	}
}

func (c *APIClient) postJSON(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("api service returned status %d: %s", resp.StatusCode, string(msg))
	}

	return nil
}
