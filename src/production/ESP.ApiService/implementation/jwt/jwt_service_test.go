package jwt

import (
	"errors"
	"testing"
	"time"

	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	api_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/api"
)

func testConfig() api_models.Config {
	return api_models.Config{
		SecretKey:     "test-secret-key",
		TokenDuration: time.Hour,
		Issuer:        "esp-device-server",
	}
}

func testIdentity() api_models.Identity {
	return api_models.Identity{
		ID:    "user-1",
		Email: "alice@example.com",
		Name:  "Alice",
		Role:  "user",
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := NewService(testConfig())

	issued, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if issued.Token == "" || issued.TokenID == "" {
		t.Fatalf("issued token is incomplete: %+v", issued)
	}

	claims, err := svc.Verify(issued.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" || claims.Role != "user" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	identity := claims.ToIdentity()
	if identity.ID != "user-1" || identity.Name != "Alice" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.TokenDuration = -time.Minute
	svc := NewService(cfg)

	issued, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	_, err = svc.Verify(issued.Token)
	if !errors.Is(err, espmodels.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	svc := NewService(testConfig())

	issued, err := svc.Issue(testIdentity())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	other := NewService(api_models.Config{
		SecretKey:     "a-different-secret",
		TokenDuration: time.Hour,
		Issuer:        "esp-device-server",
	})
	_, err = other.Verify(issued.Token)
	if !errors.Is(err, espmodels.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService(testConfig())

	_, err := svc.Verify("not-a-token")
	if !errors.Is(err, espmodels.ErrInvalidToken) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}
