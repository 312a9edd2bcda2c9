package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	jwt "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/jwt"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	api_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/api"
	auth_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/auth"
)

// fakeUserRepo keeps users in memory keyed by email.
type fakeUserRepo struct {
	byEmail map[string]*auth_models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*auth_models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, espmodels.ErrDuplicateEmail
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	r.byEmail[user.Email] = user
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*auth_models.User, error) {
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*auth_models.User, error) {
	for _, u := range r.byEmail {
		if u.UserID == userID {
			return u, nil
		}
	}
	return nil, nil
}

func newTestAuthService() (*AuthService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwtService := jwt.NewService(api_models.Config{
		SecretKey:     "test-secret",
		TokenDuration: time.Hour,
		Issuer:        "esp-device-server",
	})
	return NewAuthService(repo, jwtService), repo
}

func TestRegisterIssuesTokenForNewUser(t *testing.T) {
	svc, _ := newTestAuthService()

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
	if resp.User.Email != "alice@example.com" || resp.User.Role != "user" {
		t.Fatalf("unexpected user view: %+v", resp.User)
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), RegisterRequest{Email: "alice@example.com"})
	if !errors.Is(err, espmodels.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	req := RegisterRequest{Email: "alice@example.com", Password: "hunter22", Name: "Alice"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, espmodels.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc, repo := newTestAuthService()

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
		Name:     "Alice",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	stored := repo.byEmail["alice@example.com"]
	if stored.Password == "hunter22" {
		t.Fatalf("password stored in plaintext")
	}
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
		Name:     "Alice",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestAuthService()

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "alice@example.com",
		Password: "hunter22",
		Name:     "Alice",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if !errors.Is(err, espmodels.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "hunter22",
	})
	if !errors.Is(err, espmodels.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}
