package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	service "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/auth"
	jwtservice "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/jwt"
	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/middleware"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	api_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/api"
	auth_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/auth"
)

type memoryUserRepo struct {
	byEmail map[string]*auth_models.User
}

func (r *memoryUserRepo) Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error) {
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, espmodels.ErrDuplicateEmail
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	r.byEmail[user.Email] = user
	return user, nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*auth_models.User, error) {
	return r.byEmail[email], nil
}

func (r *memoryUserRepo) GetByID(ctx context.Context, userID string) (*auth_models.User, error) {
	for _, u := range r.byEmail {
		if u.UserID == userID {
			return u, nil
		}
	}
	return nil, nil
}

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &memoryUserRepo{byEmail: make(map[string]*auth_models.User)}
	jwtService := jwtservice.NewService(api_models.Config{
		SecretKey:     "test-secret",
		TokenDuration: time.Hour,
		Issuer:        "esp-device-server",
	})
	authService := service.NewAuthService(repo, jwtService)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, middleware.DefaultConfig())

	router := gin.New()
	NewAuthController(authService).RegisterRoutes(router, authMiddleware)
	return router
}

func TestRegisterLoginMeFlow(t *testing.T) {
	router := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22",
		"name":     "Alice",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", w.Code, w.Body.String())
	}

	var registered service.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &registered); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if registered.Token == "" || registered.User.Email != "alice@example.com" {
		t.Fatalf("unexpected register response: %+v", registered)
	}

	w = doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}

	var loggedIn service.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &loggedIn); err != nil {
		t.Fatalf("decode login response: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loggedIn.Token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body.String())
	}

	var identity api_models.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &identity); err != nil {
		t.Fatalf("decode identity: %v", err)
	}
	if identity.Email != "alice@example.com" || identity.Role != "user" {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestRegisterDuplicateEmailReturns400(t *testing.T) {
	router := newAuthRouter(t)

	body := gin.H{"email": "alice@example.com", "password": "hunter22", "name": "Alice"}
	if w := doJSON(t, router, http.MethodPost, "/auth/register", body); w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/auth/register", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["message"] != "email already registered" {
		t.Fatalf("unexpected message: %v", resp)
	}
}

func TestRegisterMissingFieldsReturns400(t *testing.T) {
	router := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/register", gin.H{"email": "alice@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestLoginWrongPasswordReturns401(t *testing.T) {
	router := newAuthRouter(t)

	doJSON(t, router, http.MethodPost, "/auth/register", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22",
		"name":     "Alice",
	})

	w := doJSON(t, router, http.MethodPost, "/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	resp := decodeBody(t, w)
	if resp["message"] != "invalid credentials" {
		t.Fatalf("unexpected message: %v", resp)
	}
}

func TestMeWithoutTokenReturns401(t *testing.T) {
	router := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMeWithGarbageTokenReturns401(t *testing.T) {
	router := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
