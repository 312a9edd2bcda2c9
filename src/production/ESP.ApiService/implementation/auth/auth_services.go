package auth

import (
	"context"
	"fmt"

	jwt "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/jwt"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	api_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/api"
	auth_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/auth"
	interfaces "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// AuthService aggregates registration, login, and identity lookup.
type AuthService struct {
	userRepo   interfaces.UserRepository
	jwtService *jwt.Service
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the token + user payload returned by register and login.
type AuthResponse struct {
	Token string                 `json:"token"`
	User  auth_models.PublicView `json:"user"`
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo interfaces.UserRepository, jwtService *jwt.Service) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register creates a new user with role "user" and returns a signed token for
// the fresh identity. A taken email surfaces as ErrDuplicateEmail.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: email, password and name are required", espmodels.ErrInvalidArgument)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := auth_models.NewUser(req.Email, req.Name, string(hashedPassword), "user")
	created, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	return s.respond(created)
}

// Login authenticates a user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", espmodels.ErrInvalidArgument)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, espmodels.ErrInvalidCredentials
	}

	// Verification works only against the stored hash; the plaintext is never
	// reconstructed.
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, espmodels.ErrInvalidCredentials
	}

	return s.respond(user)
}

// GetUserByID retrieves a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth_models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) respond(user *auth_models.User) (*AuthResponse, error) {
	issued, err := s.jwtService.Issue(api_models.Identity{
		ID:    user.UserID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: issued.Token,
		User:  user.Public(),
	}, nil
}
