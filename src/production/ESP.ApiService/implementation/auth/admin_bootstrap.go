package auth

import (
	"context"

	config "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Config"
	logger "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Logger"
	auth_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/auth"
	interfaces "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Repository/Interfaces"

	"golang.org/x/crypto/bcrypt"
)

// AdminBootstrapService ensures the configured admin account exists at startup
type AdminBootstrapService struct {
	userRepo    interfaces.UserRepository
	logger      *logger.Logger
	adminConfig config.AdminConfig
}

// NewAdminBootstrapService creates a new admin bootstrap service
func NewAdminBootstrapService(userRepo interfaces.UserRepository, logger *logger.Logger, adminConfig config.AdminConfig) *AdminBootstrapService {
	return &AdminBootstrapService{
		userRepo:    userRepo,
		logger:      logger,
		adminConfig: adminConfig,
	}
}

// EnsureAdminUser creates the admin user if no user has the configured email
func (s *AdminBootstrapService) EnsureAdminUser(ctx context.Context) error {
	existing, err := s.userRepo.GetByEmail(ctx, s.adminConfig.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		s.logger.Debug("Admin user already exists, skipping bootstrap")
		return nil
	}

	s.logger.Info("No admin user found. Creating admin user...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(s.adminConfig.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := auth_models.NewUser(s.adminConfig.Email, s.adminConfig.Name, string(hashedPassword), "admin")
	if _, err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("Admin user created successfully")
	return nil
}
