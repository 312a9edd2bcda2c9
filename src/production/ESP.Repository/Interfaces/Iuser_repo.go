package interfaces

import (
	"context"

	auth_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/auth"
)

// UserRepository is the credential store contract. Passwords are stored only as
// salted one-way hashes; this layer never sees a plaintext password.
type UserRepository interface {
	// Create inserts a new user. Returns ErrDuplicateEmail when the email is
	// already present.
	Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error)

	// GetByEmail returns the user with their password hash, or (nil, nil) when
	// no user has that email.
	GetByEmail(ctx context.Context, email string) (*auth_models.User, error)

	// GetByID returns the user, or (nil, nil) when absent.
	GetByID(ctx context.Context, userID string) (*auth_models.User, error)
}
