package auth_models

import (
	"time"
)

// User represents a user in the system
type User struct {
	UserID    string    `json:"id" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"` // Password hash is not exposed in JSON
	Name      string    `json:"name" db:"name"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewUser creates a new User instance. The password must already be hashed.
func NewUser(email, name, passwordHash, role string) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Name:      name,
		Password:  passwordHash,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PublicView is the user shape returned by the auth endpoints.
type PublicView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Public returns the externally visible projection of the user.
func (u *User) Public() PublicView {
	return PublicView{
		ID:    u.UserID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
