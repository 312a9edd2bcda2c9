package api_models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds JWT configuration
type Config struct {
	SecretKey     string
	TokenDuration time.Duration
	Issuer        string
}

// Identity is the payload encoded in every issued token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IdentityClaims represents the JWT claims for an authenticated identity
type IdentityClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
}

// ToIdentity extracts the identity payload from the claims.
func (c *IdentityClaims) ToIdentity() Identity {
	return Identity{
		ID:    c.UserID,
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
	}
}

// IssuedToken is a signed token plus its expiry.
type IssuedToken struct {
	Token     string `json:"token"`
	TokenID   string `json:"token_id"`
	ExpiresAt int64  `json:"expires_at"`
}
