package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	api_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/api"
)

// Service issues and verifies signed identity tokens. It is stateless; there
// is no persistence and no revocation list.
type Service struct {
	config api_models.Config
}

// NewService creates a new JWT service
func NewService(config api_models.Config) *Service {
	return &Service{
		config: config,
	}
}

// Issue creates a signed token carrying the identity payload.
func (s *Service) Issue(identity api_models.Identity) (*api_models.IssuedToken, error) {
	tokenID := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(s.config.TokenDuration)

	claims := api_models.IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
		},
		UserID:  identity.ID,
		Email:   identity.Email,
		Name:    identity.Name,
		Role:    identity.Role,
		TokenID: tokenID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &api_models.IssuedToken{
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// Verify validates a token and returns its identity claims. Malformed,
// expired, and badly signed tokens all surface as ErrInvalidToken.
func (s *Service) Verify(tokenString string) (*api_models.IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &api_models.IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", espmodels.ErrInvalidToken, err)
	}

	if claims, ok := token.Claims.(*api_models.IdentityClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, espmodels.ErrInvalidToken
}
