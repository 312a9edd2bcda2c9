package middleware

import (
	"errors"
	"net/http"
	"strings"

	jwt "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/jwt"
	api_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/api"

	"github.com/gin-gonic/gin"
)

// Key types for request context
type contextKey string

const (
	// Context keys
	IdentityContextKey contextKey = "identity"
)

// AuthMiddleware provides middleware functions for authentication
type AuthMiddleware struct {
	jwtService *jwt.Service
	config     Config
}

// Config holds middleware configuration
type Config struct {
	// HTTP header name for the bearer token
	AccessTokenHeader string
}

// DefaultConfig returns a default middleware configuration
func DefaultConfig() Config {
	return Config{
		AccessTokenHeader: "Authorization",
	}
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *jwt.Service, config Config) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		config:     config,
	}
}

// extractToken gets a bearer token from the configured header
func extractToken(r *http.Request, headerName string) string {
	token := r.Header.Get(headerName)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(token, "Bearer ") {
		return strings.TrimPrefix(token, "Bearer ")
	}
	return token
}

// Authenticate middleware verifies the bearer token and stores the decoded
// identity in the request context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c.Request, m.config.AccessTokenHeader)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid access token"})
			c.Abort()
			return
		}

		c.Set(string(IdentityContextKey), claims.ToIdentity())
		c.Next()
	}
}

// RequireRole ensures the authenticated identity has a specific role
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := GetIdentityFromGinContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			c.Abort()
			return
		}

		if identity.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"message": "Insufficient role"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetIdentityFromGinContext retrieves the decoded identity from the Gin context
func GetIdentityFromGinContext(c *gin.Context) (api_models.Identity, error) {
	val, exists := c.Get(string(IdentityContextKey))
	if !exists {
		return api_models.Identity{}, errors.New("identity not found in context")
	}

	identity, ok := val.(api_models.Identity)
	if !ok {
		return api_models.Identity{}, errors.New("invalid identity format in context")
	}

	return identity, nil
}
