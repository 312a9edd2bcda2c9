package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServiceAuthMiddleware validates service-to-service authentication for the
// internal endpoints the MQTT ingestor calls
func ServiceAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Missing Authorization header",
			})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization format. Expected 'Bearer <token>'",
			})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Empty token",
			})
			c.Abort()
			return
		}

		expectedSecret := os.Getenv("INTERNAL_API_SECRET")
		if expectedSecret == "" {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "Internal API secret not configured",
			})
			c.Abort()
			return
		}

		if token != expectedSecret {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid service token",
			})
			c.Abort()
			return
		}

		c.Set("service_auth", true)
		c.Set("service_name", "esp-ingestor")

		c.Next()
	}
}
