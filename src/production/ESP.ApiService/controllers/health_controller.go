package controllers

import (
	"context"
	"net/http"
	"time"

	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/health"
	logger "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Logger"

	"github.com/gin-gonic/gin"
)

// HealthController handles health requests
type HealthController struct {
	healthChecker *health.HealthChecker
	logger        *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(healthChecker *health.HealthChecker, logger *logger.Logger) *HealthController {
	return &HealthController{
		healthChecker: healthChecker,
		logger:        logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", c.Health)
}

// Health reports whether the database answers a round trip query
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := c.healthChecker.CheckDatabaseHealth(checkCtx); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"status":   "error",
			"database": err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
	})
}
