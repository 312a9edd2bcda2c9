package controllers

import (
	"errors"
	"net/http"

	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/actuation"
	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/middleware"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"
	interfaces "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Repository/Interfaces"

	"github.com/gin-gonic/gin"
)

// InternalController exposes the service-to-service endpoints the MQTT
// ingestor forwards device traffic to. Guarded by the shared-secret service
// middleware, not user tokens.
type InternalController struct {
	telemetryRepo    interfaces.TelemetryRepository
	actuationService *actuation.Service
}

// NewInternalController creates a new internal controller
func NewInternalController(telemetryRepo interfaces.TelemetryRepository, actuationService *actuation.Service) *InternalController {
	return &InternalController{
		telemetryRepo:    telemetryRepo,
		actuationService: actuationService,
	}
}

// RegisterRoutes registers the internal routes with Gin
func (c *InternalController) RegisterRoutes(router *gin.Engine) {
	internal := router.Group("/internal", middleware.ServiceAuthMiddleware())
	{
		internal.POST("/sensor", c.CreateReading)
		internal.POST("/button/press", c.PressButton)
	}
}

type internalReadingRequest struct {
	DeviceID string   `json:"device_id"`
	Distance *float64 `json:"distance"`
}

type internalButtonRequest struct {
	DeviceID     string `json:"device_id"`
	ButtonNumber *int   `json:"button_number"`
}

// CreateReading appends a reading forwarded by the ingestor
func (c *InternalController) CreateReading(ctx *gin.Context) {
	var req internalReadingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "device_id and distance are required"})
		return
	}
	if req.DeviceID == "" || req.Distance == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "device_id and distance are required"})
		return
	}

	id, err := c.telemetryRepo.InsertReading(ctx.Request.Context(), req.DeviceID, *req.Distance)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"success": true, "id": id})
}

// PressButton processes a button press forwarded by the ingestor
func (c *InternalController) PressButton(ctx *gin.Context) {
	var req internalButtonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "device_id and button_number are required"})
		return
	}
	if req.DeviceID == "" || req.ButtonNumber == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "device_id and button_number are required"})
		return
	}

	ledNumber, ledState, err := c.actuationService.HandleButtonPress(ctx.Request.Context(), req.DeviceID, *req.ButtonNumber)
	if err != nil {
		if errors.Is(err, espmodels.ErrInvalidArgument) {
			ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":       true,
		"button_number": *req.ButtonNumber,
		"led_number":    ledNumber,
		"led_state":     ledState,
	})
}
