package controllers

import (
	"net/http"
	"strconv"

	config "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Config"
	logger "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Logger"
	interfaces "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Repository/Interfaces"

	"github.com/gin-gonic/gin"
)

// TelemetryController handles sensor reading ingestion and telemetry reads
type TelemetryController struct {
	telemetryRepo interfaces.TelemetryRepository
	device        config.DeviceConfig
	logger        *logger.Logger
}

// NewTelemetryController creates a new telemetry controller
func NewTelemetryController(telemetryRepo interfaces.TelemetryRepository, device config.DeviceConfig, logger *logger.Logger) *TelemetryController {
	return &TelemetryController{
		telemetryRepo: telemetryRepo,
		device:        device,
		logger:        logger,
	}
}

// RegisterRoutes registers the telemetry routes with Gin
func (c *TelemetryController) RegisterRoutes(router *gin.Engine) {
	router.POST("/sensor", c.CreateReading)
	router.GET("/sensor/history", c.GetHistory)
	router.GET("/led-states", c.GetLedStates)
}

type createReadingRequest struct {
	DeviceID string   `json:"device_id"`
	Distance *float64 `json:"distance"`
}

// CreateReading appends one sensor reading
func (c *TelemetryController) CreateReading(ctx *gin.Context) {
	var req createReadingRequest
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
		c.logger.WithDevice(req.DeviceID).ErrorWithError(err, "Failed to store sensor reading")
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"id":      id,
		"message": "reading stored",
	})
}

// GetHistory returns recent readings for a device, newest first
func (c *TelemetryController) GetHistory(ctx *gin.Context) {
	deviceID := ctx.DefaultQuery("device_id", c.device.DefaultDeviceID)
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	readings, err := c.telemetryRepo.ListReadings(ctx.Request.Context(), deviceID, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": readings})
}

// GetLedStates returns all LED rows for a device ordered by led_number
func (c *TelemetryController) GetLedStates(ctx *gin.Context) {
	deviceID := ctx.DefaultQuery("device_id", c.device.DefaultDeviceID)

	states, err := c.telemetryRepo.ListLedStates(ctx.Request.Context(), deviceID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": states})
}
