package controllers

import (
	"errors"
	"net/http"

	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/actuation"
	config "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Config"
	logger "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Logger"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"

	"github.com/gin-gonic/gin"
)

// DeviceController exposes the actuation endpoints: LED writes, button
// presses, LED status, and the LCD message
type DeviceController struct {
	actuationService *actuation.Service
	device           config.DeviceConfig
	logger           *logger.Logger
}

// NewDeviceController creates a new device controller
func NewDeviceController(actuationService *actuation.Service, device config.DeviceConfig, logger *logger.Logger) *DeviceController {
	return &DeviceController{
		actuationService: actuationService,
		device:           device,
		logger:           logger,
	}
}

// RegisterRoutes registers the device routes with Gin
func (c *DeviceController) RegisterRoutes(router *gin.Engine) {
	led := router.Group("/led")
	{
		led.POST("/update", c.UpdateLed)
		led.GET("/status", c.GetLedStatus)
	}

	router.POST("/button/press", c.PressButton)
	router.GET("/lcd/current", c.GetLcdMessage)
}

type updateLedRequest struct {
	DeviceID  string `json:"device_id"`
	LedNumber *int   `json:"led_number"`
	State     *bool  `json:"state"`
}

type pressButtonRequest struct {
	DeviceID     string `json:"device_id"`
	ButtonNumber *int   `json:"button_number"`
}

// UpdateLed sets one LED to an explicit state
func (c *DeviceController) UpdateLed(ctx *gin.Context) {
	var req updateLedRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "led_number and state are required"})
		return
	}
	if req.LedNumber == nil || req.State == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "led_number and state are required"})
		return
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = c.device.DefaultDeviceID
	}

	if err := c.actuationService.SetLed(ctx.Request.Context(), deviceID, *req.LedNumber, *req.State); err != nil {
		c.respondActuationError(ctx, deviceID, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "LED updated",
		"led_number": *req.LedNumber,
		"state":      *req.State,
	})
}

// PressButton records a physical button press and toggles the mapped LED
func (c *DeviceController) PressButton(ctx *gin.Context) {
	var req pressButtonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "button_number is required"})
		return
	}
	if req.ButtonNumber == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "button_number is required"})
		return
	}

	deviceID := req.DeviceID
	if deviceID == "" {
		deviceID = c.device.DefaultDeviceID
	}

	ledNumber, ledState, err := c.actuationService.HandleButtonPress(ctx.Request.Context(), deviceID, *req.ButtonNumber)
	if err != nil {
		c.respondActuationError(ctx, deviceID, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "button press processed",
		"button_number": *req.ButtonNumber,
		"led_number":    ledNumber,
		"led_state":     ledState,
	})
}

// GetLedStatus returns the led_number → state map for a device
func (c *DeviceController) GetLedStatus(ctx *gin.Context) {
	deviceID := ctx.DefaultQuery("device_id", c.device.DefaultDeviceID)

	leds, err := c.actuationService.GetLedStatus(ctx.Request.Context(), deviceID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "leds": leds})
}

// GetLcdMessage returns the device's current two display lines
func (c *DeviceController) GetLcdMessage(ctx *gin.Context) {
	deviceID := ctx.DefaultQuery("device_id", c.device.DefaultDeviceID)

	lines, err := c.actuationService.GetDisplayMessage(ctx.Request.Context(), deviceID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, lines)
}

func (c *DeviceController) respondActuationError(ctx *gin.Context, deviceID string, err error) {
	if errors.Is(err, espmodels.ErrInvalidArgument) {
		ctx.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.logger.WithDevice(deviceID).ErrorWithError(err, "Actuation failed")
	ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
}
