package controllers

import (
	"errors"
	"net/http"

	service "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/auth"
	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/middleware"
	espmodels "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models"

	"github.com/gin-gonic/gin"
)

// AuthController handles authentication requests
type AuthController struct {
	authService *service.AuthService
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register handles user registration
func (h *AuthController) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email, password and name are required"})
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, espmodels.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"message": "email, password and name are required"})
		case errors.Is(err, espmodels.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"message": "email already registered"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Login handles user login
func (h *AuthController) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, espmodels.ErrInvalidArgument):
			c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required"})
		case errors.Is(err, espmodels.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "invalid credentials"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the identity decoded from the bearer token
func (h *AuthController) Me(c *gin.Context) {
	identity, err := middleware.GetIdentityFromGinContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, identity)
}

// RegisterRoutes registers the auth routes with Gin
func (h *AuthController) RegisterRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", authMiddleware.Authenticate(), h.Me)
	}
}
