package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/controllers"
	container "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Container"
	implementation "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Repository/Implementation"

	"gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/actuation"
	authService "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/auth"
	jwt "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/implementation/jwt"
	authMiddleware "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.ApiService/middleware"
	api_models "gitlab.com/cobaltsense1/esp.device_server/src/production/ESP.Models/api"
)

func main() {
	// Initialize dependency injection container
	ctr, err := container.NewApiContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting API Service")

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ctr.InitializeDatabase(ctx); err != nil {
		logger.FatalWithError(err, "Failed to initialize database")
	}

	db, err := ctr.GetDatabase()
	if err != nil {
		logger.FatalWithError(err, "Failed to get database connection")
	}

	// Create repositories
	userRepo := implementation.NewPostgresUserRepository(db)
	telemetryRepo := implementation.NewPostgresTelemetryRepository(db)
	deviceStateRepo := implementation.NewPostgresDeviceStateRepository(db)

	config := ctr.GetConfig()

	// Initialize JWT service for token issuance and validation
	jwtService := jwt.NewService(api_models.Config{
		SecretKey:     config.Auth.JWTSecretKey,
		TokenDuration: config.Auth.TokenDuration,
		Issuer:        config.Auth.JWTIssuer,
	})

	// Create auth middleware
	authMiddlewareInstance := authMiddleware.NewAuthMiddleware(jwtService, authMiddleware.DefaultConfig())

	// Initialize services
	authServiceInstance := authService.NewAuthService(userRepo, jwtService)
	actuationService := actuation.NewService(deviceStateRepo, telemetryRepo, config.Device.ButtonLedMap)

	// Ensure the bootstrap admin user exists
	adminBootstrap := authService.NewAdminBootstrapService(userRepo, logger, config.Auth.Admin)
	if err := adminBootstrap.EnsureAdminUser(ctx); err != nil {
		logger.FatalWithError(err, "Failed to bootstrap admin user")
	}

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	healthChecker, err := ctr.GetHealthChecker()
	if err != nil {
		logger.FatalWithError(err, "Failed to get health checker")
	}

	authController := controllers.NewAuthController(authServiceInstance)
	healthController := controllers.NewHealthController(healthChecker, logger)
	telemetryController := controllers.NewTelemetryController(telemetryRepo, config.Device, logger)
	deviceController := controllers.NewDeviceController(actuationService, config.Device, logger)
	internalController := controllers.NewInternalController(telemetryRepo, actuationService)

	authController.RegisterRoutes(router, authMiddlewareInstance)
	healthController.RegisterRoutes(router)
	telemetryController.RegisterRoutes(router)
	deviceController.RegisterRoutes(router)
	internalController.RegisterRoutes(router)

	port := config.Server.Port

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
