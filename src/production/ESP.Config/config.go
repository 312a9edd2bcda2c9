package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig `json:"server"`

	// Database configuration
	Database DatabaseConfig `json:"database"`

	// Device configuration
	Device DeviceConfig `json:"device"`

	// Auth configuration
	Auth AuthConfig `json:"auth"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// CORS configuration
	CORS CORSConfig `json:"cors"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
	MaxConns int    `json:"max_conns"`
	MinConns int    `json:"min_conns"`
}

// DeviceConfig holds device-related defaults applied at the API boundary
type DeviceConfig struct {
	// DefaultDeviceID is used when a write request omits device_id
	DefaultDeviceID string `json:"default_device_id"`

	// ButtonLedMap maps a physical button number to the LED it controls.
	// Buttons without an entry control the LED with the same number.
	ButtonLedMap map[int]int `json:"button_led_map"`
}

// MQTTConfig holds MQTT-related configuration for the ingestor
type MQTTConfig struct {
	BrokerHost  string        `json:"broker_host"`
	BrokerPort  int           `json:"broker_port"`
	BrokerUser  string        `json:"broker_user"`
	BrokerPass  string        `json:"broker_pass"`
	UseTLS      bool          `json:"use_tls"`
	CACertPath  string        `json:"ca_cert_path"`
	Topic       string        `json:"topic"`
	ClientID    string        `json:"client_id"`
	KeepAlive   time.Duration `json:"keep_alive"`
	PingTimeout time.Duration `json:"ping_timeout"`
}

// AuthConfig holds authentication-related configuration
type AuthConfig struct {
	JWTSecretKey      string        `json:"jwt_secret_key"`
	JWTIssuer         string        `json:"jwt_issuer"`
	TokenDuration     time.Duration `json:"token_duration"`
	PasswordMinLength int           `json:"password_min_length"`
	Admin             AdminConfig   `json:"admin"`
}

// AdminConfig holds the bootstrap admin user configuration
type AdminConfig struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level        string `json:"level"`
	Format       string `json:"format"` // json or text
	Output       string `json:"output"` // stdout, stderr, or file path
	EnableCaller bool   `json:"enable_caller"`
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	ExposedHeaders   []string `json:"exposed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	MaxAge           int      `json:"max_age"`
}

// IngestorConfig holds configuration for the MQTT Ingestor service
type IngestorConfig struct {
	Server            ServerConfig  `json:"server"`
	MQTT              MQTTConfig    `json:"mqtt"`
	Logging           LoggingConfig `json:"logging"`
	Batch             BatchConfig   `json:"batch"`
	ApiServiceURL     string        `json:"api_service_url"`
	InternalAPISecret string        `json:"internal_api_secret"`
}

// BatchConfig holds batch processing configuration
type BatchConfig struct {
	Size   int           `json:"size"`
	Window time.Duration `json:"window"`
}

// LoadApiConfig loads configuration for the API service
func LoadApiConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil {
		// Environment variables set directly still work without a .env file
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getRequiredEnv("POSTGRES_USER"),
			Password: getRequiredEnv("POSTGRES_PASSWORD"),
			DBName:   getEnv("POSTGRES_DB", "devicehub"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			MaxConns: getInt("POSTGRES_MAX_CONNS", 25),
			MinConns: getInt("POSTGRES_MIN_CONNS", 5),
		},
		Device: DeviceConfig{
			DefaultDeviceID: getEnv("DEFAULT_DEVICE_ID", "ESP32-001"),
			ButtonLedMap:    getIntMap("BUTTON_LED_MAP", map[int]int{}),
		},
		Auth: AuthConfig{
			JWTSecretKey:      getEnv("JWT_SECRET_KEY", "change-this-secret-in-production"),
			JWTIssuer:         getEnv("JWT_ISSUER", "esp-device-server"),
			TokenDuration:     getDuration("JWT_EXPIRES", 86400*time.Second),
			PasswordMinLength: getInt("PASSWORD_MIN_LENGTH", 8),
			Admin: AdminConfig{
				Name:     getEnv("ADMIN_NAME", "admin"),
				Email:    getEnv("ADMIN_EMAIL", "admin@example.com"),
				Password: getEnv("ADMIN_PASSWORD", "adminpassword123"),
			},
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://127.0.0.1:5173"}),
			AllowedMethods:   getStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization"}),
			ExposedHeaders:   getStringSlice("CORS_EXPOSED_HEADERS", []string{"Content-Length"}),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getInt("CORS_MAX_AGE", 43200), // 12 hours
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadIngestorConfig loads configuration for the MQTT Ingestor service
func LoadIngestorConfig() (*IngestorConfig, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	if err := godotenv.Load(); err != nil {
		// Environment variables set directly still work without a .env file
	}

	config := &IngestorConfig{
		Server: ServerConfig{
			Port:         getEnv("INGESTOR_PORT", "5003"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getDuration("IDLE_TIMEOUT", 120*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerHost:  getEnv("BROKER_HOST", "localhost"),
			BrokerPort:  getInt("BROKER_PORT", 1883),
			BrokerUser:  getEnv("BROKER_USER", ""),
			BrokerPass:  getEnv("BROKER_PASS", ""),
			UseTLS:      getBool("BROKER_TLS", false),
			CACertPath:  getEnv("BROKER_CA_FILE", ""),
			Topic:       getEnv("MQTT_TOPIC", "devices/#"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "esp-ingestor"),
			KeepAlive:   getDuration("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout: getDuration("MQTT_PING_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			Format:       getEnv("LOG_FORMAT", "text"),
			Output:       getEnv("LOG_OUTPUT", "stdout"),
			EnableCaller: getBool("LOG_ENABLE_CALLER", false),
		},
		Batch: BatchConfig{
			Size:   getInt("INGESTOR_BATCH_SIZE", 100),
			Window: getDuration("INGESTOR_BATCH_WINDOW", 2*time.Second),
		},
		ApiServiceURL:     getEnv("API_SERVICE_URL", "http://api-service:5000"),
		InternalAPISecret: getRequiredEnv("INTERNAL_API_SECRET"),
	}

	if config.ApiServiceURL == "" {
		return nil, fmt.Errorf("API_SERVICE_URL is required")
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.User == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if c.Auth.JWTSecretKey == "change-this-secret-in-production" {
		log.Println("WARNING: Using default JWT secret key. Change JWT_SECRET_KEY in production!")
	}
	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("JWT_EXPIRES must be positive")
	}
	if c.Device.DefaultDeviceID == "" {
		return fmt.Errorf("DEFAULT_DEVICE_ID must not be empty")
	}
	if c.Auth.PasswordMinLength < 6 {
		return fmt.Errorf("password minimum length must be at least 6")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.DBName, c.Database.SSLMode)
}

// GetMQTTBrokerURL returns the MQTT broker URL
func (c *IngestorConfig) GetMQTTBrokerURL() string {
	scheme := "tcp"
	if c.MQTT.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, c.MQTT.BrokerHost, c.MQTT.BrokerPort)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getRequiredEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("missing required environment variable: %s", key)
	}
	return value
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return intValue
}

func getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if value == "1" || value == "true" || value == "TRUE" {
		return true
	}
	if value == "0" || value == "false" || value == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q (expected true/false or 1/0)", key, value)
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return duration
}

func getStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

// getIntMap parses "1:2,3:4" style pairs into a map
func getIntMap(key string, defaultValue map[int]int) map[int]int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result := make(map[int]int)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			log.Fatalf("invalid %s entry: %q (expected <button>:<led>)", key, pair)
		}
		k, err := strconv.Atoi(strings.TrimSpace(kv[0]))
		if err != nil {
			log.Fatalf("invalid %s key: %v", key, err)
		}
		v, err := strconv.Atoi(strings.TrimSpace(kv[1]))
		if err != nil {
			log.Fatalf("invalid %s value: %v", key, err)
		}
		result[k] = v
	}
	return result
}
