package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr      string
	ServerPort      int
	ShutdownTimeout time.Duration
	LogLevel        string

	// Database
	DBHost            string
	DBPort            int
	DBUser            string
	DBPassword        string
	DBName            string
	DBSSLMode         string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	AutoMigrate       bool

	// JWT
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	// Sessions
	CheckSessions bool

	// Tenancy
	LastLoginUpdateTimeout time.Duration

	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	RequestLimits   RequestLimitsConfig
}

// RateLimitConfig holds per-group rate limits.
type RateLimitConfig struct {
	Enabled bool

	PublicRequestsPerWindow int
	PublicWindow            time.Duration

	APIRequestsPerWindow int
	APIWindow            time.Duration

	AdminRequestsPerWindow int
	AdminWindow            time.Duration
}

// SecurityHeadersConfig holds response security header settings.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RequestLimitsConfig bounds request sizes and durations.
type RequestLimitsConfig struct {
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

const minJWTSecretLen = 32

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr:      getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort:      getEnvInt("SERVER_PORT", 8080),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		// Database defaults
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnvInt("DB_PORT", 5432),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "voicehub"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBMaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DBConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		AutoMigrate:       getEnvBool("AUTO_MIGRATE", false),

		// JWT defaults
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "voicehub"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),

		CheckSessions: getEnvBool("SESSION_CHECK_ENABLED", true),

		LastLoginUpdateTimeout: getEnvDuration("LAST_LOGIN_UPDATE_TIMEOUT", 5*time.Second),

		RateLimit: RateLimitConfig{
			Enabled:                 getEnvBool("RATE_LIMIT_ENABLED", true),
			PublicRequestsPerWindow: getEnvInt("RATE_LIMIT_PUBLIC_REQUESTS", 60),
			PublicWindow:            getEnvDuration("RATE_LIMIT_PUBLIC_WINDOW", time.Minute),
			APIRequestsPerWindow:    getEnvInt("RATE_LIMIT_API_REQUESTS", 300),
			APIWindow:               getEnvDuration("RATE_LIMIT_API_WINDOW", time.Minute),
			AdminRequestsPerWindow:  getEnvInt("RATE_LIMIT_ADMIN_REQUESTS", 120),
			AdminWindow:             getEnvDuration("RATE_LIMIT_ADMIN_WINDOW", time.Minute),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'none'; frame-ancestors 'none'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_XSS_PROTECTION", "0"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "no-referrer"),
			PermissionsPolicy:  getEnv("SECURITY_PERMISSIONS_POLICY", ""),
		},

		RequestLimits: RequestLimitsConfig{
			MaxBodyBytes:   int64(getEnvInt("REQUEST_MAX_BODY_BYTES", 1<<20)),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minJWTSecretLen {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLen)
	}

	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.ServerAddr, c.ServerPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
