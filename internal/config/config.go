package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Cache backend mode constants
const (
	CacheModeMemory = "memory"
	CacheModeRedis  = "redis"
)

type Config struct {
	// Server settings
	ServerAddr string
	BaseURL    string

	// JWT settings
	JWTSecret       string
	TokenExpiration time.Duration // access token lifetime (default: 30m)

	// Session settings
	SessionSecret     string        // signs the browser flow/CSRF cookie
	SessionExpiration time.Duration // login session lifetime (default: 24h)
	SecureCookies     bool          // set Secure on the session_id cookie

	// Authorization code settings
	AuthCodeExpiration time.Duration // default: 10m

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string // Database connection string (DSN or path)

	// Cache
	CacheMode      string // "memory" or "redis"
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	CacheKeyPrefix string
	ClientCacheTTL time.Duration // client registry lookup cache TTL

	// Metrics
	EnableMetrics bool

	// Background cleanup
	CleanupInterval   time.Duration // expired row sweep period (default: 10m)
	AuditLogRetention time.Duration // audit rows older than this are pruned daily (default: 90d)
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	// Determine database driver and DSN
	driver := getEnv("DATABASE_DRIVER", "sqlite")
	var dsn string
	if driver == "sqlite" {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "docshub.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:        getEnv("SERVER_ADDR", ":8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		JWTSecret:         getEnv("JWT_SECRET", "your-256-bit-secret-change-in-production"),
		TokenExpiration:   getEnvDuration("TOKEN_EXPIRATION", 30*time.Minute),
		SessionSecret:     getEnv("SESSION_SECRET", "session-secret-change-in-production"),
		SessionExpiration: getEnvDuration("SESSION_EXPIRATION", 24*time.Hour),
		SecureCookies:     getEnvBool("SECURE_COOKIES", true),

		AuthCodeExpiration: getEnvDuration("AUTH_CODE_EXPIRATION", 10*time.Minute),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,

		CacheMode:      getEnv("CACHE_MODE", CacheModeMemory),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		CacheKeyPrefix: getEnv("CACHE_KEY_PREFIX", "docshub:"),
		ClientCacheTTL: getEnvDuration("CLIENT_CACHE_TTL", time.Minute),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),

		CleanupInterval:   getEnvDuration("CLEANUP_INTERVAL", 10*time.Minute),
		AuditLogRetention: getEnvDuration("AUDIT_LOG_RETENTION", 90*24*time.Hour),
	}
}

// Validate checks configuration consistency before the server boots
func (c *Config) Validate() error {
	switch c.CacheMode {
	case CacheModeMemory, CacheModeRedis:
	default:
		return fmt.Errorf("invalid CACHE_MODE value: %q (must be %q or %q)",
			c.CacheMode, CacheModeMemory, CacheModeRedis)
	}

	if c.CacheMode == CacheModeRedis && c.RedisAddr == "" {
		return fmt.Errorf("REDIS_ADDR is required when CACHE_MODE is %q", CacheModeRedis)
	}

	if c.DatabaseDriver != "sqlite" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for driver %q", c.DatabaseDriver)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}

	if c.TokenExpiration <= 0 {
		return fmt.Errorf("TOKEN_EXPIRATION must be positive, got %s", c.TokenExpiration)
	}
	if c.SessionExpiration <= 0 {
		return fmt.Errorf("SESSION_EXPIRATION must be positive, got %s", c.SessionExpiration)
	}
	if c.AuthCodeExpiration <= 0 {
		return fmt.Errorf("AUTH_CODE_EXPIRATION must be positive, got %s", c.AuthCodeExpiration)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
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
