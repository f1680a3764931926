package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		ServerAddr:         ":8080",
		BaseURL:            "http://localhost:8080",
		JWTSecret:          "test-secret",
		TokenExpiration:    30 * time.Minute,
		SessionSecret:      "session-secret",
		SessionExpiration:  24 * time.Hour,
		AuthCodeExpiration: 10 * time.Minute,
		DatabaseDriver:     "sqlite",
		DatabaseDSN:        ":memory:",
		CacheMode:          CacheModeMemory,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid memory cache",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name: "valid redis cache",
			mutate: func(c *Config) {
				c.CacheMode = CacheModeRedis
				c.RedisAddr = "localhost:6379"
			},
			expectError: false,
		},
		{
			name:        "invalid cache mode - typo",
			mutate:      func(c *Config) { c.CacheMode = "reddis" },
			expectError: true,
			errorMsg:    `invalid CACHE_MODE value: "reddis"`,
		},
		{
			name:        "invalid cache mode - uppercase",
			mutate:      func(c *Config) { c.CacheMode = "MEMORY" },
			expectError: true,
			errorMsg:    `invalid CACHE_MODE value: "MEMORY"`,
		},
		{
			name: "redis cache requires address",
			mutate: func(c *Config) {
				c.CacheMode = CacheModeRedis
				c.RedisAddr = ""
			},
			expectError: true,
			errorMsg:    "REDIS_ADDR is required",
		},
		{
			name: "postgres requires DSN",
			mutate: func(c *Config) {
				c.DatabaseDriver = "postgres"
				c.DatabaseDSN = ""
			},
			expectError: true,
			errorMsg:    "DATABASE_DSN is required",
		},
		{
			name:        "empty JWT secret",
			mutate:      func(c *Config) { c.JWTSecret = "" },
			expectError: true,
			errorMsg:    "JWT_SECRET must not be empty",
		},
		{
			name:        "non-positive token expiration",
			mutate:      func(c *Config) { c.TokenExpiration = 0 },
			expectError: true,
			errorMsg:    "TOKEN_EXPIRATION must be positive",
		},
		{
			name:        "non-positive session expiration",
			mutate:      func(c *Config) { c.SessionExpiration = -time.Minute },
			expectError: true,
			errorMsg:    "SESSION_EXPIRATION must be positive",
		},
		{
			name:        "non-positive code expiration",
			mutate:      func(c *Config) { c.AuthCodeExpiration = 0 },
			expectError: true,
			errorMsg:    "AUTH_CODE_EXPIRATION must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 30*time.Minute, cfg.TokenExpiration)
	assert.Equal(t, 24*time.Hour, cfg.SessionExpiration)
	assert.Equal(t, 10*time.Minute, cfg.AuthCodeExpiration)
	assert.Equal(t, CacheModeMemory, cfg.CacheMode)
	assert.NoError(t, cfg.Validate())
}

func TestGetEnvDuration(t *testing.T) {
	t.Run("Valid duration from environment", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "45m")
		assert.Equal(t, 45*time.Minute, getEnvDuration("TEST_DURATION", time.Hour))
	})

	t.Run("Invalid duration falls back to default", func(t *testing.T) {
		t.Setenv("TEST_DURATION", "not-a-duration")
		assert.Equal(t, time.Hour, getEnvDuration("TEST_DURATION", time.Hour))
	})

	t.Run("Unset returns default", func(t *testing.T) {
		assert.Equal(t, time.Hour, getEnvDuration("TEST_DURATION_UNSET", time.Hour))
	})
}
