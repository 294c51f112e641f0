package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the portal
type Config struct {
	Server Server
	API    API
	Redis  Redis
	Shell  Shell
}

// Server holds HTTP server configuration
type Server struct {
	Host string
	Port int
}

// API holds remote camp API configuration
type API struct {
	BaseURL string
	Key     string
	Timeout time.Duration
	// Fixture, when set, serves settings from a local YAML file instead of
	// the remote API.
	Fixture string
}

// Redis holds the UI-state store configuration. An empty address falls back
// to the in-memory store.
type Redis struct {
	Address  string
	Password string
	DB       int
	StateTTL time.Duration
}

// Shell holds app-shell cache configuration
type Shell struct {
	Version  string
	Precache []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: Server{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		API: API{
			BaseURL: getEnv("CAMP_API_URL", ""),
			Key:     getEnv("CAMP_API_KEY", ""),
			Timeout: getEnvAsDuration("CAMP_API_TIMEOUT", 15*time.Second),
			Fixture: getEnv("SETTINGS_FIXTURE", ""),
		},
		Redis: Redis{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			StateTTL: getEnvAsDuration("STATE_TTL", 24*time.Hour),
		},
		Shell: Shell{
			Version:  getEnv("SHELL_VERSION", "v1"),
			Precache: getEnvAsList("SHELL_PRECACHE", []string{"/", "/static/app.js"}),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.API.BaseURL == "" && c.API.Fixture == "" {
		return fmt.Errorf("either CAMP_API_URL or SETTINGS_FIXTURE is required")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("invalid api timeout: %s", c.API.Timeout)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value, exists := os.LookupEnv(key); exists {
		var out []string
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
