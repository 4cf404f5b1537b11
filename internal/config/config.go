// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	DocDB      DocDBConfig
	Cache      CacheConfig
	OpenRouter OpenRouterConfig
	Identity   IdentityConfig
	RateLimit  RateLimitConfig
	Stream     StreamConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type     string
	URI      string
	Database string
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Type     string
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// OpenRouterConfig holds upstream provider configuration.
type OpenRouterConfig struct {
	BaseURL string
	APIKey  string
	Referer string
	Title   string
	Timeout time.Duration
}

// IdentityConfig holds the token-verifier service configuration.
type IdentityConfig struct {
	URL     string
	Timeout time.Duration
}

// RateLimitConfig holds request rate-limit configuration.
type RateLimitConfig struct {
	Enabled     bool
	MaxRequests int
	Window      time.Duration
}

// StreamConfig holds streaming-exchange configuration.
type StreamConfig struct {
	// Timeout bounds one whole streamed exchange, upstream reads and
	// persistence included.
	Timeout time.Duration
	// PersistOnDisconnect keeps draining the upstream after the client
	// goes away and persists the completed assistant message. When false
	// the exchange is aborted on the first failed write.
	PersistOnDisconnect bool
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvAsInt("SERVER_PORT", 8080),
			GinMode: getEnv("GIN_MODE", "debug"),
		},
		DocDB: DocDBConfig{
			Type:     getEnv("DOCDB_TYPE", "mongodb"),
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "streamchat"),
		},
		Cache: CacheConfig{
			Type:     getEnv("CACHE_TYPE", "redis"),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
		},
		OpenRouter: OpenRouterConfig{
			BaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:  getEnv("OPENROUTER_API_KEY", ""),
			Referer: getEnv("OPENROUTER_REFERER", ""),
			Title:   getEnv("OPENROUTER_TITLE", "streamchat"),
			Timeout: time.Duration(getEnvAsInt("OPENROUTER_TIMEOUT_SECONDS", 300)) * time.Second,
		},
		Identity: IdentityConfig{
			URL:     getEnv("IDENTITY_SERVICE_URL", "http://localhost:8081"),
			Timeout: time.Duration(getEnvAsInt("IDENTITY_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:     getEnvAsBool("RATE_LIMIT_ENABLED", true),
			MaxRequests: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 60),
			Window:      time.Duration(getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		Stream: StreamConfig{
			Timeout:             time.Duration(getEnvAsInt("STREAM_TIMEOUT_SECONDS", 300)) * time.Second,
			PersistOnDisconnect: getEnvAsBool("STREAM_PERSIST_ON_DISCONNECT", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
