package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Listing API (the booking-platform backend the wizard submits to)
	ListingAPIBaseURL string
	ListingAPIKey     string

	// Auth
	JWTSecret string

	// Database (optional; the wizard degrades to in-memory session storage without it)
	DatabaseURL string

	// Session storage
	SessionQuotaBytes int64
	SessionTTL        time.Duration

	// Server
	Port        string
	Environment string
	BaseURL     string
}

func Load() (*Config, error) {
	cfg := &Config{
		ListingAPIBaseURL: getEnv("LISTING_API_BASE_URL", ""),
		ListingAPIKey:     getEnv("LISTING_API_KEY", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		SessionQuotaBytes: getEnvInt64("SESSION_QUOTA_BYTES", 5<<20),
		SessionTTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.ListingAPIBaseURL == "" {
		return fmt.Errorf("LISTING_API_BASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.SessionQuotaBytes <= 0 {
		return fmt.Errorf("SESSION_QUOTA_BYTES must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
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
