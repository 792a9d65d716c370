package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Token signing
	JWTSecret string
	TokenTTL  time.Duration

	// External employee directory
	Directory DirectoryConfig

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Login throttling
	LoginRateLimit int
	LoginBurst     int

	// Password hashing
	BcryptCost int
}

// DirectoryConfig holds the external employee directory settings
type DirectoryConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		TokenTTL:    getDurationEnv("JWT_TTL", time.Hour),
		Directory: DirectoryConfig{
			BaseURL: getEnv("DIRECTORY_BASE_URL", ""),
			APIKey:  getEnv("DIRECTORY_API_KEY", ""),
			Timeout: getDurationEnv("DIRECTORY_TIMEOUT", 10*time.Second),
		},
		Port:           getEnv("PORT", "8080"),
		CORSOrigins:    strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ","),
		Env:            getEnv("ENV", "development"),
		LoginRateLimit: getIntEnv("LOGIN_RATE_LIMIT", 30),
		LoginBurst:     getIntEnv("LOGIN_BURST", 5),
		BcryptCost:     getIntEnv("BCRYPT_COST", 10),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Directory.BaseURL == "" {
		return fmt.Errorf("DIRECTORY_BASE_URL is required")
	}
	if c.Directory.APIKey == "" {
		return fmt.Errorf("DIRECTORY_API_KEY is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
