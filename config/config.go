package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerPort        = 8080
	defaultTokenTTL          = 24 * time.Hour
	defaultRestWindowMinutes = 30
)

// Config holds every runtime setting, sourced from the environment.
type Config struct {
	DatabaseURL string
	ServerPort  int

	JWTSecretKey string
	TokenTTL     time.Duration

	// DefaultRestWindowMinutes seeds new tournaments that do not specify
	// their own rest window.
	DefaultRestWindowMinutes int

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads the environment, optionally seeded from a .env file. A missing
// .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}
	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := intEnv("SERVER_PORT", defaultServerPort)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	ttl := defaultTokenTTL
	if raw := os.Getenv("TOKEN_TTL"); raw != "" {
		ttl, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TOKEN_TTL environment variable: %w", err)
		}
	}

	restWindow, err := intEnv("DEFAULT_REST_WINDOW_MINUTES", defaultRestWindowMinutes)
	if err != nil {
		return nil, err
	}
	if restWindow < 0 {
		return nil, fmt.Errorf("DEFAULT_REST_WINDOW_MINUTES cannot be negative, got %d", restWindow)
	}

	return &Config{
		DatabaseURL:              dbURL,
		ServerPort:               port,
		JWTSecretKey:             jwtKey,
		TokenTTL:                 ttl,
		DefaultRestWindowMinutes: restWindow,
		R2AccountID:              os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:            os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:        os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:             os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:          os.Getenv("R2_PUBLIC_BASE_URL"),
	}, nil
}

func intEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
