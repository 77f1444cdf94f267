package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Port        string

	// Optional integrations. Empty values leave the feature switched off.
	SessionSecret  string
	RedisURL       string
	DatabaseURL    string
	SendgridAPIKey string
	NotifyFrom     string

	// TrustProxy makes X-Forwarded-For the client address. Only set it when a
	// reverse proxy in front of the server overwrites that header.
	TrustProxy bool

	LoginIPLimit     int
	LoginMaxFailures int
	LoginLockout     time.Duration
}

// LoadConfig reads the environment, loading a .env file first outside production.
// The returned bool reports whether a .env file was loaded.
func LoadConfig() (*Config, bool, error) {
	loadedDotenv := false
	if os.Getenv("APP_ENV") != "production" {
		loadedDotenv = godotenv.Load() == nil
	}

	cfg := &Config{
		Environment:    getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		RedisURL:       os.Getenv("REDIS_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SendgridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		NotifyFrom:     getEnv("NOTIFY_FROM", "donotreply@example.com"),
	}

	var err error
	if cfg.TrustProxy, err = getEnvBool("TRUST_PROXY", false); err != nil {
		return nil, loadedDotenv, err
	}
	if cfg.LoginIPLimit, err = getEnvInt("LOGIN_IP_LIMIT", 30); err != nil {
		return nil, loadedDotenv, err
	}
	if cfg.LoginMaxFailures, err = getEnvInt("LOGIN_MAX_FAILURES", 5); err != nil {
		return nil, loadedDotenv, err
	}
	lockout := getEnv("LOGIN_LOCKOUT", "15m")
	if cfg.LoginLockout, err = time.ParseDuration(lockout); err != nil {
		return nil, loadedDotenv, fmt.Errorf("invalid LOGIN_LOCKOUT %q: %w", lockout, err)
	}
	if cfg.LoginIPLimit < 0 || cfg.LoginMaxFailures < 0 || cfg.LoginLockout < 0 {
		return nil, loadedDotenv, fmt.Errorf("login limits must not be negative")
	}
	if cfg.LoginMaxFailures > 0 && cfg.LoginLockout == 0 {
		return nil, loadedDotenv, fmt.Errorf("LOGIN_LOCKOUT must be positive when LOGIN_MAX_FAILURES is set")
	}

	return cfg, loadedDotenv, nil
}

// IsProduction gates the Secure cookie flag
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}
