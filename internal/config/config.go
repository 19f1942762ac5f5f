// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration values for the whale watcher.
type Config struct {
	// Polymarket data API (trade history)
	DataAPIURL   string        `default:"https://data-api.polymarket.com" validate:"required,url"`
	PageSize     int           `default:"500" validate:"gt=0,lte=10000"`
	FetchTimeout time.Duration `default:"10s" validate:"gt=0"`

	// Refresh cycle
	RefreshInterval time.Duration `default:"30s" validate:"gte=1s"`

	// Detection threshold
	MinValueUSD float64 `default:"1000" validate:"gt=0"`

	// Stream nudge (CLOB websocket)
	EnableStreamNudge bool
	PolymarketWSURL   string        `default:"wss://ws-subscriptions-clob.polymarket.com/ws/" validate:"required_if=EnableStreamNudge true"`
	GammaAPIURL       string        `default:"https://gamma-api.polymarket.com/markets" validate:"required_if=EnableStreamNudge true"`
	StreamMarketLimit int           `default:"100" validate:"gt=0"`
	StreamNudgeGap    time.Duration `default:"5s" validate:"gte=0"`

	// Metrics (0 disables the scrape listener)
	MetricsPort int `default:"0" validate:"gte=0,lte=65535"`

	// UI
	EnableTUI bool `default:"true"`

	// Logging
	LogLevel string `default:"info" validate:"oneof=debug info warn error"`
	LogFile  string
}

var validate = validator.New()

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > struct tag defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	cfg.DataAPIURL = getEnv("DATA_API_URL", cfg.DataAPIURL)
	cfg.PageSize = getEnvInt("PAGE_SIZE", cfg.PageSize)
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.RefreshInterval = getEnvDuration("REFRESH_INTERVAL", cfg.RefreshInterval)
	cfg.MinValueUSD = getEnvFloat("MIN_VALUE_USD", cfg.MinValueUSD)

	cfg.EnableStreamNudge = getEnvBool("ENABLE_STREAM_NUDGE", cfg.EnableStreamNudge)
	cfg.PolymarketWSURL = getEnv("POLYMARKET_WS_URL", cfg.PolymarketWSURL)
	cfg.GammaAPIURL = getEnv("GAMMA_API_URL", cfg.GammaAPIURL)
	cfg.StreamMarketLimit = getEnvInt("STREAM_MARKET_LIMIT", cfg.StreamMarketLimit)
	cfg.StreamNudgeGap = getEnvDuration("STREAM_NUDGE_GAP", cfg.StreamNudgeGap)

	cfg.MetricsPort = getEnvInt("METRICS_PORT", cfg.MetricsPort)
	cfg.EnableTUI = getEnvBool("ENABLE_TUI", cfg.EnableTUI)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	if cfg.EnableTUI && cfg.LogFile == "" {
		cfg.LogFile = "whalewatch.log"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}

// MaskedDataAPIURL returns the data API URL with any query string or user info hidden.
func (c *Config) MaskedDataAPIURL() string {
	return maskURL(c.DataAPIURL)
}

// maskURL strips credentials and query parameters, which is where API keys end up.
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return maskSecret(raw)
	}
	if u.User != nil {
		u.User = url.User("****")
	}
	if u.RawQuery != "" {
		u.RawQuery = "****"
	}
	return u.String()
}

// maskSecret hides all but the first and last 4 characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 8 {
		if len(s) == 0 {
			return "(not set)"
		}
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration retrieves an environment variable as a duration ("30s", "2m").
// A bare integer is read as seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return defaultValue
}
