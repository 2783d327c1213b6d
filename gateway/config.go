package gateway

import (
	"os"
	"strconv"
	"time"

	"github.com/shopdesk/promocast/tg"
)

// Config holds gateway configuration.
type Config struct {
	// Bot token, required in direct mode.
	Token tg.SecretToken

	// API settings
	BaseURL        string
	RequestTimeout time.Duration
	KeepAlive      time.Duration
	MaxIdleConns   int
	IdleTimeout    time.Duration

	// Rate limiting
	GlobalRPS   float64
	GlobalBurst int

	// Circuit breaker
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration

	// Relay settings, required in relay mode.
	RelayURL        string
	RelayToken      tg.SecretToken
	RelayCredential string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:            "https://api.telegram.org",
		RequestTimeout:     30 * time.Second,
		KeepAlive:          30 * time.Second,
		MaxIdleConns:       100,
		IdleTimeout:        90 * time.Second,
		GlobalRPS:          30,
		GlobalBurst:        10,
		BreakerMaxRequests: 5,
		BreakerInterval:    60 * time.Second,
		BreakerTimeout:     30 * time.Second,
		RelayCredential:    "default",
	}
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	cfg.Token = tg.SecretToken(getEnv("PROMOCAST_BOT_TOKEN", ""))
	cfg.BaseURL = getEnv("PROMOCAST_API_URL", cfg.BaseURL)

	cfg.RelayURL = getEnv("PROMOCAST_RELAY_URL", "")
	cfg.RelayToken = tg.SecretToken(getEnv("PROMOCAST_RELAY_TOKEN", ""))
	cfg.RelayCredential = getEnv("PROMOCAST_RELAY_CREDENTIAL", cfg.RelayCredential)

	if d, err := time.ParseDuration(getEnv("PROMOCAST_REQUEST_TIMEOUT", "30s")); err == nil {
		cfg.RequestTimeout = d
	}
	if f, err := strconv.ParseFloat(getEnv("PROMOCAST_GLOBAL_RPS", "30"), 64); err == nil {
		cfg.GlobalRPS = f
	}
	if i, err := strconv.Atoi(getEnv("PROMOCAST_GLOBAL_BURST", "10")); err == nil {
		cfg.GlobalBurst = i
	}
	if i, err := strconv.ParseUint(getEnv("PROMOCAST_BREAKER_MAX_REQUESTS", "5"), 10, 32); err == nil {
		cfg.BreakerMaxRequests = uint32(i)
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_BREAKER_INTERVAL", "60s")); err == nil {
		cfg.BreakerInterval = d
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_BREAKER_TIMEOUT", "30s")); err == nil {
		cfg.BreakerTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for whichever mode it selects.
// A config with RelayURL set is a relay-mode config and does not need
// the bot token; a direct-mode config does.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return tg.NewConfigError("request_timeout", "must be positive")
	}
	if c.GlobalRPS < 0 {
		return tg.NewConfigError("global_rps", "cannot be negative")
	}
	if c.RelayURL != "" {
		if c.RelayToken.IsEmpty() {
			return tg.NewConfigError("relay_token", "is required in relay mode")
		}
		if c.RelayCredential == "" {
			return tg.NewConfigError("relay_credential", "is required in relay mode")
		}
		return nil
	}
	if c.Token.IsEmpty() {
		return tg.NewConfigError("token", "bot token is required in direct mode")
	}
	return nil
}

// UsesRelay reports whether the config selects the relay transport path.
func (c *Config) UsesRelay() bool { return c.RelayURL != "" }

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
