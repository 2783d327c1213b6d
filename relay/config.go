package relay

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopdesk/promocast/tg"
)

// Config holds relay server configuration. Credentials maps the names
// clients are allowed to reference onto the long-lived bot tokens; the
// tokens never leave this process.
type Config struct {
	// Bearer token clients must present.
	BearerToken tg.SecretToken

	// Named bot credentials.
	Credentials map[string]tg.SecretToken

	// Platform base URL forwarded operations go to.
	BaseURL string

	// Server
	Port              int
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration

	// Request handling
	RateLimitRequests float64
	RateLimitBurst    int
	MaxBodySize       int64

	// Circuit breaker
	BreakerMaxRequests uint32
	BreakerInterval    time.Duration
	BreakerTimeout     time.Duration

	// Shutdown
	DrainDelay      time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Credentials:        make(map[string]tg.SecretToken),
		BaseURL:            "https://api.telegram.org",
		Port:               8085,
		ReadTimeout:        10 * time.Second,
		ReadHeaderTimeout:  2 * time.Second,
		WriteTimeout:       30 * time.Second,
		IdleTimeout:        120 * time.Second,
		RateLimitRequests:  20,
		RateLimitBurst:     40,
		MaxBodySize:        1 << 20, // 1MB
		BreakerMaxRequests: 5,
		BreakerInterval:    2 * time.Minute,
		BreakerTimeout:     60 * time.Second,
		DrainDelay:         5 * time.Second,
		ShutdownTimeout:    15 * time.Second,
	}
}

// LoadConfig loads configuration from environment variables.
//
// Credentials come from PROMOCAST_RELAY_CREDENTIALS as comma-separated
// name=token pairs, e.g. "default=123:ABC,marketing=456:DEF".
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	cfg.BearerToken = tg.SecretToken(getEnv("PROMOCAST_RELAY_BEARER_TOKEN", ""))
	cfg.BaseURL = getEnv("PROMOCAST_API_URL", cfg.BaseURL)

	if raw := getEnv("PROMOCAST_RELAY_CREDENTIALS", ""); raw != "" {
		for _, pair := range strings.Split(raw, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			name, token, ok := strings.Cut(pair, "=")
			if !ok || name == "" || token == "" {
				return nil, tg.NewValidationError("PROMOCAST_RELAY_CREDENTIALS", "entries must be name=token")
			}
			cfg.Credentials[name] = tg.SecretToken(token)
		}
	}

	if port, err := strconv.Atoi(getEnv("PROMOCAST_RELAY_PORT", "8085")); err == nil {
		cfg.Port = port
	}

	if f, err := strconv.ParseFloat(getEnv("PROMOCAST_RELAY_RATE_LIMIT", "20"), 64); err == nil {
		cfg.RateLimitRequests = f
	}
	if i, err := strconv.Atoi(getEnv("PROMOCAST_RELAY_RATE_BURST", "40")); err == nil {
		cfg.RateLimitBurst = i
	}
	if i, err := strconv.ParseInt(getEnv("PROMOCAST_RELAY_MAX_BODY_SIZE", "1048576"), 10, 64); err == nil {
		cfg.MaxBodySize = i
	}

	if i, err := strconv.ParseUint(getEnv("PROMOCAST_RELAY_BREAKER_MAX_REQUESTS", "5"), 10, 32); err == nil {
		cfg.BreakerMaxRequests = uint32(i)
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_BREAKER_INTERVAL", "2m")); err == nil {
		cfg.BreakerInterval = d
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_BREAKER_TIMEOUT", "60s")); err == nil {
		cfg.BreakerTimeout = d
	}

	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_READ_TIMEOUT", "10s")); err == nil {
		cfg.ReadTimeout = d
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_READ_HEADER_TIMEOUT", "2s")); err == nil {
		cfg.ReadHeaderTimeout = d
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_WRITE_TIMEOUT", "30s")); err == nil {
		cfg.WriteTimeout = d
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_IDLE_TIMEOUT", "120s")); err == nil {
		cfg.IdleTimeout = d
	}

	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_DRAIN_DELAY", "5s")); err == nil {
		cfg.DrainDelay = d
	}
	if d, err := time.ParseDuration(getEnv("PROMOCAST_RELAY_SHUTDOWN_TIMEOUT", "15s")); err == nil {
		cfg.ShutdownTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.BearerToken.IsEmpty() {
		return ErrBearerRequired
	}
	if len(c.Credentials) == 0 {
		return ErrNoCredentials
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
