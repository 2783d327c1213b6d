package config

import (
	"context"
	"os"
	"time"

	"github.com/shopdesk/promocast/gateway"
	"github.com/shopdesk/promocast/schedule"
	"github.com/shopdesk/promocast/tg"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds the dispatcher service configuration.
type Config struct {
	// Gateway carries transport settings, including relay-mode selection.
	Gateway gateway.Config

	// Schedule store selection.
	StoreBackend string
	StorePath    string

	// ScheduleHorizon bounds how far ahead timers are armed.
	ScheduleHorizon time.Duration

	// RosterPath points at the YAML department roster.
	RosterPath string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Gateway:         gateway.DefaultConfig(),
		StoreBackend:    StoreFile,
		StorePath:       "promocast-schedule.json",
		ScheduleHorizon: schedule.DefaultHorizon,
		RosterPath:      "departments.yaml",
	}
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	gwCfg, err := gateway.LoadConfig()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Gateway = *gwCfg

	cfg.StoreBackend = getEnv("PROMOCAST_STORE_BACKEND", cfg.StoreBackend)
	cfg.StorePath = getEnv("PROMOCAST_STORE_PATH", cfg.StorePath)
	cfg.RosterPath = getEnv("PROMOCAST_ROSTER_PATH", cfg.RosterPath)

	if d, err := time.ParseDuration(getEnv("PROMOCAST_SCHEDULE_HORIZON", "24h")); err == nil {
		cfg.ScheduleHorizon = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the service-level settings. Gateway settings are
// validated by gateway.Config itself.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreFile, StoreSQLite:
	default:
		return tg.NewConfigError("store_backend", "must be 'file' or 'sqlite'")
	}
	if c.StorePath == "" {
		return tg.NewConfigError("store_path", "is required")
	}
	if c.ScheduleHorizon <= 0 {
		return tg.NewConfigError("schedule_horizon", "must be positive")
	}
	return nil
}

// OpenStore builds and initializes the configured schedule store.
func (c *Config) OpenStore(ctx context.Context) (schedule.Store, error) {
	var store schedule.Store
	switch c.StoreBackend {
	case StoreSQLite:
		store = schedule.NewSQLiteStore(c.StorePath)
	default:
		store = schedule.NewFileStore(c.StorePath)
	}
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
