// Package config loads runtime settings from FPA_* environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/vinodismyname/fpacopilot/config"
)

// Prefix is the environment variable prefix for every setting.
const Prefix = "FPA"

// Config represents the server's runtime configuration.
type Config struct {
	AllowedDirs           string        `envconfig:"ALLOWED_DIRS"`
	EnableExports         bool          `envconfig:"ENABLE_EXPORTS" default:"false"`
	LogLevel              string        `envconfig:"LOG_LEVEL" default:"info"`
	MaxConcurrentRequests int           `envconfig:"MAX_CONCURRENT_REQUESTS"`
	MaxOpenDatasets       int           `envconfig:"MAX_OPEN_DATASETS"`
	DatasetTTL            time.Duration `envconfig:"DATASET_TTL"`
	OperationTimeout      time.Duration `envconfig:"OPERATION_TIMEOUT"`
	MetricsAddr           string        `envconfig:"METRICS_ADDR"`
}

// Load reads configuration from the environment and fills unset values from
// the compiled defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = config.DefaultMaxConcurrentRequests
	}
	if c.MaxOpenDatasets <= 0 {
		c.MaxOpenDatasets = config.DefaultMaxOpenDatasets
	}
	if c.DatasetTTL <= 0 {
		c.DatasetTTL = config.DefaultDatasetIdleTTL
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = config.DefaultOperationTimeout
	}
}

func (c *Config) validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}

// Level returns the configured zerolog level.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// AllowList splits AllowedDirs on the OS path list separator.
func (c *Config) AllowList() []string {
	if strings.TrimSpace(c.AllowedDirs) == "" {
		return nil
	}
	return filepath.SplitList(c.AllowedDirs)
}
