// Package config loads the CLI configuration from PATHFS_* environment
// variables.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/pathfs/pkg/pathfs"
	"github.com/arthur-debert/pathfs/pkg/pathfs/permissions"
)

// Prefix is prepended to every variable name.
const Prefix = "PATHFS"

// Config holds the CLI configuration.
type Config struct {
	// LogLevel applies when no -v flag is given.
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	// Concurrency bounds the sibling copies CopyTree runs at once.
	Concurrency int `envconfig:"CONCURRENCY" default:"1"`
	// FallbackMode is used as the default permissions when the platform has
	// no umask.
	FallbackMode string `envconfig:"FALLBACK_MODE" default:"0755"`
	NoColor      bool   `envconfig:"NO_COLOR" default:"false"`
}

// Load reads the configuration from the environment and checks it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("invalid %s_LOG_LEVEL: %w", Prefix, err)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid %s_CONCURRENCY: %d, must be at least 1", Prefix, c.Concurrency)
	}
	if _, err := c.Fallback(); err != nil {
		return fmt.Errorf("invalid %s_FALLBACK_MODE: %w", Prefix, err)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (zerolog.Level, error) {
	return pathfs.LogLevelFromString(c.LogLevel)
}

// Fallback parses FallbackMode.
func (c *Config) Fallback() (permissions.Permissions, error) {
	return permissions.Parse(c.FallbackMode)
}
