// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

// Package config holds the daemon's layered configuration: built-in
// defaults, an optional YAML file, and SHELFWISE_-prefixed environment
// variables, in rising precedence.
package config

import (
	"fmt"

	"github.com/shelfwise/shelfwise/internal/recommend"
	"github.com/shelfwise/shelfwise/internal/safety"
	"github.com/shelfwise/shelfwise/internal/scheduler"
)

// Config is the root configuration.
type Config struct {
	Database  DatabaseConfig   `koanf:"database"`
	Logging   LoggingConfig    `koanf:"logging"`
	Metrics   MetricsConfig    `koanf:"metrics"`
	Engine    recommend.Config `koanf:"engine"`
	Safety    SafetyConfig     `koanf:"safety"`
	Scheduler scheduler.Config `koanf:"scheduler"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path        string `koanf:"path"`
	MaxMemory   string `koanf:"max_memory"`
	Threads     int    `koanf:"threads"`      // 0 = use NumCPU
	SkipIndexes bool   `koanf:"skip_indexes"` // Skip index creation (fast test setup)
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, console
	Caller bool   `koanf:"caller"`
}

// MetricsConfig holds the Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// SafetyConfig holds the content-safety collaborator settings. With
// Enabled false the engine uses the pass-through filter.
type SafetyConfig struct {
	Enabled bool                 `koanf:"enabled"`
	Breaker safety.BreakerConfig `koanf:"breaker"`
}

// defaultConfig returns the built-in defaults, the lowest configuration
// layer.
func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path:      "data/shelfwise.db",
			MaxMemory: "2GB",
			Threads:   0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Engine:    recommend.DefaultConfig(),
		Safety:    SafetyConfig{Enabled: false, Breaker: safety.DefaultBreakerConfig()},
		Scheduler: scheduler.DefaultConfig(),
	}
}

// Validate checks configuration invariants across all sections.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database: path must not be empty")
	}
	if err := validateLogging(&c.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics: addr must not be empty when enabled")
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %v", c.Scheduler.Interval)
	}
	return nil
}

func validateLogging(c *LoggingConfig) error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
