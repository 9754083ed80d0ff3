// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package recommend

import "fmt"

// Config contains all configuration for the recommendation core.
type Config struct {
	// Popularity contains parameters for the popularity Ranker.
	Popularity PopularityConfig `json:"popularity" koanf:"popularity"`

	// Scorer contains parameters for the recommendation Scorer.
	Scorer ScorerConfig `json:"scorer" koanf:"scorer"`
}

// PopularityConfig contains parameters for the popularity Ranker.
type PopularityConfig struct {
	// Limit is the size of the committed ranking.
	// Default: 10.
	Limit int `json:"limit" koanf:"limit"`

	// DecayMidpointDays is where the logistic decay crosses 0.5.
	// A book keeps most of its score until roughly this age, then drops
	// off. Default: 14.
	DecayMidpointDays float64 `json:"decay_midpoint_days" koanf:"decay_midpoint_days"`

	// DecayScaleDays controls how sharp the drop-off is around the
	// midpoint. Default: 2.
	DecayScaleDays float64 `json:"decay_scale_days" koanf:"decay_scale_days"`
}

// ScorerConfig contains parameters for the recommendation Scorer.
type ScorerConfig struct {
	// PoolSize is the relevance-ordered slice the final sample is drawn
	// from. Default: 40.
	PoolSize int `json:"pool_size" koanf:"pool_size"`

	// SampleSize is how many books one invocation returns.
	// Default: 7.
	SampleSize int `json:"sample_size" koanf:"sample_size"`

	// Seed fixes the sampling random source. Zero means seed from the
	// clock: production output stays fresh between identical requests
	// while tests can pin a seed for reproducibility.
	Seed int64 `json:"seed" koanf:"seed"`
}

// DefaultConfig returns the default core configuration.
func DefaultConfig() Config {
	return Config{
		Popularity: PopularityConfig{
			Limit:             10,
			DecayMidpointDays: 14,
			DecayScaleDays:    2,
		},
		Scorer: ScorerConfig{
			PoolSize:   40,
			SampleSize: 7,
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if err := c.Popularity.Validate(); err != nil {
		return fmt.Errorf("popularity: %w", err)
	}
	if err := c.Scorer.Validate(); err != nil {
		return fmt.Errorf("scorer: %w", err)
	}
	return nil
}

// Validate checks Ranker parameters.
func (c *PopularityConfig) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.DecayMidpointDays <= 0 {
		return fmt.Errorf("decay_midpoint_days must be positive, got %g", c.DecayMidpointDays)
	}
	if c.DecayScaleDays <= 0 {
		return fmt.Errorf("decay_scale_days must be positive, got %g", c.DecayScaleDays)
	}
	return nil
}

// Validate checks Scorer parameters.
func (c *ScorerConfig) Validate() error {
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive, got %d", c.PoolSize)
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("sample_size must be positive, got %d", c.SampleSize)
	}
	if c.SampleSize > c.PoolSize {
		return fmt.Errorf("sample_size %d exceeds pool_size %d", c.SampleSize, c.PoolSize)
	}
	return nil
}
