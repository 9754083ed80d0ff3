// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package safety

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/shelfwise/shelfwise/internal/metrics"
	"github.com/shelfwise/shelfwise/internal/recommend"
)

// BreakerConfig configures the circuit breaker around the safety
// collaborator.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string `json:"name" koanf:"name"`

	// MaxRequests is how many probe requests pass through half-open.
	MaxRequests uint32 `json:"max_requests" koanf:"max_requests"`

	// Interval is the closed-state counter reset period.
	Interval time.Duration `json:"interval" koanf:"interval"`

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// FailureThreshold is the consecutive failure count that trips the
	// breaker.
	FailureThreshold uint32 `json:"failure_threshold" koanf:"failure_threshold"`
}

// DefaultBreakerConfig returns breaker defaults suited to a same-cluster
// collaborator.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "content-safety",
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// Breaker decorates a safety filter with circuit-breaker protection.
//
// Recommendation availability outranks filtering here: when the inner
// filter fails or the circuit is open, Breaker fails OPEN, passing all
// candidates through with a warning. The serving layer applies its own
// presentation rules and the failure is visible in metrics.
type Breaker struct {
	inner  recommend.SafetyFilter
	cb     *gobreaker.CircuitBreaker[[]int64]
	logger zerolog.Logger
}

// NewBreaker wraps inner with a circuit breaker. Uses the gobreaker v2
// generic API with the allowed-IDs slice as the result type.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreaker(inner recommend.SafetyFilter, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	componentLogger := logger.With().Str("component", "safety-breaker").Logger()

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			componentLogger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("safety breaker state changed")
			metrics.SafetyBreakerState.Set(breakerStateValue(to))
		},
	}

	return &Breaker{
		inner:  inner,
		cb:     gobreaker.NewCircuitBreaker[[]int64](settings),
		logger: componentLogger,
	}
}

// Filter implements recommend.SafetyFilter. Failures and open-circuit
// rejections return the unfiltered candidate list.
func (b *Breaker) Filter(ctx context.Context, readerID int64, bookIDs []int64) ([]int64, error) {
	allowed, err := b.cb.Execute(func() ([]int64, error) {
		return b.inner.Filter(ctx, readerID, bookIDs)
	})
	if err != nil {
		metrics.SafetyFilterFailures.Inc()
		b.logger.Warn().
			Err(err).
			Int64("reader_id", readerID).
			Int("candidates", len(bookIDs)).
			Str("state", b.cb.State().String()).
			Msg("safety filter failed open")
		return bookIDs, nil
	}
	return allowed, nil
}

// State returns the breaker's current state for health reporting.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

var _ recommend.SafetyFilter = (*Breaker)(nil)
