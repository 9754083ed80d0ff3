// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

// Package scheduler runs the popularity recompute as a supervised batch
// service.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"

	"github.com/shelfwise/shelfwise/internal/metrics"
	"github.com/shelfwise/shelfwise/internal/recommend"
)

// PopularityRanker is the part of the recommendation core the scheduler
// drives. Satisfied by *recommend.Ranker.
type PopularityRanker interface {
	Run(ctx context.Context) ([]recommend.PopularityEntry, error)
}

// Config holds ranking schedule configuration.
type Config struct {
	// RunOnStartup triggers a recompute when the service starts.
	RunOnStartup bool `json:"run_on_startup" koanf:"run_on_startup"`

	// Interval is how often to recompute the ranking.
	// Default: 24h (nightly).
	Interval time.Duration `json:"interval" koanf:"interval"`

	// RunTimeout bounds a single recompute.
	// Default: 5m.
	RunTimeout time.Duration `json:"run_timeout" koanf:"run_timeout"`
}

// DefaultConfig returns the nightly-recompute defaults.
func DefaultConfig() Config {
	return Config{
		RunOnStartup: true,
		Interval:     24 * time.Hour,
		RunTimeout:   5 * time.Minute,
	}
}

// Service wraps the popularity ranker for suture supervision. It manages
// the recompute lifecycle: optional run on startup, then ticker-driven
// reruns until the supervisor cancels the context.
type Service struct {
	ranker PopularityRanker
	cfg    Config
	logger zerolog.Logger
	name   string
}

// NewService creates a new ranking schedule service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(ranker PopularityRanker, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 5 * time.Minute
	}

	return &Service{
		ranker: ranker,
		cfg:    cfg,
		logger: logger.With().Str("service", "ranking-schedule").Logger(),
		name:   "ranking-schedule",
	}
}

// Serve implements the suture.Service interface.
func (s *Service) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.cfg.RunOnStartup).
		Dur("interval", s.cfg.Interval).
		Msg("ranking schedule starting")

	if s.cfg.RunOnStartup {
		if err := s.recompute(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("startup recompute failed (will retry on schedule)")
		}
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("ranking schedule shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.recompute(ctx); err != nil {
				s.logger.Warn().Err(err).Msg("scheduled recompute failed")
			}
		}
	}
}

// recompute performs one ranking run with its own timeout.
func (s *Service) recompute(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	start := time.Now()
	entries, err := s.ranker.Run(runCtx)
	if err != nil {
		metrics.RecordRankingRun("error", time.Since(start), 0)
		return err
	}

	outcome := "committed"
	if len(entries) == 0 {
		outcome = "skipped"
	}
	metrics.RecordRankingRun(outcome, time.Since(start), len(entries))

	s.logger.Info().
		Int("entries", len(entries)).
		Dur("duration", time.Since(start)).
		Msg("ranking recompute complete")

	return nil
}

// String returns the service name for supervisor logging.
func (s *Service) String() string {
	return s.name
}

// NewSupervisor creates the root supervisor the daemon hangs services
// off. Thresholds match suture's documented defaults.
func NewSupervisor(name string, slogger *slog.Logger) *suture.Supervisor {
	return suture.New(name, suture.Spec{
		EventHook:        (&sutureslog.Handler{Logger: slogger}).MustHook(),
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})
}
