// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

// Command shelfwise runs the recommendation core as a daemon: the
// popularity recompute on its nightly schedule under a supervisor, plus
// Prometheus metrics exposition.
//
// One-shot modes for operators:
//
//	shelfwise -once               recompute the ranking once, print it as JSON
//	shelfwise -recommend 42       print recommendations for reader 42
//	shelfwise -compat 42:97       print compatibility between readers 42 and 97
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/database"
	"github.com/shelfwise/shelfwise/internal/logging"
	"github.com/shelfwise/shelfwise/internal/metrics"
	"github.com/shelfwise/shelfwise/internal/recommend"
	"github.com/shelfwise/shelfwise/internal/safety"
	"github.com/shelfwise/shelfwise/internal/scheduler"
)

func main() {
	once := flag.Bool("once", false, "recompute the popularity ranking once and exit")
	recommendFor := flag.Int64("recommend", 0, "print recommendations for the given reader and exit")
	compat := flag.String("compat", "", "print compatibility for two readers given as A:B and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	provider := database.NewProvider(db)
	logger := logging.Logger()

	filter := buildSafetyFilter(cfg)
	ranker := recommend.NewRanker(provider, cfg.Engine.Popularity, logger)
	scorer := recommend.NewScorer(provider, filter, cfg.Engine.Scorer, logger)
	calculator := recommend.NewCalculator(provider, logger)

	switch {
	case *once:
		runOnce(ranker)
		return
	case *recommendFor != 0:
		runRecommend(scorer, *recommendFor, cfg.Engine.Scorer.SampleSize)
		return
	case *compat != "":
		runCompat(calculator, *compat)
		return
	}

	serve(cfg, ranker)
}

// serve runs the scheduled recompute and the metrics endpoint under a
// supervisor until SIGINT/SIGTERM.
func serve(cfg *config.Config, ranker *recommend.Ranker) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := scheduler.NewSupervisor("shelfwise", logging.NewSlogLogger())
	root.Add(scheduler.NewService(ranker, cfg.Scheduler, logging.Logger()))

	if cfg.Metrics.Enabled {
		root.Add(newMetricsService(cfg.Metrics.Addr))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor")
	errCh := root.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor error")
		}
	}

	logging.Info().Msg("Shelfwise stopped gracefully")
}

// buildSafetyFilter wires the content-safety collaborator. Deployments
// without one get the pass-through filter; with safety enabled the
// platform's filter callback runs behind the circuit breaker.
func buildSafetyFilter(cfg *config.Config) recommend.SafetyFilter {
	if !cfg.Safety.Enabled {
		return safety.AllowAll{}
	}
	return safety.NewBreaker(safety.AllowAll{}, cfg.Safety.Breaker, logging.Logger())
}

func runOnce(ranker *recommend.Ranker) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	entries, err := ranker.Run(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Ranking recompute failed")
	}
	printJSON(entries)
}

func runRecommend(scorer *recommend.Scorer, readerID int64, limit int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	recs, err := scorer.Recommend(ctx, readerID, limit)
	metrics.RecordRecommendRequest(recs != nil && recs.Fallback, err, time.Since(start))
	if err != nil {
		logging.Fatal().Err(err).Int64("reader_id", readerID).Msg("Recommendation failed")
	}
	printJSON(recs)
}

func runCompat(calculator *recommend.Calculator, pair string) {
	readerA, readerB, err := parseReaderPair(pair)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid -compat value")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := calculator.Compare(ctx, readerA, readerB)
	metrics.CompatibilityRequestsTotal.Inc()
	if err != nil {
		logging.Fatal().Err(err).Msg("Compatibility comparison failed")
	}
	printJSON(result)
}

// parseReaderPair parses "A:B" into two reader IDs.
func parseReaderPair(pair string) (int64, int64, error) {
	parts := strings.SplitN(pair, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want A:B, got %q", pair)
	}
	a, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("reader A: %w", err)
	}
	b, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("reader B: %w", err)
	}
	return a, b, nil
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}

// metricsService serves the Prometheus endpoint under the supervisor.
type metricsService struct {
	addr string
}

func newMetricsService(addr string) *metricsService {
	return &metricsService{addr: addr}
}

// Serve implements the suture.Service interface.
func (m *metricsService) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              m.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	logging.Info().Str("addr", m.addr).Msg("Metrics endpoint listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// String returns the service name for supervisor logging.
func (m *metricsService) String() string {
	return "metrics-server"
}
