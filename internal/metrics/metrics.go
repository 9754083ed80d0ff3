// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the recommendation core:
// - popularity ranking runs (duration, outcome, skips)
// - recommendation requests (duration, fallback rate)
// - compatibility comparisons
// - content-safety breaker state

var (
	// Popularity ranking metrics
	RankingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popularity_ranking_runs_total",
			Help: "Total popularity ranking runs by outcome",
		},
		[]string{"outcome"}, // "committed", "skipped", "error"
	)

	RankingRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "popularity_ranking_run_duration_seconds",
			Help:    "Duration of popularity ranking runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RankingSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "popularity_ranking_size",
			Help: "Number of entries in the last committed ranking",
		},
	)

	// Recommendation metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total recommendation requests by path",
		},
		[]string{"path"}, // "personalized", "fallback", "error"
	)

	RecommendRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_request_duration_seconds",
			Help:    "Recommendation request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// Compatibility metrics
	CompatibilityRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "compatibility_requests_total",
			Help: "Total compatibility comparisons",
		},
	)

	// Content-safety breaker state: 0 closed, 1 half-open, 2 open
	SafetyBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "safety_breaker_state",
			Help: "Content-safety circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	SafetyFilterFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safety_filter_failures_total",
			Help: "Total content-safety filter calls that failed open",
		},
	)
)

// RecordRankingRun records one popularity ranking run.
func RecordRankingRun(outcome string, duration time.Duration, size int) {
	RankingRunsTotal.WithLabelValues(outcome).Inc()
	RankingRunDuration.Observe(duration.Seconds())
	if outcome == "committed" {
		RankingSize.Set(float64(size))
	}
}

// RecordRecommendRequest records one recommendation request.
func RecordRecommendRequest(fallback bool, err error, duration time.Duration) {
	path := "personalized"
	switch {
	case err != nil:
		path = "error"
	case fallback:
		path = "fallback"
	}
	RecommendRequestsTotal.WithLabelValues(path).Inc()
	RecommendRequestDuration.Observe(duration.Seconds())
}
