// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Ranker produces the globally ordered, time-decayed popularity list.
//
// It runs as a scheduled or manually triggered batch job, never per
// request. Each run reads the full interaction history, scores the
// candidates, and commits the new top N atomically through the store:
// concurrent readers observe either the fully old or the fully new
// ranking, never a mix.
type Ranker struct {
	store  RankingStore
	cfg    PopularityConfig
	logger zerolog.Logger

	// now is injectable for decay tests.
	now func() time.Time
}

// NewRanker creates a popularity ranker. Zero config fields get defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRanker(store RankingStore, cfg PopularityConfig, logger zerolog.Logger) *Ranker {
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	if cfg.DecayMidpointDays <= 0 {
		cfg.DecayMidpointDays = 14
	}
	if cfg.DecayScaleDays <= 0 {
		cfg.DecayScaleDays = 2
	}

	return &Ranker{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "ranker").Logger(),
		now:    time.Now,
	}
}

// Run recomputes the popularity ranking and commits it.
//
// When no book qualifies (at least one impression and one click-through
// on record), the previous active list is left intact and returned: a
// real ranking is never replaced with an empty one.
func (r *Ranker) Run(ctx context.Context) ([]PopularityEntry, error) {
	runID := uuid.NewString()
	start := r.now()
	logger := r.logger.With().Str("run_id", runID).Logger()

	candidates, err := r.store.EngagementCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load engagement candidates: %w", err)
	}

	previous, err := r.store.ActiveEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active ranking: %w", err)
	}

	if len(candidates) == 0 {
		logger.Info().
			Int("previous_size", len(previous)).
			Msg("no qualifying candidates, keeping previous ranking")
		return previous, nil
	}

	entries := r.scoreCandidates(candidates, previous, start)

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if len(entries) > r.cfg.Limit {
		entries = entries[:r.cfg.Limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Active = true
	}

	if err := r.store.ReplaceActiveRanking(ctx, entries); err != nil {
		return nil, fmt.Errorf("commit ranking: %w", err)
	}

	logger.Info().
		Int("candidates", len(candidates)).
		Int("ranked", len(entries)).
		Dur("duration", r.now().Sub(start)).
		Msg("popularity ranking committed")

	return entries, nil
}

// scoreCandidates applies the logistic decay to each candidate's weighted
// engagement. Decay continuity comes from the previous active list: a book
// already ranked keeps its firstRankedAt, a newcomer starts its clock now.
func (r *Ranker) scoreCandidates(candidates []EngagementSummary, previous []PopularityEntry, now time.Time) []PopularityEntry {
	firstRanked := make(map[int64]time.Time, len(previous))
	for _, e := range previous {
		firstRanked[e.BookID] = e.FirstRankedAt
	}

	entries := make([]PopularityEntry, 0, len(candidates))
	for _, c := range candidates {
		first, ok := firstRanked[c.BookID]
		if !ok {
			first = now
		}

		days := now.Sub(first).Hours() / 24
		if days < 0 {
			days = 0
		}
		decay := SigmoidDecay(days, r.cfg.DecayMidpointDays, r.cfg.DecayScaleDays)

		entries = append(entries, PopularityEntry{
			BookID:        c.BookID,
			Score:         c.WeightedEngagement * decay,
			FirstRankedAt: first,
		})
	}

	return entries
}
