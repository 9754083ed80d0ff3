// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package recommend

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scorer produces personalized book recommendations from a reader's
// ranked taxonomy preferences.
//
// A candidate book's relevance is double-weighted: the book's tag
// importance (how defining the term is for the book) multiplied by the
// reader's view weight for that term (how preferred the term is). Books
// whose defining tags match the reader's most-preferred terms rise to
// the top.
//
// The final result is a uniform random sample from the relevance-ordered
// pool: a deliberate trade of determinism for freshness. Re-invoking with
// identical inputs may return a different sample. The random source is
// seedable through ScorerConfig for reproducible tests.
//
// Any failure on the personalized path degrades to the impression-count
// popularity fallback; scoring errors are logged, never surfaced.
type Scorer struct {
	source CandidateSource
	safety SafetyFilter
	cfg    ScorerConfig
	logger zerolog.Logger

	rng   *rand.Rand
	rngMu sync.Mutex

	now func() time.Time
}

// NewScorer creates a recommendation scorer. Zero config fields get
// defaults; a zero seed draws one from the clock.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScorer(source CandidateSource, safety SafetyFilter, cfg ScorerConfig, logger zerolog.Logger) *Scorer {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 40
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = 7
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Scorer{
		source: source,
		safety: safety,
		cfg:    cfg,
		logger: logger.With().Str("component", "scorer").Logger(),
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // sampling, not cryptography
		now:    time.Now,
	}
}

// Recommend returns up to limit books the reader has not rated or
// completed, ranked by taxonomy relevance and randomly sampled. A
// non-positive limit uses the configured sample size.
//
// Readers without a usable default genre view, and any error on the
// personalized path, get the impression-count fallback instead; the
// response marks that with Fallback and FallbackReason. An error is
// returned only when the fallback itself cannot be served.
func (s *Scorer) Recommend(ctx context.Context, readerID int64, limit int) (*Recommendations, error) {
	if limit <= 0 {
		limit = s.cfg.SampleSize
	}

	requestID := uuid.NewString()
	logger := s.logger.With().
		Str("request_id", requestID).
		Int64("reader_id", readerID).
		Logger()

	view, err := s.source.DefaultGenreView(ctx, readerID)
	if err != nil {
		logger.Warn().Err(err).Msg("genre view lookup failed, falling back")
		return s.fallback(ctx, requestID, readerID, limit, "view lookup failed")
	}
	if view == nil || len(view.Terms) == 0 {
		logger.Debug().Msg("no ranked genre view, falling back")
		return s.fallback(ctx, requestID, readerID, limit, "no ranked genre view")
	}

	scored, err := s.scoreCandidates(ctx, readerID, view)
	if err != nil {
		logger.Warn().Err(err).Msg("candidate scoring failed, falling back")
		return s.fallback(ctx, requestID, readerID, limit, "scoring failed")
	}

	total := len(scored)
	pool := s.safetyFilter(ctx, readerID, topSlice(scored, s.cfg.PoolSize), logger)
	books := s.sample(pool, limit)

	logger.Debug().
		Int("candidates", total).
		Int("pool", len(pool)).
		Int("returned", len(books)).
		Msg("recommendations generated")

	return &Recommendations{
		RequestID:       requestID,
		ReaderID:        readerID,
		Books:           books,
		TotalCandidates: total,
		GeneratedAt:     s.now(),
	}, nil
}

// scoreCandidates accumulates the double-weighted relevance score for
// every tagged book matching the view's terms, minus the exclusion set.
func (s *Scorer) scoreCandidates(ctx context.Context, readerID int64, view *GenreView) ([]ScoredBook, error) {
	excluded, err := s.source.ExcludedBooks(ctx, readerID)
	if err != nil {
		return nil, err
	}
	exclude := make(map[int64]struct{}, len(excluded))
	for _, id := range excluded {
		exclude[id] = struct{}{}
	}

	termWeights := make(map[int64]float64, len(view.Terms))
	termIDs := make([]int64, 0, len(view.Terms))
	for _, t := range view.Terms {
		termWeights[t.TermID] = ViewTermWeight(t.Rank)
		termIDs = append(termIDs, t.TermID)
	}

	tagged, err := s.source.BooksForTerms(ctx, termIDs)
	if err != nil {
		return nil, err
	}

	scores := make(map[int64]float64)
	order := make([]int64, 0, len(tagged))
	for _, tb := range tagged {
		if _, skip := exclude[tb.BookID]; skip {
			continue
		}
		if _, seen := scores[tb.BookID]; !seen {
			order = append(order, tb.BookID)
		}
		scores[tb.BookID] += tb.Importance * termWeights[tb.TermID]
	}

	scored := make([]ScoredBook, 0, len(order))
	for _, id := range order {
		scored = append(scored, ScoredBook{BookID: id, Score: scores[id]})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored, nil
}

// fallback serves the impression-count popularity list used for new
// readers and for any personalized-path failure.
func (s *Scorer) fallback(ctx context.Context, requestID string, readerID int64, limit int, reason string) (*Recommendations, error) {
	popular, err := s.source.PopularByImpressions(ctx, s.cfg.PoolSize)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("request_id", requestID).Int64("reader_id", readerID).Logger()
	books := s.safetyFilter(ctx, readerID, popular, logger)
	books = topSlice(books, limit)

	return &Recommendations{
		RequestID:       requestID,
		ReaderID:        readerID,
		Books:           books,
		Fallback:        true,
		FallbackReason:  reason,
		TotalCandidates: len(popular),
		GeneratedAt:     s.now(),
	}, nil
}

// safetyFilter applies the content-safety collaborator to the candidate
// slice. A filter error degrades to the unfiltered slice with a warning;
// availability of recommendations takes precedence here, and the serving
// layer applies its own presentation rules.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (s *Scorer) safetyFilter(ctx context.Context, readerID int64, books []ScoredBook, logger zerolog.Logger) []ScoredBook {
	if s.safety == nil || len(books) == 0 {
		return books
	}

	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.BookID
	}

	allowed, err := s.safety.Filter(ctx, readerID, ids)
	if err != nil {
		logger.Warn().Err(err).Msg("safety filter unavailable, passing candidates through")
		return books
	}

	allowedSet := make(map[int64]struct{}, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = struct{}{}
	}

	filtered := make([]ScoredBook, 0, len(allowed))
	for _, b := range books {
		if _, ok := allowedSet[b.BookID]; ok {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// sample draws up to n books uniformly at random, returning them highest
// score first.
func (s *Scorer) sample(pool []ScoredBook, n int) []ScoredBook {
	if len(pool) <= n {
		out := make([]ScoredBook, len(pool))
		copy(out, pool)
		return out
	}

	picked := make([]ScoredBook, len(pool))
	copy(picked, pool)

	s.rngMu.Lock()
	for i := 0; i < n; i++ {
		j := i + s.rng.Intn(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	s.rngMu.Unlock()

	picked = picked[:n]
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Score > picked[j].Score
	})
	return picked
}

// topSlice returns the first n entries without mutating the input.
func topSlice(books []ScoredBook, n int) []ScoredBook {
	if len(books) > n {
		books = books[:n]
	}
	out := make([]ScoredBook, len(books))
	copy(out, books)
	return out
}
