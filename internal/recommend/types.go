// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package recommend

import (
	"context"
	"math"
	"time"
)

// InteractionKind classifies a recorded reader action on a book.
type InteractionKind int

const (
	// KindView indicates a plain impression (book shown in a list).
	KindView InteractionKind = iota
	// KindDetailExpand indicates the reader expanded the book's detail card.
	KindDetailExpand
	// KindCardClick indicates the reader clicked through to the book page.
	KindCardClick
	// KindReferralClick indicates the reader followed an outbound referral link.
	KindReferralClick
)

// String returns a human-readable name for the interaction kind.
func (k InteractionKind) String() string {
	switch k {
	case KindView:
		return "view"
	case KindDetailExpand:
		return "detail-expand"
	case KindCardClick:
		return "card-click"
	case KindReferralClick:
		return "referral-click"
	default:
		return "unknown"
	}
}

// Weight returns the engagement weight for this interaction kind.
// Plain views carry zero weight: an impression alone is not engagement.
func (k InteractionKind) Weight() float64 {
	switch k {
	case KindReferralClick:
		return 1.0
	case KindCardClick:
		return 0.5
	case KindDetailExpand:
		return 0.25
	default:
		return 0.0
	}
}

// InteractionEvent is one observed reader action. Events are append-only;
// the core never mutates or deletes them.
type InteractionEvent struct {
	// ID is the event's unique identifier.
	ID string `json:"id"`

	// BookID references the book the event was recorded against.
	BookID int64 `json:"book_id"`

	// ReaderID references the acting reader, or zero for anonymous events.
	ReaderID int64 `json:"reader_id,omitempty"`

	// Kind classifies the action.
	Kind InteractionKind `json:"kind"`

	// Weight is the engagement weight recorded at ingestion time.
	Weight float64 `json:"weight"`

	// OccurredAt is when the action happened.
	OccurredAt time.Time `json:"occurred_at"`
}

// TermKind discriminates taxonomy term categories.
type TermKind int

const (
	// TermGenre is a top-level genre.
	TermGenre TermKind = iota
	// TermSubgenre is a genre refinement.
	TermSubgenre
	// TermTheme is a thematic tag.
	TermTheme
	// TermTrope is a narrative trope tag.
	TermTrope
)

// String returns a human-readable name for the term kind.
func (k TermKind) String() string {
	switch k {
	case TermGenre:
		return "genre"
	case TermSubgenre:
		return "subgenre"
	case TermTheme:
		return "theme"
	case TermTrope:
		return "trope"
	default:
		return "unknown"
	}
}

// TaxonomyTerm is a genre, subgenre, theme, or trope identity.
type TaxonomyTerm struct {
	ID   int64    `json:"id"`
	Name string   `json:"name"`
	Kind TermKind `json:"kind"`
}

// TagImportance derives how defining a taxonomy tag is for a book from its
// assigned rank among that book's tags (rank 1 = most defining).
//
//	importance = 1 / (1 + ln(rank))
//
// Importance is 1 at rank 1 and strictly decreases as rank grows.
// Rank values below 1 are a tagging-collaborator integrity violation;
// callers may assume rank >= 1.
func TagImportance(rank int) float64 {
	return 1.0 / (1.0 + math.Log(float64(rank)))
}

// ViewTermWeight derives how strongly a reader favors a taxonomy term from
// the term's rank within the reader's preference view.
//
//	weight = 1 / (rank + 0.1)
func ViewTermWeight(rank int) float64 {
	return 1.0 / (float64(rank) + 0.1)
}

// SigmoidDecay is the logistic time-decay factor applied to weighted
// engagement. It is 0.5 exactly at the midpoint, near 1 for freshly ranked
// books, and approaches 0 as days grow.
//
//	decay = 1 / (1 + e^((days - midpoint) / scale))
func SigmoidDecay(days, midpoint, scale float64) float64 {
	return 1.0 / (1.0 + math.Exp((days-midpoint)/scale))
}

// EngagementSummary is a candidate book with its summed engagement weight.
// Views are excluded from the sum by definition.
type EngagementSummary struct {
	BookID             int64   `json:"book_id"`
	WeightedEngagement float64 `json:"weighted_engagement"`
}

// PopularityEntry is one row of the committed popularity ranking.
type PopularityEntry struct {
	// BookID references the ranked book.
	BookID int64 `json:"book_id"`

	// Score is the decayed engagement score at commit time.
	Score float64 `json:"score"`

	// Rank is the 1-based position in the active list.
	Rank int `json:"rank"`

	// FirstRankedAt is the earliest continuous appearance in the active
	// list. It is preserved across recomputes so the decay clock does not
	// reset on every run.
	FirstRankedAt time.Time `json:"first_ranked_at"`

	// Active marks entries belonging to the current ranking.
	Active bool `json:"active"`
}

// RankedTerm is a taxonomy term with its position in a reader's view.
type RankedTerm struct {
	TermID int64 `json:"term_id"`
	Rank   int   `json:"rank"`
}

// GenreView is a reader's ordered list of preferred taxonomy terms.
// At most one view per reader is marked default.
type GenreView struct {
	ID       int64        `json:"id"`
	ReaderID int64        `json:"reader_id"`
	Name     string       `json:"name"`
	Default  bool         `json:"default"`
	Terms    []RankedTerm `json:"terms"`
}

// TaggedBook is a (book, term) assignment with its derived importance.
type TaggedBook struct {
	BookID     int64   `json:"book_id"`
	TermID     int64   `json:"term_id"`
	Importance float64 `json:"importance"`
}

// ScoredBook is a book with a relevance or popularity score.
type ScoredBook struct {
	BookID int64   `json:"book_id"`
	Score  float64 `json:"score"`
}

// Recommendations is the result of one Scorer invocation.
type Recommendations struct {
	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id"`

	// ReaderID is the reader the recommendations are for.
	ReaderID int64 `json:"reader_id"`

	// Books is the sampled result, highest score first.
	Books []ScoredBook `json:"books"`

	// Fallback marks results served from the impression-count fallback
	// instead of the personalized taxonomy path.
	Fallback bool `json:"fallback"`

	// FallbackReason names why the fallback was taken, when it was.
	FallbackReason string `json:"fallback_reason,omitempty"`

	// TotalCandidates is the number of candidate books considered.
	TotalCandidates int `json:"total_candidates"`

	// GeneratedAt is when the result was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// RankingStore is the persistence boundary of the popularity Ranker.
type RankingStore interface {
	// EngagementCandidates returns books with at least one impression and
	// one click-through recorded historically, each with its weighted
	// engagement sum (views excluded).
	EngagementCandidates(ctx context.Context) ([]EngagementSummary, error)

	// ActiveEntries returns the currently active popularity ranking,
	// ordered by rank.
	ActiveEntries(ctx context.Context) ([]PopularityEntry, error)

	// ReplaceActiveRanking deactivates the current ranking and inserts the
	// given entries as the new active list in a single atomic unit.
	// Readers must never observe an empty or partially updated ranking.
	ReplaceActiveRanking(ctx context.Context, entries []PopularityEntry) error
}

// CandidateSource is the read boundary of the recommendation Scorer.
type CandidateSource interface {
	// DefaultGenreView returns the reader's default view with its ranked
	// terms, or nil when the reader has none.
	DefaultGenreView(ctx context.Context, readerID int64) (*GenreView, error)

	// BooksForTerms returns all tag assignments whose term is in termIDs.
	BooksForTerms(ctx context.Context, termIDs []int64) ([]TaggedBook, error)

	// ExcludedBooks returns books the reader has rated or completed.
	ExcludedBooks(ctx context.Context, readerID int64) ([]int64, error)

	// PopularByImpressions returns books ordered by raw impression count.
	// This is the deliberately simple fallback, not the decayed ranking.
	PopularByImpressions(ctx context.Context, limit int) ([]ScoredBook, error)
}

// SafetyFilter restricts candidate books to those a reader may be shown.
// Implemented by the content-safety collaborator.
type SafetyFilter interface {
	Filter(ctx context.Context, readerID int64, bookIDs []int64) ([]int64, error)
}

// PreferenceStore is the persistence boundary of the compatibility
// Calculator.
type PreferenceStore interface {
	// EnsurePreferenceVector returns the reader's rating preference
	// vector, creating the default vector first if none exists. Creation
	// must be an idempotent upsert: concurrent first reads for the same
	// reader all observe the same stored vector.
	EnsurePreferenceVector(ctx context.Context, readerID int64) (PreferenceVector, error)
}
