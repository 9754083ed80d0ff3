// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"context"
	"time"

	"github.com/shelfwise/shelfwise/internal/recommend"
)

// Provider adapts DB to the recommendation core's store interfaces. The
// core depends only on its own interface types; this adapter is the one
// place the two packages meet.
type Provider struct {
	db *DB
}

// NewProvider creates a provider backed by the given database.
func NewProvider(db *DB) *Provider {
	return &Provider{db: db}
}

// EngagementCandidates implements recommend.RankingStore.
func (p *Provider) EngagementCandidates(ctx context.Context) ([]recommend.EngagementSummary, error) {
	return p.db.EngagementCandidates(ctx)
}

// ActiveEntries implements recommend.RankingStore.
func (p *Provider) ActiveEntries(ctx context.Context) ([]recommend.PopularityEntry, error) {
	return p.db.ActiveEntries(ctx)
}

// ReplaceActiveRanking implements recommend.RankingStore.
func (p *Provider) ReplaceActiveRanking(ctx context.Context, entries []recommend.PopularityEntry) error {
	return p.db.ReplaceActiveRanking(ctx, entries)
}

// DefaultGenreView implements recommend.CandidateSource.
func (p *Provider) DefaultGenreView(ctx context.Context, readerID int64) (*recommend.GenreView, error) {
	return p.db.DefaultGenreView(ctx, readerID)
}

// BooksForTerms implements recommend.CandidateSource.
func (p *Provider) BooksForTerms(ctx context.Context, termIDs []int64) ([]recommend.TaggedBook, error) {
	return p.db.BooksForTerms(ctx, termIDs)
}

// ExcludedBooks implements recommend.CandidateSource.
func (p *Provider) ExcludedBooks(ctx context.Context, readerID int64) ([]int64, error) {
	return p.db.ExcludedBooks(ctx, readerID)
}

// PopularByImpressions implements recommend.CandidateSource.
func (p *Provider) PopularByImpressions(ctx context.Context, limit int) ([]recommend.ScoredBook, error) {
	return p.db.PopularByImpressions(ctx, limit)
}

// EnsurePreferenceVector implements recommend.PreferenceStore.
func (p *Provider) EnsurePreferenceVector(ctx context.Context, readerID int64) (recommend.PreferenceVector, error) {
	return p.db.EnsurePreferenceVector(ctx, readerID)
}

// RecordInteraction exposes event ingestion for seeding and tooling.
func (p *Provider) RecordInteraction(ctx context.Context, bookID, readerID int64, kind recommend.InteractionKind, occurredAt time.Time) error {
	return p.db.RecordInteraction(ctx, bookID, readerID, kind, occurredAt)
}

// Interface compliance.
var (
	_ recommend.RankingStore    = (*Provider)(nil)
	_ recommend.CandidateSource = (*Provider)(nil)
	_ recommend.PreferenceStore = (*Provider)(nil)
)
