// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

/*
schema.go - Database Schema Management

This file manages the DuckDB schema for the recommendation core.

Tables:
  - books: book identity plus impression/click-through counters maintained
    by the ingestion collaborator
  - interaction_events: append-only reader action log (view, detail-expand,
    card-click, referral-click) with pre-computed engagement weights
  - taxonomy_terms: genre/subgenre/theme/trope identities
  - book_taxonomy_tags: (book, term, rank) assignments with derived importance
  - genre_views / genre_view_terms: per-reader ranked term preference lists
  - ratings: per-reader per-book criterion ratings (exclusion source)
  - reading_log: per-reader completion state (exclusion source)
  - popularity_entries: committed output of the popularity ranker
  - rating_preferences: per-reader criterion weight vectors

Schema Strategy (Pre-Release):
All columns are defined in the initial CREATE TABLE statements. Single
source of truth, no migrations to run at startup.

Index Strategy:
Indexes cover the recommendation core's hot paths: engagement aggregation
by book, tag lookup by term, exclusion lookup by reader, and the active
popularity list.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// tableCreationQueries returns the table creation SQL statements
func tableCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_genre_view_id START 1`,

		`CREATE TABLE IF NOT EXISTS books (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			impression_count BIGINT NOT NULL DEFAULT 0,
			click_through_count BIGINT NOT NULL DEFAULT 0,
			last_impression_at TIMESTAMP,
			last_click_through_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Append-only. The weight column is denormalized at ingestion
		// time so aggregation never depends on the kind mapping.
		`CREATE TABLE IF NOT EXISTS interaction_events (
			id UUID PRIMARY KEY,
			book_id BIGINT NOT NULL,
			reader_id BIGINT,
			kind TEXT NOT NULL,
			weight DOUBLE NOT NULL,
			occurred_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS taxonomy_terms (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS book_taxonomy_tags (
			book_id BIGINT NOT NULL,
			term_id BIGINT NOT NULL,
			rank INTEGER NOT NULL,
			importance DOUBLE NOT NULL,
			PRIMARY KEY (book_id, term_id)
		)`,

		`CREATE TABLE IF NOT EXISTS genre_views (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_genre_view_id'),
			reader_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			is_default BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS genre_view_terms (
			view_id BIGINT NOT NULL,
			term_id BIGINT NOT NULL,
			rank INTEGER NOT NULL,
			PRIMARY KEY (view_id, term_id)
		)`,

		`CREATE TABLE IF NOT EXISTS ratings (
			reader_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			enjoyment DOUBLE,
			writing DOUBLE,
			themes DOUBLE,
			characters DOUBLE,
			worldbuilding DOUBLE,
			rated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (reader_id, book_id)
		)`,

		`CREATE TABLE IF NOT EXISTS reading_log (
			reader_id BIGINT NOT NULL,
			book_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (reader_id, book_id)
		)`,

		`CREATE TABLE IF NOT EXISTS popularity_entries (
			book_id BIGINT NOT NULL,
			score DOUBLE NOT NULL,
			rank INTEGER NOT NULL,
			first_ranked_at TIMESTAMP NOT NULL,
			active BOOLEAN NOT NULL DEFAULT FALSE,
			committed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS rating_preferences (
			reader_id BIGINT PRIMARY KEY,
			enjoyment DOUBLE NOT NULL,
			writing DOUBLE NOT NULL,
			themes DOUBLE NOT NULL,
			characters DOUBLE NOT NULL,
			worldbuilding DOUBLE NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
}

// createIndexes creates indexes for the recommendation core's hot paths
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_events_book ON interaction_events (book_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_book_kind ON interaction_events (book_id, kind)`,
		`CREATE INDEX IF NOT EXISTS idx_events_occurred ON interaction_events (occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_term ON book_taxonomy_tags (term_id)`,
		`CREATE INDEX IF NOT EXISTS idx_views_reader ON genre_views (reader_id, is_default)`,
		`CREATE INDEX IF NOT EXISTS idx_view_terms_view ON genre_view_terms (view_id, rank)`,
		`CREATE INDEX IF NOT EXISTS idx_ratings_reader ON ratings (reader_id)`,
		`CREATE INDEX IF NOT EXISTS idx_reading_log_reader ON reading_log (reader_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_popularity_active ON popularity_entries (active, rank)`,
	}

	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
