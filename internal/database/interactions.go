// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shelfwise/shelfwise/internal/recommend"
)

// RecordInteraction appends one interaction event. The engagement weight
// is denormalized from the kind at write time; events are never updated
// or deleted afterwards.
func (db *DB) RecordInteraction(ctx context.Context, bookID, readerID int64, kind recommend.InteractionKind, occurredAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		INSERT INTO interaction_events (id, book_id, reader_id, kind, weight, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var reader interface{}
	if readerID != 0 {
		reader = readerID
	}

	if _, err := db.conn.ExecContext(ctx, query,
		uuid.NewString(), bookID, reader, kind.String(), kind.Weight(), occurredAt); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}

	return db.bumpBookCounters(ctx, bookID, kind, occurredAt)
}

// bumpBookCounters keeps the per-book impression and click-through
// counters in step with the event log.
func (db *DB) bumpBookCounters(ctx context.Context, bookID int64, kind recommend.InteractionKind, occurredAt time.Time) error {
	var query string
	switch kind {
	case recommend.KindView:
		query = `
			UPDATE books
			SET impression_count = impression_count + 1, last_impression_at = ?
			WHERE id = ?
		`
	case recommend.KindCardClick, recommend.KindReferralClick:
		query = `
			UPDATE books
			SET click_through_count = click_through_count + 1, last_click_through_at = ?
			WHERE id = ?
		`
	default:
		// Detail expansion is engagement but not a click-through.
		return nil
	}

	if _, err := db.conn.ExecContext(ctx, query, occurredAt, bookID); err != nil {
		return fmt.Errorf("update book counters: %w", err)
	}
	return nil
}

// EngagementCandidates returns books with at least one impression and one
// click-through on record, each with its weighted engagement sum. Plain
// views carry zero weight and are excluded from the sum outright.
func (db *DB) EngagementCandidates(ctx context.Context) ([]recommend.EngagementSummary, error) {
	where, args := whereClause(KindNot("view"))

	query := fmt.Sprintf(`
		SELECT e.book_id, SUM(e.weight) AS weighted_engagement
		FROM interaction_events e
		JOIN books b ON b.id = e.book_id
		WHERE %s
		  AND b.impression_count > 0
		  AND b.click_through_count > 0
		GROUP BY e.book_id
		ORDER BY e.book_id
	`, where)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query engagement candidates: %w", err)
	}
	defer rows.Close()

	var candidates []recommend.EngagementSummary
	for rows.Next() {
		var c recommend.EngagementSummary
		if err := rows.Scan(&c.BookID, &c.WeightedEngagement); err != nil {
			return nil, fmt.Errorf("scan engagement candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate engagement candidates: %w", err)
	}

	return candidates, nil
}

// PopularByImpressions returns books ordered by raw impression count.
// This is the deliberately simple fallback list, not the decayed ranking.
func (db *DB) PopularByImpressions(ctx context.Context, limit int) ([]recommend.ScoredBook, error) {
	query := `
		SELECT id, impression_count
		FROM books
		WHERE impression_count > 0
		ORDER BY impression_count DESC, id
		LIMIT ?
	`

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query popular by impressions: %w", err)
	}
	defer rows.Close()

	var books []recommend.ScoredBook
	for rows.Next() {
		var b recommend.ScoredBook
		if err := rows.Scan(&b.BookID, &b.Score); err != nil {
			return nil, fmt.Errorf("scan popular book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular books: %w", err)
	}

	return books, nil
}
