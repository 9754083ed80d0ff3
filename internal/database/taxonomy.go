// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shelfwise/shelfwise/internal/recommend"
)

// DefaultGenreView returns the reader's default genre view with its
// ranked terms, or nil when the reader has no default view.
func (db *DB) DefaultGenreView(ctx context.Context, readerID int64) (*recommend.GenreView, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var view recommend.GenreView
	err := db.conn.QueryRowContext(ctx, `
		SELECT id, reader_id, name, is_default
		FROM genre_views
		WHERE reader_id = ? AND is_default = TRUE
		LIMIT 1
	`, readerID).Scan(&view.ID, &view.ReaderID, &view.Name, &view.Default)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query default genre view: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT term_id, rank
		FROM genre_view_terms
		WHERE view_id = ?
		ORDER BY rank
	`, view.ID)
	if err != nil {
		return nil, fmt.Errorf("query view terms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t recommend.RankedTerm
		if err := rows.Scan(&t.TermID, &t.Rank); err != nil {
			return nil, fmt.Errorf("scan view term: %w", err)
		}
		view.Terms = append(view.Terms, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view terms: %w", err)
	}

	return &view, nil
}

// BooksForTerms returns all tag assignments whose term is in termIDs,
// with their stored importance.
func (db *DB) BooksForTerms(ctx context.Context, termIDs []int64) ([]recommend.TaggedBook, error) {
	if len(termIDs) == 0 {
		return nil, nil
	}

	where, args := whereClause(TermIn(termIDs))
	query := fmt.Sprintf(`
		SELECT book_id, term_id, importance
		FROM book_taxonomy_tags
		WHERE %s
		ORDER BY book_id, rank
	`, where)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tagged books: %w", err)
	}
	defer rows.Close()

	var tagged []recommend.TaggedBook
	for rows.Next() {
		var t recommend.TaggedBook
		if err := rows.Scan(&t.BookID, &t.TermID, &t.Importance); err != nil {
			return nil, fmt.Errorf("scan tagged book: %w", err)
		}
		tagged = append(tagged, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tagged books: %w", err)
	}

	return tagged, nil
}

// ExcludedBooks returns books the reader has rated or marked completed.
func (db *DB) ExcludedBooks(ctx context.Context, readerID int64) ([]int64, error) {
	where, args := whereClause(ReaderIs(readerID), StatusIs("completed"))
	query := fmt.Sprintf(`
		SELECT book_id FROM ratings WHERE reader_id = ?
		UNION
		SELECT book_id FROM reading_log WHERE %s
	`, where)
	args = append([]interface{}{readerID}, args...)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query excluded books: %w", err)
	}
	defer rows.Close()

	var excluded []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan excluded book: %w", err)
		}
		excluded = append(excluded, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate excluded books: %w", err)
	}

	return excluded, nil
}

// SetTagRank upserts a (book, term) tag at the given rank and recomputes
// the stored importance. Importance lives next to the rank so relevance
// scoring reads one table; this method is the only writer of both.
func (db *DB) SetTagRank(ctx context.Context, bookID, termID int64, rank int) error {
	if rank < 1 {
		return fmt.Errorf("%w: rank %d", ErrInvalidRank, rank)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		INSERT INTO book_taxonomy_tags (book_id, term_id, rank, importance)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (book_id, term_id) DO UPDATE
		SET rank = excluded.rank, importance = excluded.importance
	`

	if _, err := db.conn.ExecContext(ctx, query,
		bookID, termID, rank, recommend.TagImportance(rank)); err != nil {
		return fmt.Errorf("upsert tag rank: %w", err)
	}

	return nil
}
