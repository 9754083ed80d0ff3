// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/shelfwise/shelfwise/internal/recommend"
)

// ActiveEntries returns the currently active popularity ranking, ordered
// by rank.
func (db *DB) ActiveEntries(ctx context.Context) ([]recommend.PopularityEntry, error) {
	where, args := whereClause(ActiveOnly())
	query := fmt.Sprintf(`
		SELECT book_id, score, rank, first_ranked_at, active
		FROM popularity_entries
		WHERE %s
		ORDER BY rank
	`, where)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active ranking: %w", err)
	}
	defer rows.Close()

	var entries []recommend.PopularityEntry
	for rows.Next() {
		var e recommend.PopularityEntry
		if err := rows.Scan(&e.BookID, &e.Score, &e.Rank, &e.FirstRankedAt, &e.Active); err != nil {
			return nil, fmt.Errorf("scan popularity entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popularity entries: %w", err)
	}

	return entries, nil
}

// ReplaceActiveRanking deactivates the current ranking and inserts the
// given entries as the new active list in one transaction. On any
// failure the transaction rolls back and the previous ranking stays
// visible; readers never observe an empty or partially updated list.
func (db *DB) ReplaceActiveRanking(ctx context.Context, entries []recommend.PopularityEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ranking commit: %w", err)
	}
	defer rollbackQuietly(tx)

	where, args := whereClause(ActiveOnly())
	deactivate := fmt.Sprintf(`UPDATE popularity_entries SET active = FALSE WHERE %s`, where)
	if _, err := tx.ExecContext(ctx, deactivate, args...); err != nil {
		return fmt.Errorf("deactivate previous ranking: %w", err)
	}

	insert := `
		INSERT INTO popularity_entries (book_id, score, rank, first_ranked_at, active)
		VALUES (?, ?, ?, ?, TRUE)
	`
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, insert, e.BookID, e.Score, e.Rank, e.FirstRankedAt); err != nil {
			return fmt.Errorf("insert ranking entry for book %d: %w", e.BookID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ranking: %w", err)
	}

	return nil
}
