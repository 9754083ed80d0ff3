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

// EnsurePreferenceVector returns the reader's rating preference vector,
// creating the default vector first when none exists.
//
// Creation is an idempotent upsert: INSERT ON CONFLICT DO NOTHING
// followed by a guaranteed re-read, so concurrent first-reads for the
// same reader all observe one stored vector instead of racing a naive
// read-then-insert.
func (db *DB) EnsurePreferenceVector(ctx context.Context, readerID int64) (recommend.PreferenceVector, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	def := recommend.DefaultPreferenceVector()
	insert := `
		INSERT INTO rating_preferences (reader_id, enjoyment, writing, themes, characters, worldbuilding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (reader_id) DO NOTHING
	`
	if _, err := db.conn.ExecContext(ctx, insert,
		readerID, def.Enjoyment, def.Writing, def.Themes, def.Characters, def.Worldbuilding); err != nil {
		return recommend.PreferenceVector{}, fmt.Errorf("ensure preference vector: %w", err)
	}

	var v recommend.PreferenceVector
	err := db.conn.QueryRowContext(ctx, `
		SELECT enjoyment, writing, themes, characters, worldbuilding
		FROM rating_preferences
		WHERE reader_id = ?
	`, readerID).Scan(&v.Enjoyment, &v.Writing, &v.Themes, &v.Characters, &v.Worldbuilding)
	if err != nil {
		return recommend.PreferenceVector{}, fmt.Errorf("read preference vector: %w", err)
	}

	return v, nil
}

// UpdatePreferenceVector stores an explicit reader edit of the vector.
// All five weights must lie in [0, 1].
func (db *DB) UpdatePreferenceVector(ctx context.Context, readerID int64, v recommend.PreferenceVector) error {
	for _, c := range recommend.Criteria() {
		w := v.Weight(c)
		if w < 0 || w > 1 {
			return fmt.Errorf("%w: %s = %g", ErrInvalidWeight, c, w)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := `
		INSERT INTO rating_preferences (reader_id, enjoyment, writing, themes, characters, worldbuilding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (reader_id) DO UPDATE SET
			enjoyment = excluded.enjoyment,
			writing = excluded.writing,
			themes = excluded.themes,
			characters = excluded.characters,
			worldbuilding = excluded.worldbuilding,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := db.conn.ExecContext(ctx, query,
		readerID, v.Enjoyment, v.Writing, v.Themes, v.Characters, v.Worldbuilding); err != nil {
		return fmt.Errorf("update preference vector: %w", err)
	}

	return nil
}
