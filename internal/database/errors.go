// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"database/sql"
	"errors"
	"io"

	"github.com/shelfwise/shelfwise/internal/logging"
)

var (
	// ErrInvalidRank reports a taxonomy tag rank below 1.
	ErrInvalidRank = errors.New("tag rank must be >= 1")

	// ErrInvalidWeight reports a preference weight outside [0, 1].
	ErrInvalidWeight = errors.New("preference weight must be in [0, 1]")
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}

// rollbackQuietly rolls a transaction back, ignoring the ErrTxDone that
// follows a successful commit and logging anything else.
func rollbackQuietly(tx *sql.Tx) {
	if tx == nil {
		return
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logging.Warn().Err(err).Msg("transaction rollback failed")
	}
}
