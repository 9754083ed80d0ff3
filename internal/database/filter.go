// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"strings"
	"time"
)

// Predicate is one typed WHERE condition with its bound arguments.
// Query methods compose predicates instead of assembling SQL text, so
// callers of this package never touch query strings.
//
// A zero Predicate is valid and ignored by whereClause, which lets
// constructors return zero for empty inputs (an empty IN list matches
// everything rather than nothing).
type Predicate struct {
	clause string
	args   []interface{}
}

// BookIn matches rows whose book_id is in ids.
func BookIn(ids []int64) Predicate {
	return inClause("book_id", ids)
}

// TermIn matches rows whose term_id is in ids.
func TermIn(ids []int64) Predicate {
	return inClause("term_id", ids)
}

// ReaderIs matches rows belonging to the given reader.
func ReaderIs(readerID int64) Predicate {
	return Predicate{clause: "reader_id = ?", args: []interface{}{readerID}}
}

// KindIs matches interaction events of the given kind.
func KindIs(kind string) Predicate {
	return Predicate{clause: "kind = ?", args: []interface{}{kind}}
}

// KindNot matches interaction events of any kind except the given one.
func KindNot(kind string) Predicate {
	return Predicate{clause: "kind <> ?", args: []interface{}{kind}}
}

// StatusIs matches reading-log rows with the given status.
func StatusIs(status string) Predicate {
	return Predicate{clause: "status = ?", args: []interface{}{status}}
}

// OccurredSince matches interaction events at or after t.
func OccurredSince(t time.Time) Predicate {
	return Predicate{clause: "occurred_at >= ?", args: []interface{}{t}}
}

// OccurredBefore matches interaction events strictly before t.
func OccurredBefore(t time.Time) Predicate {
	return Predicate{clause: "occurred_at < ?", args: []interface{}{t}}
}

// ActiveOnly matches active popularity entries.
func ActiveOnly() Predicate {
	return Predicate{clause: "active = TRUE"}
}

// inClause builds a typed IN predicate. Empty input returns the zero
// Predicate.
func inClause(column string, ids []int64) Predicate {
	if len(ids) == 0 {
		return Predicate{}
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	return Predicate{
		clause: column + " IN (" + strings.Join(placeholders, ", ") + ")",
		args:   args,
	}
}

// whereClause combines predicates with AND. It starts from "1=1" for
// safe concatenation and returns the clause plus the flattened argument
// list in predicate order. Zero predicates are skipped.
func whereClause(preds ...Predicate) (string, []interface{}) {
	clause := "1=1"
	var args []interface{}

	for _, p := range preds {
		if p.clause == "" {
			continue
		}
		clause += " AND " + p.clause
		args = append(args, p.args...)
	}

	return clause, args
}
