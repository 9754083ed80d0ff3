// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"reflect"
	"testing"
	"time"
)

func TestWhereClause_Empty(t *testing.T) {
	clause, args := whereClause()
	if clause != "1=1" {
		t.Errorf("clause = %q, want %q", clause, "1=1")
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestWhereClause_SkipsZeroPredicates(t *testing.T) {
	clause, args := whereClause(BookIn(nil), ReaderIs(7), TermIn([]int64{}))
	if clause != "1=1 AND reader_id = ?" {
		t.Errorf("clause = %q", clause)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(7)}) {
		t.Errorf("args = %v, want [7]", args)
	}
}

func TestWhereClause_Composition(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clause, args := whereClause(
		ReaderIs(7),
		KindNot("view"),
		OccurredSince(since),
		BookIn([]int64{1, 2, 3}),
	)

	want := "1=1 AND reader_id = ? AND kind <> ? AND occurred_at >= ? AND book_id IN (?, ?, ?)"
	if clause != want {
		t.Errorf("clause = %q, want %q", clause, want)
	}

	wantArgs := []interface{}{int64(7), "view", since, int64(1), int64(2), int64(3)}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args = %v, want %v", args, wantArgs)
	}
}

func TestInClause_ArgOrder(t *testing.T) {
	p := TermIn([]int64{10, 20})
	if p.clause != "term_id IN (?, ?)" {
		t.Errorf("clause = %q", p.clause)
	}
	if !reflect.DeepEqual(p.args, []interface{}{int64(10), int64(20)}) {
		t.Errorf("args = %v", p.args)
	}
}

func TestActiveOnly_NoArgs(t *testing.T) {
	clause, args := whereClause(ActiveOnly())
	if clause != "1=1 AND active = TRUE" {
		t.Errorf("clause = %q", clause)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}
