// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shelfwise/shelfwise/internal/config"
	"github.com/shelfwise/shelfwise/internal/recommend"
)

// testDBSemaphore limits concurrent database creation; concurrent DuckDB
// CGO calls can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB creates an in-memory test database. The semaphore is held
// for the whole test lifecycle so only one test has an active DuckDB
// connection at a time.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := &config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "1GB",
	}

	db, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	return db
}

func insertBook(t *testing.T, db *DB, id int64, title string) {
	t.Helper()
	_, err := db.conn.Exec(`INSERT INTO books (id, title, author) VALUES (?, ?, 'Test Author')`, id, title)
	if err != nil {
		t.Fatalf("insert book %d: %v", id, err)
	}
}

func TestNew_InitializesSchema(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	// Every core table must exist and be queryable.
	tables := []string{
		"books", "interaction_events", "taxonomy_terms", "book_taxonomy_tags",
		"genre_views", "genre_view_terms", "ratings", "reading_log",
		"popularity_entries", "rating_preferences",
	}
	for _, table := range tables {
		var count int
		if err := db.conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s not queryable: %v", table, err)
		}
	}
}

func TestRecordInteraction_MaintainsCounters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	insertBook(t, db, 1, "The Left Hand of Dusk")

	now := time.Now().UTC()
	events := []recommend.InteractionKind{
		recommend.KindView,
		recommend.KindView,
		recommend.KindDetailExpand,
		recommend.KindCardClick,
		recommend.KindReferralClick,
	}
	for _, kind := range events {
		if err := db.RecordInteraction(ctx, 1, 9, kind, now); err != nil {
			t.Fatalf("RecordInteraction(%v) error = %v", kind, err)
		}
	}

	var impressions, clicks int64
	err := db.conn.QueryRow(`SELECT impression_count, click_through_count FROM books WHERE id = 1`).
		Scan(&impressions, &clicks)
	if err != nil {
		t.Fatalf("read counters: %v", err)
	}
	if impressions != 2 {
		t.Errorf("impression_count = %d, want 2", impressions)
	}
	if clicks != 2 {
		t.Errorf("click_through_count = %d, want 2", clicks)
	}
}

func TestEngagementCandidates_ExcludesViewsAndUnclicked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	insertBook(t, db, 1, "Clicked Book")
	insertBook(t, db, 2, "View Only Book")

	// Book 1: one view, one card click, one referral click.
	for _, kind := range []recommend.InteractionKind{
		recommend.KindView, recommend.KindCardClick, recommend.KindReferralClick,
	} {
		if err := db.RecordInteraction(ctx, 1, 9, kind, now); err != nil {
			t.Fatalf("RecordInteraction error = %v", err)
		}
	}
	// Book 2: views only, never clicked through.
	for i := 0; i < 5; i++ {
		if err := db.RecordInteraction(ctx, 2, 9, recommend.KindView, now); err != nil {
			t.Fatalf("RecordInteraction error = %v", err)
		}
	}

	candidates, err := db.EngagementCandidates(ctx)
	if err != nil {
		t.Fatalf("EngagementCandidates() error = %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1 (view-only book must not qualify)", len(candidates))
	}
	if candidates[0].BookID != 1 {
		t.Errorf("candidate = book %d, want 1", candidates[0].BookID)
	}
	// 0.5 (card click) + 1.0 (referral click); the view adds nothing.
	if candidates[0].WeightedEngagement != 1.5 {
		t.Errorf("WeightedEngagement = %v, want 1.5", candidates[0].WeightedEngagement)
	}
}

func TestReplaceActiveRanking_Swap(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first := []recommend.PopularityEntry{
		{BookID: 1, Score: 3.0, Rank: 1, FirstRankedAt: now},
		{BookID: 2, Score: 2.0, Rank: 2, FirstRankedAt: now},
	}
	if err := db.ReplaceActiveRanking(ctx, first); err != nil {
		t.Fatalf("ReplaceActiveRanking() error = %v", err)
	}

	second := []recommend.PopularityEntry{
		{BookID: 3, Score: 5.0, Rank: 1, FirstRankedAt: now},
	}
	if err := db.ReplaceActiveRanking(ctx, second); err != nil {
		t.Fatalf("ReplaceActiveRanking() error = %v", err)
	}

	active, err := db.ActiveEntries(ctx)
	if err != nil {
		t.Fatalf("ActiveEntries() error = %v", err)
	}

	if len(active) != 1 {
		t.Fatalf("len(active) = %d, want 1 (old ranking must be deactivated)", len(active))
	}
	if active[0].BookID != 3 || active[0].Rank != 1 {
		t.Errorf("active[0] = %+v, want book 3 at rank 1", active[0])
	}
}

func TestDefaultGenreView(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	// No view yet: nil without error.
	view, err := db.DefaultGenreView(ctx, 9)
	if err != nil {
		t.Fatalf("DefaultGenreView() error = %v", err)
	}
	if view != nil {
		t.Fatalf("view = %+v, want nil for reader without views", view)
	}

	_, err = db.conn.Exec(`INSERT INTO genre_views (id, reader_id, name, is_default) VALUES (1, 9, 'My Shelf', TRUE)`)
	if err != nil {
		t.Fatalf("insert view: %v", err)
	}
	_, err = db.conn.Exec(`INSERT INTO genre_view_terms (view_id, term_id, rank) VALUES (1, 100, 2), (1, 200, 1)`)
	if err != nil {
		t.Fatalf("insert view terms: %v", err)
	}

	view, err = db.DefaultGenreView(ctx, 9)
	if err != nil {
		t.Fatalf("DefaultGenreView() error = %v", err)
	}
	if view == nil {
		t.Fatal("view = nil, want default view")
	}
	if !view.Default || view.Name != "My Shelf" {
		t.Errorf("view = %+v", view)
	}
	// Terms come back rank-ordered.
	if len(view.Terms) != 2 || view.Terms[0].TermID != 200 || view.Terms[1].TermID != 100 {
		t.Errorf("Terms = %+v, want [{200 1} {100 2}]", view.Terms)
	}
}

func TestExcludedBooks_UnionOfRatedAndCompleted(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := db.conn.Exec(`INSERT INTO ratings (reader_id, book_id, enjoyment) VALUES (9, 1, 0.8), (9, 2, 0.5)`)
	if err != nil {
		t.Fatalf("insert ratings: %v", err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO reading_log (reader_id, book_id, status)
		VALUES (9, 2, 'completed'), (9, 3, 'completed'), (9, 4, 'reading')
	`)
	if err != nil {
		t.Fatalf("insert reading log: %v", err)
	}

	excluded, err := db.ExcludedBooks(ctx, 9)
	if err != nil {
		t.Fatalf("ExcludedBooks() error = %v", err)
	}

	got := make(map[int64]bool, len(excluded))
	for _, id := range excluded {
		got[id] = true
	}
	// Rated (1, 2) union completed (2, 3); in-progress book 4 stays in.
	if len(got) != 3 || !got[1] || !got[2] || !got[3] {
		t.Errorf("excluded = %v, want {1, 2, 3}", excluded)
	}
}

func TestSetTagRank(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SetTagRank(ctx, 1, 100, 0); err == nil {
		t.Error("SetTagRank(rank 0) error = nil, want ErrInvalidRank")
	}

	if err := db.SetTagRank(ctx, 1, 100, 1); err != nil {
		t.Fatalf("SetTagRank() error = %v", err)
	}

	tagged, err := db.BooksForTerms(ctx, []int64{100})
	if err != nil {
		t.Fatalf("BooksForTerms() error = %v", err)
	}
	if len(tagged) != 1 || tagged[0].Importance != 1.0 {
		t.Fatalf("tagged = %+v, want one tag with importance 1.0", tagged)
	}

	// Re-ranking recomputes importance.
	if err := db.SetTagRank(ctx, 1, 100, 3); err != nil {
		t.Fatalf("SetTagRank() error = %v", err)
	}
	tagged, err = db.BooksForTerms(ctx, []int64{100})
	if err != nil {
		t.Fatalf("BooksForTerms() error = %v", err)
	}
	if len(tagged) != 1 {
		t.Fatalf("len(tagged) = %d, want 1 (upsert, not insert)", len(tagged))
	}
	if want := recommend.TagImportance(3); tagged[0].Importance != want {
		t.Errorf("importance = %v, want %v", tagged[0].Importance, want)
	}
}

func TestEnsurePreferenceVector_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, err := db.EnsurePreferenceVector(ctx, 9)
	if err != nil {
		t.Fatalf("EnsurePreferenceVector() error = %v", err)
	}
	if first != recommend.DefaultPreferenceVector() {
		t.Errorf("first read = %+v, want default vector", first)
	}

	// Concurrent first-reads for a fresh reader must converge on one row.
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := db.EnsurePreferenceVector(ctx, 10); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent EnsurePreferenceVector() error = %v", err)
	}

	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM rating_preferences WHERE reader_id = 10`).Scan(&count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("rows for reader 10 = %d, want 1", count)
	}
}

func TestUpdatePreferenceVector(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bad := recommend.PreferenceVector{Enjoyment: 1.5}
	if err := db.UpdatePreferenceVector(ctx, 9, bad); err == nil {
		t.Error("UpdatePreferenceVector(out of range) error = nil, want ErrInvalidWeight")
	}

	want := recommend.PreferenceVector{Enjoyment: 0.5, Writing: 0.5, Themes: 0.0, Characters: 0.0, Worldbuilding: 0.0}
	if err := db.UpdatePreferenceVector(ctx, 9, want); err != nil {
		t.Fatalf("UpdatePreferenceVector() error = %v", err)
	}

	got, err := db.EnsurePreferenceVector(ctx, 9)
	if err != nil {
		t.Fatalf("EnsurePreferenceVector() error = %v", err)
	}
	if got != want {
		t.Errorf("vector = %+v, want %+v", got, want)
	}
}

func TestPopularByImpressions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertBook(t, db, 1, "Sometimes Seen")
	insertBook(t, db, 2, "Often Seen")
	insertBook(t, db, 3, "Never Seen")
	if _, err := db.conn.Exec(`UPDATE books SET impression_count = 10 WHERE id = 1`); err != nil {
		t.Fatalf("seed impressions: %v", err)
	}
	if _, err := db.conn.Exec(`UPDATE books SET impression_count = 50 WHERE id = 2`); err != nil {
		t.Fatalf("seed impressions: %v", err)
	}

	books, err := db.PopularByImpressions(ctx, 10)
	if err != nil {
		t.Fatalf("PopularByImpressions() error = %v", err)
	}

	if len(books) != 2 {
		t.Fatalf("len(books) = %d, want 2 (zero-impression book excluded)", len(books))
	}
	if books[0].BookID != 2 || books[0].Score != 50 {
		t.Errorf("books[0] = %+v, want book 2 with 50 impressions", books[0])
	}
}
