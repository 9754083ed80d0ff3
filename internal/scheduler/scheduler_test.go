// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/shelfwise/shelfwise/internal/recommend"
)

type fakeRanker struct {
	runs int32
	err  error
}

func (f *fakeRanker) Run(_ context.Context) ([]recommend.PopularityEntry, error) {
	atomic.AddInt32(&f.runs, 1)
	if f.err != nil {
		return nil, f.err
	}
	return []recommend.PopularityEntry{{BookID: 1, Rank: 1}}, nil
}

func (f *fakeRanker) count() int32 {
	return atomic.LoadInt32(&f.runs)
}

func TestService_RunOnStartup(t *testing.T) {
	ranker := &fakeRanker{}
	svc := NewService(ranker, Config{RunOnStartup: true, Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for ranker.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("startup recompute never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if got := ranker.count(); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestService_TickerDrivenReruns(t *testing.T) {
	ranker := &fakeRanker{}
	svc := NewService(ranker, Config{Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.After(2 * time.Second)
	for ranker.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("runs = %d, want >= 2 ticker runs", ranker.count())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	<-done
}

func TestService_SurvivesRankerErrors(t *testing.T) {
	ranker := &fakeRanker{err: errors.New("store unavailable")}
	svc := NewService(ranker, Config{RunOnStartup: true, Interval: 20 * time.Millisecond}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Failed runs are logged, not fatal: the loop keeps ticking.
	deadline := time.After(2 * time.Second)
	for ranker.count() < 3 {
		select {
		case <-deadline:
			t.Fatalf("runs = %d, want >= 3 despite errors", ranker.count())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(&fakeRanker{}, Config{}, zerolog.Nop())
	if svc.cfg.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.cfg.Interval)
	}
	if svc.cfg.RunTimeout != 5*time.Minute {
		t.Errorf("RunTimeout = %v, want 5m", svc.cfg.RunTimeout)
	}
	if svc.String() != "ranking-schedule" {
		t.Errorf("String() = %q", svc.String())
	}
}
