// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

// Package safety wraps the platform's content-safety collaborator for
// use by the recommendation core.
//
// The collaborator contract is a single call: given a reader and a list
// of candidate book IDs, return the subset the reader may be shown. This
// package provides a pass-through implementation for deployments without
// a safety service, a function adapter for wiring a real collaborator,
// and a circuit-breaker decorator that fails open when the collaborator
// is unavailable.
package safety

import (
	"context"

	"github.com/shelfwise/shelfwise/internal/recommend"
)

// AllowAll permits every candidate. Used when no safety collaborator is
// configured.
type AllowAll struct{}

// Filter implements recommend.SafetyFilter.
func (AllowAll) Filter(_ context.Context, _ int64, bookIDs []int64) ([]int64, error) {
	return bookIDs, nil
}

// Func adapts a plain function to the filter interface.
type Func func(ctx context.Context, readerID int64, bookIDs []int64) ([]int64, error)

// Filter implements recommend.SafetyFilter.
func (f Func) Filter(ctx context.Context, readerID int64, bookIDs []int64) ([]int64, error) {
	return f(ctx, readerID, bookIDs)
}

// Interface compliance.
var (
	_ recommend.SafetyFilter = AllowAll{}
	_ recommend.SafetyFilter = Func(nil)
)
