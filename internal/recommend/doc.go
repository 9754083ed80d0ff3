// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

// Package recommend implements the Shelfwise recommendation and ranking core.
//
// # Components
//
// Three independent components read the same interaction and taxonomy data:
//
//   - Ranker: converts raw interaction history into a time-decayed,
//     globally ordered popularity list, committed atomically.
//   - Scorer: converts a reader's ranked taxonomy preferences into a
//     personalized, relevance-ordered sample of unseen books.
//   - Calculator: converts two readers' rating-criterion weight vectors
//     into a symmetric compatibility classification.
//
// None of the components depends on another at runtime.
//
// # Design Principles
//
//   - Degrade, don't fail: scoring errors fall back to a simpler
//     impression-count popularity list instead of surfacing to callers.
//   - Reproducible: the Scorer's random sampling uses an injectable,
//     seedable source so tests are deterministic.
//   - Auditable: operations are logged with structured fields and carry
//     correlation IDs.
//
// # Data Access
//
// The package has no dependency on other internal packages. Storage is
// reached through the RankingStore, CandidateSource, and PreferenceStore
// interfaces, implemented by the database layer. The content-safety
// collaborator is reached through SafetyFilter.
//
// # Usage
//
//	ranker := recommend.NewRanker(store, cfg.Popularity, logger)
//	entries, err := ranker.Run(ctx)
//
//	scorer := recommend.NewScorer(source, filter, cfg.Scorer, logger)
//	recs, err := scorer.Recommend(ctx, readerID, 0)
//
//	calc := recommend.NewCalculator(prefs, logger)
//	report, err := calc.Compare(ctx, readerA, readerB)
package recommend
