// Shelfwise - Book Discovery Platform
// Copyright 2026 Shelfwise Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shelfwise/shelfwise

package recommend

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Criterion is one of the five rating criteria a reader can weight.
type Criterion int

const (
	// CriterionEnjoyment weights overall enjoyment.
	CriterionEnjoyment Criterion = iota
	// CriterionWriting weights prose quality.
	CriterionWriting
	// CriterionThemes weights thematic depth.
	CriterionThemes
	// CriterionCharacters weights character work.
	CriterionCharacters
	// CriterionWorldbuilding weights setting and worldbuilding.
	CriterionWorldbuilding

	numCriteria = 5
)

// String returns the criterion name.
func (c Criterion) String() string {
	switch c {
	case CriterionEnjoyment:
		return "enjoyment"
	case CriterionWriting:
		return "writing"
	case CriterionThemes:
		return "themes"
	case CriterionCharacters:
		return "characters"
	case CriterionWorldbuilding:
		return "worldbuilding"
	default:
		return "unknown"
	}
}

// Criteria lists all five criteria in canonical order.
func Criteria() [numCriteria]Criterion {
	return [numCriteria]Criterion{
		CriterionEnjoyment,
		CriterionWriting,
		CriterionThemes,
		CriterionCharacters,
		CriterionWorldbuilding,
	}
}

// PreferenceVector holds a reader's per-criterion rating weights, each in
// [0, 1], describing how much the criterion counts toward the reader's
// personal overall rating.
type PreferenceVector struct {
	Enjoyment     float64 `json:"enjoyment"`
	Writing       float64 `json:"writing"`
	Themes        float64 `json:"themes"`
	Characters    float64 `json:"characters"`
	Worldbuilding float64 `json:"worldbuilding"`
}

// Weight returns the vector's weight for the given criterion.
func (v PreferenceVector) Weight(c Criterion) float64 {
	switch c {
	case CriterionEnjoyment:
		return v.Enjoyment
	case CriterionWriting:
		return v.Writing
	case CriterionThemes:
		return v.Themes
	case CriterionCharacters:
		return v.Characters
	case CriterionWorldbuilding:
		return v.Worldbuilding
	default:
		return 0
	}
}

// DefaultPreferenceVector is the vector synthesized for a reader on first
// read. Enjoyment dominates; worldbuilding counts least.
func DefaultPreferenceVector() PreferenceVector {
	return PreferenceVector{
		Enjoyment:     0.35,
		Writing:       0.25,
		Themes:        0.20,
		Characters:    0.12,
		Worldbuilding: 0.08,
	}
}

// Tier classifies a normalized weight difference. The integer value is
// the compatibility score: +3 most compatible, -3 least.
type Tier int

const (
	// TierOverwhelminglyCompatible is a difference of at most 0.02.
	TierOverwhelminglyCompatible Tier = 3
	// TierVeryCompatible is a difference of at most 0.05.
	TierVeryCompatible Tier = 2
	// TierCompatible is a difference of at most 0.10.
	TierCompatible Tier = 1
	// TierSomewhatCompatible is a difference of at most 0.20.
	TierSomewhatCompatible Tier = 0
	// TierNotVeryCompatible is a difference of at most 0.35.
	TierNotVeryCompatible Tier = -1
	// TierNotCompatible is a difference of at most 0.40.
	TierNotCompatible Tier = -2
	// TierOverwhelminglyNotCompatible is any larger difference.
	TierOverwhelminglyNotCompatible Tier = -3
)

// Score returns the integer compatibility scale value, +3..-3.
func (t Tier) Score() int {
	return int(t)
}

// String returns the tier's display label.
func (t Tier) String() string {
	switch t {
	case TierOverwhelminglyCompatible:
		return "Overwhelmingly Compatible"
	case TierVeryCompatible:
		return "Very Compatible"
	case TierCompatible:
		return "Compatible"
	case TierSomewhatCompatible:
		return "Somewhat Compatible"
	case TierNotVeryCompatible:
		return "Not Very Compatible"
	case TierNotCompatible:
		return "Not Compatible"
	case TierOverwhelminglyNotCompatible:
		return "Overwhelmingly Not Compatible"
	default:
		return "unknown"
	}
}

// ClassifyDiff maps a normalized difference onto the seven fixed tiers.
func ClassifyDiff(diff float64) Tier {
	switch {
	case diff <= 0.02:
		return TierOverwhelminglyCompatible
	case diff <= 0.05:
		return TierVeryCompatible
	case diff <= 0.10:
		return TierCompatible
	case diff <= 0.20:
		return TierSomewhatCompatible
	case diff <= 0.35:
		return TierNotVeryCompatible
	case diff <= 0.40:
		return TierNotCompatible
	default:
		return TierOverwhelminglyNotCompatible
	}
}

// CriterionResult is the per-criterion outcome of a comparison.
type CriterionResult struct {
	Criterion Criterion `json:"criterion"`
	Label     string    `json:"label"`
	Diff      float64   `json:"diff"`
	Score     int       `json:"score"`
}

// Compatibility is the result of comparing two readers' preference
// vectors. Swapping the readers yields an identical result.
type Compatibility struct {
	ReaderA      int64             `json:"reader_a"`
	ReaderB      int64             `json:"reader_b"`
	OverallLabel string            `json:"overall_label"`
	OverallScore int               `json:"overall_score"`
	OverallDiff  float64           `json:"overall_diff"`
	PerCriterion []CriterionResult `json:"per_criterion"`
}

// Calculator derives taste compatibility between two readers.
type Calculator struct {
	prefs  PreferenceStore
	logger zerolog.Logger
}

// NewCalculator creates a compatibility calculator.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCalculator(prefs PreferenceStore, logger zerolog.Logger) *Calculator {
	return &Calculator{
		prefs:  prefs,
		logger: logger.With().Str("component", "compatibility").Logger(),
	}
}

// Compare classifies how similarly two readers weight the five rating
// criteria. Readers without a stored vector get the default vector,
// persisted on first read.
//
// Per criterion, the absolute weight difference is classified into one of
// seven tiers. The overall difference is the weighted average of the five
// diffs, each weighted by the mean of the two readers' own weights for
// that criterion: criteria both readers care about dominate, criteria
// neither cares about barely register.
func (c *Calculator) Compare(ctx context.Context, readerA, readerB int64) (*Compatibility, error) {
	va, err := c.prefs.EnsurePreferenceVector(ctx, readerA)
	if err != nil {
		return nil, fmt.Errorf("preference vector for reader %d: %w", readerA, err)
	}
	vb, err := c.prefs.EnsurePreferenceVector(ctx, readerB)
	if err != nil {
		return nil, fmt.Errorf("preference vector for reader %d: %w", readerB, err)
	}

	perCriterion := make([]CriterionResult, 0, numCriteria)
	var weightedDiffSum, weightSum float64

	for _, crit := range Criteria() {
		wa, wb := va.Weight(crit), vb.Weight(crit)
		diff := math.Abs(wa - wb)
		tier := ClassifyDiff(diff)

		perCriterion = append(perCriterion, CriterionResult{
			Criterion: crit,
			Label:     tier.String(),
			Diff:      diff,
			Score:     tier.Score(),
		})

		w := (wa + wb) / 2
		weightedDiffSum += diff * w
		weightSum += w
	}

	var overallDiff float64
	if weightSum > 0 {
		overallDiff = weightedDiffSum / weightSum
	}
	overall := ClassifyDiff(overallDiff)

	c.logger.Debug().
		Int64("reader_a", readerA).
		Int64("reader_b", readerB).
		Float64("overall_diff", overallDiff).
		Int("overall_score", overall.Score()).
		Msg("compatibility computed")

	return &Compatibility{
		ReaderA:      readerA,
		ReaderB:      readerB,
		OverallLabel: overall.String(),
		OverallScore: overall.Score(),
		OverallDiff:  overallDiff,
		PerCriterion: perCriterion,
	}, nil
}
