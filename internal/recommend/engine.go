// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Engine runs one full recommendation pass: exclusion, aggregation, scoring
// and post-filtering.
type Engine struct {
	config     Config
	decay      Decay
	combiner   *Combiner
	exclusions ExclusionSet
	logger     zerolog.Logger

	// now returns the reference time for decay; replaceable in tests.
	now func() time.Time
}

// Result is the output of a single pass.
type Result struct {
	// Purchases are the inputs after exclusion filtering.
	Purchases []Purchase

	Matrix          CoPurchaseMatrix
	Weights         ProductWeights
	Recommendations RecommendationSet

	// ReferenceTime is the "now" used for every decay weight in the pass.
	ReferenceTime time.Time
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg Config, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	return &Engine{
		config:     cfg,
		decay:      NewDecay(cfg.HalfLifeDays),
		combiner:   NewCombiner(cfg.TopN, cfg.Weights),
		exclusions: NewExclusionSet(cfg.ExcludedProductIDs),
		logger:     logger.With().Str("component", "recommend").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// SetClock replaces the reference time source.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// Exclusions returns the configured exclusion set.
func (e *Engine) Exclusions() ExclusionSet {
	return e.exclusions
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Compute produces the recommendation set for the given purchase history.
func (e *Engine) Compute(ctx context.Context, purchases []Purchase) (*Result, error) {
	start := time.Now()
	now := e.now()

	filtered := e.exclusions.FilterPurchases(purchases)
	if dropped := len(purchases) - len(filtered); dropped > 0 {
		e.logger.Debug().
			Int("dropped", dropped).
			Int("excluded_products", len(e.exclusions)).
			Msg("purchases emptied by exclusions")
	}

	matrix, weights := Aggregate(filtered, e.decay, now)

	recs, err := e.combiner.Combine(ctx, matrix, weights)
	if err != nil {
		return nil, fmt.Errorf("combine scores: %w", err)
	}
	recs = e.exclusions.FilterRecommendations(recs)

	e.logger.Info().
		Int("purchases", len(filtered)).
		Int("products", len(weights)).
		Int("recommended_products", len(recs)).
		Int("top_n", e.config.TopN).
		Dur("duration", time.Since(start)).
		Msg("recommendations computed")

	return &Result{
		Purchases:       filtered,
		Matrix:          matrix,
		Weights:         weights,
		Recommendations: recs,
		ReferenceTime:   now,
	}, nil
}

// ProductIDs returns every distinct product id appearing in the purchases.
func ProductIDs(purchases []Purchase) []int {
	seen := make(map[int]struct{})
	ids := make([]int, 0)
	for i := range purchases {
		for _, id := range purchases[i].DistinctProducts() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}
