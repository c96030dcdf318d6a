// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import (
	"fmt"
	"math"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// TopN bounds the number of partners kept per product.
	TopN int `json:"top_n"`

	// HalfLifeDays is the age in days at which a purchase weighs one half.
	HalfLifeDays float64 `json:"half_life_days"`

	// ExcludedProductIDs never appear as sources or as recommendations.
	ExcludedProductIDs []int `json:"excluded_product_ids"`

	// Weights blends the three normalized metrics into one score.
	Weights ScoreWeights `json:"weights"`
}

// ScoreWeights defines the contribution of each normalized metric.
// The weights must sum to 1 so combined scores stay within [0, 1].
type ScoreWeights struct {
	Count  float64 `json:"count"`
	Lift   float64 `json:"lift"`
	Cosine float64 `json:"cosine"`
}

// DefaultScoreWeights returns the 0.3 / 0.4 / 0.3 blend.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Count:  0.3,
		Lift:   0.4,
		Cosine: 0.3,
	}
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TopN:         5,
		HalfLifeDays: 30,
		Weights:      DefaultScoreWeights(),
	}
}

// Validate checks that the configuration can produce bounded scores.
func (c *Config) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	if c.HalfLifeDays <= 0 || math.IsInf(c.HalfLifeDays, 0) || math.IsNaN(c.HalfLifeDays) {
		return fmt.Errorf("half_life_days must be a positive number, got %f", c.HalfLifeDays)
	}

	w := c.Weights
	if w.Count < 0 || w.Lift < 0 || w.Cosine < 0 {
		return fmt.Errorf("score weights must be non-negative, got %+v", w)
	}
	if sum := w.Count + w.Lift + w.Cosine; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("score weights must sum to 1, got %f", sum)
	}
	return nil
}
