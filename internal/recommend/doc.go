// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package recommend computes item-to-item purchase recommendations.
//
// # Model
//
// Every purchase contributes a time-decayed weight to two structures built in
// the same pass and against the same reference time:
//
//	matrix[a][b] += decay(age)   for every distinct pair {a, b} in the purchase
//	weight[a]    += decay(age)   once per distinct product in the purchase
//
// The matrix is symmetric by construction: both directions are written for
// every pair. Quantities are ignored, co-occurrence is presence based.
//
// # Scoring
//
// For a product p and each partner q with weight[q] > 0 the engine derives
//
//	count  = matrix[p][q]
//	lift   = count * Σweight / (weight[p] * weight[q])
//	cosine = count / sqrt(weight[p] * weight[q])
//
// Each metric is divided by its maximum across p's partners, then the three
// are combined as 0.3*count + 0.4*lift + 0.3*cosine. Partners are ranked by
// the combined score, ties broken by ascending product id, and truncated to
// the configured top N.
//
// # Exclusions
//
// Excluded products are removed from purchases before aggregation and again
// from the finished recommendation lists. A list left empty by the second
// pass is dropped from the set.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	result, err := engine.Compute(ctx, purchases)
//
// Compute is a pure function of its inputs and the engine clock; it holds no
// state between calls and is safe for concurrent use.
package recommend
