// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import (
	"context"
	"math"
	"sort"
)

// Combiner turns a co-purchase matrix and product weights into ranked,
// bounded recommendation lists.
type Combiner struct {
	topN    int
	weights ScoreWeights
}

// NewCombiner creates a combiner keeping at most topN partners per product.
func NewCombiner(topN int, weights ScoreWeights) *Combiner {
	if topN < 1 {
		topN = 1
	}
	return &Combiner{
		topN:    topN,
		weights: weights,
	}
}

// partnerScores holds the raw metrics for one (product, partner) pair.
type partnerScores struct {
	partner int
	count   float64
	lift    float64
	cosine  float64
}

// Combine scores every product that has at least one partner and a nonzero
// weight. Products whose partners all have zero weight are omitted.
func (c *Combiner) Combine(ctx context.Context, matrix CoPurchaseMatrix, weights ProductWeights) (RecommendationSet, error) {
	total := weights.Total()

	// Visit sources in id order so cancellation leaves a reproducible prefix.
	sources := make([]int, 0, len(matrix))
	for p := range matrix {
		sources = append(sources, p)
	}
	sort.Ints(sources)

	result := make(RecommendationSet, len(sources))
	for i, p := range sources {
		if i%1024 == 0 && contextCancelled(ctx) {
			return nil, ctx.Err()
		}
		if recs := c.scoreProduct(p, matrix[p], weights, total); len(recs) > 0 {
			result[p] = recs
		}
	}
	return result, nil
}

// scoreProduct computes, normalizes, blends and truncates the partner scores
// for a single source product.
func (c *Combiner) scoreProduct(p int, partners map[int]float64, weights ProductWeights, total float64) []RecommendedProduct {
	wp := weights[p]
	if wp <= 0 || len(partners) == 0 {
		return nil
	}

	scores := make([]partnerScores, 0, len(partners))
	var maxCount, maxLift, maxCosine float64
	for q, count := range partners {
		wq := weights[q]
		if wq <= 0 {
			continue
		}

		s := partnerScores{partner: q, count: count}
		if total != 0 {
			s.lift = (count * total) / (wp * wq)
		}
		if denom := math.Sqrt(wp * wq); denom > 0 {
			s.cosine = count / denom
		}

		maxCount = math.Max(maxCount, s.count)
		maxLift = math.Max(maxLift, s.lift)
		maxCosine = math.Max(maxCosine, s.cosine)
		scores = append(scores, s)
	}
	if len(scores) == 0 {
		return nil
	}

	recs := make([]RecommendedProduct, len(scores))
	for i, s := range scores {
		combined := c.weights.Count*normalize(s.count, maxCount) +
			c.weights.Lift*normalize(s.lift, maxLift) +
			c.weights.Cosine*normalize(s.cosine, maxCosine)

		recs[i] = RecommendedProduct{
			ProductID: s.partner,
			Score:     clamp01(combined),
			ScoreType: ScoreTypeCombined,
		}
	}

	sortRecommendations(recs)
	if len(recs) > c.topN {
		recs = recs[:c.topN]
	}
	return recs
}

// sortRecommendations orders by descending score, then ascending product id.
func sortRecommendations(recs []RecommendedProduct) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score != recs[j].Score {
			return recs[i].Score > recs[j].Score
		}
		return recs[i].ProductID < recs[j].ProductID
	})
}

// normalize divides v by the maximum, yielding 0 when the maximum is 0.
func normalize(v, maxValue float64) float64 {
	if maxValue == 0 {
		return 0
	}
	return v / maxValue
}

// clamp01 absorbs floating point drift at the edges of [0, 1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// contextCancelled checks if the context has been canceled.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
