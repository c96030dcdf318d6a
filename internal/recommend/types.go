// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import (
	"sort"
	"time"
)

// ScoreTypeCombined tags scores produced by the weighted count/lift/cosine blend.
const ScoreTypeCombined = "combined"

// ProductLine is one line of a purchase.
type ProductLine struct {
	ProductID int `json:"product_id"`

	// Quantity is carried for completeness; scoring is presence based.
	Quantity int `json:"quantity"`
}

// Purchase is a single order read from the purchase history.
type Purchase struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	Status      string        `json:"status"`
	PurchasedAt time.Time     `json:"purchased_at"`
	Lines       []ProductLine `json:"lines"`
}

// DistinctProducts returns the product ids of the purchase without repeats,
// sorted ascending.
func (p *Purchase) DistinctProducts() []int {
	seen := make(map[int]struct{}, len(p.Lines))
	ids := make([]int, 0, len(p.Lines))
	for _, line := range p.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	sort.Ints(ids)
	return ids
}

// RecommendedProduct is one ranked partner of a source product.
// The JSON shape is the persisted store schema.
type RecommendedProduct struct {
	ProductID int     `json:"productId"`
	Score     float64 `json:"score"`
	ScoreType string  `json:"scoreType"`
}

// RecommendationSet maps a source product id to its partners, ordered by
// descending score. Products without recommendations are absent.
type RecommendationSet map[int][]RecommendedProduct

// ProductIDs returns the keys of the set in ascending order.
func (rs RecommendationSet) ProductIDs() []int {
	ids := make([]int, 0, len(rs))
	for id := range rs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// PartnerIDs returns the recommended product ids for productID in rank order,
// or nil when the product has no recommendations.
func (rs RecommendationSet) PartnerIDs(productID int) []int {
	recs := rs[productID]
	if len(recs) == 0 {
		return nil
	}
	ids := make([]int, len(recs))
	for i, r := range recs {
		ids[i] = r.ProductID
	}
	return ids
}

// CoPurchaseMatrix maps product -> partner -> accumulated decayed weight.
// Both directions of every pair are stored.
type CoPurchaseMatrix map[int]map[int]float64

// add accumulates w on both (a, b) and (b, a).
func (m CoPurchaseMatrix) add(a, b int, w float64) {
	if m[a] == nil {
		m[a] = make(map[int]float64)
	}
	if m[b] == nil {
		m[b] = make(map[int]float64)
	}
	m[a][b] += w
	m[b][a] += w
}

// Weight returns the accumulated weight of the pair, zero when absent.
func (m CoPurchaseMatrix) Weight(a, b int) float64 {
	return m[a][b]
}

// ProductWeights maps product -> accumulated decayed purchase weight.
type ProductWeights map[int]float64

// Total returns the sum of all product weights.
func (w ProductWeights) Total() float64 {
	// Sum in key order so the result does not depend on map iteration.
	ids := make([]int, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var total float64
	for _, id := range ids {
		total += w[id]
	}
	return total
}
