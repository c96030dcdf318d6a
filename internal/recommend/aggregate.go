// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import (
	"time"
)

// Aggregate builds the co-purchase matrix and the product weights in one pass
// over the purchases, sharing the decay weight of each purchase between both.
// Repeated lines for the same product count once; single-product purchases
// contribute a weight but no pairs.
func Aggregate(purchases []Purchase, decay Decay, now time.Time) (CoPurchaseMatrix, ProductWeights) {
	matrix := make(CoPurchaseMatrix)
	weights := make(ProductWeights)
	for i := range purchases {
		p := &purchases[i]
		w := decay.WeightAt(now, p.PurchasedAt)
		addPairs(matrix, p, w)
		addWeights(weights, p, w)
	}
	return matrix, weights
}

func addPairs(matrix CoPurchaseMatrix, p *Purchase, w float64) {
	products := p.DistinctProducts()
	for i := 0; i < len(products); i++ {
		for j := i + 1; j < len(products); j++ {
			matrix.add(products[i], products[j], w)
		}
	}
}

func addWeights(weights ProductWeights, p *Purchase, w float64) {
	for _, id := range p.DistinctProducts() {
		weights[id] += w
	}
}
