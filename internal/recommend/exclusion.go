// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import "sort"

// ExclusionSet is a set of product ids that must never be recommended.
type ExclusionSet map[int]struct{}

// NewExclusionSet builds a set from a list of ids. Duplicates are ignored.
func NewExclusionSet(ids []int) ExclusionSet {
	set := make(ExclusionSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Contains reports whether id is excluded.
func (e ExclusionSet) Contains(id int) bool {
	_, ok := e[id]
	return ok
}

// IDs returns the excluded ids in ascending order.
func (e ExclusionSet) IDs() []int {
	ids := make([]int, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// FilterPurchases returns copies of the purchases without excluded lines.
// Purchases left with no lines are dropped. The input is not modified.
func (e ExclusionSet) FilterPurchases(purchases []Purchase) []Purchase {
	if len(e) == 0 {
		return purchases
	}

	out := make([]Purchase, 0, len(purchases))
	for i := range purchases {
		p := purchases[i]
		lines := make([]ProductLine, 0, len(p.Lines))
		for _, line := range p.Lines {
			if !e.Contains(line.ProductID) {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		p.Lines = lines
		out = append(out, p)
	}
	return out
}

// FilterRecommendations removes excluded sources and excluded partners.
// A source whose list becomes empty is removed from the result.
func (e ExclusionSet) FilterRecommendations(set RecommendationSet) RecommendationSet {
	if len(e) == 0 {
		return set
	}

	out := make(RecommendationSet, len(set))
	for source, recs := range set {
		if e.Contains(source) {
			continue
		}
		kept := make([]RecommendedProduct, 0, len(recs))
		for _, r := range recs {
			if !e.Contains(r.ProductID) {
				kept = append(kept, r)
			}
		}
		if len(kept) > 0 {
			out[source] = kept
		}
	}
	return out
}
