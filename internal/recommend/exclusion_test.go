// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import "testing"

func TestExclusionSet_FilterPurchases(t *testing.T) {
	set := NewExclusionSet([]int{42, 42, 7})

	purchases := []Purchase{
		purchaseOf(testNow, 1, 42),
		purchaseOf(testNow, 42),
		purchaseOf(testNow, 7, 42),
		purchaseOf(testNow, 2, 3),
	}

	got := set.FilterPurchases(purchases)
	if len(got) != 2 {
		t.Fatalf("len(FilterPurchases) = %d, want 2", len(got))
	}
	if ids := got[0].DistinctProducts(); len(ids) != 1 || ids[0] != 1 {
		t.Errorf("first purchase products = %v, want [1]", ids)
	}

	// Input stays untouched.
	if len(purchases[0].Lines) != 2 {
		t.Errorf("input purchase mutated: %d lines, want 2", len(purchases[0].Lines))
	}
	if ids := set.IDs(); len(ids) != 2 || ids[0] != 7 || ids[1] != 42 {
		t.Errorf("IDs() = %v, want [7 42]", ids)
	}
}

func TestExclusionSet_FilterRecommendations(t *testing.T) {
	set := NewExclusionSet([]int{42})

	recs := RecommendationSet{
		42: {{ProductID: 1, Score: 1}},
		1:  {{ProductID: 42, Score: 1}, {ProductID: 2, Score: 0.5}},
		3:  {{ProductID: 42, Score: 1}},
	}

	got := set.FilterRecommendations(recs)

	if _, ok := got[42]; ok {
		t.Error("excluded source 42 still present")
	}
	if _, ok := got[3]; ok {
		t.Error("product 3 should be dropped once its only partner is excluded")
	}
	if ids := got.PartnerIDs(1); len(ids) != 1 || ids[0] != 2 {
		t.Errorf("PartnerIDs(1) = %v, want [2]", ids)
	}
}

func TestExclusionSet_Empty(t *testing.T) {
	set := NewExclusionSet(nil)
	purchases := []Purchase{purchaseOf(testNow, 1, 2)}

	if got := set.FilterPurchases(purchases); len(got) != 1 {
		t.Errorf("len(FilterPurchases) = %d, want 1", len(got))
	}
	if set.Contains(1) {
		t.Error("empty set contains 1")
	}
}
