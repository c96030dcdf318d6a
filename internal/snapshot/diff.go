// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package snapshot

import (
	"sort"

	"github.com/tomtom215/personalize/internal/recommend"
)

// Diff is the comparison of the current recommendations with the previous
// snapshot.
type Diff struct {
	// Evaluated is every product id considered, ascending.
	Evaluated []int

	// Current holds the new line for every evaluated product.
	Current Snapshot

	// Changed lists the products whose line differs, ascending.
	Changed []int

	changed map[int]struct{}
}

// Compare evaluates the union of recommendation keys, purchased products and
// previous snapshot keys. A product is changed when its current line differs
// from the previous one, or when it has no previous line.
func Compare(previous Snapshot, recs recommend.RecommendationSet, purchasedIDs []int) *Diff {
	union := make(map[int]struct{}, len(recs)+len(purchasedIDs)+len(previous))
	for id := range recs {
		union[id] = struct{}{}
	}
	for _, id := range purchasedIDs {
		union[id] = struct{}{}
	}
	for id := range previous {
		union[id] = struct{}{}
	}

	evaluated := make([]int, 0, len(union))
	for id := range union {
		evaluated = append(evaluated, id)
	}
	sort.Ints(evaluated)

	d := &Diff{
		Evaluated: evaluated,
		Current:   make(Snapshot, len(evaluated)),
		Changed:   make([]int, 0),
		changed:   make(map[int]struct{}),
	}
	for _, id := range evaluated {
		line := EncodeLine(id, recs.PartnerIDs(id))
		d.Current[id] = line

		prev, ok := previous[id]
		if !ok || prev != line {
			d.Changed = append(d.Changed, id)
			d.changed[id] = struct{}{}
		}
	}
	return d
}

// IsChanged reports whether id is in the change set.
func (d *Diff) IsChanged(id int) bool {
	_, ok := d.changed[id]
	return ok
}

// Unchanged returns the number of evaluated products that did not change.
func (d *Diff) Unchanged() int {
	return len(d.Evaluated) - len(d.Changed)
}

// Lines returns the current snapshot lines in ascending product order.
func (d *Diff) Lines() []string {
	lines := make([]string, len(d.Evaluated))
	for i, id := range d.Evaluated {
		lines[i] = d.Current[id]
	}
	return lines
}
