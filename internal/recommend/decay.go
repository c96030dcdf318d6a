// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package recommend

import (
	"math"
	"time"
)

// Decay is exponential half-life decay over purchase age.
//
// Weight function: w(days) = 2^(-days / HalfLifeDays), with w = 1 for
// future-dated purchases (negative age).
type Decay struct {
	HalfLifeDays float64
}

// NewDecay creates a decay with the given half-life in days.
func NewDecay(halfLifeDays float64) Decay {
	return Decay{HalfLifeDays: halfLifeDays}
}

// Weight returns the decay weight for an age in days. The result lies in (0, 1].
func (d Decay) Weight(days float64) float64 {
	if days < 0 {
		return 1.0
	}
	return math.Pow(2, -days/d.HalfLifeDays)
}

// WeightAt returns the decay weight of an event at t relative to now.
func (d Decay) WeightAt(now, t time.Time) float64 {
	return d.Weight(ageInDays(now, t))
}

// ageInDays returns the fractional number of days between t and now.
func ageInDays(now, t time.Time) float64 {
	return now.Sub(t).Hours() / 24
}
