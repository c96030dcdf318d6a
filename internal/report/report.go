// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

// Package report renders the end-of-run summary and delivers it by email.
package report

import (
	"fmt"
	"strings"
	"time"
)

// SubjectPrefix starts every summary email subject.
const SubjectPrefix = "Personalize - summary"

const timeLayout = "2006-01-02 15:04:05 MST"

// Step is one timed pipeline step.
type Step struct {
	Name     string
	Duration time.Duration
}

// CacheSummary is the cache invalidation outcome.
type CacheSummary struct {
	Skipped   bool
	Requested int
	Succeeded int
	Failed    int
}

// Report is the summary of one run.
type Report struct {
	RunID   string
	Outcome string
	Start   time.Time
	End     time.Time
	Steps   []Step

	Purchases           int
	Evaluated           int
	WithRecommendations int
	Changed             int
	Unchanged           int
	Upserts             int
	Deletes             int
	StoreErrors         int

	Cache CacheSummary

	// Events is "disabled", "published" or the publish error.
	Events string

	SnapshotPath string

	// Error is the fatal error, if the run failed.
	Error string
}

// Total is the wall time of the run.
func (r *Report) Total() time.Duration {
	return r.End.Sub(r.Start)
}

// Subject is the email subject: prefix plus the start time to the minute.
func (r *Report) Subject() string {
	return fmt.Sprintf("%s %s", SubjectPrefix, r.Start.Format("2006-01-02 15:04"))
}

// Render returns the plain-text report.
func (r *Report) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Personalize run %s: %s\n", r.RunID, r.Outcome)
	fmt.Fprintf(&b, "Start:    %s\n", r.Start.Format(timeLayout))
	fmt.Fprintf(&b, "End:      %s\n", r.End.Format(timeLayout))
	fmt.Fprintf(&b, "Total:    %s\n", r.Total().Round(time.Millisecond))
	if r.Error != "" {
		fmt.Fprintf(&b, "Error:    %s\n", r.Error)
	}

	if len(r.Steps) > 0 {
		width := 0
		for _, s := range r.Steps {
			width = max(width, len(s.Name))
		}
		b.WriteString("\nSteps:\n")
		for _, s := range r.Steps {
			fmt.Fprintf(&b, "  %-*s  %s\n", width, s.Name, s.Duration.Round(time.Millisecond))
		}
	}

	b.WriteString("\nStatistics:\n")
	stats := []struct {
		label string
		value int
	}{
		{"Purchases processed", r.Purchases},
		{"Products evaluated", r.Evaluated},
		{"With recommendations", r.WithRecommendations},
		{"Changed", r.Changed},
		{"Unchanged", r.Unchanged},
		{"Upserts", r.Upserts},
		{"Deletes", r.Deletes},
		{"Store errors", r.StoreErrors},
	}
	for _, s := range stats {
		fmt.Fprintf(&b, "  %-20s  %d\n", s.label, s.value)
	}

	b.WriteString("\n")
	if r.Cache.Skipped {
		b.WriteString("Cache invalidation: skipped\n")
	} else {
		fmt.Fprintf(&b, "Cache invalidation: requested %d, succeeded %d, failed %d\n",
			r.Cache.Requested, r.Cache.Succeeded, r.Cache.Failed)
	}
	if r.Events != "" {
		fmt.Fprintf(&b, "Events: %s\n", r.Events)
	}
	if r.SnapshotPath != "" {
		fmt.Fprintf(&b, "Snapshot: %s\n", r.SnapshotPath)
	}

	return b.String()
}
