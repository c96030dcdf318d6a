// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package pipeline

import (
	"time"

	"github.com/tomtom215/personalize/internal/dispatch"
	"github.com/tomtom215/personalize/internal/report"
)

// Outcome classifies a finished run.
type Outcome string

const (
	// OutcomeSuccess means the snapshot was advanced.
	OutcomeSuccess Outcome = "success"

	// OutcomeEmpty means there were no purchases after exclusion; nothing was touched.
	OutcomeEmpty Outcome = "empty"

	// OutcomeFailure means a fatal error stopped the run.
	OutcomeFailure Outcome = "failure"
)

// Step names.
const (
	StepLoadPurchases = "load_purchases"
	StepLoadSnapshot  = "load_snapshot"
	StepCompute       = "compute"
	StepDiff          = "diff"
	StepDispatch      = "dispatch"
	StepWriteSnapshot = "write_snapshot"
	StepPublishEvents = "publish_events"
	StepReport        = "report"
)

// Event publication states.
const (
	EventsDisabled  = "disabled"
	EventsPublished = "published"
	EventsNoChanges = "no changes"
)

// Result is the outcome of one run.
type Result struct {
	RunID   string        `json:"run_id"`
	Outcome Outcome       `json:"outcome"`
	Start   time.Time     `json:"start"`
	End     time.Time     `json:"end"`
	Steps   []report.Step `json:"steps"`

	Purchases           int `json:"purchases"`
	Evaluated           int `json:"evaluated"`
	WithRecommendations int `json:"with_recommendations"`
	Changed             int `json:"changed"`
	Unchanged           int `json:"unchanged"`

	// Dispatch is nil when the run stopped before dispatching.
	Dispatch *dispatch.Stats `json:"dispatch,omitempty"`

	Events string `json:"events"`

	// ReportError is set when delivery failed; the run still counts.
	ReportError string `json:"report_error,omitempty"`

	Error string `json:"error,omitempty"`
}

// Duration is the wall time of the run.
func (r *Result) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Succeeded reports whether the run ended without a fatal error.
func (r *Result) Succeeded() bool {
	return r.Outcome != OutcomeFailure
}

func (r *Result) markStep(name string, start time.Time) {
	d := time.Since(start)
	r.Steps = append(r.Steps, report.Step{Name: name, Duration: d})
}

// Report converts the result to a run report.
func (r *Result) Report(snapshotPath string) *report.Report {
	rep := &report.Report{
		RunID:               r.RunID,
		Outcome:             string(r.Outcome),
		Start:               r.Start,
		End:                 r.End,
		Steps:               r.Steps,
		Purchases:           r.Purchases,
		Evaluated:           r.Evaluated,
		WithRecommendations: r.WithRecommendations,
		Changed:             r.Changed,
		Unchanged:           r.Unchanged,
		Events:              r.Events,
		SnapshotPath:        snapshotPath,
		Error:               r.Error,
		Cache:               report.CacheSummary{Skipped: true},
	}
	if d := r.Dispatch; d != nil {
		rep.Upserts = d.Upserts
		rep.Deletes = d.Deletes
		rep.StoreErrors = d.StoreErrors
		rep.Cache = report.CacheSummary{
			Skipped:   d.Cache.Skipped,
			Requested: d.Cache.Requested,
			Succeeded: d.Cache.Succeeded,
			Failed:    d.Cache.Failed,
		}
	}
	return rep
}
