// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/personalize/internal/dispatch"
	"github.com/tomtom215/personalize/internal/events"
	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/metrics"
	"github.com/tomtom215/personalize/internal/purchases"
	"github.com/tomtom215/personalize/internal/recommend"
	"github.com/tomtom215/personalize/internal/report"
	"github.com/tomtom215/personalize/internal/snapshot"
)

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("a pipeline run is already in progress")

// Dispatcher applies a change set to the store and cache.
type Dispatcher interface {
	Dispatch(ctx context.Context, changed []int, recs recommend.RecommendationSet) (*dispatch.Stats, error)
}

// Mailer delivers run reports.
type Mailer interface {
	Deliver(ctx context.Context, r *report.Report) error
}

// Deps are the collaborators of a Runner. Events and Mailer are optional.
type Deps struct {
	Purchases  purchases.Provider
	Engine     *recommend.Engine
	Dispatcher Dispatcher
	Events     events.ChangePublisher
	Mailer     Mailer
}

// Runner executes pipeline passes. Runs never overlap.
type Runner struct {
	deps         Deps
	snapshotPath string

	runMu sync.Mutex

	mu          sync.RWMutex
	last        *Result
	lastSuccess time.Time
}

// NewRunner creates a runner persisting its snapshot at snapshotPath.
func NewRunner(deps Deps, snapshotPath string) (*Runner, error) {
	if deps.Purchases == nil || deps.Engine == nil || deps.Dispatcher == nil {
		return nil, errors.New("purchases, engine and dispatcher are required")
	}
	if snapshotPath == "" {
		return nil, errors.New("snapshot path is required")
	}
	return &Runner{deps: deps, snapshotPath: snapshotPath}, nil
}

// LastResult returns the most recent result, or nil before the first run.
func (r *Runner) LastResult() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// LastSuccess returns the end time of the most recent successful run.
func (r *Runner) LastSuccess() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastSuccess
}

// Run executes one pass and returns its result. The error is non-nil only
// for fatal failures; the result is returned in both cases.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.runMu.Unlock()

	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	log := logging.Ctx(ctx)

	metrics.TrackRun(true)
	defer metrics.TrackRun(false)

	res := &Result{
		RunID:   logging.RunIDFromContext(ctx),
		Start:   time.Now(),
		Events:  EventsDisabled,
		Outcome: OutcomeSuccess,
	}
	log.Info().Str("snapshot", r.snapshotPath).Msg("Pipeline run started")

	err := r.execute(ctx, res)
	if err != nil {
		res.Outcome = OutcomeFailure
		res.Error = err.Error()
	}
	res.End = time.Now()

	r.deliverReport(ctx, res)
	r.record(res)

	if err != nil {
		log.Error().Err(err).Dur("duration", res.Duration()).Msg("Pipeline run failed")
		return res, err
	}
	log.Info().
		Str("outcome", string(res.Outcome)).
		Int("purchases", res.Purchases).
		Int("changed", res.Changed).
		Dur("duration", res.Duration()).
		Msg("Pipeline run completed")
	return res, nil
}

func (r *Runner) execute(ctx context.Context, res *Result) error {
	log := logging.Ctx(ctx)

	start := time.Now()
	history, err := r.deps.Purchases.Purchases(ctx)
	if err != nil {
		return fmt.Errorf("load purchases: %w", err)
	}
	history = r.deps.Engine.Exclusions().FilterPurchases(history)
	res.markStep(StepLoadPurchases, start)
	res.Purchases = len(history)

	if len(history) == 0 {
		log.Warn().Msg("No purchases after exclusion, nothing to do")
		res.Outcome = OutcomeEmpty
		return nil
	}

	start = time.Now()
	previous, err := snapshot.Load(r.snapshotPath)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	res.markStep(StepLoadSnapshot, start)
	log.Debug().Int("products", len(previous)).Msg("Previous snapshot loaded")

	start = time.Now()
	computed, err := r.deps.Engine.Compute(ctx, history)
	if err != nil {
		return fmt.Errorf("compute recommendations: %w", err)
	}
	res.markStep(StepCompute, start)
	res.WithRecommendations = len(computed.Recommendations)

	start = time.Now()
	diff := snapshot.Compare(previous, computed.Recommendations, recommend.ProductIDs(computed.Purchases))
	res.markStep(StepDiff, start)
	res.Evaluated = len(diff.Evaluated)
	res.Changed = len(diff.Changed)
	res.Unchanged = diff.Unchanged()
	log.Info().Int("evaluated", res.Evaluated).Int("changed", res.Changed).Msg("Snapshot compared")

	start = time.Now()
	stats, err := r.deps.Dispatcher.Dispatch(ctx, diff.Changed, computed.Recommendations)
	res.Dispatch = stats
	if err != nil {
		return fmt.Errorf("dispatch changes: %w", err)
	}
	res.markStep(StepDispatch, start)

	start = time.Now()
	if err := snapshot.Write(r.snapshotPath, diff.Lines()); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	res.markStep(StepWriteSnapshot, start)

	r.publish(ctx, res, diff.Changed)
	return nil
}

// publish sends the change event. Failures are recorded in the result only.
func (r *Runner) publish(ctx context.Context, res *Result, changed []int) {
	if r.deps.Events == nil {
		return
	}
	if len(changed) == 0 {
		res.Events = EventsNoChanges
		return
	}

	start := time.Now()
	err := r.deps.Events.PublishChanges(ctx, res.RunID, events.ChangeSet{
		Changed: changed,
		Upserts: res.Dispatch.Upserts,
		Deletes: res.Dispatch.Deletes,
	})
	res.markStep(StepPublishEvents, start)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Change event not published")
		res.Events = "failed: " + err.Error()
		return
	}
	res.Events = EventsPublished
}

func (r *Runner) deliverReport(ctx context.Context, res *Result) {
	start := time.Now()
	rep := res.Report(r.snapshotPath)
	logging.Ctx(ctx).Info().Msg("Run report\n" + rep.Render())

	if r.deps.Mailer != nil {
		if err := r.deps.Mailer.Deliver(ctx, rep); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Run report not delivered")
			res.ReportError = err.Error()
		}
	}
	res.markStep(StepReport, start)
}

func (r *Runner) record(res *Result) {
	for _, s := range res.Steps {
		metrics.RecordStep(s.Name, s.Duration)
	}
	metrics.RecordRun(res.Duration(), string(res.Outcome))
	metrics.UpdateRunGauges(res.Purchases, res.Evaluated, res.WithRecommendations, res.Changed)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = res
	if res.Succeeded() {
		r.lastSuccess = res.End
	}
}
