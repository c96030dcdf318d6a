// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/personalize/internal/pipeline"
)

type fakeRunner struct {
	calls    atomic.Int32
	active   atomic.Int32
	overlaps atomic.Int32
	block    chan struct{}
	err      error

	mu       sync.Mutex
	deadline time.Time
}

func (f *fakeRunner) Run(ctx context.Context) (*pipeline.Result, error) {
	f.calls.Add(1)
	if f.active.Add(1) > 1 {
		f.overlaps.Add(1)
	}
	defer f.active.Add(-1)

	if d, ok := ctx.Deadline(); ok {
		f.mu.Lock()
		f.deadline = d
		f.mu.Unlock()
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return &pipeline.Result{Outcome: pipeline.OutcomeFailure}, f.err
	}
	return &pipeline.Result{RunID: "test", Outcome: pipeline.OutcomeSuccess}, nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func startService(t *testing.T, svc *PipelineService) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	t.Cleanup(cancel)
	return cancel, errCh
}

func TestPipelineService_Interface(t *testing.T) {
	var _ suture.Service = (*PipelineService)(nil)
}

func TestNewPipelineService_Defaults(t *testing.T) {
	svc := NewPipelineService(&fakeRunner{}, PipelineServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.config.Interval)
	}
	if svc.config.RunTimeout != 2*time.Hour {
		t.Errorf("RunTimeout = %v, want 2h", svc.config.RunTimeout)
	}
	if svc.String() != "pipeline-service" {
		t.Errorf("String() = %q, want pipeline-service", svc.String())
	}
}

func TestPipelineService_RunOnStartup(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewPipelineService(runner, PipelineServiceConfig{RunOnStartup: true, Interval: time.Hour}, zerolog.Nop())

	cancel, errCh := startService(t, svc)
	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
}

func TestPipelineService_NoStartupRun(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())

	startService(t, svc)
	time.Sleep(50 * time.Millisecond)
	if got := runner.calls.Load(); got != 0 {
		t.Errorf("calls = %d, want 0", got)
	}
}

func TestPipelineService_Schedule(t *testing.T) {
	runner := &fakeRunner{err: errors.New("source down")}
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: 20 * time.Millisecond}, zerolog.Nop())

	startService(t, svc)

	// Failed runs do not stop the schedule.
	waitFor(t, func() bool { return runner.calls.Load() >= 3 })
}

func TestPipelineService_TriggerCoalesces(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())

	startService(t, svc)

	if !svc.Trigger() {
		t.Fatal("first Trigger() = false, want true")
	}
	waitFor(t, func() bool { return runner.active.Load() == 1 })

	// One request may wait behind the running pass; the next is rejected.
	if !svc.Trigger() {
		t.Error("Trigger() during a run = false, want true (queued)")
	}
	if svc.Trigger() {
		t.Error("Trigger() with a pending request = true, want false")
	}

	close(runner.block)
	waitFor(t, func() bool { return runner.calls.Load() == 2 && runner.active.Load() == 0 })

	if runner.overlaps.Load() != 0 {
		t.Errorf("overlapping runs = %d, want 0", runner.overlaps.Load())
	}
}

func TestPipelineService_RunTimeout(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour, RunTimeout: 5 * time.Minute}, zerolog.Nop())

	startService(t, svc)
	before := time.Now()
	svc.Trigger()
	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	runner.mu.Lock()
	deadline := runner.deadline
	runner.mu.Unlock()
	if d := deadline.Sub(before); d <= 4*time.Minute || d > 6*time.Minute {
		t.Errorf("run deadline %v after trigger, want about 5m", d)
	}
}

func TestPipelineService_ShutdownCancelsRun(t *testing.T) {
	runner := &fakeRunner{block: make(chan struct{})}
	svc := NewPipelineService(runner, PipelineServiceConfig{RunOnStartup: true, Interval: time.Hour}, zerolog.Nop())

	cancel, errCh := startService(t, svc)
	waitFor(t, func() bool { return runner.active.Load() == 1 })

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
