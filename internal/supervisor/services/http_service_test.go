// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/personalize/internal/api"
	"github.com/tomtom215/personalize/internal/pipeline"
	"github.com/tomtom215/personalize/internal/supervisor"
)

// stuckServer never finishes serving and only stops shutting down when the
// shutdown context ends.
type stuckServer struct {
	listenErr error
	started   chan struct{}
	release   chan struct{}
}

func newStuckServer() *stuckServer {
	return &stuckServer{started: make(chan struct{}), release: make(chan struct{})}
}

func (s *stuckServer) ListenAndServe() error {
	close(s.started)
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.release
	return http.ErrServerClosed
}

func (s *stuckServer) Shutdown(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

// neverSucceeded reports no completed run.
type neverSucceeded struct{}

func (neverSucceeded) LastResult() *pipeline.Result { return nil }
func (neverSucceeded) LastSuccess() time.Time       { return time.Time{} }

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}

// get polls url until the server answers.
func get(t *testing.T, url string) int {
	t.Helper()
	var lastErr error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			return resp.StatusCode
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("GET %s never answered: %v", url, lastErr)
	return 0
}

func TestHTTPServerService_Interface(t *testing.T) {
	var _ suture.Service = (*HTTPServerService)(nil)
}

func TestNewHTTPServerService_DefaultTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, -5 * time.Second} {
		svc := NewHTTPServerService(newStuckServer(), timeout, zerolog.Nop())
		if svc.shutdownTimeout != 10*time.Second {
			t.Errorf("NewHTTPServerService(%v).shutdownTimeout = %v, want 10s", timeout, svc.shutdownTimeout)
		}
	}
	if got := NewHTTPServerService(newStuckServer(), time.Second, zerolog.Nop()).String(); got != "http-server" {
		t.Errorf("String() = %q, want http-server", got)
	}
}

func TestHTTPServerService_ListenFailure(t *testing.T) {
	bindErr := errors.New("bind: address already in use")
	server := newStuckServer()
	server.listenErr = bindErr

	err := NewHTTPServerService(server, time.Second, zerolog.Nop()).Serve(context.Background())
	if !errors.Is(err, bindErr) {
		t.Errorf("Serve() = %v, want %v", err, bindErr)
	}
}

func TestHTTPServerService_ShutdownTimeoutBounded(t *testing.T) {
	server := newStuckServer()
	t.Cleanup(func() { close(server.release) })
	svc := NewHTTPServerService(server, 50*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()
	<-server.started

	start := time.Now()
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Serve() = %v, want a shutdown deadline error", err)
		}
		if elapsed := time.Since(start); elapsed > time.Second {
			t.Errorf("shutdown took %v, want it bounded by the 50ms timeout", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after the shutdown timeout")
	}
}

func TestHTTPServerService_StatusRouterInTree(t *testing.T) {
	tree, err := supervisor.NewSupervisorTree(slog.New(slog.NewTextHandler(io.Discard, nil)), supervisor.TreeConfig{
		FailureBackoff:  50 * time.Millisecond,
		ShutdownTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}

	runner := &fakeRunner{}
	pipelineSvc := NewPipelineService(runner, PipelineServiceConfig{Interval: time.Hour}, zerolog.Nop())
	tree.AddPipelineService(pipelineSvc)

	addr := freeAddr(t)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(api.NewHandler(neverSucceeded{}, pipelineSvc), nil),
		ReadHeaderTimeout: time.Second,
	}
	tree.AddAPIService(NewHTTPServerService(server, time.Second, zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	base := "http://" + addr
	if code := get(t, base+"/healthz"); code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", code)
	}
	if code := get(t, base+"/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz = %d, want 503 before any successful run", code)
	}

	resp, err := http.Post(base+"/run", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /run: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("POST /run = %d, want 202", resp.StatusCode)
	}
	waitFor(t, func() bool { return runner.calls.Load() == 1 })

	cancel()
	select {
	case <-errCh:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	if _, err := http.Get(base + "/healthz"); err == nil {
		t.Error("status server still answering after shutdown")
	}
}
