// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/personalize/internal/logging"
	"github.com/tomtom215/personalize/internal/pipeline"
)

// StatusSource exposes the state of the last run.
type StatusSource interface {
	LastResult() *pipeline.Result
	LastSuccess() time.Time
}

// Trigger requests an immediate run. It returns false when one is already pending.
type Trigger interface {
	Trigger() bool
}

// Handler serves the status endpoints.
type Handler struct {
	status  StatusSource
	trigger Trigger
	started time.Time
}

// NewHandler creates a handler. trigger may be nil, in which case POST /run
// answers 503.
func NewHandler(status StatusSource, trigger Trigger) *Handler {
	return &Handler{status: status, trigger: trigger, started: time.Now()}
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Uptime      string           `json:"uptime"`
	LastSuccess *time.Time       `json:"last_success,omitempty"`
	LastRun     *pipeline.Result `json:"last_run,omitempty"`
}

// Healthz always reports alive.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports ready once any run has succeeded.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	last := h.status.LastSuccess()
	if last.IsZero() {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "no successful run yet")
		return
	}
	writeSuccess(w, r, http.StatusOK, map[string]interface{}{
		"status":       "ready",
		"last_success": last,
	})
}

// Status returns the last run result.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		LastRun: h.status.LastResult(),
	}
	if last := h.status.LastSuccess(); !last.IsZero() {
		resp.LastSuccess = &last
	}
	writeSuccess(w, r, http.StatusOK, resp)
}

// Run queues an immediate run.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	if h.trigger == nil {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "runs cannot be triggered")
		return
	}
	if !h.trigger.Trigger() {
		writeError(w, r, http.StatusConflict, ErrCodeConflict, "a run is already pending")
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Run triggered over HTTP")
	writeSuccess(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
}
