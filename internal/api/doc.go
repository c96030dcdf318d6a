// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package api provides the status HTTP server of serve mode.

Routes:

  - GET  /healthz  liveness, always 200
  - GET  /readyz   200 once a run has succeeded, 503 before
  - GET  /status   last run result and last success time
  - POST /run      queue an immediate run: 202 queued, 409 already pending
  - GET  /metrics  Prometheus exposition

JSON responses use the envelope in response.go:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "..."}}
*/
package api
