// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package services provides suture.Service wrappers for serve mode.

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the blocking ListenAndServe into Serve(ctx)

Pipeline (PipelineService):
  - Runs the pipeline on startup (optional), then every interval
  - Trigger() asks for an immediate run; at most one request is pending and
    further requests are rejected until it starts
  - Runs are sequential and bounded by a per-run timeout
  - A failed run is logged and the service keeps its schedule
*/
package services
