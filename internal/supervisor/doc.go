// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package supervisor runs the long-lived services of serve mode under suture v4.

# Overview

	RootSupervisor ("personalize")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── PipelineService (scheduled and triggered runs)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (status API)

A crashing HTTP server restarts without interrupting a run in progress, and a
pipeline service restart leaves the status API serving.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddPipelineService(pipelineSvc)
	tree.AddAPIService(httpSvc)
	err = tree.Serve(ctx)

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog into the zerolog-backed slog handler.
*/
package supervisor
