// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package middleware provides HTTP middleware for the status server.

Key Components:

  - Request ID: UUID-based request tracking; the ID is echoed in X-Request-ID
    and attached to the logging context so handler logs carry request_id
  - Prometheus Metrics: request count and latency per method, route and status

Both are written as http.HandlerFunc wrappers and adapted to chi's
func(http.Handler) http.Handler in the api package:

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chiMiddleware(middleware.PrometheusMetrics))

The metrics middleware labels requests by chi route pattern, not raw path, so
label cardinality stays bounded.
*/
package middleware
