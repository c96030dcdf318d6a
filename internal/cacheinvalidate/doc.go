// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package cacheinvalidate is the client for the storefront cache invalidation API.

A batch is sent in three steps:

 1. One bearer token is requested from the first configured server
    (POST auth_path with username and password).
 2. The same JSON list of invalidation items is POSTed to invalidate_path on
    every server concurrently, bounded by the number of servers, each request
    with its own timeout.
 3. The batch succeeds only when every server answered 2xx. Otherwise every
    item in the batch is counted as failed.

Failures are reported in the Result and never returned as errors, so callers
can treat invalidation as best effort. Each server sits behind its own
circuit breaker so a dead node fails fast in scheduled mode.
*/
package cacheinvalidate
