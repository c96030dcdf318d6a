// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

/*
Package metrics provides Prometheus instrumentation for the recommendation
pipeline.

# Metrics Endpoint

In serve mode, metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:9464/metrics

One-shot runs push the global registry to a Pushgateway when one is
configured (see Pusher).

# Available Metrics

Pipeline Metrics:
  - personalize_runs_total: Runs by outcome (counter)
    Labels: outcome (success, failure, empty)
  - personalize_run_duration_seconds: Run latency (histogram)
  - personalize_step_duration_seconds: Last duration of each step (gauge)
    Labels: step
  - personalize_last_success_timestamp_seconds (gauge)
  - personalize_run_in_progress (gauge)

Model Metrics:
  - personalize_purchases_loaded, personalize_products_evaluated,
    personalize_products_with_recommendations, personalize_products_changed (gauges)

Sync Metrics:
  - personalize_store_operations_total: Labels operation, result
  - personalize_cache_invalidation_requests_total: Labels server, result
  - personalize_cache_invalidation_keys_total: Labels result
  - personalize_events_published_total: Labels result

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open
    Labels: name
  - circuit_breaker_requests_total: Labels name, result
  - circuit_breaker_consecutive_failures: Labels name
  - circuit_breaker_state_transitions_total: Labels name, from_state, to_state

# Example Alert

	groups:
	  - name: personalize
	    rules:
	      - alert: PersonalizeRunStale
	        expr: time() - personalize_last_success_timestamp_seconds > 172800
	        annotations:
	          summary: "No successful recommendation run in 48h"
*/
package metrics
