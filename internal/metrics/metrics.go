// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Run Metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"}, // "success", "failure", "empty"
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "personalize_run_duration_seconds",
			Help:    "Duration of complete pipeline runs in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
	)

	PipelineStepDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "personalize_step_duration_seconds",
			Help: "Duration of the most recent execution of each pipeline step",
		},
		[]string{"step"},
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personalize_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	PipelineRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personalize_run_in_progress",
			Help: "1 while a pipeline run is executing",
		},
	)

	// Input and Model Metrics
	PurchasesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personalize_purchases_loaded",
			Help: "Purchases used by the last run after exclusion filtering",
		},
	)

	ProductsEvaluated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personalize_products_evaluated",
			Help: "Distinct products compared against the previous snapshot in the last run",
		},
	)

	ProductsWithRecommendations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personalize_products_with_recommendations",
			Help: "Products with at least one recommendation in the last run",
		},
	)

	ProductsChanged = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "personalize_products_changed",
			Help: "Products whose recommended set changed in the last run",
		},
	)

	// Store Sync Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_store_operations_total",
			Help: "Recommendation store writes by operation and result",
		},
		[]string{"operation", "result"}, // operation: "upsert", "delete"; result: "success", "error"
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "personalize_store_operation_duration_seconds",
			Help:    "Latency of recommendation store writes",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Cache Invalidation Metrics
	CacheInvalidationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_cache_invalidation_requests_total",
			Help: "Cache invalidation HTTP requests by server and result",
		},
		[]string{"server", "result"},
	)

	CacheInvalidationKeys = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_cache_invalidation_keys_total",
			Help: "Cache keys submitted for invalidation by result",
		},
		[]string{"result"}, // "success", "error"
	)

	CacheInvalidationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "personalize_cache_invalidation_duration_seconds",
			Help:    "Latency of cache invalidation requests per server",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_events_published_total",
			Help: "Change notifications published by result",
		},
		[]string{"result"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "personalize_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "personalize_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1},
		},
		[]string{"method", "endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRun records the outcome of a pipeline run.
func RecordRun(duration time.Duration, outcome string) {
	PipelineRunsTotal.WithLabelValues(outcome).Inc()
	PipelineRunDuration.Observe(duration.Seconds())
	if outcome != "failure" {
		PipelineLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordStep records the duration of a named pipeline step.
func RecordStep(step string, duration time.Duration) {
	PipelineStepDuration.WithLabelValues(step).Set(duration.Seconds())
}

// TrackRun marks a run as started (true) or finished (false).
func TrackRun(running bool) {
	if running {
		PipelineRunning.Set(1)
	} else {
		PipelineRunning.Set(0)
	}
}

// RecordStoreOperation records one store upsert or delete.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(operation, result).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCacheInvalidation records one invalidation request to server.
func RecordCacheInvalidation(server string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	CacheInvalidationRequests.WithLabelValues(server, result).Inc()
	CacheInvalidationDuration.WithLabelValues(server).Observe(duration.Seconds())
}

// RecordInvalidatedKeys adds to the invalidated key counters.
func RecordInvalidatedKeys(success, failed int) {
	if success > 0 {
		CacheInvalidationKeys.WithLabelValues("success").Add(float64(success))
	}
	if failed > 0 {
		CacheInvalidationKeys.WithLabelValues("error").Add(float64(failed))
	}
}

// RecordEventPublish records a change notification publish attempt.
func RecordEventPublish(err error) {
	if err != nil {
		EventsPublished.WithLabelValues("error").Inc()
		return
	}
	EventsPublished.WithLabelValues("success").Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// UpdateRunGauges sets the per-run size gauges.
func UpdateRunGauges(purchases, evaluated, withRecommendations, changed int) {
	PurchasesLoaded.Set(float64(purchases))
	ProductsEvaluated.Set(float64(evaluated))
	ProductsWithRecommendations.Set(float64(withRecommendations))
	ProductsChanged.Set(float64(changed))
}
