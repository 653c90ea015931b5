// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of ranking calls by outcome",
		},
		[]string{"mode", "outcome"}, // "ok", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Duration of ranking calls in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"mode"},
	)

	RecommendCandidatesScored = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates_scored",
			Help:    "Number of candidates scored per ranking call",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"mode"},
	)

	RecommendResultsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_results_returned",
			Help:    "Number of item IDs returned per ranking call",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
		[]string{"mode"},
	)

	RecommendDimensionMismatch = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_dimension_mismatch_total",
			Help: "Total number of ranking calls failed by a vector dimension mismatch",
		},
	)

	AugmentationFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_augmentation_fallback_total",
			Help: "Total number of query vectors built from un-augmented profile text",
		},
		[]string{"reason"}, // "error", "timeout", "empty"
	)

	// Analytics Metrics
	DashboardBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_dashboard_builds_total",
			Help: "Total number of dashboards built",
		},
	)

	RecordsAggregated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analytics_records_aggregated",
			Help:    "Number of interaction records per dashboard build",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	NarrationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "analytics_narration_failures_total",
			Help: "Total number of dashboards built without insights because narration failed",
		},
	)

	// Provider Metrics
	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_call_duration_seconds",
			Help:    "Duration of external provider calls in seconds",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)

	ProviderCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "provider_call_errors_total",
			Help: "Total number of failed external provider calls",
		},
		[]string{"provider", "operation", "kind"},
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
			Help: "Total requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Embedding Cache Metrics
	EmbeddingCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_hits_total",
			Help: "Total number of embedding cache hits",
		},
	)

	EmbeddingCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_cache_misses_total",
			Help: "Total number of embedding cache misses",
		},
	)

	EmbeddingCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "embedding_cache_entries",
			Help: "Current number of cached embeddings",
		},
	)

	// Ingestion Metrics
	SwipesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipes_ingested_total",
			Help: "Total number of swipe records persisted",
		},
		[]string{"mode", "direction"},
	)

	SwipesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swipes_rejected_total",
			Help: "Total number of swipe events dropped before persistence",
		},
		[]string{"reason"}, // "decode", "validation", "store"
	)
)

// RecordAPIRequest records HTTP request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one ranking call.
func RecordRecommendation(mode string, candidates, returned int, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	RecommendRequests.WithLabelValues(mode, outcome).Inc()
	RecommendDuration.WithLabelValues(mode).Observe(duration.Seconds())
	RecommendCandidatesScored.WithLabelValues(mode).Observe(float64(candidates))
	if err == nil {
		RecommendResultsReturned.WithLabelValues(mode).Observe(float64(returned))
	}
}

// RecordDashboard records one dashboard build.
func RecordDashboard(records int, narrationFailed bool) {
	DashboardBuilds.Inc()
	RecordsAggregated.Observe(float64(records))
	if narrationFailed {
		NarrationFailures.Inc()
	}
}

// RecordProviderCall records the latency and outcome of an external provider call.
// kind is empty on success.
func RecordProviderCall(provider, operation string, duration time.Duration, kind string) {
	ProviderCallDuration.WithLabelValues(provider, operation).Observe(duration.Seconds())
	if kind != "" {
		ProviderCallErrors.WithLabelValues(provider, operation, kind).Inc()
	}
}

// RecordSwipe records a persisted swipe.
func RecordSwipe(mode, direction string) {
	SwipesIngested.WithLabelValues(mode, direction).Inc()
}
