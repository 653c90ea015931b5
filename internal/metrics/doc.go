// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package metrics provides Prometheus collectors for Brewmatch.

Metrics are exposed at /metrics in Prometheus text format:

	curl http://localhost:8787/metrics

# Available Metrics

HTTP:
  - http_requests_total (method, endpoint, status)
  - http_request_duration_seconds (method, endpoint)
  - http_requests_in_flight

Recommendation:
  - recommend_requests_total (mode, outcome)
  - recommend_duration_seconds (mode)
  - recommend_candidates_scored (mode)
  - recommend_results_returned (mode)
  - recommend_dimension_mismatch_total
  - recommend_augmentation_fallback_total (reason)

Analytics:
  - analytics_dashboard_builds_total
  - analytics_records_aggregated
  - analytics_narration_failures_total

Providers:
  - provider_call_duration_seconds (provider, operation)
  - provider_call_errors_total (provider, operation, kind)
  - circuit_breaker_state (name), 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total (name, result)
  - circuit_breaker_transitions_total (name, from, to)
  - embedding_cache_hits_total, embedding_cache_misses_total, embedding_cache_entries

Ingestion:
  - swipes_ingested_total (mode, direction)
  - swipes_rejected_total (reason)
*/
package metrics
