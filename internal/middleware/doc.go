// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package middleware provides the HTTP middleware shared by every Brewmatch route.

All middleware use chi's func(http.Handler) http.Handler shape:

  - RequestID assigns request and correlation IDs and a request-scoped logger.
  - Metrics records Prometheus request counters and latency keyed by the chi
    route pattern, so path parameters do not explode label cardinality.
  - AccessLog writes one structured line per request and escalates slow or
    failed requests.

Typical order:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.Metrics)
*/
package middleware
