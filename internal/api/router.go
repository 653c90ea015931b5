// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/brewmatch/internal/middleware"
)

// NewRouter builds the chi router for h.
//
//nolint:gocritic // hugeParam: config is read once at startup
func NewRouter(h *Handler, cfg MiddlewareConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, outermost first
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(cfg.SlowRequest))
	r.Use(chimiddleware.Recoverer)
	r.Use(corsHandler(cfg)) // must be global to answer OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		newResponder(w, req).fail(http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		newResponder(w, req).fail(http.StatusMethodNotAllowed, &APIError{Code: ErrCodeMethodNotAllowed, Message: "Method not allowed"})
	})

	// Probes are exempt from the API limiter and metrics
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(securityHeaders)
		r.Use(middleware.Metrics)
		r.Use(rateLimit(cfg, cfg.RateLimitRequests))
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Post("/swipes", h.RecordSwipe)

		r.Route("/items", func(r chi.Router) {
			r.Post("/", h.CreateItem)
			r.Get("/{mode}/{id}", h.GetItem)
		})

		r.Route("/users/{subject}", func(r chi.Router) {
			r.Get("/dashboard", h.Dashboard)
			r.Get("/recent", h.Recent)
			r.Get("/recommendations", h.Recommendations)
			r.Put("/profiles/{mode}", h.PutProfile)
			r.Get("/profiles/{mode}", h.GetProfile)
		})
	})

	return r
}
