// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds each readiness probe.
const readinessTimeout = 2 * time.Second

// HealthStatus is the body of the health routes.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// HealthLive handles GET /health/live. It only reports that the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	newResponder(w, r).ok(HealthStatus{
		Status:        "alive",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /health/ready. It returns 503 while the store or
// any registered check fails.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	checks := make(map[string]string, len(h.readiness)+1)
	ready := true
	probe := func(name string, fn func(context.Context) error) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			return
		}
		checks[name] = "ok"
	}

	probe("store", h.store.Ping)
	for _, c := range h.readiness {
		probe(c.Name, c.Check)
	}

	status := HealthStatus{
		Status:        "ready",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Checks:        checks,
	}
	if !ready {
		status.Status = "not_ready"
		rw.status(http.StatusServiceUnavailable, status)
		return
	}
	rw.ok(status)
}
