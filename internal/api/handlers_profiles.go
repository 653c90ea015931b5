// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/profile"
)

func subjectModeFromPath(r *http.Request) subjectModeParams {
	return subjectModeParams{
		Subject: chi.URLParam(r, "subject"),
		Mode:    chi.URLParam(r, "mode"),
	}
}

// PutProfile handles PUT /api/v1/users/{subject}/profiles/{mode}.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	params := subjectModeFromPath(r)
	if !rw.validate(&params) {
		return
	}
	var req ProfileRequest
	if !rw.decode(&req) || !rw.validate(&req) {
		return
	}
	mode, _ := analytics.ParseMode(params.Mode)

	p := profile.Profile{
		Subject:   params.Subject,
		Mode:      mode,
		Text:      strings.TrimSpace(req.Text),
		Tags:      normalizedTags(req.Tags),
		UpdatedAt: time.Now().UTC(),
	}
	if err := h.store.SaveProfile(r.Context(), p); err != nil {
		rw.fromError(err)
		return
	}
	rw.ok(p)
}

// GetProfile handles GET /api/v1/users/{subject}/profiles/{mode}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	params := subjectModeFromPath(r)
	if !rw.validate(&params) {
		return
	}
	mode, _ := analytics.ParseMode(params.Mode)

	p, err := h.store.Profile(r.Context(), params.Subject, mode)
	if err != nil {
		rw.fromError(err)
		return
	}
	rw.ok(p)
}

// normalizedTags normalizes tags and drops blanks and duplicates, keeping order.
func normalizedTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := analytics.NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
