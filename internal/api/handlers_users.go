// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/logging"
	"github.com/tomtom215/brewmatch/internal/recommend"
)

// RecommendationResponse is the body of the recommendations route.
// Scores are only included when debug=true.
type RecommendationResponse struct {
	Subject        string             `json:"subject"`
	Mode           analytics.Mode     `json:"mode"`
	IDs            []int64            `json:"ids"`
	Scores         []recommend.Scored `json:"scores,omitempty"`
	Augmented      bool               `json:"augmented"`
	FallbackReason string             `json:"fallback_reason,omitempty"`
}

// RecentResponse is the body of the recent-activity route.
type RecentResponse struct {
	Subject string                        `json:"subject"`
	Records []analytics.InteractionRecord `json:"records"`
	Summary string                        `json:"summary"`
}

// Dashboard handles GET /api/v1/users/{subject}/dashboard.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	params := subjectParams{Subject: chi.URLParam(r, "subject")}
	if !rw.validate(&params) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	d, err := h.recommender.Dashboard(ctx, params.Subject)
	if err != nil {
		rw.fromError(err)
		return
	}
	rw.ok(d)
}

// Recommendations handles GET /api/v1/users/{subject}/recommendations.
//
// Returned items are marked seen so the next call moves on to new ones.
// A failure to mark them is logged and does not fail the response.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	k, ok := intQuery(r, "k", h.defaultK)
	if !ok {
		rw.badQuery("k")
		return
	}
	q := RecommendQuery{
		Subject: chi.URLParam(r, "subject"),
		Mode:    r.URL.Query().Get("mode"),
		K:       k,
		Debug:   boolQuery(r, "debug"),
	}
	if !rw.validate(&q) {
		return
	}
	mode, _ := analytics.ParseMode(q.Mode)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	rec, err := h.recommender.Recommend(ctx, q.Subject, mode, q.K)
	if err != nil {
		rw.fromError(err)
		return
	}

	ids := rec.IDs()
	if len(ids) > 0 {
		if err := h.store.MarkSeen(r.Context(), q.Subject, mode, ids...); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).
				Str("subject", q.Subject).
				Int("count", len(ids)).
				Msg("failed to mark recommendations seen")
		}
	}

	resp := RecommendationResponse{
		Subject:        rec.Subject,
		Mode:           rec.Mode,
		IDs:            ids,
		Augmented:      rec.Augmented,
		FallbackReason: rec.FallbackReason,
	}
	if q.Debug {
		resp.Scores = rec.Items
	}
	rw.ok(resp)
}

// Recent handles GET /api/v1/users/{subject}/recent.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	limit, ok := intQuery(r, "limit", defaultRecentLimit)
	if !ok {
		rw.badQuery("limit")
		return
	}
	q := RecentQuery{Subject: chi.URLParam(r, "subject"), Limit: limit}
	if !rw.validate(&q) {
		return
	}

	records, err := h.store.Interactions(r.Context(), q.Subject)
	if err != nil {
		rw.fromError(err)
		return
	}
	recent := analytics.RecentActivity(records, q.Limit)
	if recent == nil {
		recent = []analytics.InteractionRecord{}
	}
	rw.ok(RecentResponse{
		Subject: q.Subject,
		Records: recent,
		Summary: analytics.RenderRecent(recent),
	})
}
