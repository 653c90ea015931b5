// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"net/http"

	"github.com/tomtom215/brewmatch/internal/logging"
	"github.com/tomtom215/brewmatch/internal/metrics"
)

// SwipeAccepted is the body returned for an accepted swipe.
type SwipeAccepted struct {
	EventID        string `json:"event_id"`
	SwipeDirection string `json:"swipe_direction"`
	DurationMs     int64  `json:"duration_ms"`
}

// RecordSwipe handles POST /api/v1/swipes.
//
// The swipe is published to the event bus and persisted asynchronously, so
// the response is 202 and a following dashboard read may not include it yet.
func (h *Handler) RecordSwipe(w http.ResponseWriter, r *http.Request) {
	rw := newResponder(w, r)

	var req SwipeRequest
	if !rw.decode(&req) || !rw.validate(&req) {
		metrics.SwipesRejected.WithLabelValues("request").Inc()
		return
	}

	ev, err := req.event()
	if err != nil {
		metrics.SwipesRejected.WithLabelValues("request").Inc()
		rw.fail(http.StatusBadRequest, &APIError{Code: ErrCodeValidation, Message: err.Error()})
		return
	}

	eventID, err := h.publisher.PublishSwipe(r.Context(), ev)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("subject", ev.Subject).Msg("failed to publish swipe")
		rw.fail(http.StatusServiceUnavailable, &APIError{Code: ErrCodeServiceUnavailable, Message: "Swipe could not be queued"})
		return
	}

	record := ev.Record()
	rw.status(http.StatusAccepted, SwipeAccepted{
		EventID:        eventID,
		SwipeDirection: record.SwipeDirection(),
		DurationMs:     ev.DurationMs,
	})
}
