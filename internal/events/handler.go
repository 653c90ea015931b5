// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package events

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/metrics"
)

// Sink persists swipes. Implemented by store.Store.
type Sink interface {
	AppendInteraction(ctx context.Context, r analytics.InteractionRecord) error
	MarkSeen(ctx context.Context, subject string, mode analytics.Mode, ids ...int64) error
}

// HandlerStats are cumulative SwipeHandler counters.
type HandlerStats struct {
	Received  int64 `json:"received"`
	Persisted int64 `json:"persisted"`
	Rejected  int64 `json:"rejected"`
	Failed    int64 `json:"failed"`
}

// SwipeHandler persists swipe events.
type SwipeHandler struct {
	sink   Sink
	logger zerolog.Logger

	received  atomic.Int64
	persisted atomic.Int64
	rejected  atomic.Int64
	failed    atomic.Int64
}

// NewSwipeHandler creates a handler writing to sink.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSwipeHandler(sink Sink, logger zerolog.Logger) (*SwipeHandler, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink required")
	}
	return &SwipeHandler{
		sink:   sink,
		logger: logger.With().Str("component", "swipe_handler").Logger(),
	}, nil
}

// Handle processes one message.
//
// Error handling:
//   - Decode and validation errors are acked and counted (no retry)
//   - Sink errors are returned so the router retries them
func (h *SwipeHandler) Handle(msg *message.Message) error {
	h.received.Add(1)
	correlationID := middleware.MessageCorrelationID(msg)

	var e SwipeEvent
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		h.reject("decode", msg.UUID, correlationID, err)
		return nil
	}
	if err := e.Validate(); err != nil {
		h.reject("validation", msg.UUID, correlationID, err)
		return nil
	}

	ctx := msg.Context()
	record := e.Record()
	if err := h.sink.AppendInteraction(ctx, record); err != nil {
		h.failed.Add(1)
		metrics.SwipesRejected.WithLabelValues("store").Inc()
		return fmt.Errorf("persist swipe %s: %w", e.EventID, err)
	}
	// A swiped item has been shown; keep it out of later recommendations.
	if err := h.sink.MarkSeen(ctx, e.Subject, e.Mode, e.ItemID); err != nil {
		h.logger.Warn().Err(err).
			Str("event_id", e.EventID).
			Int64("item_id", e.ItemID).
			Msg("failed to mark swiped item as seen")
	}

	h.persisted.Add(1)
	metrics.RecordSwipe(e.Mode.String(), record.SwipeDirection())
	h.logger.Debug().
		Str("event_id", e.EventID).
		Str("correlation_id", correlationID).
		Str("subject", e.Subject).
		Str("mode", e.Mode.String()).
		Str("direction", record.SwipeDirection()).
		Msg("swipe persisted")
	return nil
}

func (h *SwipeHandler) reject(reason, uuid, correlationID string, err error) {
	h.rejected.Add(1)
	metrics.SwipesRejected.WithLabelValues(reason).Inc()
	h.logger.Warn().Err(err).
		Str("message_uuid", uuid).
		Str("correlation_id", correlationID).
		Str("reason", reason).
		Msg("dropping swipe event")
}

// Stats returns cumulative counters.
func (h *SwipeHandler) Stats() HandlerStats {
	return HandlerStats{
		Received:  h.received.Load(),
		Persisted: h.persisted.Load(),
		Rejected:  h.rejected.Load(),
		Failed:    h.failed.Load(),
	}
}
