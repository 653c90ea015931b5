// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package events carries swipe events from the HTTP layer to persistence
through an in-process Watermill pub/sub.

Flow:

	POST /api/v1/swipes ──► Publisher ──► gochannel "swipe.recorded"
	                                              │
	                                              ▼
	                          Router (recoverer, retry, poison queue)
	                                              │
	                                              ▼
	                               SwipeHandler ──► Sink (store)

Decoding and validation failures are acknowledged and counted, since a
retry cannot fix them. Sink failures are retried with backoff and then
routed to the poison topic.
*/
package events

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/brewmatch/internal/analytics"
)

// Topics
const (
	TopicSwipeRecorded = "swipe.recorded"
	TopicSwipePoison   = "swipe.poison"
)

// Metadata keys
const (
	MetadataEventType     = "event_type"
	MetadataCorrelationID = "correlation_id"
)

// MaxDurationMs is the longest view time a swipe may carry (one day).
const MaxDurationMs = 24 * 60 * 60 * 1000

// ErrInvalidEvent is returned for events that can never be persisted.
var ErrInvalidEvent = errors.New("invalid swipe event")

// SwipeEvent is the payload published for each swipe.
type SwipeEvent struct {
	EventID    string         `json:"event_id"`
	Subject    string         `json:"subject"`
	ItemID     int64          `json:"item_id"`
	Mode       analytics.Mode `json:"mode"`
	Title      string         `json:"title,omitempty"`
	Tags       []string       `json:"tags,omitempty"`
	DurationMs int64          `json:"duration_ms"`
	Liked      bool           `json:"liked"`
	RecordedAt time.Time      `json:"recorded_at"`
}

// Validate checks the invariants persistence relies on.
func (e *SwipeEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.Subject) == "":
		return fmt.Errorf("%w: subject is required", ErrInvalidEvent)
	case strings.ContainsRune(e.Subject, ':'):
		return fmt.Errorf("%w: subject must not contain ':'", ErrInvalidEvent)
	case e.ItemID <= 0:
		return fmt.Errorf("%w: item_id must be positive", ErrInvalidEvent)
	case e.DurationMs < 0:
		return fmt.Errorf("%w: duration_ms must be non-negative", ErrInvalidEvent)
	case e.DurationMs > MaxDurationMs:
		return fmt.Errorf("%w: duration_ms must be at most %d", ErrInvalidEvent, MaxDurationMs)
	case e.Mode != analytics.ModeCoffee && e.Mode != analytics.ModeMatcha:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidEvent, e.Mode)
	}
	return nil
}

// Record converts the event into an interaction record.
func (e *SwipeEvent) Record() analytics.InteractionRecord {
	return analytics.InteractionRecord{
		Subject:      e.Subject,
		ItemID:       e.ItemID,
		Mode:         e.Mode,
		Title:        e.Title,
		Tags:         append([]string(nil), e.Tags...),
		ViewDuration: viewDuration(e.DurationMs),
		Accepted:     e.Liked,
		RecordedAt:   e.RecordedAt,
	}
}

// viewDuration converts milliseconds, saturating instead of overflowing.
func viewDuration(ms int64) time.Duration {
	const maxMs = int64(math.MaxInt64 / int64(time.Millisecond))
	switch {
	case ms <= 0:
		return 0
	case ms > maxMs:
		return time.Duration(math.MaxInt64)
	default:
		return time.Duration(ms) * time.Millisecond
	}
}
