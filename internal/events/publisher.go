// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/goccy/go-json"

	"github.com/tomtom215/brewmatch/internal/logging"
)

// ErrNilPublisher is returned when creating a Publisher without a transport.
var ErrNilPublisher = errors.New("publisher cannot be nil")

// Publisher publishes swipe events.
type Publisher struct {
	pub   message.Publisher
	topic string
}

// NewPublisher wraps a Watermill publisher.
func NewPublisher(pub message.Publisher) (*Publisher, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	return &Publisher{pub: pub, topic: TopicSwipeRecorded}, nil
}

// PublishSwipe validates and publishes e. Missing EventID and RecordedAt are
// filled in. The correlation ID in ctx, if any, travels in message metadata.
//
//nolint:gocritic // hugeParam: e passed by value for immutability
func (p *Publisher) PublishSwipe(ctx context.Context, e SwipeEvent) (string, error) {
	if e.EventID == "" {
		e.EventID = watermill.NewUUID()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal swipe event: %w", err)
	}

	msg := message.NewMessage(e.EventID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataEventType, TopicSwipeRecorded)

	correlationID := logging.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	middleware.SetCorrelationID(correlationID, msg)

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return "", fmt.Errorf("publish swipe event: %w", err)
	}
	return e.EventID, nil
}
