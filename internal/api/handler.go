// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/events"
	"github.com/tomtom215/brewmatch/internal/profile"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/store"
)

// Store is the persistence the handlers read and write directly.
//
// Satisfied by *store.Store.
type Store interface {
	Ping(ctx context.Context) error
	SaveProfile(ctx context.Context, p profile.Profile) error
	Profile(ctx context.Context, subject string, mode analytics.Mode) (profile.Profile, error)
	SaveItem(ctx context.Context, item store.Item) error
	Item(ctx context.Context, mode analytics.Mode, id int64) (store.Item, error)
	Interactions(ctx context.Context, subject string) ([]analytics.InteractionRecord, error)
	MarkSeen(ctx context.Context, subject string, mode analytics.Mode, ids ...int64) error
}

// SwipePublisher hands swipes to the event bus.
//
// Satisfied by *events.Publisher.
type SwipePublisher interface {
	PublishSwipe(ctx context.Context, e events.SwipeEvent) (string, error)
}

// Recommender runs ranking and dashboard requests.
//
// Satisfied by *profile.Pipeline.
type Recommender interface {
	Recommend(ctx context.Context, subject string, mode analytics.Mode, k int) (*profile.Recommendation, error)
	Dashboard(ctx context.Context, subject string) (*analytics.Dashboard, error)
}

// ReadinessCheck is one dependency probed by /health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps are the collaborators of Handler.
type Deps struct {
	Store       Store
	Publisher   SwipePublisher
	Recommender Recommender
	// Embedder embeds items registered without an explicit vector.
	Embedder provider.Embedder
	// Readiness lists extra checks beyond the store ping.
	Readiness []ReadinessCheck
	// RequestTimeout bounds recommendation and dashboard requests. Zero disables it.
	RequestTimeout time.Duration
	// DefaultK is used when a recommendations request has no k. Zero means 5.
	DefaultK int
	Version  string
}

// Handler serves the Brewmatch HTTP API.
type Handler struct {
	store          Store
	publisher      SwipePublisher
	recommender    Recommender
	embedder       provider.Embedder
	readiness      []ReadinessCheck
	requestTimeout time.Duration
	defaultK       int
	version        string
	startTime      time.Time
}

const fallbackDefaultK = 5

// NewHandler validates deps and creates a handler.
//
//nolint:gocritic // hugeParam: deps is read once at startup
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("api: store is required")
	case deps.Publisher == nil:
		return nil, errors.New("api: publisher is required")
	case deps.Recommender == nil:
		return nil, errors.New("api: recommender is required")
	case deps.Embedder == nil:
		return nil, errors.New("api: embedder is required")
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	defaultK := deps.DefaultK
	if defaultK <= 0 {
		defaultK = fallbackDefaultK
	}
	return &Handler{
		store:          deps.Store,
		publisher:      deps.Publisher,
		recommender:    deps.Recommender,
		embedder:       deps.Embedder,
		readiness:      append([]ReadinessCheck(nil), deps.Readiness...),
		requestTimeout: deps.RequestTimeout,
		defaultK:       defaultK,
		version:        version,
		startTime:      time.Now(),
	}, nil
}

// withTimeout applies the handler's request timeout when configured.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.requestTimeout)
}
