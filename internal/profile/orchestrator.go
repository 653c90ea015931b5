// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/metrics"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// ErrEmbeddingFailed is returned when no query vector could be produced.
var ErrEmbeddingFailed = errors.New("query embedding failed")

// Fallback reasons recorded when augmentation does not contribute.
const (
	FallbackTimeout = "timeout"
	FallbackError   = "error"
	FallbackEmpty   = "empty"
)

// Config contains orchestrator timeouts.
type Config struct {
	// AugmentTimeout bounds each augmentation call. Zero disables the bound.
	// Default: 5s.
	AugmentTimeout time.Duration `json:"augment_timeout"`

	// EmbedTimeout bounds each embedding call. Zero disables the bound.
	// Default: 10s.
	EmbedTimeout time.Duration `json:"embed_timeout"`

	// RecentWindow is how many recent interactions accompany the summary.
	// Default: 5.
	RecentWindow int `json:"recent_window"`
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		AugmentTimeout: 5 * time.Second,
		EmbedTimeout:   10 * time.Second,
		RecentWindow:   analytics.DefaultRecentWindow,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.AugmentTimeout < 0 {
		return fmt.Errorf("recommend.augment_timeout must be non-negative, got %s", c.AugmentTimeout)
	}
	if c.EmbedTimeout < 0 {
		return fmt.Errorf("recommend.embed_timeout must be non-negative, got %s", c.EmbedTimeout)
	}
	if c.RecentWindow < 0 {
		return fmt.Errorf("recommend.recent_window must be non-negative, got %d", c.RecentWindow)
	}
	return nil
}

// Input is everything needed to build one query vector.
type Input struct {
	ProfileText string
	Tags        []string
	// Summary is the subject's summary for the ranking mode. Nil or trivial
	// summaries skip augmentation.
	Summary *analytics.ModeSummary
	// Recent are the subject's latest interactions in log order. Only the
	// last Config.RecentWindow are used.
	Recent []analytics.InteractionRecord
}

// Query is a built query vector and how it was produced.
type Query struct {
	Vector vector.Vector
	// Text is the text that was embedded.
	Text string
	// Augmented reports whether Text carries the augmenter's note.
	Augmented bool
	// FallbackReason is set when augmentation was attempted but not used.
	FallbackReason string
}

// Orchestrator builds query vectors. It holds no per-call state and is safe
// for concurrent use.
type Orchestrator struct {
	embedder  provider.Embedder
	augmenter provider.Augmenter
	cfg       Config
	logger    zerolog.Logger
}

// NewOrchestrator creates an orchestrator. augmenter may be nil, in which
// case the composed profile text is always embedded as is.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewOrchestrator(embedder provider.Embedder, augmenter provider.Augmenter, cfg Config, logger zerolog.Logger) (*Orchestrator, error) {
	if embedder == nil {
		return nil, errors.New("profile: embedder is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Orchestrator{
		embedder:  embedder,
		augmenter: augmenter,
		cfg:       cfg,
		logger:    logger.With().Str("component", "profile").Logger(),
	}, nil
}

// BuildQueryVector returns the query vector for in.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (o *Orchestrator) BuildQueryVector(ctx context.Context, in Input) (vector.Vector, error) {
	q, err := o.BuildQuery(ctx, in)
	if err != nil {
		return nil, err
	}
	return q.Vector, nil
}

// BuildQuery is BuildQueryVector that also reports how the text was chosen.
//
//nolint:gocritic // hugeParam: in passed by value for immutability
func (o *Orchestrator) BuildQuery(ctx context.Context, in Input) (Query, error) {
	composed := ComposeText(in.ProfileText, in.Tags)
	q := Query{Text: composed}

	if o.augmenter != nil && in.Summary != nil && !in.Summary.IsTrivial() {
		recent := analytics.RecentActivity(in.Recent, o.cfg.RecentWindow)
		augmented, reason := o.augment(ctx, composed, summaryText(in.Summary, recent))
		if reason == "" {
			q.Text = composed + " " + augmented
			q.Augmented = true
		} else {
			q.FallbackReason = reason
			metrics.AugmentationFallbacks.WithLabelValues(reason).Inc()
		}
	}

	v, err := o.embed(ctx, q.Text)
	if err != nil {
		return Query{}, err
	}
	q.Vector = v
	return q, nil
}

// augment returns the augmented text, or a non-empty fallback reason.
func (o *Orchestrator) augment(ctx context.Context, composed, summary string) (string, string) {
	actx, cancel := withOptionalTimeout(ctx, o.cfg.AugmentTimeout)
	defer cancel()

	out, err := o.augmenter.Augment(actx, composed, summary)
	if err != nil {
		reason := FallbackError
		var perr *provider.Error
		if errors.As(err, &perr) && perr.Kind == provider.KindTimeout {
			reason = FallbackTimeout
		} else if errors.Is(err, context.DeadlineExceeded) {
			reason = FallbackTimeout
		}
		o.logger.Warn().Err(err).
			Str("kind", string(provider.KindOf(err))).
			Str("reason", reason).
			Msg("augmentation failed, using profile text")
		return "", reason
	}

	out = strings.TrimSpace(out)
	if out == "" {
		o.logger.Warn().Str("reason", FallbackEmpty).Msg("augmentation returned no text, using profile text")
		return "", FallbackEmpty
	}
	return out, ""
}

func (o *Orchestrator) embed(ctx context.Context, text string) (vector.Vector, error) {
	ectx, cancel := withOptionalTimeout(ctx, o.cfg.EmbedTimeout)
	defer cancel()

	v, err := o.embedder.Embed(ectx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if err := vector.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	return v, nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
