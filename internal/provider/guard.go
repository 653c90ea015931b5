// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/metrics"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// GuardConfig configures the circuit breaker and rate limiter in front of a provider.
type GuardConfig struct {
	// Name labels the breaker in logs and metrics.
	Name string

	// RequestsPerSecond limits outbound calls. Zero disables limiting.
	RequestsPerSecond float64

	// Burst is the limiter bucket size.
	// Default: 1 when limiting is enabled.
	Burst int

	// MaxRequests is the number of trial calls allowed while half-open.
	// Default: 3.
	MaxRequests uint32

	// Interval resets the closed-state counts.
	// Default: 1m.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	// Default: 30s.
	Timeout time.Duration

	// MinRequests is the number of calls in an interval before the breaker may trip.
	// Default: 10.
	MinRequests uint32

	// FailureRatio trips the breaker once reached.
	// Default: 0.6.
	FailureRatio float64
}

func (c *GuardConfig) applyDefaults() {
	if c.Name == "" {
		c.Name = "provider"
	}
	if c.MaxRequests == 0 {
		c.MaxRequests = 3
	}
	if c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MinRequests == 0 {
		c.MinRequests = 10
	}
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.6
	}
	if c.RequestsPerSecond > 0 && c.Burst <= 0 {
		c.Burst = 1
	}
}

// Guard protects calls to one provider with a rate limiter and a circuit breaker.
type Guard struct {
	name    string
	cb      *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewGuard creates a guard.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewGuard(cfg GuardConfig, logger zerolog.Logger) *Guard {
	cfg.applyDefaults()
	logger = logger.With().Str("component", "provider").Str("breaker", cfg.Name).Logger()

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	g := &Guard{name: cfg.Name, logger: logger}
	if cfg.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	}

	g.cb = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= cfg.FailureRatio {
				logger.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio).Msg("opening circuit")
				return true
			}
			return false
		},
		// Refused input and caller cancellation say nothing about provider health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			switch KindOf(err) {
			case KindRejected, KindCanceled:
				return true
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
		},
	})
	return g
}

// Name returns the breaker name.
func (g *Guard) Name() string {
	return g.name
}

// State returns the breaker state as "closed", "half-open" or "open".
func (g *Guard) State() string {
	return stateToString(g.cb.State())
}

// execute runs fn behind the limiter and breaker. Errors come back as *Error.
func (g *Guard) execute(ctx context.Context, op string, fn func(context.Context) (any, error)) (any, error) {
	start := time.Now()

	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
			kind := KindRateLimited
			switch {
			case errors.Is(ctx.Err(), context.DeadlineExceeded):
				kind = KindTimeout
			case errors.Is(ctx.Err(), context.Canceled):
				kind = KindCanceled
			}
			metrics.RecordProviderCall(g.name, op, time.Since(start), string(kind))
			return nil, NewError(g.name, op, kind, err)
		}
	}

	result, err := g.cb.Execute(func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
			g.logger.Debug().Err(err).Str("op", op).Msg("request rejected by circuit breaker")
			err = NewError(g.name, op, KindUnavailable, err)
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
			err = Wrap(g.name, op, err)
		}
		metrics.RecordProviderCall(g.name, op, time.Since(start), string(KindOf(err)))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
	metrics.RecordProviderCall(g.name, op, time.Since(start), "")
	return result, nil
}

// castResult type-asserts a guarded call result.
func castResult[T any](result any, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GuardedEmbedder is an Embedder behind a Guard.
type GuardedEmbedder struct {
	inner Embedder
	guard *Guard
}

// NewGuardedEmbedder wraps inner with guard.
func NewGuardedEmbedder(inner Embedder, guard *Guard) *GuardedEmbedder {
	return &GuardedEmbedder{inner: inner, guard: guard}
}

// Embed implements Embedder.
func (e *GuardedEmbedder) Embed(ctx context.Context, text string) (vector.Vector, error) {
	return castResult[vector.Vector](e.guard.execute(ctx, "embed", func(ctx context.Context) (any, error) {
		return e.inner.Embed(ctx, text)
	}))
}

// Dimensions implements Embedder.
func (e *GuardedEmbedder) Dimensions() int { return e.inner.Dimensions() }

// Model implements Embedder.
func (e *GuardedEmbedder) Model() string { return e.inner.Model() }

// GuardedAugmenter is an Augmenter behind a Guard.
type GuardedAugmenter struct {
	inner Augmenter
	guard *Guard
}

// NewGuardedAugmenter wraps inner with guard.
func NewGuardedAugmenter(inner Augmenter, guard *Guard) *GuardedAugmenter {
	return &GuardedAugmenter{inner: inner, guard: guard}
}

// Augment implements Augmenter.
func (a *GuardedAugmenter) Augment(ctx context.Context, profileText, summaryText string) (string, error) {
	return castResult[string](a.guard.execute(ctx, "augment", func(ctx context.Context) (any, error) {
		return a.inner.Augment(ctx, profileText, summaryText)
	}))
}

// GuardedNarrator is an analytics.Narrator behind a Guard.
type GuardedNarrator struct {
	inner analytics.Narrator
	guard *Guard
}

// NewGuardedNarrator wraps inner with guard.
func NewGuardedNarrator(inner analytics.Narrator, guard *Guard) *GuardedNarrator {
	return &GuardedNarrator{inner: inner, guard: guard}
}

// Narrate implements analytics.Narrator.
func (n *GuardedNarrator) Narrate(ctx context.Context, in analytics.NarrationInput) ([]string, error) {
	return castResult[[]string](n.guard.execute(ctx, "narrate", func(ctx context.Context) (any, error) {
		return n.inner.Narrate(ctx, in)
	}))
}
