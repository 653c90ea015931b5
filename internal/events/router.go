// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package events

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Config holds configuration for the in-process event bus.
type Config struct {
	// OutputBuffer is the gochannel subscriber buffer size.
	// Default: 1024
	OutputBuffer int64 `koanf:"output_buffer"`

	// CloseTimeout is how long to wait for handlers to finish when closing.
	// Default: 10s
	CloseTimeout time.Duration `koanf:"close_timeout"`

	// Retry configuration
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	RetryMultiplier      float64       `koanf:"retry_multiplier"`

	// PoisonTopic receives messages that still fail after all retries.
	// Empty disables the poison queue.
	// Default: swipe.poison
	PoisonTopic string `koanf:"poison_topic"`
}

// DefaultConfig returns production defaults for the event bus.
func DefaultConfig() Config {
	return Config{
		OutputBuffer:         1024,
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     5 * time.Second,
		RetryMultiplier:      2.0,
		PoisonTopic:          TopicSwipePoison,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.OutputBuffer < 0 {
		return fmt.Errorf("events.output_buffer must be non-negative, got %d", c.OutputBuffer)
	}
	if c.CloseTimeout <= 0 {
		return fmt.Errorf("events.close_timeout must be positive, got %s", c.CloseTimeout)
	}
	if c.RetryMaxRetries < 0 {
		return fmt.Errorf("events.retry_max_retries must be non-negative, got %d", c.RetryMaxRetries)
	}
	if c.RetryMultiplier < 1 {
		return fmt.Errorf("events.retry_multiplier must be >= 1, got %v", c.RetryMultiplier)
	}
	return nil
}

// NewPubSub creates the in-process pub/sub used for both publishing and
// subscribing.
//
//nolint:gocritic // config is small and read once
func NewPubSub(cfg Config, logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: cfg.OutputBuffer,
	}, logger)
}

// Router wraps the Watermill router with the swipe handler and middleware.
type Router struct {
	router  *message.Router
	handler *SwipeHandler
	running atomic.Bool
}

// NewRouter creates a router that feeds TopicSwipeRecorded from sub into
// handler. Middleware, outer to inner: recoverer, poison queue, retry.
// The poison queue wraps retry so only exhausted messages reach it.
//
//nolint:gocritic // config is small and read once
func NewRouter(cfg Config, sub message.Subscriber, poisonPub message.Publisher, handler *SwipeHandler, logger watermill.LoggerAdapter) (*Router, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid events config: %w", err)
	}
	if handler == nil {
		return nil, fmt.Errorf("swipe handler required")
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer, middleware.CorrelationID)

	if poisonPub != nil && cfg.PoisonTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPub, cfg.PoisonTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	wmRouter.AddConsumerHandler("swipe_persister", TopicSwipeRecorded, sub, handler.Handle)

	return &Router{router: wmRouter, handler: handler}, nil
}

// Serve runs the router until ctx is done. It implements suture.Service.
func (r *Router) Serve(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	if err := r.router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close gracefully stops the router.
func (r *Router) Close() error {
	return r.router.Close()
}

// Stats returns the swipe handler counters.
func (r *Router) Stats() HandlerStats {
	return r.handler.Stats()
}

// String implements fmt.Stringer for supervisor logging.
func (r *Router) String() string {
	return "event-router"
}
