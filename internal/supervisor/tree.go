// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names a child supervisor of the tree.
type Layer string

// Layers, in start order.
const (
	// LayerData holds storage maintenance: badger GC and the embedding cache janitor.
	LayerData Layer = "data"
	// LayerMessaging holds the swipe event router.
	LayerMessaging Layer = "messaging"
	// LayerAPI holds the HTTP server.
	LayerAPI Layer = "api"
)

// Layers lists every layer in start order.
var Layers = []Layer{LayerData, LayerMessaging, LayerAPI}

// ErrUnknownLayer is returned by Add for a layer the tree does not have.
var ErrUnknownLayer = errors.New("supervisor: unknown layer")

// TreeConfig holds restart policy and shutdown settings shared by every layer.
type TreeConfig struct {
	// FailureThreshold is the number of failures before entering backoff.
	// Default: 5
	FailureThreshold float64

	// FailureDecay is the rate at which failures decay in seconds.
	// Default: 30
	FailureDecay float64

	// FailureBackoff is the duration to wait when threshold is exceeded.
	// Default: 15s
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop. The server
	// sets it to the HTTP drain time plus the event router close time.
	// Default: 10s
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultTreeConfig.
func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// Validate rejects negative settings.
func (c TreeConfig) Validate() error {
	switch {
	case c.FailureThreshold < 0:
		return fmt.Errorf("supervisor: failure threshold must not be negative, got %v", c.FailureThreshold)
	case c.FailureDecay < 0:
		return fmt.Errorf("supervisor: failure decay must not be negative, got %v", c.FailureDecay)
	case c.FailureBackoff < 0:
		return fmt.Errorf("supervisor: failure backoff must not be negative, got %v", c.FailureBackoff)
	case c.ShutdownTimeout < 0:
		return fmt.Errorf("supervisor: shutdown timeout must not be negative, got %v", c.ShutdownTimeout)
	}
	return nil
}

func (c TreeConfig) supervisorSpec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// Tree is the Brewmatch supervisor hierarchy: a root supervisor with one
// child per Layer. A crash in one layer restarts only that service.
type Tree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig

	mu       sync.Mutex
	services map[Layer][]string
}

// NewTree builds the tree. Supervisor events are logged through logger.
func NewTree(logger *slog.Logger, config TreeConfig) (*Tree, error) {
	if logger == nil {
		return nil, errors.New("supervisor: logger is required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	// MustHook has a pointer receiver. Children inherit the hook from the root.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()
	root := suture.New("brewmatch", config.supervisorSpec(hook))

	t := &Tree{
		root:     root,
		layers:   make(map[Layer]*suture.Supervisor, len(Layers)),
		config:   config,
		services: make(map[Layer][]string, len(Layers)),
	}
	for _, l := range Layers {
		sup := suture.New(string(l)+"-layer", config.supervisorSpec(nil))
		root.Add(sup)
		t.layers[l] = sup
	}
	return t, nil
}

// Add supervises svc under layer.
func (t *Tree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	token := sup.Add(svc)

	t.mu.Lock()
	t.services[layer] = append(t.services[layer], serviceName(svc))
	t.mu.Unlock()
	return token, nil
}

// Services returns the names of the services added to each layer.
func (t *Tree) Services() map[Layer][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[Layer][]string, len(t.services))
	for l, names := range t.services {
		out[l] = append([]string(nil), names...)
	}
	return out
}

// Config returns the effective configuration.
func (t *Tree) Config() TreeConfig { return t.config }

// Root returns the root supervisor.
func (t *Tree) Root() *suture.Supervisor { return t.root }

// Serve runs the tree until ctx is canceled.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree in a goroutine. The channel receives the
// root's exit error (or nil) once it stops.
func (t *Tree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that did not stop within ShutdownTimeout.
func (t *Tree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

func serviceName(svc suture.Service) string {
	if s, ok := svc.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", svc)
}
