// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/api"
	"github.com/tomtom215/brewmatch/internal/config"
	"github.com/tomtom215/brewmatch/internal/events"
	"github.com/tomtom215/brewmatch/internal/logging"
	"github.com/tomtom215/brewmatch/internal/profile"
	"github.com/tomtom215/brewmatch/internal/recommend"
	"github.com/tomtom215/brewmatch/internal/store"
	"github.com/tomtom215/brewmatch/internal/supervisor"
	"github.com/tomtom215/brewmatch/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errRouterStopped is reported by the readiness probe while the event router is down.
var errRouterStopped = errors.New("event router not running")

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingSettings())
	logger := logging.Logger()

	redacted := cfg.Redacted()
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("provider", redacted.Provider.Kind).
		Str("base_url", redacted.Provider.BaseURL).
		Bool("store_in_memory", cfg.Store.InMemory).
		Str("store_path", cfg.Store.Path).
		Msg("Starting Brewmatch with supervisor tree")

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS to specific origins outside development")
			break
		}
	}

	// === DATA LAYER ===

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	providers, err := buildProviders(cfg, logger)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to configure providers")
		return
	}

	// === RANKING ===

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logger)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create ranking engine")
		return
	}
	orchestrator, err := profile.NewOrchestrator(providers.Embedder, providers.Augmenter, cfg.Recommend.OrchestratorConfig(), logger)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create profile orchestrator")
		return
	}
	pipeline := profile.NewPipeline(st, orchestrator, engine, providers.Narrator, analytics.DashboardOptions{
		TopTags:          cfg.Analytics.TopTags,
		NarrationTimeout: cfg.Analytics.NarrationTimeout,
	}, logger)

	// === EVENTS ===

	// Bridge zerolog to slog for Suture and Watermill
	slogLogger := logging.NewSlogLogger()
	wmLogger := watermill.NewSlogLogger(slogLogger)

	pubSub := events.NewPubSub(cfg.Events, wmLogger)
	defer func() {
		if err := pubSub.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing pub/sub")
		}
	}()

	publisher, err := events.NewPublisher(pubSub)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create swipe publisher")
		return
	}
	swipeHandler, err := events.NewSwipeHandler(st, logger)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create swipe handler")
		return
	}
	eventRouter, err := events.NewRouter(cfg.Events, pubSub, pubSub, swipeHandler, wmLogger)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create event router")
		return
	}

	// === HTTP ===

	handler, err := api.NewHandler(api.Deps{
		Store:       st,
		Publisher:   publisher,
		Recommender: pipeline,
		Embedder:    providers.Embedder,
		DefaultK:    cfg.Recommend.DefaultK,
		Readiness: []api.ReadinessCheck{{
			Name: eventRouter.String(),
			Check: func(context.Context) error {
				if !eventRouter.IsRunning() {
					return errRouterStopped
				}
				return nil
			},
		}},
		RequestTimeout: cfg.Server.WriteTimeout,
		Version:        version,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create API handler")
		return
	}

	mwCfg := api.DefaultMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled

	server := &http.Server{
		Handler:      api.NewRouter(handler, mwCfg),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// === SUPERVISOR TREE ===

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + cfg.Events.CloseTimeout
	tree, err := supervisor.NewTree(slogLogger, treeCfg)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	type supervised struct {
		layer supervisor.Layer
		svc   suture.Service
	}
	layered := []supervised{
		{supervisor.LayerData, st},
		{supervisor.LayerMessaging, eventRouter},
		{supervisor.LayerAPI, services.NewHTTPServerService(server, cfg.Server.Address(), cfg.Server.ShutdownTimeout, logger)},
	}
	if providers.Cache != nil {
		layered = append(layered, supervised{supervisor.LayerData, services.NewJanitorService(providers.Cache, 0, logger)})
	}
	for _, l := range layered {
		if _, err := tree.Add(l.layer, l.svc); err != nil {
			logging.Error().Err(err).Msg("Failed to add supervised service")
			return
		}
	}
	for _, layer := range supervisor.Layers {
		logging.Info().
			Str("layer", string(layer)).
			Strs("services", tree.Services()[layer]).
			Msg("Supervisor layer ready")
	}

	// === START ===

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	stats := eventRouter.Stats()
	logging.Info().
		Int64("swipes_received", stats.Received).
		Int64("swipes_persisted", stats.Persisted).
		Msg("Application stopped gracefully")
}
