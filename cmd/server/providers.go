// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/config"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/provider/openai"
	"github.com/tomtom215/brewmatch/internal/provider/static"
)

// Providers holds the external collaborators, already guarded and cached.
type Providers struct {
	Embedder  provider.Embedder
	Augmenter provider.Augmenter
	Narrator  analytics.Narrator

	// Cache is nil when the embedding cache is disabled.
	Cache *provider.CachedEmbedder
}

// buildProviders selects the backend from cfg.Provider.Kind. The OpenAI
// backend shares one guard across its three operations since they hit the
// same upstream; the static backend runs in-process and is not guarded.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func buildProviders(cfg *config.Config, logger zerolog.Logger) (*Providers, error) {
	var p Providers

	switch cfg.Provider.Kind {
	case config.ProviderStatic:
		p.Embedder = static.NewEmbedder(cfg.Provider.Dimensions)
		p.Augmenter = static.NewAugmenter()
		p.Narrator = static.NewNarrator()

	case config.ProviderOpenAI:
		client := openai.New(cfg.Provider.OpenAIConfig())
		guard := provider.NewGuard(cfg.Provider.GuardConfig(openai.Name), logger)
		p.Embedder = provider.NewGuardedEmbedder(client, guard)
		p.Augmenter = provider.NewGuardedAugmenter(client, guard)
		p.Narrator = provider.NewGuardedNarrator(client, guard)

	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Provider.Kind)
	}

	if cfg.EmbeddingCache.Enabled {
		p.Cache = provider.NewCachedEmbedder(p.Embedder, cfg.EmbeddingCache.Size, cfg.EmbeddingCache.TTL)
		p.Embedder = p.Cache
	}

	logger.Info().
		Str("kind", cfg.Provider.Kind).
		Str("model", p.Embedder.Model()).
		Int("dimensions", p.Embedder.Dimensions()).
		Bool("embedding_cache", p.Cache != nil).
		Msg("providers configured")

	return &p, nil
}
