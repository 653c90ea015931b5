// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateRecommend,
		c.validateAnalytics,
		c.validateProvider,
		c.validateEmbeddingCache,
		c.Store.Validate,
		c.Events.Validate,
		c.validateSecurity,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return errors.New("server read and write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("server.environment must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if c.Recommend.Workers < 0 {
		return fmt.Errorf("recommend.workers must be non-negative, got %d", c.Recommend.Workers)
	}
	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return err
	}
	oc := c.Recommend.OrchestratorConfig()
	return oc.Validate()
}

func (c *Config) validateAnalytics() error {
	if c.Analytics.TopTags < 1 {
		return fmt.Errorf("analytics.top_tags must be positive, got %d", c.Analytics.TopTags)
	}
	if c.Analytics.NarrationTimeout < 0 {
		return fmt.Errorf("analytics.narration_timeout must be non-negative, got %s", c.Analytics.NarrationTimeout)
	}
	return nil
}

func (c *Config) validateProvider() error {
	p := &c.Provider
	switch p.Kind {
	case ProviderStatic:
		if p.Dimensions < 1 {
			return fmt.Errorf("provider.dimensions must be positive for the static provider, got %d", p.Dimensions)
		}
	case ProviderOpenAI:
		if p.BaseURL == "" {
			return errors.New("provider.base_url is required when provider.kind=openai")
		}
		if p.EmbeddingModel == "" || p.ChatModel == "" {
			return errors.New("provider.embedding_model and provider.chat_model are required when provider.kind=openai")
		}
		if p.Dimensions < 0 {
			return fmt.Errorf("provider.dimensions must be non-negative, got %d", p.Dimensions)
		}
	default:
		return fmt.Errorf("provider.kind must be %q or %q, got %q", ProviderStatic, ProviderOpenAI, p.Kind)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("provider.max_retries must be non-negative, got %d", p.MaxRetries)
	}
	if p.MaxRetryDelay < 0 {
		return fmt.Errorf("provider.max_retry_delay must be non-negative, got %v", p.MaxRetryDelay)
	}
	if p.RequestsPerSecond < 0 {
		return fmt.Errorf("provider.requests_per_second must be non-negative, got %v", p.RequestsPerSecond)
	}
	if p.BreakerFailureRatio < 0 || p.BreakerFailureRatio > 1 {
		return fmt.Errorf("provider.breaker_failure_ratio must be in [0, 1], got %v", p.BreakerFailureRatio)
	}
	return nil
}

func (c *Config) validateEmbeddingCache() error {
	if !c.EmbeddingCache.Enabled {
		return nil
	}
	if c.EmbeddingCache.Size < 1 {
		return fmt.Errorf("embedding_cache.size must be positive, got %d", c.EmbeddingCache.Size)
	}
	if c.EmbeddingCache.TTL < 0 {
		return fmt.Errorf("embedding_cache.ttl must be non-negative, got %s", c.EmbeddingCache.TTL)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
	}
	if c.Server.Environment == "production" {
		for _, o := range c.Security.CORSOrigins {
			if o == "*" {
				return errors.New("security.cors_origins must not contain \"*\" in production")
			}
		}
	}
	return nil
}
