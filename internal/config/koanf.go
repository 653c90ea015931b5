// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/brewmatch/internal/events"
	"github.com/tomtom215/brewmatch/internal/provider/static"
	"github.com/tomtom215/brewmatch/internal/store"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/brewmatch/config.yaml",
	"/etc/brewmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second, // narration and augmentation can be slow
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			DefaultK:          5,
			MaxK:              100,
			MaxCandidates:     100000,
			ParallelThreshold: 2048,
			Workers:           runtime.GOMAXPROCS(0),
			AugmentTimeout:    5 * time.Second,
			EmbedTimeout:      10 * time.Second,
			RecentWindow:      5,
		},
		Analytics: AnalyticsConfig{
			TopTags:          5,
			NarrationTimeout: 10 * time.Second,
		},
		Provider: ProviderConfig{
			Kind:                ProviderStatic,
			BaseURL:             "https://api.openai.com/v1",
			EmbeddingModel:      "text-embedding-3-small",
			ChatModel:           "gpt-4o-mini",
			Dimensions:          static.DefaultDimensions,
			HTTPTimeout:         30 * time.Second,
			MaxRetries:          3,
			RetryBaseDelay:      500 * time.Millisecond,
			MaxRetryDelay:       10 * time.Second,
			RequestsPerSecond:   10,
			Burst:               20,
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      30 * time.Second,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		EmbeddingCache: EmbeddingCacheConfig{
			Enabled: true,
			Size:    10000,
			TTL:     24 * time.Hour,
		},
		Store:  store.DefaultConfig(),
		Events: events.DefaultConfig(),
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation mappings
	"recommend_default_k":          "recommend.default_k",
	"recommend_max_k":              "recommend.max_k",
	"recommend_max_candidates":     "recommend.max_candidates",
	"recommend_parallel_threshold": "recommend.parallel_threshold",
	"recommend_workers":            "recommend.workers",
	"recommend_augment_timeout":    "recommend.augment_timeout",
	"recommend_embed_timeout":      "recommend.embed_timeout",
	"recommend_recent_window":      "recommend.recent_window",

	// Analytics mappings
	"analytics_top_tags":          "analytics.top_tags",
	"analytics_narration_timeout": "analytics.narration_timeout",

	// Provider mappings
	"provider_kind":                  "provider.kind",
	"openai_base_url":                "provider.base_url",
	"openai_api_key":                 "provider.api_key",
	"openai_embedding_model":         "provider.embedding_model",
	"openai_chat_model":              "provider.chat_model",
	"embedding_dimensions":           "provider.dimensions",
	"provider_http_timeout":          "provider.http_timeout",
	"provider_max_retries":           "provider.max_retries",
	"provider_retry_base_delay":      "provider.retry_base_delay",
	"provider_max_retry_delay":       "provider.max_retry_delay",
	"provider_rate_limit":            "provider.requests_per_second",
	"provider_burst":                 "provider.burst",
	"provider_breaker_timeout":       "provider.breaker_timeout",
	"provider_breaker_failure_ratio": "provider.breaker_failure_ratio",
	"provider_breaker_min_requests":  "provider.breaker_min_requests",

	// Embedding cache mappings
	"embedding_cache_enabled": "embedding_cache.enabled",
	"embedding_cache_size":    "embedding_cache.size",
	"embedding_cache_ttl":     "embedding_cache.ttl",

	// Store mappings
	"badger_path":        "store.path",
	"badger_in_memory":   "store.in_memory",
	"badger_sync_writes": "store.sync_writes",
	"badger_gc_interval": "store.gc_interval",

	// Events mappings
	"events_buffer":        "events.output_buffer",
	"events_retry_max":     "events.retry_max_retries",
	"events_poison_topic":  "events.poison_topic",
	"events_close_timeout": "events.close_timeout",

	// Security mappings
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - OPENAI_API_KEY -> provider.api_key
//   - BADGER_PATH -> store.path
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
