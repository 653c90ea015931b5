// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package config provides centralized configuration management for Brewmatch.

# Configuration Sources

Configuration is layered with Koanf v2. Later layers override earlier ones:
 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: $CONFIG_PATH, then config.yaml, config.yml,
    /etc/brewmatch/config.yaml, /etc/brewmatch/config.yml
 3. Environment variables (explicit mapping, see envTransformFunc)

# Configuration Structure

  - ServerConfig: HTTP listener and timeouts
  - LoggingConfig: zerolog level and format
  - RecommendConfig: ranking engine and query-vector orchestration
  - AnalyticsConfig: dashboard tag ranking and narration timeout
  - ProviderConfig: embedding / text-generation backend and its guard
  - EmbeddingCacheConfig: LRU cache in front of the embedder
  - store.Config: BadgerDB persistence
  - events.Config: in-process event bus
  - SecurityConfig: CORS and rate limiting

# Environment Variables

Server:
  - HTTP_HOST (default: 0.0.0.0), HTTP_PORT (default: 8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - ENVIRONMENT (default: development)

Logging:
  - LOG_LEVEL (default: info), LOG_FORMAT (default: json), LOG_CALLER (default: false)

Recommendation:
  - RECOMMEND_DEFAULT_K (default: 5), RECOMMEND_MAX_K (default: 100)
  - RECOMMEND_MAX_CANDIDATES, RECOMMEND_PARALLEL_THRESHOLD, RECOMMEND_WORKERS
  - RECOMMEND_AUGMENT_TIMEOUT (default: 5s), RECOMMEND_EMBED_TIMEOUT (default: 10s)
  - RECOMMEND_RECENT_WINDOW (default: 5)

Analytics:
  - ANALYTICS_TOP_TAGS (default: 5), ANALYTICS_NARRATION_TIMEOUT (default: 10s)

Provider:
  - PROVIDER_KIND: static or openai (default: static)
  - OPENAI_BASE_URL, OPENAI_API_KEY, OPENAI_EMBEDDING_MODEL, OPENAI_CHAT_MODEL
  - EMBEDDING_DIMENSIONS (default: 256)
  - PROVIDER_HTTP_TIMEOUT, PROVIDER_MAX_RETRIES, PROVIDER_MAX_RETRY_DELAY
  - PROVIDER_RATE_LIMIT, PROVIDER_BURST
  - PROVIDER_BREAKER_TIMEOUT, PROVIDER_BREAKER_FAILURE_RATIO, PROVIDER_BREAKER_MIN_REQUESTS

Embedding cache:
  - EMBEDDING_CACHE_ENABLED (default: true), EMBEDDING_CACHE_SIZE, EMBEDDING_CACHE_TTL

Store:
  - BADGER_PATH (default: ./data/brewmatch), BADGER_IN_MEMORY, BADGER_SYNC_WRITES

Events:
  - EVENTS_BUFFER, EVENTS_RETRY_MAX, EVENTS_POISON_TOPIC

Security:
  - CORS_ORIGINS (comma-separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), logger)

Secrets (OPENAI_API_KEY) are never logged; use Config.Redacted for startup logs.
*/
package config
