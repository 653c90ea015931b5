// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/brewmatch/internal/events"
	"github.com/tomtom215/brewmatch/internal/logging"
	"github.com/tomtom215/brewmatch/internal/profile"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/provider/openai"
	"github.com/tomtom215/brewmatch/internal/recommend"
	"github.com/tomtom215/brewmatch/internal/store"
)

// Provider kinds
const (
	ProviderStatic = "static"
	ProviderOpenAI = "openai"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig         `koanf:"server"`
	Logging        LoggingConfig        `koanf:"logging"`
	Recommend      RecommendConfig      `koanf:"recommend"`
	Analytics      AnalyticsConfig      `koanf:"analytics"`
	Provider       ProviderConfig       `koanf:"provider"`
	EmbeddingCache EmbeddingCacheConfig `koanf:"embedding_cache"`
	Store          store.Config         `koanf:"store"`
	Events         events.Config        `koanf:"events"`
	Security       SecurityConfig       `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds ranking engine and orchestration settings.
type RecommendConfig struct {
	DefaultK          int `koanf:"default_k"`
	MaxK              int `koanf:"max_k"`
	MaxCandidates     int `koanf:"max_candidates"`
	ParallelThreshold int `koanf:"parallel_threshold"`
	// Workers of 0 means runtime.GOMAXPROCS(0).
	Workers int `koanf:"workers"`

	AugmentTimeout time.Duration `koanf:"augment_timeout"`
	EmbedTimeout   time.Duration `koanf:"embed_timeout"`
	RecentWindow   int           `koanf:"recent_window"`
}

// AnalyticsConfig holds dashboard settings.
type AnalyticsConfig struct {
	TopTags          int           `koanf:"top_tags"`
	NarrationTimeout time.Duration `koanf:"narration_timeout"`
}

// ProviderConfig selects and tunes the embedding and text-generation backend.
type ProviderConfig struct {
	// Kind is "static" (offline, deterministic) or "openai".
	Kind string `koanf:"kind"`

	BaseURL        string `koanf:"base_url"`
	APIKey         string `koanf:"api_key"`
	EmbeddingModel string `koanf:"embedding_model"`
	ChatModel      string `koanf:"chat_model"`
	// Dimensions is the embedding size. For openai, 0 accepts the model default.
	Dimensions     int           `koanf:"dimensions"`
	HTTPTimeout    time.Duration `koanf:"http_timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	MaxRetryDelay  time.Duration `koanf:"max_retry_delay"`

	// Guard settings (rate limiter + circuit breaker)
	RequestsPerSecond   float64       `koanf:"requests_per_second"`
	Burst               int           `koanf:"burst"`
	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// EmbeddingCacheConfig holds the embedding LRU settings.
type EmbeddingCacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Size    int           `koanf:"size"`
	TTL     time.Duration `koanf:"ttl"`
}

// SecurityConfig holds CORS and rate limiting settings
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingSettings converts the logging section for logging.Init.
func (c *Config) LoggingSettings() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}

// EngineConfig converts the recommend section for recommend.NewEngine.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	cfg := recommend.DefaultConfig()
	cfg.DefaultK = r.DefaultK
	cfg.MaxK = r.MaxK
	cfg.MaxCandidates = r.MaxCandidates
	cfg.ParallelThreshold = r.ParallelThreshold
	if r.Workers > 0 {
		cfg.Workers = r.Workers
	}
	return cfg
}

// OrchestratorConfig converts the recommend section for profile.NewOrchestrator.
func (r *RecommendConfig) OrchestratorConfig() profile.Config {
	return profile.Config{
		AugmentTimeout: r.AugmentTimeout,
		EmbedTimeout:   r.EmbedTimeout,
		RecentWindow:   r.RecentWindow,
	}
}

// OpenAIConfig converts the provider section for openai.New.
func (p *ProviderConfig) OpenAIConfig() openai.Config {
	return openai.Config{
		BaseURL:        p.BaseURL,
		APIKey:         p.APIKey,
		EmbeddingModel: p.EmbeddingModel,
		ChatModel:      p.ChatModel,
		Dimensions:     p.Dimensions,
		HTTPTimeout:    p.HTTPTimeout,
		MaxRetries:     p.MaxRetries,
		RetryBaseDelay: p.RetryBaseDelay,
		MaxRetryDelay:  p.MaxRetryDelay,
	}
}

// GuardConfig converts the provider section for provider.NewGuard.
func (p *ProviderConfig) GuardConfig(name string) provider.GuardConfig {
	return provider.GuardConfig{
		Name:              name,
		RequestsPerSecond: p.RequestsPerSecond,
		Burst:             p.Burst,
		MaxRequests:       p.BreakerMaxRequests,
		Interval:          p.BreakerInterval,
		Timeout:           p.BreakerTimeout,
		MinRequests:       p.BreakerMinRequests,
		FailureRatio:      p.BreakerFailureRatio,
	}
}

// Redacted returns a copy safe to log.
func (c *Config) Redacted() Config {
	out := *c
	if out.Provider.APIKey != "" {
		out.Provider.APIKey = "[REDACTED]"
	}
	out.Security.CORSOrigins = append([]string(nil), c.Security.CORSOrigins...)
	return out
}

// Address returns the HTTP listen address.
func (s *ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
