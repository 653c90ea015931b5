// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/tomtom215/brewmatch/internal/cache"
	"github.com/tomtom215/brewmatch/internal/metrics"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// CachedEmbedder serves repeated texts from a content-addressed LRU.
// Embeddings are deterministic per model and text, so the key is a SHA-256
// of both.
type CachedEmbedder struct {
	inner Embedder
	cache *cache.LRU[vector.Vector]
}

// NewCachedEmbedder wraps inner with a cache of size entries living for ttl.
func NewCachedEmbedder(inner Embedder, size int, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache.NewLRU[vector.Vector](size, ttl)}
}

// ContentHash returns the cache key for text under model.
func ContentHash(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Embed implements Embedder. Cached vectors are copied out so callers may modify them.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (vector.Vector, error) {
	key := ContentHash(c.inner.Model(), text)
	if v, ok := c.cache.Get(key); ok {
		metrics.EmbeddingCacheHits.Inc()
		return v.Clone(), nil
	}
	metrics.EmbeddingCacheMisses.Inc()

	v, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, v.Clone())
	metrics.EmbeddingCacheEntries.Set(float64(c.cache.Len()))
	return v, nil
}

// Dimensions implements Embedder.
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

// Model implements Embedder.
func (c *CachedEmbedder) Model() string { return c.inner.Model() }

// Stats returns cache hits, misses and size.
func (c *CachedEmbedder) Stats() (hits, misses int64, size int) {
	hits, misses, _, size = c.cache.Stats()
	return hits, misses, size
}

// CleanupExpired drops expired vectors and returns how many were removed.
func (c *CachedEmbedder) CleanupExpired() int {
	n := c.cache.CleanupExpired()
	metrics.EmbeddingCacheEntries.Set(float64(c.cache.Len()))
	return n
}
