// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Expirer drops expired cache entries and reports how many went.
//
// Satisfied by *provider.CachedEmbedder.
type Expirer interface {
	CleanupExpired() int
}

// JanitorService periodically prunes expired cache entries so stale vectors
// do not hold memory until they are evicted by size pressure.
type JanitorService struct {
	target   Expirer
	interval time.Duration
	logger   zerolog.Logger
}

// NewJanitorService creates a janitor for target. A non-positive interval
// means 5m.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewJanitorService(target Expirer, interval time.Duration, logger zerolog.Logger) *JanitorService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &JanitorService{
		target:   target,
		interval: interval,
		logger:   logger.With().Str("service", "embedding-cache-janitor").Logger(),
	}
}

// Serve implements suture.Service.
func (s *JanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.target.CleanupExpired(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("pruned expired embeddings")
			}
		}
	}
}

// String implements fmt.Stringer for suture logging.
func (s *JanitorService) String() string {
	return "embedding-cache-janitor"
}
