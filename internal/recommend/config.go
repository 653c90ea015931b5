// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package recommend

import (
	"fmt"
	"runtime"
)

// Config contains configuration for the ranking engine.
type Config struct {
	// DefaultK is the K the API uses when a request names none.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK caps the requested K.
	// Default: 100.
	MaxK int `json:"max_k"`

	// MaxCandidates rejects pools larger than this. Zero disables the check.
	// Default: 100000.
	MaxCandidates int `json:"max_candidates"`

	// ParallelThreshold is the eligible pool size at which scoring is split
	// across workers.
	// Default: 2048.
	ParallelThreshold int `json:"parallel_threshold"`

	// Workers is the number of scoring goroutines for large pools.
	// Default: runtime.GOMAXPROCS(0).
	Workers int `json:"workers"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultK:          5,
		MaxK:              100,
		MaxCandidates:     100000,
		ParallelThreshold: 2048,
		Workers:           runtime.GOMAXPROCS(0),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultK < 1 {
		return fmt.Errorf("recommend.default_k must be positive, got %d", c.DefaultK)
	}
	if c.MaxK < c.DefaultK {
		return fmt.Errorf("recommend.max_k (%d) must be >= default_k (%d)", c.MaxK, c.DefaultK)
	}
	if c.MaxCandidates < 0 {
		return fmt.Errorf("recommend.max_candidates must be non-negative, got %d", c.MaxCandidates)
	}
	if c.ParallelThreshold < 1 {
		return fmt.Errorf("recommend.parallel_threshold must be positive, got %d", c.ParallelThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("recommend.workers must be positive, got %d", c.Workers)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
