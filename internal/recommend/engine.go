// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/brewmatch/internal/metrics"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// ErrTooManyCandidates is returned when a pool exceeds Config.MaxCandidates.
var ErrTooManyCandidates = errors.New("candidate pool exceeds limit")

// Request is one ranking call.
type Request struct {
	// Mode labels metrics and logs ("coffee", "matcha").
	Mode    string
	Query   vector.Vector
	Pool    CandidatePool
	Exclude ExclusionSet
	// K is the number of results wanted. Values above Config.MaxK are
	// capped; zero or negative K returns an empty result.
	K int
}

// Stats are cumulative engine counters.
type Stats struct {
	Requests          int64 `json:"requests"`
	Errors            int64 `json:"errors"`
	DimensionMismatch int64 `json:"dimension_mismatch"`
	ParallelRankings  int64 `json:"parallel_rankings"`
	CandidatesScored  int64 `json:"candidates_scored"`
}

// Engine ranks candidate pools. It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	requests          atomic.Int64
	errors            atomic.Int64
	dimensionMismatch atomic.Int64
	parallel          atomic.Int64
	scored            atomic.Int64
}

// NewEngine creates a ranking engine. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{
		config: cfg.Clone(),
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Recommend ranks req.Pool and returns item IDs.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) ([]int64, error) {
	ranked, err := e.Rank(ctx, req)
	if err != nil {
		return nil, err
	}
	return IDs(ranked), nil
}

// Rank ranks req.Pool and returns scored items.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Rank(ctx context.Context, req Request) ([]Scored, error) {
	start := time.Now()
	e.requests.Add(1)

	k := e.resolveK(req.K)
	candidates := eligible(req.Pool, req.Exclude)

	ranked, err := e.rank(ctx, req.Query, req.Pool, candidates, k)
	metrics.RecordRecommendation(req.Mode, len(candidates), len(ranked), time.Since(start), err)
	if err != nil {
		e.errors.Add(1)
		if errors.Is(err, vector.ErrDimensionMismatch) {
			e.dimensionMismatch.Add(1)
			metrics.RecommendDimensionMismatch.Inc()
		}
		e.logger.Warn().Err(err).
			Str("mode", req.Mode).
			Int("query_dim", len(req.Query)).
			Int("candidates", len(candidates)).
			Msg("ranking failed")
		return nil, err
	}

	e.scored.Add(int64(len(candidates)))
	e.logger.Debug().
		Str("mode", req.Mode).
		Int("pool", len(req.Pool)).
		Int("candidates", len(candidates)).
		Int("k", k).
		Int("returned", len(ranked)).
		Dur("latency", time.Since(start)).
		Msg("ranking complete")

	return ranked, nil
}

func (e *Engine) rank(ctx context.Context, query vector.Vector, pool CandidatePool, candidates []int64, k int) ([]Scored, error) {
	if k <= 0 || len(candidates) == 0 {
		return []Scored{}, nil
	}
	if e.config.MaxCandidates > 0 && len(candidates) > e.config.MaxCandidates {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCandidates, len(candidates), e.config.MaxCandidates)
	}

	var scored []Scored
	var err error
	if len(candidates) >= e.config.ParallelThreshold && e.config.Workers > 1 {
		e.parallel.Add(1)
		scored, err = e.scoreParallel(ctx, query, pool, candidates)
	} else {
		scored, err = scoreSerial(query, pool, candidates)
	}
	if err != nil {
		return nil, err
	}
	return topK(scored, k), nil
}

// scoreParallel splits candidates into one contiguous chunk per worker.
// Each worker writes only its own slice range, so no locking is needed.
func (e *Engine) scoreParallel(ctx context.Context, query vector.Vector, pool CandidatePool, candidates []int64) ([]Scored, error) {
	out := make([]Scored, len(candidates))
	workers := e.config.Workers
	chunk := (len(candidates) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(candidates); lo += chunk {
		hi := min(lo+chunk, len(candidates))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				id := candidates[i]
				s, err := vector.Dot(query, pool[id])
				if err != nil {
					return fmt.Errorf("score item %d: %w", id, err)
				}
				out[i] = Scored{ID: id, Score: s}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) resolveK(k int) int {
	switch {
	case k <= 0:
		return 0
	case k > e.config.MaxK:
		return e.config.MaxK
	default:
		return k
	}
}

// Stats returns cumulative counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests:          e.requests.Load(),
		Errors:            e.errors.Load(),
		DimensionMismatch: e.dimensionMismatch.Load(),
		ParallelRankings:  e.parallel.Load(),
		CandidatesScored:  e.scored.Load(),
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}
