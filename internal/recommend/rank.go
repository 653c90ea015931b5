// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package recommend

import (
	"fmt"
	"sort"

	"github.com/tomtom215/brewmatch/internal/vector"
)

// Recommend returns up to k item IDs from pool, excluding exclude, ranked by
// dot-product similarity to query.
func Recommend(query vector.Vector, pool CandidatePool, exclude ExclusionSet, k int) ([]int64, error) {
	ranked, err := Rank(query, pool, exclude, k)
	if err != nil {
		return nil, err
	}
	return IDs(ranked), nil
}

// Rank is Recommend with scores attached.
func Rank(query vector.Vector, pool CandidatePool, exclude ExclusionSet, k int) ([]Scored, error) {
	if k <= 0 {
		return []Scored{}, nil
	}
	candidates := eligible(pool, exclude)
	scored, err := scoreSerial(query, pool, candidates)
	if err != nil {
		return nil, err
	}
	return topK(scored, k), nil
}

// eligible returns the pool IDs that are not excluded.
func eligible(pool CandidatePool, exclude ExclusionSet) []int64 {
	ids := make([]int64, 0, len(pool))
	for id := range pool {
		if !exclude.Contains(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// scoreSerial scores ids in order. The first mismatch aborts.
func scoreSerial(query vector.Vector, pool CandidatePool, ids []int64) ([]Scored, error) {
	out := make([]Scored, len(ids))
	for i, id := range ids {
		s, err := vector.Dot(query, pool[id])
		if err != nil {
			return nil, fmt.Errorf("score item %d: %w", id, err)
		}
		out[i] = Scored{ID: id, Score: s}
	}
	return out, nil
}

// topK sorts scored in place (score descending, ID ascending) and truncates to k.
func topK(scored []Scored, k int) []Scored {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
