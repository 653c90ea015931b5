// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package recommend

import (
	"github.com/tomtom215/brewmatch/internal/vector"
)

// CandidatePool maps item IDs to embeddings for one mode.
type CandidatePool map[int64]vector.Vector

// ExclusionSet holds item IDs already shown to the subject.
type ExclusionSet map[int64]struct{}

// NewExclusionSet builds an ExclusionSet from a list of IDs.
func NewExclusionSet(ids ...int64) ExclusionSet {
	s := make(ExclusionSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is excluded. A nil set excludes nothing.
func (s ExclusionSet) Contains(id int64) bool {
	_, ok := s[id]
	return ok
}

// Scored is a ranked candidate with its similarity score.
type Scored struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// IDs extracts item IDs in rank order.
func IDs(items []Scored) []int64 {
	out := make([]int64, len(items))
	for i := range items {
		out[i] = items[i].ID
	}
	return out
}
