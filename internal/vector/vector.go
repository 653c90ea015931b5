// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

// Package vector implements the similarity kernel used for ranking.
//
// Vectors produced by the embedding provider are L2-normalized by
// convention, so Dot is used directly as the relevance score. Dot never
// normalizes its inputs: a query vector is compared against every candidate
// in a pool and normalizing on each comparison would repeat the same work.
// Callers that cannot trust the provider should run Normalize once when a
// vector enters the system, or use Cosine.
package vector

import (
	"errors"
	"fmt"
	"math"
)

// Vector is a fixed-length embedding.
type Vector []float32

var (
	// ErrDimensionMismatch is returned when two vectors of unequal length are compared.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrEmptyVector is returned by Validate for a zero-length vector.
	ErrEmptyVector = errors.New("empty vector")

	// ErrNonFinite is returned by Validate for NaN or infinite components.
	ErrNonFinite = errors.New("vector contains non-finite value")
)

// DimensionError reports the two lengths involved in a mismatch.
// It matches ErrDimensionMismatch with errors.Is.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: want %d, got %d", ErrDimensionMismatch, e.Want, e.Got)
}

// Is reports whether target is ErrDimensionMismatch.
func (e *DimensionError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

// Dot returns the dot product of a and b, accumulated in float64.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{Want: len(a), Got: len(b)}
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum, nil
}

// Norm returns the Euclidean length of v.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of v. A zero vector is returned as a copy unchanged.
func Normalize(v Vector) Vector {
	out := make(Vector, len(v))
	n := Norm(v)
	if n == 0 {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

// Cosine returns the cosine similarity of a and b. Zero vectors score 0.
func Cosine(a, b Vector) (float64, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

// Validate checks that v is usable for ranking: non-empty and finite.
func Validate(v Vector) error {
	if len(v) == 0 {
		return ErrEmptyVector
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}
