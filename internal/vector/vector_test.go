// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package vector

import (
	"errors"
	"math"
	"testing"
)

func TestDot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical unit", Vector{1, 0}, Vector{1, 0}, 1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"partial", Vector{1, 0}, Vector{0.9, 0.1}, 0.9},
		{"negative", Vector{1, 2, 3}, Vector{-1, -2, -3}, -14},
		{"empty", Vector{}, Vector{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Dot(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Dot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDotDoesNotNormalize(t *testing.T) {
	t.Parallel()

	got, err := Dot(Vector{2, 0}, Vector{3, 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != 6 {
		t.Errorf("Dot() = %v, want 6", got)
	}
}

func TestDotDimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := Dot(Vector{1, 0}, Vector{1, 0, 0})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected *DimensionError, got %T", err)
	}
	if dimErr.Want != 2 || dimErr.Got != 3 {
		t.Errorf("DimensionError = %+v, want {2 3}", dimErr)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	in := Vector{3, 4}
	out := Normalize(in)
	if math.Abs(Norm(out)-1) > 1e-6 {
		t.Errorf("Norm(Normalize) = %v, want 1", Norm(out))
	}
	if in[0] != 3 {
		t.Error("Normalize must not modify its input")
	}

	zero := Normalize(Vector{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector should stay zero, got %v", zero)
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	got, err := Cosine(Vector{2, 0}, Vector{5, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("Cosine() = %v, want 1", got)
	}

	got, err = Cosine(Vector{0, 0}, Vector{1, 0})
	if err != nil || got != 0 {
		t.Errorf("Cosine(zero) = %v, %v; want 0, nil", got, err)
	}

	if _, err := Cosine(Vector{1}, Vector{1, 2}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	if err := Validate(Vector{0.5, 0.5}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := Validate(nil); !errors.Is(err, ErrEmptyVector) {
		t.Errorf("expected ErrEmptyVector, got %v", err)
	}
	if err := Validate(Vector{1, float32(math.NaN())}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
	if err := Validate(Vector{float32(math.Inf(1))}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}
