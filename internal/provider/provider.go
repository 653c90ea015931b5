// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

// Package provider defines the external collaborators the ranking core calls
// (embedding, profile augmentation and insight narration) and the typed
// failure they report.
//
// Every provider failure is a *Error carrying a Kind. Callers decide whether
// a failure is recoverable by matching on it:
//
//	var perr *provider.Error
//	if errors.As(err, &perr) && perr.Kind == provider.KindTimeout { ... }
//
// All provider errors match ErrProviderFailure with errors.Is.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/brewmatch/internal/vector"
)

// Embedder maps text to a fixed-length vector. Identical text yields an identical vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (vector.Vector, error)
	Dimensions() int
	Model() string
}

// Augmenter folds a behavioral summary into profile text. Best effort.
type Augmenter interface {
	Augment(ctx context.Context, profileText, summaryText string) (string, error)
}

// ErrProviderFailure matches every *Error.
var ErrProviderFailure = errors.New("provider failure")

// Kind classifies a provider failure.
type Kind string

const (
	// KindTimeout means the call exceeded its deadline.
	KindTimeout Kind = "timeout"
	// KindRateLimited means the local limiter or the remote service refused the call.
	KindRateLimited Kind = "rate_limited"
	// KindUnavailable means the service could not be reached or the circuit is open.
	KindUnavailable Kind = "unavailable"
	// KindMalformed means the response could not be used.
	KindMalformed Kind = "malformed"
	// KindRejected means the service refused the input (oversized, invalid).
	KindRejected Kind = "rejected"
	// KindCanceled means the caller abandoned the call.
	KindCanceled Kind = "canceled"
)

// Error is a failed provider call.
type Error struct {
	Provider string
	Op       string
	Kind     Kind
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s: %s: %s", e.Provider, e.Op, e.Kind)
	}
	return fmt.Sprintf("provider %s: %s: %s: %v", e.Provider, e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches ErrProviderFailure.
func (e *Error) Is(target error) bool {
	return target == ErrProviderFailure
}

// Transient reports whether retrying later may succeed.
func (e *Error) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindRateLimited, KindUnavailable:
		return true
	default:
		return false
	}
}

// NewError builds a provider error.
func NewError(provider, op string, kind Kind, err error) *Error {
	return &Error{Provider: provider, Op: op, Kind: kind, Err: err}
}

// Wrap converts err into a *Error. Existing provider errors pass through;
// context errors are classified as timeout or canceled; anything else is
// treated as unavailable.
func Wrap(provider, op string, err error) error {
	if err == nil {
		return nil
	}
	var perr *Error
	if errors.As(err, &perr) {
		return err
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(provider, op, KindTimeout, err)
	case errors.Is(err, context.Canceled):
		return NewError(provider, op, KindCanceled, err)
	default:
		return NewError(provider, op, KindUnavailable, err)
	}
}

// KindOf returns the Kind of a provider error, or "" for other errors.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}
