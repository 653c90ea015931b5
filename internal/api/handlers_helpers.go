// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/brewmatch/internal/validation"
)

// decode reads the JSON body into dst, writing the error response on failure.
func (rw *responder) decode(dst any) bool {
	err := decodeJSON(rw.w, rw.r, dst)
	switch {
	case err == nil:
		return true
	case errors.Is(err, errBodyTooLarge):
		rw.fail(http.StatusRequestEntityTooLarge, &APIError{Code: ErrCodePayloadTooLarge, Message: "Request body too large"})
	default:
		rw.fail(http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: "Invalid JSON body"})
	}
	return false
}

// validate runs struct validation, writing the error response on failure.
func (rw *responder) validate(v any) bool {
	if verr := validation.ValidateStruct(v); verr != nil {
		rw.fromError(verr)
		return false
	}
	return true
}

// badQuery writes a validation error for a malformed query parameter.
func (rw *responder) badQuery(name string) {
	rw.fail(http.StatusBadRequest, &APIError{
		Code:    ErrCodeValidation,
		Message: name + " must be an integer",
		Details: map[string]any{"field": name},
	})
}
