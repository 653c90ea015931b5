// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/brewmatch/internal/logging"
	"github.com/tomtom215/brewmatch/internal/profile"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/recommend"
	"github.com/tomtom215/brewmatch/internal/store"
	"github.com/tomtom215/brewmatch/internal/validation"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// errorResponse maps an error from the core packages to a status and body.
// Provider failures are checked before dimension mismatches because a
// provider reporting a changed embedding size is an upstream fault.
func errorResponse(err error) (int, *APIError) {
	var verr *validation.RequestValidationError
	if errors.As(err, &verr) {
		a := verr.ToAPIError()
		return http.StatusBadRequest, &APIError{Code: a.Code, Message: a.Message, Details: a.Details}
	}

	if kind := provider.KindOf(err); kind != "" {
		return providerErrorResponse(kind)
	}

	var dimErr *vector.DimensionError
	switch {
	case errors.Is(err, profile.ErrProfileNotFound):
		return http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: "Profile not found"}
	case errors.Is(err, store.ErrItemNotFound):
		return http.StatusNotFound, &APIError{Code: ErrCodeNotFound, Message: "Item not found"}
	case errors.Is(err, store.ErrInvalidSubject):
		return http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: "Invalid subject"}
	case errors.As(err, &dimErr):
		return http.StatusUnprocessableEntity, &APIError{
			Code:    ErrCodeDimensionMismatch,
			Message: "Vector dimension does not match the catalog",
			Details: map[string]any{"want": dimErr.Want, "got": dimErr.Got},
		}
	case errors.Is(err, vector.ErrDimensionMismatch):
		return http.StatusUnprocessableEntity, &APIError{Code: ErrCodeDimensionMismatch, Message: "Vector dimension does not match the catalog"}
	case errors.Is(err, vector.ErrEmptyVector), errors.Is(err, vector.ErrNonFinite):
		return http.StatusBadRequest, &APIError{Code: ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, recommend.ErrTooManyCandidates):
		return http.StatusServiceUnavailable, &APIError{Code: ErrCodeServiceUnavailable, Message: "Candidate pool exceeds the configured limit"}
	case errors.Is(err, store.ErrClosed):
		return http.StatusServiceUnavailable, &APIError{Code: ErrCodeServiceUnavailable, Message: "Storage is unavailable"}
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, &APIError{Code: ErrCodeRequestCanceled, Message: "Request canceled"}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, &APIError{Code: ErrCodeProviderTimeout, Message: "Request timed out"}
	default:
		return http.StatusInternalServerError, &APIError{Code: ErrCodeInternalError, Message: "Internal server error"}
	}
}

func providerErrorResponse(kind provider.Kind) (int, *APIError) {
	details := map[string]any{"kind": string(kind)}
	switch kind {
	case provider.KindTimeout:
		return http.StatusGatewayTimeout, &APIError{Code: ErrCodeProviderTimeout, Message: "Embedding provider timed out", Details: details}
	case provider.KindRejected:
		return http.StatusBadRequest, &APIError{Code: ErrCodeBadRequest, Message: "Embedding provider rejected the input", Details: details}
	case provider.KindCanceled:
		return statusClientClosedRequest, &APIError{Code: ErrCodeRequestCanceled, Message: "Request canceled", Details: details}
	case provider.KindMalformed:
		return http.StatusBadGateway, &APIError{Code: ErrCodeProviderUnavailable, Message: "Embedding provider returned an unusable response", Details: details}
	default:
		return http.StatusServiceUnavailable, &APIError{Code: ErrCodeProviderUnavailable, Message: "Embedding provider unavailable", Details: details}
	}
}

// fromError logs err with request context and writes the mapped envelope.
func (rw *responder) fromError(err error) {
	status, apiErr := errorResponse(err)
	event := logging.Ctx(rw.r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.Ctx(rw.r.Context()).Error()
	}
	event.Err(err).Int("status", status).Str("code", apiErr.Code).Msg("request failed")
	rw.fail(status, apiErr)
}
