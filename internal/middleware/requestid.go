// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package middleware

import (
	"net/http"

	"github.com/tomtom215/brewmatch/internal/logging"
)

// Header names
const (
	HeaderRequestID     = "X-Request-ID"
	HeaderCorrelationID = "X-Correlation-ID"
)

// maxInboundIDLen bounds client-supplied IDs before they reach logs.
const maxInboundIDLen = 128

// RequestID assigns a request ID (reusing a sane inbound X-Request-ID) and a
// correlation ID, echoes both as response headers and stores them in the
// request context for logging.Ctx.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := inboundID(r.Header.Get(HeaderRequestID))
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}
		correlationID := inboundID(r.Header.Get(HeaderCorrelationID))
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}

		w.Header().Set(HeaderRequestID, requestID)
		w.Header().Set(HeaderCorrelationID, correlationID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithCorrelationID(ctx, correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// inboundID returns id if it is short and printable ASCII, otherwise "".
func inboundID(id string) string {
	if id == "" || len(id) > maxInboundIDLen {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return ""
		}
	}
	return id
}
