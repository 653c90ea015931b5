// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/brewmatch/internal/logging"
	"github.com/tomtom215/brewmatch/internal/metrics"
)

func TestRequestID(t *testing.T) {
	var gotRequestID, gotCorrelationID string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = logging.RequestIDFromContext(r.Context())
		gotCorrelationID = logging.CorrelationIDFromContext(r.Context())
	}))

	t.Run("generates ids", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if gotRequestID == "" || gotCorrelationID == "" {
			t.Fatalf("ids not set: request=%q correlation=%q", gotRequestID, gotCorrelationID)
		}
		if rec.Header().Get(HeaderRequestID) != gotRequestID {
			t.Errorf("response header = %q, want %q", rec.Header().Get(HeaderRequestID), gotRequestID)
		}
		if rec.Header().Get(HeaderCorrelationID) != gotCorrelationID {
			t.Errorf("correlation header = %q, want %q", rec.Header().Get(HeaderCorrelationID), gotCorrelationID)
		}
	})

	t.Run("reuses inbound ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		req.Header.Set(HeaderCorrelationID, "corr-9")
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if gotRequestID != "req-123" || gotCorrelationID != "corr-9" {
			t.Errorf("got request=%q correlation=%q", gotRequestID, gotCorrelationID)
		}
	})

	t.Run("replaces unsafe inbound ids", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, "bad id\nforged=1")
		req.Header.Set(HeaderCorrelationID, strings.Repeat("x", maxInboundIDLen+1))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if gotRequestID == "bad id\nforged=1" {
			t.Error("unsafe request id was accepted")
		}
		if len(gotCorrelationID) > maxInboundIDLen {
			t.Error("oversized correlation id was accepted")
		}
	})
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/users/{subject}/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	pattern := "/users/{subject}/dashboard"
	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, pattern, "418"))

	for _, subject := range []string{"ana", "ben"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+subject+"/dashboard", nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, pattern, "418"))
	if after != before+2 {
		t.Errorf("counter = %v, want %v", after, before+2)
	}
}

func TestMetrics_DefaultStatus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/quiet", func(http.ResponseWriter, *http.Request) {})

	before := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/quiet", "200"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/quiet", nil))
	after := testutil.ToFloat64(metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/quiet", "200"))
	if after != before+1 {
		t.Errorf("counter = %v, want %v", after, before+1)
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	prev := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(prev) })

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog(10 * time.Millisecond))
	r.Get("/fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fail", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))

	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"route":"/fail"`, `"status":500`, `"slow":true`, `"route":"/slow"`, `"request_id"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}
