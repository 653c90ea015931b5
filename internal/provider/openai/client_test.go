// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package openai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/vector"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{
		BaseURL:        srv.URL,
		APIKey:         "test-key",
		MaxRetries:     2,
		RetryBaseDelay: time.Millisecond,
		HTTPTimeout:    5 * time.Second,
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode: %v", err)
	}
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func TestEmbed_Success(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Input != "oat latte #cozy" {
			t.Errorf("input = %q", req.Input)
		}
		writeJSON(t, w, map[string]any{
			"data": []any{map[string]any{"index": 0, "embedding": []float32{0.1, 0.2, 0.3}}},
		})
	})

	v, err := client.Embed(context.Background(), "oat latte #cozy")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(v) != 3 {
		t.Fatalf("len = %d, want 3", len(v))
	}
	if client.Dimensions() != 3 {
		t.Errorf("Dimensions = %d, want 3 after first response", client.Dimensions())
	}
}

func TestEmbed_DimensionChangeIsMalformed(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		emb := []float32{1, 0}
		if calls.Add(1) > 1 {
			emb = []float32{1, 0, 0}
		}
		writeJSON(t, w, map[string]any{"data": []any{map[string]any{"embedding": emb}}})
	})

	if _, err := client.Embed(context.Background(), "a"); err != nil {
		t.Fatalf("first Embed: %v", err)
	}
	_, err := client.Embed(context.Background(), "b")
	if provider.KindOf(err) != provider.KindMalformed {
		t.Fatalf("kind = %v, want malformed (err=%v)", provider.KindOf(err), err)
	}
	if !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch in chain, got %v", err)
	}
}

func TestEmbed_EmptyInputRejected(t *testing.T) {
	t.Parallel()

	client := New(Config{BaseURL: "http://127.0.0.1:0"})
	_, err := client.Embed(context.Background(), "   ")
	if provider.KindOf(err) != provider.KindRejected {
		t.Fatalf("kind = %v, want rejected", provider.KindOf(err))
	}
}

func TestRetryOnRateLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, chatReply("Leans toward cozy cafes."))
	})

	out, err := client.Augment(context.Background(), "likes coffee", "coffee mode: 3 interactions")
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if out != "Leans toward cozy cafes." {
		t.Errorf("out = %q", out)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestRetryAfterIsCapped(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "3600")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, chatReply("Back after a short wait."))
	}))
	t.Cleanup(srv.Close)
	client := New(Config{BaseURL: srv.URL, MaxRetries: 1, RetryBaseDelay: time.Millisecond, MaxRetryDelay: 20 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	out, err := client.Augment(ctx, "p", "s")
	if err != nil {
		t.Fatalf("Augment: %v", err)
	}
	if out != "Back after a short wait." {
		t.Errorf("out = %q", out)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("waited %v, Retry-After was not capped", elapsed)
	}
}

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	c := New(Config{RetryBaseDelay: 100 * time.Millisecond, MaxRetryDelay: time.Second})
	tests := []struct {
		name       string
		attempt    int
		retryAfter string
		want       time.Duration
	}{
		{"first backoff", 0, "", 100 * time.Millisecond},
		{"doubles", 2, "", 400 * time.Millisecond},
		{"backoff capped", 10, "", time.Second},
		{"huge attempt", 200, "", time.Second},
		{"retry-after honored", 0, "0", 0},
		{"retry-after capped", 0, "3600", time.Second},
		{"retry-after overflow", 0, "99999999999999999", time.Second},
		{"unparsable retry-after", 1, "soon", 200 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := c.retryDelay(tt.attempt, tt.retryAfter); got != tt.want {
			t.Errorf("%s: retryDelay(%d, %q) = %v, want %v", tt.name, tt.attempt, tt.retryAfter, got, tt.want)
		}
	}
}

func TestRetryExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.Augment(context.Background(), "p", "s")
	if provider.KindOf(err) != provider.KindUnavailable {
		t.Fatalf("kind = %v, want unavailable", provider.KindOf(err))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls.Load())
	}
}

func TestStatusKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   provider.Kind
	}{
		{http.StatusBadRequest, provider.KindRejected},
		{http.StatusUnprocessableEntity, provider.KindRejected},
		{http.StatusUnauthorized, provider.KindUnavailable},
		{http.StatusInternalServerError, provider.KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"nope"}`, tt.status)
			})
			_, err := client.Augment(context.Background(), "p", "s")
			if got := provider.KindOf(err); got != tt.want {
				t.Errorf("kind = %v, want %v (err=%v)", got, tt.want, err)
			}
			if !errors.Is(err, provider.ErrProviderFailure) {
				t.Errorf("errors.Is(ErrProviderFailure) = false")
			}
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	_, err := client.Augment(context.Background(), "p", "s")
	if provider.KindOf(err) != provider.KindMalformed {
		t.Fatalf("kind = %v, want malformed", provider.KindOf(err))
	}
}

func TestAugment_BlankCompletionIsMalformed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, chatReply("  \n "))
	})
	_, err := client.Augment(context.Background(), "p", "s")
	if provider.KindOf(err) != provider.KindMalformed {
		t.Fatalf("kind = %v, want malformed", provider.KindOf(err))
	}
}

func TestCanceledDuringBackoff(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)
	client := New(Config{BaseURL: srv.URL, MaxRetries: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.Augment(ctx, "p", "s")
	if time.Since(start) > 5*time.Second {
		t.Fatal("backoff ignored context")
	}
	if provider.KindOf(err) != provider.KindTimeout {
		t.Fatalf("kind = %v, want timeout (err=%v)", provider.KindOf(err), err)
	}
}

func TestNarrate(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "Dashboard Summary") {
			t.Errorf("unexpected prompt: %+v", req.Messages)
		}
		writeJSON(t, w, chatReply("- You like coffee.\n\n* Matcha is rising.\n"))
	})

	lines, err := client.Narrate(context.Background(), analytics.NarrationInput{TotalInteractions: 2})
	if err != nil {
		t.Fatalf("Narrate: %v", err)
	}
	if len(lines) != 2 || lines[0] != "You like coffee." || lines[1] != "Matcha is rising." {
		t.Errorf("lines = %q", lines)
	}
}

func TestBuildInsightsPrompt(t *testing.T) {
	t.Parallel()

	in := analytics.NarrationInput{
		TotalInteractions: 7,
		Coffee:            analytics.ModeSummary{Mode: analytics.ModeCoffee, Interactions: 4, LikeRate: 0.5, AvgTimePerInteraction: 2},
		Matcha:            analytics.ModeSummary{Mode: analytics.ModeMatcha, Interactions: 3, LikeRate: 1, AvgTimePerInteraction: 1.5},
		Tags: analytics.TagSummary{TopTags: []analytics.TagCount{
			{Tag: "jazz", Count: 4}, {Tag: "outdoors", Count: 3}, {Tag: "art", Count: 2}, {Tag: "food", Count: 1},
		}},
	}
	p := BuildInsightsPrompt(in)

	for _, want := range []string{
		"Total swipes: 7",
		"Coffee mode: 4 interactions, 50% like rate, 2.0s avg time",
		"Matcha mode: 3 interactions, 100% like rate, 1.5s avg time",
		"Top tags: jazz (4 swipes), outdoors (3 swipes), art (2 swipes)",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "food") {
		t.Error("prompt should list only the top 3 tags")
	}
}

func TestParseInsights_Fallback(t *testing.T) {
	t.Parallel()

	got := ParseInsights(" \n\n")
	if len(got) != 1 || got[0] != FallbackInsight {
		t.Errorf("ParseInsights = %q", got)
	}
}
