// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package openai implements the embedding, augmentation and narration
providers against an OpenAI-compatible HTTP API.

Client Features:
  - HTTP client with configurable timeout
  - Bearer token authentication
  - Exponential backoff on HTTP 429 and 502/503/504, honoring Retry-After
  - Failures reported as *provider.Error with a Kind the caller can match
  - Context support for cancellation during requests and backoff waits

Endpoints used:
  - POST {base}/embeddings
  - POST {base}/chat/completions

Any server speaking these two endpoints works (OpenAI, Azure OpenAI behind a
gateway, Ollama, vLLM, LiteLLM).
*/
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// Name labels errors and metrics from this provider.
const Name = "openai"

const maxErrorBodySize = 64 * 1024

// Config configures the client.
type Config struct {
	// BaseURL is the API root including the version segment.
	// Default: https://api.openai.com/v1
	BaseURL string

	// APIKey is sent as a bearer token. Empty sends no Authorization header.
	APIKey string

	// EmbeddingModel is the embeddings model name.
	// Default: text-embedding-3-small
	EmbeddingModel string

	// Dimensions requests a fixed embedding size. Zero accepts the model default.
	Dimensions int

	// ChatModel is the chat completions model name.
	// Default: gpt-4o-mini
	ChatModel string

	// Temperature for chat completions.
	// Default: 0.7
	Temperature float64

	// MaxTokens caps chat completion output.
	// Default: 150
	MaxTokens int

	// HTTPTimeout bounds a single HTTP attempt.
	// Default: 30s
	HTTPTimeout time.Duration

	// MaxRetries is the number of retries for throttled or unavailable responses.
	// Default: 3
	MaxRetries int

	// RetryBaseDelay is the first backoff delay; it doubles per retry.
	// Default: 500ms
	RetryBaseDelay time.Duration

	// MaxRetryDelay caps both the doubled backoff and any Retry-After hint.
	// Default: 10s
	MaxRetryDelay time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.ChatModel == "" {
		c.ChatModel = "gpt-4o-mini"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 150
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = 10 * time.Second
	}
	if c.MaxRetryDelay < c.RetryBaseDelay {
		c.MaxRetryDelay = c.RetryBaseDelay
	}
}

// Client talks to an OpenAI-compatible API. It is safe for concurrent use.
type Client struct {
	cfg    Config
	client *http.Client
	dims   atomic.Int64
}

// New creates a client.
//
//nolint:gocritic // config is copied once at construction
func New(cfg Config) *Client {
	cfg.applyDefaults()
	c := &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.HTTPTimeout},
	}
	c.dims.Store(int64(cfg.Dimensions))
	return c
}

type embeddingRequest struct {
	Model      string `json:"model"`
	Input      string `json:"input"`
	Dimensions int    `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Embed implements provider.Embedder.
func (c *Client) Embed(ctx context.Context, text string) (vector.Vector, error) {
	const op = "embed"
	if strings.TrimSpace(text) == "" {
		return nil, provider.NewError(Name, op, provider.KindRejected, errors.New("empty input"))
	}

	var resp embeddingResponse
	err := c.post(ctx, op, "/embeddings", embeddingRequest{
		Model:      c.cfg.EmbeddingModel,
		Input:      text,
		Dimensions: c.cfg.Dimensions,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, provider.NewError(Name, op, provider.KindMalformed, errors.New("no embedding in response"))
	}

	v := vector.Vector(resp.Data[0].Embedding)
	if err := vector.Validate(v); err != nil {
		return nil, provider.NewError(Name, op, provider.KindMalformed, err)
	}

	// The first response fixes the dimension when none was configured.
	want := int(c.dims.Load())
	if want == 0 && c.dims.CompareAndSwap(0, int64(len(v))) {
		want = len(v)
	} else if want == 0 {
		want = int(c.dims.Load())
	}
	if len(v) != want {
		return nil, provider.NewError(Name, op, provider.KindMalformed,
			&vector.DimensionError{Want: want, Got: len(v)})
	}
	return v, nil
}

// Dimensions implements provider.Embedder. Zero until known.
func (c *Client) Dimensions() int {
	return int(c.dims.Load())
}

// Model implements provider.Embedder.
func (c *Client) Model() string {
	return c.cfg.EmbeddingModel
}

// Augment implements provider.Augmenter.
func (c *Client) Augment(ctx context.Context, profileText, summaryText string) (string, error) {
	const op = "augment"
	out, err := c.complete(ctx, op, BuildAugmentPrompt(profileText, summaryText))
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", provider.NewError(Name, op, provider.KindMalformed, errors.New("empty completion"))
	}
	return out, nil
}

// Narrate implements analytics.Narrator.
func (c *Client) Narrate(ctx context.Context, in analytics.NarrationInput) ([]string, error) {
	out, err := c.complete(ctx, "narrate", BuildInsightsPrompt(in))
	if err != nil {
		return nil, err
	}
	return ParseInsights(out), nil
}

func (c *Client) complete(ctx context.Context, op, prompt string) (string, error) {
	var resp chatResponse
	err := c.post(ctx, op, "/chat/completions", chatRequest{
		Model:       c.cfg.ChatModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", provider.NewError(Name, op, provider.KindMalformed, errors.New("no choices in response"))
	}
	return resp.Choices[0].Message.Content, nil
}

// post sends body as JSON to path and decodes the response into out.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return provider.NewError(Name, op, provider.KindRejected, fmt.Errorf("encode request: %w", err))
	}

	resp, err := c.doWithRetry(ctx, op, c.cfg.BaseURL+path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		return provider.NewError(Name, op, kindForStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return provider.NewError(Name, op, provider.KindMalformed, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// doWithRetry retries throttled and temporarily unavailable responses with
// exponential backoff. Non-retryable responses are returned to the caller
// with their body unread.
func (c *Client) doWithRetry(ctx context.Context, op, url string, payload []byte) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, provider.Wrap(Name, op, err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, provider.NewError(Name, op, provider.KindRejected, fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			var timeout interface{ Timeout() bool }
			if errors.As(err, &timeout) && timeout.Timeout() {
				return nil, provider.NewError(Name, op, provider.KindTimeout, err)
			}
			return nil, provider.Wrap(Name, op, fmt.Errorf("http request: %w", err))
		}

		if !retryable(resp.StatusCode) {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.cfg.MaxRetries {
			return nil, provider.NewError(Name, op, kindForStatus(resp.StatusCode),
				fmt.Errorf("status %d after %d retries", resp.StatusCode, c.cfg.MaxRetries))
		}

		delay := c.retryDelay(attempt, resp.Header.Get("Retry-After"))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, provider.Wrap(Name, op, ctx.Err())
		}
	}
}

// retryDelay is the wait before retry attempt+1: the Retry-After seconds
// when the server sent them, else RetryBaseDelay doubled per attempt.
// Either way it never exceeds MaxRetryDelay.
func (c *Client) retryDelay(attempt int, retryAfter string) time.Duration {
	limit := c.cfg.MaxRetryDelay
	if retryAfter != "" {
		if seconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil && seconds >= 0 {
			if seconds >= int64(limit/time.Second) {
				return limit
			}
			return time.Duration(seconds) * time.Second
		}
	}
	delay := c.cfg.RetryBaseDelay
	for i := 0; i < attempt && delay < limit; i++ {
		delay *= 2
	}
	return min(delay, limit)
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func kindForStatus(status int) provider.Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return provider.KindRateLimited
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return provider.KindTimeout
	case status == http.StatusBadRequest || status == http.StatusRequestEntityTooLarge || status == http.StatusUnprocessableEntity:
		return provider.KindRejected
	default:
		return provider.KindUnavailable
	}
}

// readBodyForError reads at most maxErrorBodySize bytes for error messages.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return body
}
