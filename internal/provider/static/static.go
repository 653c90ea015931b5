// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

// Package static provides deterministic, dependency-free providers: a hashed
// bag-of-words embedder, a template augmenter and a heuristic narrator.
// They serve offline deployments and tests.
package static

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// Name labels errors and metrics from this provider.
const Name = "static"

// DefaultDimensions is the embedding size when none is configured.
const DefaultDimensions = 256

// Embedder hashes tokens into a fixed number of signed buckets and
// L2-normalizes the result. Equal texts always embed equally, and texts that
// share tokens have positive cosine similarity.
type Embedder struct {
	dims int
}

// NewEmbedder creates an embedder producing vectors of dims elements.
func NewEmbedder(dims int) *Embedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: dims}
}

// Embed implements provider.Embedder.
func (e *Embedder) Embed(ctx context.Context, text string) (vector.Vector, error) {
	if err := ctx.Err(); err != nil {
		return nil, provider.Wrap(Name, "embed", err)
	}

	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil, provider.NewError(Name, "embed", provider.KindRejected, errors.New("no tokens in input"))
	}

	acc := make([]float64, e.dims)
	for _, tok := range tokens {
		h := xxhash.Sum64String(tok)
		bucket := int(h % uint64(e.dims))
		if h&(1<<63) != 0 {
			acc[bucket]--
		} else {
			acc[bucket]++
		}
	}

	var sum float64
	for _, x := range acc {
		sum += x * x
	}
	v := make(vector.Vector, e.dims)
	if sum == 0 {
		// Every token cancelled out; fall back to the first token's bucket.
		v[int(xxhash.Sum64String(tokens[0])%uint64(e.dims))] = 1
		return v, nil
	}
	norm := math.Sqrt(sum)
	for i, x := range acc {
		v[i] = float32(x / norm)
	}
	return v, nil
}

// Dimensions implements provider.Embedder.
func (e *Embedder) Dimensions() int { return e.dims }

// Model implements provider.Embedder.
func (e *Embedder) Model() string { return fmt.Sprintf("static-hash-%d", e.dims) }

// Tokenize lowercases text and splits it on anything that is not a letter
// or digit. Tag markers are dropped so "#jazz" and "jazz" embed alike.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Augmenter writes a one-sentence preference note from the summary figures.
type Augmenter struct{}

// NewAugmenter creates an augmenter.
func NewAugmenter() *Augmenter { return &Augmenter{} }

// Augment implements provider.Augmenter. The summary text is appended as a
// sentence; the profile text is left to the caller.
func (a *Augmenter) Augment(ctx context.Context, _ string, summaryText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", provider.Wrap(Name, "augment", err)
	}
	s := strings.TrimSpace(summaryText)
	if s == "" {
		return "", provider.NewError(Name, "augment", provider.KindRejected, errors.New("empty summary"))
	}
	s = strings.ReplaceAll(s, "\n", "; ")
	return "Recent activity: " + strings.TrimRight(s, ".") + ".", nil
}

// Thresholds for the heuristic narrator.
const (
	likeRateGap        = 0.15
	quickAvgSeconds    = 2.0
	positiveLikeRate   = 0.6
	hesitantAvgSeconds = 5.0
	negativeLikeRate   = 0.35
)

// BalancedInsight is emitted when no heuristic fires.
const BalancedInsight = "Engagement is balanced; continue A/B testing layouts and content density."

// Narrator derives insights from fixed thresholds over the dashboard figures.
type Narrator struct{}

// NewNarrator creates a narrator.
func NewNarrator() *Narrator { return &Narrator{} }

// Narrate implements analytics.Narrator.
func (n *Narrator) Narrate(ctx context.Context, in analytics.NarrationInput) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, provider.Wrap(Name, "narrate", err)
	}

	var out []string
	c, m := in.Coffee, in.Matcha

	switch {
	case c.LikeRate > m.LikeRate+likeRateGap:
		out = append(out, fmt.Sprintf("You prefer coffee-mode matches by %.0f%%.", (c.LikeRate-m.LikeRate)*100))
	case m.LikeRate > c.LikeRate+likeRateGap:
		out = append(out, fmt.Sprintf("You prefer matcha-mode matches by %.0f%%.", (m.LikeRate-c.LikeRate)*100))
	}

	if c.Interactions > 0 && c.AvgTimePerInteraction < quickAvgSeconds && c.LikeRate > positiveLikeRate {
		out = append(out, "Coffee-mode decisions are quick and positive; stronger matches are surfaced early.")
	}
	if m.Interactions > 0 && m.AvgTimePerInteraction > hesitantAvgSeconds && m.LikeRate < negativeLikeRate {
		out = append(out, "Matcha-mode swipes are slow and rarely positive; simpler cards may help.")
	}

	if in.TotalInteractions > 0 && len(in.Tags.TopTags) > 0 {
		top := in.Tags.TopTags[0]
		share := float64(top.Count) / float64(in.TotalInteractions)
		out = append(out, fmt.Sprintf("Tag '%s' drives %.0f%% of your engagement.", top.Tag, share*100))
	}

	if len(out) == 0 {
		out = append(out, BalancedInsight)
	}
	return out, nil
}
