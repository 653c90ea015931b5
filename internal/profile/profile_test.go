// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package profile

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/provider"
	"github.com/tomtom215/brewmatch/internal/provider/static"
	"github.com/tomtom215/brewmatch/internal/recommend"
	"github.com/tomtom215/brewmatch/internal/vector"
)

// fakeEmbedder returns a fixed vector and records the texts it embedded.
type fakeEmbedder struct {
	mu    sync.Mutex
	texts []string
	vec   vector.Vector
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (vector.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vec.Clone(), nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }
func (f *fakeEmbedder) Model() string   { return "fake" }

func (f *fakeEmbedder) embedded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

// fakeAugmenter returns out/err, or blocks until its context ends when block is set.
type fakeAugmenter struct {
	out   string
	err   error
	block bool

	calls      int
	gotProfile string
	gotSummary string
}

func (f *fakeAugmenter) Augment(ctx context.Context, profileText, summaryText string) (string, error) {
	f.calls++
	f.gotProfile = profileText
	f.gotSummary = summaryText
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func activeSummary() *analytics.ModeSummary {
	return &analytics.ModeSummary{Mode: analytics.ModeCoffee, Accepted: 2, Rejected: 1, Interactions: 3, LikeRate: 2.0 / 3}
}

func newOrchestrator(t *testing.T, e provider.Embedder, a provider.Augmenter, cfg Config) *Orchestrator {
	t.Helper()
	o, err := NewOrchestrator(e, a, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewOrchestrator: %v", err)
	}
	return o
}

func TestComposeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		tags []string
		want string
	}{
		{"text and tags", "Loves jazz", []string{" Music", "", "Art "}, "Loves jazz #music #art"},
		{"no tags", "  Loves jazz ", nil, "Loves jazz"},
		{"only tags", "", []string{"coffee"}, "#coffee"},
		{"blank tags only", "Hi", []string{" ", ""}, "Hi"},
		{"empty", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ComposeText(tt.text, tt.tags); got != tt.want {
				t.Errorf("ComposeText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewOrchestratorRequiresEmbedder(t *testing.T) {
	t.Parallel()

	if _, err := NewOrchestrator(nil, nil, DefaultConfig(), zerolog.Nop()); err == nil {
		t.Fatal("expected error for nil embedder")
	}
	cfg := DefaultConfig()
	cfg.RecentWindow = -1
	if _, err := NewOrchestrator(&fakeEmbedder{}, nil, cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestBuildQuery_SkipsAugmentationWithoutSignal(t *testing.T) {
	t.Parallel()

	for name, summary := range map[string]*analytics.ModeSummary{
		"nil":     nil,
		"trivial": {Mode: analytics.ModeCoffee},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			emb := &fakeEmbedder{vec: vector.Vector{1, 0}}
			aug := &fakeAugmenter{out: "should not be used"}
			o := newOrchestrator(t, emb, aug, DefaultConfig())

			q, err := o.BuildQuery(context.Background(), Input{ProfileText: "Loves jazz", Tags: []string{"Music"}, Summary: summary})
			if err != nil {
				t.Fatalf("BuildQuery: %v", err)
			}
			if aug.calls != 0 {
				t.Errorf("augmenter called %d times", aug.calls)
			}
			if q.Augmented || q.FallbackReason != "" {
				t.Errorf("query = %+v, want plain", q)
			}
			if got := emb.embedded(); len(got) != 1 || got[0] != "Loves jazz #music" {
				t.Errorf("embedded %q", got)
			}
		})
	}
}

func TestBuildQuery_UsesAugmentedText(t *testing.T) {
	t.Parallel()

	emb := &fakeEmbedder{vec: vector.Vector{0.6, 0.8}}
	aug := &fakeAugmenter{out: "  Lately into late-night cafes.  "}
	o := newOrchestrator(t, emb, aug, DefaultConfig())

	recent := []analytics.InteractionRecord{
		{ItemID: 1, Mode: analytics.ModeCoffee, Title: "Blue Note", Tags: []string{"Jazz"}, Accepted: true},
	}
	q, err := o.BuildQuery(context.Background(), Input{
		ProfileText: "Loves jazz",
		Summary:     activeSummary(),
		Recent:      recent,
	})
	if err != nil {
		t.Fatalf("BuildQuery: %v", err)
	}
	if !q.Augmented || q.Text != "Loves jazz Lately into late-night cafes." {
		t.Errorf("query = %+v", q)
	}
	if aug.gotProfile != "Loves jazz" {
		t.Errorf("augmenter profile = %q", aug.gotProfile)
	}
	if !strings.Contains(aug.gotSummary, "coffee mode: 3 interactions") ||
		!strings.Contains(aug.gotSummary, "Blue Note (coffee, liked) #jazz") {
		t.Errorf("augmenter summary = %q", aug.gotSummary)
	}
	if got := emb.embedded(); len(got) != 1 || got[0] != q.Text {
		t.Errorf("embedded %q, want augmented text", got)
	}
	if !reflect.DeepEqual(q.Vector, vector.Vector{0.6, 0.8}) {
		t.Errorf("vector = %v", q.Vector)
	}
}

func TestBuildQuery_KeepsProfileWithStaticAugmenter(t *testing.T) {
	t.Parallel()

	emb := &fakeEmbedder{vec: vector.Vector{1, 0}}
	o := newOrchestrator(t, emb, static.NewAugmenter(), DefaultConfig())

	records := []analytics.InteractionRecord{
		{ItemID: 4, Mode: analytics.ModeCoffee, Title: "Blue Note", Accepted: true, ViewDuration: 2 * time.Second},
	}
	summary := analytics.Aggregate(records, analytics.ModeCoffee)
	q, err := o.BuildQuery(context.Background(), Input{
		ProfileText: "Loves jazz",
		Tags:        []string{"Music"},
		Summary:     &summary,
		Recent:      records,
	})
	if err != nil {
		t.Fatalf("BuildQuery: %v", err)
	}
	if !q.Augmented {
		t.Fatalf("expected augmented query, fallback = %q", q.FallbackReason)
	}
	if !strings.HasPrefix(q.Text, "Loves jazz #music ") {
		t.Errorf("text %q lost the profile", q.Text)
	}
	if !strings.Contains(q.Text, "Recent activity: ") {
		t.Errorf("text %q lost the activity note", q.Text)
	}
	if got := emb.embedded(); len(got) != 1 || got[0] != q.Text {
		t.Errorf("embedded %q, want %q", got, q.Text)
	}
}

func TestBuildQuery_AugmentationFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		aug    *fakeAugmenter
		reason string
	}{
		{"error", &fakeAugmenter{err: errors.New("boom")}, FallbackError},
		{"provider timeout", &fakeAugmenter{err: provider.NewError("x", "augment", provider.KindTimeout, context.DeadlineExceeded)}, FallbackTimeout},
		{"blocks past timeout", &fakeAugmenter{block: true}, FallbackTimeout},
		{"blank", &fakeAugmenter{out: " \n "}, FallbackEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			emb := &fakeEmbedder{vec: vector.Vector{1, 0}}
			cfg := DefaultConfig()
			cfg.AugmentTimeout = 20 * time.Millisecond
			o := newOrchestrator(t, emb, tt.aug, cfg)

			q, err := o.BuildQuery(context.Background(), Input{ProfileText: "Loves jazz", Summary: activeSummary()})
			if err != nil {
				t.Fatalf("BuildQuery: %v", err)
			}
			if q.Augmented || q.FallbackReason != tt.reason {
				t.Errorf("query = %+v, want fallback %q", q, tt.reason)
			}
			// Embedding is still attempted on the un-augmented text.
			if got := emb.embedded(); len(got) != 1 || got[0] != "Loves jazz" {
				t.Errorf("embedded %q", got)
			}
		})
	}
}

func TestBuildQueryVector_EmbeddingFailureIsFatal(t *testing.T) {
	t.Parallel()

	perr := provider.NewError("x", "embed", provider.KindUnavailable, errors.New("down"))
	o := newOrchestrator(t, &fakeEmbedder{err: perr}, nil, DefaultConfig())

	_, err := o.BuildQueryVector(context.Background(), Input{ProfileText: "Loves jazz"})
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
	}
	if !errors.Is(err, provider.ErrProviderFailure) {
		t.Errorf("provider error lost from chain: %v", err)
	}
}

func TestBuildQueryVector_InvalidVectorIsFatal(t *testing.T) {
	t.Parallel()

	o := newOrchestrator(t, &fakeEmbedder{vec: vector.Vector{}}, nil, DefaultConfig())
	_, err := o.BuildQueryVector(context.Background(), Input{ProfileText: "x"})
	if !errors.Is(err, ErrEmbeddingFailed) {
		t.Fatalf("err = %v, want ErrEmbeddingFailed", err)
	}
}

// memSource is an in-memory Source.
type memSource struct {
	profiles map[string]Profile
	records  []analytics.InteractionRecord
	pool     recommend.CandidatePool
	exclude  recommend.ExclusionSet
}

func (m *memSource) Profile(_ context.Context, subject string, mode analytics.Mode) (Profile, error) {
	p, ok := m.profiles[subject+":"+mode.String()]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (m *memSource) Interactions(context.Context, string) ([]analytics.InteractionRecord, error) {
	return m.records, nil
}

func (m *memSource) CandidatePool(context.Context, analytics.Mode) (recommend.CandidatePool, error) {
	return m.pool, nil
}

func (m *memSource) Exclusions(context.Context, string, analytics.Mode) (recommend.ExclusionSet, error) {
	return m.exclude, nil
}

func newPipeline(t *testing.T, src Source, emb provider.Embedder, aug provider.Augmenter, narrator analytics.Narrator) *Pipeline {
	t.Helper()
	engine, err := recommend.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return NewPipeline(src, newOrchestrator(t, emb, aug, DefaultConfig()), engine, narrator, analytics.DashboardOptions{}, zerolog.Nop())
}

func TestPipelineRecommend(t *testing.T) {
	t.Parallel()

	src := &memSource{
		profiles: map[string]Profile{"ada:coffee": {Subject: "ada", Mode: analytics.ModeCoffee, Text: "Loves jazz"}},
		records: []analytics.InteractionRecord{
			{Subject: "ada", ItemID: 9, Mode: analytics.ModeCoffee, Title: "Espresso bar", Accepted: true, ViewDuration: time.Second},
			{Subject: "ada", ItemID: 8, Mode: analytics.ModeMatcha, Title: "Gallery", Accepted: false},
		},
		pool:    recommend.CandidatePool{1: {1, 0}, 2: {0.9, 0.1}, 3: {0, 1}},
		exclude: recommend.NewExclusionSet(1),
	}
	aug := &fakeAugmenter{out: "Loves jazz and espresso."}
	p := newPipeline(t, src, &fakeEmbedder{vec: vector.Vector{1, 0}}, aug, nil)

	rec, err := p.Recommend(context.Background(), "ada", analytics.ModeCoffee, 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if got := rec.IDs(); !reflect.DeepEqual(got, []int64{2, 3}) {
		t.Errorf("IDs = %v, want [2 3]", got)
	}
	if !rec.Augmented {
		t.Error("expected augmented query")
	}
	if strings.Contains(aug.gotSummary, "Gallery") {
		t.Errorf("recent activity leaked other mode: %q", aug.gotSummary)
	}
}

func TestPipelineRecommend_MissingProfile(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, &memSource{}, &fakeEmbedder{vec: vector.Vector{1}}, nil, nil)
	_, err := p.Recommend(context.Background(), "nobody", analytics.ModeMatcha, 5)
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestPipelineRecommend_DimensionMismatch(t *testing.T) {
	t.Parallel()

	src := &memSource{
		profiles: map[string]Profile{"ada:coffee": {Text: "x"}},
		pool:     recommend.CandidatePool{1: {1, 0, 0}},
	}
	p := newPipeline(t, src, &fakeEmbedder{vec: vector.Vector{1, 0}}, nil, nil)
	_, err := p.Recommend(context.Background(), "ada", analytics.ModeCoffee, 5)
	if !errors.Is(err, vector.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want dimension mismatch", err)
	}
}

type failingNarrator struct{}

func (failingNarrator) Narrate(context.Context, analytics.NarrationInput) ([]string, error) {
	return nil, errors.New("narrator down")
}

func TestPipelineDashboard(t *testing.T) {
	t.Parallel()

	src := &memSource{records: []analytics.InteractionRecord{
		{ItemID: 1, Mode: analytics.ModeCoffee, Accepted: true, Tags: []string{"Jazz"}},
		{ItemID: 2, Mode: analytics.ModeMatcha, Accepted: false, Tags: []string{"jazz "}},
	}}
	p := newPipeline(t, src, &fakeEmbedder{vec: vector.Vector{1}}, nil, failingNarrator{})

	d, err := p.Dashboard(context.Background(), "ada")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalSwipes != 2 || d.OverallLikeRate != 0.5 {
		t.Errorf("totals = %d / %v", d.TotalSwipes, d.OverallLikeRate)
	}
	if len(d.Tags.TopTags) != 1 || d.Tags.TopTags[0] != (analytics.TagCount{Tag: "jazz", Count: 2}) {
		t.Errorf("tags = %+v", d.Tags)
	}
	if d.Insights == nil || len(d.Insights) != 0 {
		t.Errorf("insights = %#v, want empty non-nil", d.Insights)
	}
}
