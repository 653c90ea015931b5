// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/brewmatch/internal/analytics"
	"github.com/tomtom215/brewmatch/internal/recommend"
)

// ErrProfileNotFound is returned by a Source when the subject has no profile
// for the requested mode.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is a subject's static self-description for one mode.
type Profile struct {
	Subject   string         `json:"subject"`
	Mode      analytics.Mode `json:"mode"`
	Text      string         `json:"text"`
	Tags      []string       `json:"tags,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Source supplies the inputs of a ranking or dashboard request. Every call
// returns data owned by the caller.
type Source interface {
	Profile(ctx context.Context, subject string, mode analytics.Mode) (Profile, error)
	// Interactions returns the subject's records in log order.
	Interactions(ctx context.Context, subject string) ([]analytics.InteractionRecord, error)
	CandidatePool(ctx context.Context, mode analytics.Mode) (recommend.CandidatePool, error)
	Exclusions(ctx context.Context, subject string, mode analytics.Mode) (recommend.ExclusionSet, error)
}

// Recommendation is the result of Pipeline.Recommend.
type Recommendation struct {
	Subject   string             `json:"subject"`
	Mode      analytics.Mode     `json:"mode"`
	Items     []recommend.Scored `json:"items"`
	Augmented bool               `json:"augmented"`
	// FallbackReason is set when augmentation was attempted and not used.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// IDs returns the recommended item IDs in rank order.
func (r *Recommendation) IDs() []int64 {
	return recommend.IDs(r.Items)
}

// Pipeline wires a Source to the orchestrator, the engine and the dashboard
// builder.
type Pipeline struct {
	source       Source
	orchestrator *Orchestrator
	engine       *recommend.Engine
	narrator     analytics.Narrator
	dashboard    analytics.DashboardOptions
	logger       zerolog.Logger
}

// NewPipeline creates a pipeline. narrator may be nil.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(source Source, orchestrator *Orchestrator, engine *recommend.Engine, narrator analytics.Narrator, opts analytics.DashboardOptions, logger zerolog.Logger) *Pipeline {
	l := logger.With().Str("component", "pipeline").Logger()
	if opts.Logger == nil {
		opts.Logger = &l
	}
	return &Pipeline{
		source:       source,
		orchestrator: orchestrator,
		engine:       engine,
		narrator:     narrator,
		dashboard:    opts,
		logger:       l,
	}
}

// Recommend ranks the mode's candidate pool for subject. k follows
// recommend.Request semantics.
func (p *Pipeline) Recommend(ctx context.Context, subject string, mode analytics.Mode, k int) (*Recommendation, error) {
	prof, err := p.source.Profile(ctx, subject, mode)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	records, err := p.source.Interactions(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}

	summary := analytics.Aggregate(records, mode)
	query, err := p.orchestrator.BuildQuery(ctx, Input{
		ProfileText: prof.Text,
		Tags:        prof.Tags,
		Summary:     &summary,
		Recent:      modeRecords(records, mode),
	})
	if err != nil {
		return nil, err
	}

	pool, err := p.source.CandidatePool(ctx, mode)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	exclude, err := p.source.Exclusions(ctx, subject, mode)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	ranked, err := p.engine.Rank(ctx, recommend.Request{
		Mode:    mode.String(),
		Query:   query.Vector,
		Pool:    pool,
		Exclude: exclude,
		K:       k,
	})
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("subject", subject).
		Str("mode", mode.String()).
		Bool("augmented", query.Augmented).
		Int("returned", len(ranked)).
		Msg("recommendations built")

	return &Recommendation{
		Subject:        subject,
		Mode:           mode,
		Items:          ranked,
		Augmented:      query.Augmented,
		FallbackReason: query.FallbackReason,
	}, nil
}

// Dashboard builds the subject's dashboard. Narration failures never fail it.
func (p *Pipeline) Dashboard(ctx context.Context, subject string) (*analytics.Dashboard, error) {
	records, err := p.source.Interactions(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}
	d := analytics.BuildDashboardWithOptions(ctx, subject, records, p.narrator, p.dashboard)
	return &d, nil
}

func modeRecords(records []analytics.InteractionRecord, mode analytics.Mode) []analytics.InteractionRecord {
	out := make([]analytics.InteractionRecord, 0, len(records))
	for i := range records {
		if records[i].Mode == mode {
			out = append(out, records[i])
		}
	}
	return out
}
