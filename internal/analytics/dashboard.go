// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/brewmatch/internal/logging"
	"github.com/tomtom215/brewmatch/internal/metrics"
)

// DashboardOptions tunes BuildDashboard.
type DashboardOptions struct {
	// TopTags is the number of tags kept in the tag ranking.
	// Default: 5.
	TopTags int

	// NarrationTimeout bounds the narrator call. Zero means no extra bound
	// beyond the caller's context.
	NarrationTimeout time.Duration

	// Logger receives narration failures. Default: the "analytics" component logger.
	Logger *zerolog.Logger
}

// BuildDashboard aggregates records into the dashboard for subject.
//
// narrator may be nil. Narration failures are logged and leave Insights
// empty; they never fail the build.
func BuildDashboard(ctx context.Context, subject string, records []InteractionRecord, narrator Narrator) Dashboard {
	return BuildDashboardWithOptions(ctx, subject, records, narrator, DashboardOptions{TopTags: DefaultTopTags})
}

// BuildDashboardWithOptions is BuildDashboard with explicit options.
//
//nolint:gocritic // options are small and passed once per request
func BuildDashboardWithOptions(ctx context.Context, subject string, records []InteractionRecord, narrator Narrator, opts DashboardOptions) Dashboard {
	if opts.TopTags <= 0 {
		opts.TopTags = DefaultTopTags
	}

	coffee := Aggregate(records, ModeCoffee)
	matcha := Aggregate(records, ModeMatcha)
	total := coffee.Interactions + matcha.Interactions

	d := Dashboard{
		Subject: subject,
		Person: PersonCounters{
			CoffeeTimeSeconds:  coffee.TimeSpentSeconds,
			CoffeeInteractions: coffee.Interactions,
			MatchaTimeSeconds:  matcha.TimeSpentSeconds,
			MatchaInteractions: matcha.Interactions,
		},
		Coffee:          coffee,
		Matcha:          matcha,
		TotalSwipes:     total,
		OverallLikeRate: safeDiv(float64(coffee.Accepted+matcha.Accepted), float64(total)),
		Tags:            tagBreakdown(records, opts.TopTags),
		Insights:        []string{},
	}

	narrationFailed := false
	if narrator != nil {
		insights, err := narrate(ctx, narrator, NarrationInput{
			Coffee:            coffee,
			Matcha:            matcha,
			Tags:              d.Tags,
			TotalInteractions: total,
		}, opts.NarrationTimeout)
		if err != nil {
			narrationFailed = true
			logger := opts.Logger
			if logger == nil {
				l := logging.LoggerFromContext(ctx).With().Str("component", "analytics").Logger()
				logger = &l
			}
			logger.Warn().Err(err).Str("subject", subject).Msg("Insight narration failed, returning dashboard without insights")
		} else {
			d.Insights = insights
		}
	}

	metrics.RecordDashboard(len(records), narrationFailed)
	return d
}

// narrate runs the narrator under an optional timeout and drops blank lines.
func narrate(ctx context.Context, narrator Narrator, in NarrationInput, timeout time.Duration) ([]string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lines, err := narrator.Narrate(ctx, in)
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}
