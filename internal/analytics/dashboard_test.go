// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package analytics

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/brewmatch/internal/logging"
)

type fakeNarrator struct {
	lines []string
	err   error
	delay time.Duration
	got   NarrationInput
}

func (f *fakeNarrator) Narrate(ctx context.Context, in NarrationInput) ([]string, error) {
	f.got = in
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.lines, f.err
}

func sampleRecords() []InteractionRecord {
	return []InteractionRecord{
		rec(ModeCoffee, true, 3, "AI", "startups"),
		rec(ModeCoffee, false, 1, "finance"),
		rec(ModeMatcha, true, 6, "ai", "music"),
		rec(ModeMatcha, true, 2),
	}
}

func TestBuildDashboard(t *testing.T) {
	t.Parallel()

	narrator := &fakeNarrator{lines: []string{"Coffee mode is busy.", "", "AI is trending."}}
	d := BuildDashboard(context.Background(), "ada", sampleRecords(), narrator)

	if d.Subject != "ada" {
		t.Errorf("Subject = %q", d.Subject)
	}
	if d.TotalSwipes != 4 {
		t.Errorf("TotalSwipes = %d, want 4", d.TotalSwipes)
	}
	if !almostEqual(d.OverallLikeRate, 0.75) {
		t.Errorf("OverallLikeRate = %v, want 0.75", d.OverallLikeRate)
	}
	if d.Coffee.Interactions != 2 || d.Matcha.Interactions != 2 {
		t.Errorf("per-mode interactions = %d/%d, want 2/2", d.Coffee.Interactions, d.Matcha.Interactions)
	}
	if d.Person.CoffeeInteractions != 2 || !almostEqual(d.Person.MatchaTimeSeconds, 8) {
		t.Errorf("Person = %+v", d.Person)
	}
	if len(d.Tags.TopTags) == 0 || d.Tags.TopTags[0] != (TagCount{Tag: "ai", Count: 2}) {
		t.Errorf("tags should be ranked over all modes, got %+v", d.Tags.TopTags)
	}
	if len(d.Insights) != 2 {
		t.Errorf("Insights = %q, want 2 non-blank lines", d.Insights)
	}
	if narrator.got.TotalInteractions != 4 || narrator.got.Coffee.Accepted != 1 {
		t.Errorf("narrator was seeded with %+v", narrator.got)
	}
}

func TestBuildDashboardNarratorFailure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logging.NewTestLogger(&buf)
	narrator := &fakeNarrator{err: errors.New("provider exploded")}

	d := BuildDashboardWithOptions(context.Background(), "ada", sampleRecords(), narrator, DashboardOptions{Logger: &logger})

	if d.Insights == nil || len(d.Insights) != 0 {
		t.Errorf("Insights = %#v, want empty non-nil slice", d.Insights)
	}
	if d.TotalSwipes != 4 {
		t.Errorf("aggregation must still succeed, TotalSwipes = %d", d.TotalSwipes)
	}
	if !strings.Contains(buf.String(), "provider exploded") {
		t.Errorf("expected failure to be logged, got %s", buf.String())
	}
}

func TestBuildDashboardNarratorTimeout(t *testing.T) {
	t.Parallel()

	narrator := &fakeNarrator{lines: []string{"late"}, delay: time.Second}
	d := BuildDashboardWithOptions(context.Background(), "ada", sampleRecords(), narrator, DashboardOptions{
		NarrationTimeout: 10 * time.Millisecond,
	})
	if len(d.Insights) != 0 {
		t.Errorf("Insights = %q, want empty after timeout", d.Insights)
	}
}

func TestBuildDashboardEmptyNoNarrator(t *testing.T) {
	t.Parallel()

	d := BuildDashboard(context.Background(), "nobody", nil, nil)
	if d.TotalSwipes != 0 || d.OverallLikeRate != 0 {
		t.Errorf("empty dashboard should be zero-valued, got %+v", d)
	}
	if len(d.Insights) != 0 || len(d.Tags.TopTags) != 0 {
		t.Errorf("empty dashboard should have no insights or tags, got %+v", d)
	}
}

func TestRecentActivity(t *testing.T) {
	t.Parallel()

	records := make([]InteractionRecord, 8)
	for i := range records {
		records[i] = InteractionRecord{ItemID: int64(i)}
	}

	got := RecentActivity(records, DefaultRecentWindow)
	if len(got) != 5 || got[0].ItemID != 3 || got[4].ItemID != 7 {
		t.Errorf("RecentActivity = %+v", got)
	}
	got[0].ItemID = 99
	if records[3].ItemID != 3 {
		t.Error("RecentActivity must copy")
	}

	if got := RecentActivity(records[:2], 5); len(got) != 2 {
		t.Errorf("short log: len = %d, want 2", len(got))
	}
	if got := RecentActivity(records, 0); got != nil {
		t.Errorf("n=0 should return nil, got %v", got)
	}
}

func TestRenderRecent(t *testing.T) {
	t.Parallel()

	if got := RenderRecent(nil); got != NoRecentActivity {
		t.Errorf("RenderRecent(nil) = %q", got)
	}

	got := RenderRecent([]InteractionRecord{
		{Title: "Rooftop Jazz", Mode: ModeMatcha, Accepted: true, Tags: []string{"Music", " outdoors "}},
		{Mode: ModeCoffee},
	})
	want := "Rooftop Jazz (matcha, liked) #music #outdoors\nuntitled event (coffee, passed)"
	if got != want {
		t.Errorf("RenderRecent = %q, want %q", got, want)
	}
}

func TestModeSummaryText(t *testing.T) {
	t.Parallel()

	s := Aggregate(sampleRecords(), ModeCoffee)
	text := s.Text()
	for _, want := range []string{"coffee mode", "2 interactions", "50% like rate"} {
		if !strings.Contains(text, want) {
			t.Errorf("Text() = %q, missing %q", text, want)
		}
	}
	if s.IsTrivial() {
		t.Error("summary with interactions is not trivial")
	}
	empty := Aggregate(nil, ModeCoffee)
	if !empty.IsTrivial() {
		t.Error("empty summary should be trivial")
	}
}
