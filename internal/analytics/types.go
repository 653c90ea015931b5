// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Mode is one of the two parallel interaction contexts.
type Mode int

const (
	// ModeCoffee is the professional context.
	ModeCoffee Mode = iota
	// ModeMatcha is the social context.
	ModeMatcha
)

// AllModes lists every mode in dashboard order.
var AllModes = []Mode{ModeCoffee, ModeMatcha}

func (m Mode) String() string {
	switch m {
	case ModeCoffee:
		return "coffee"
	case ModeMatcha:
		return "matcha"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "coffee" or "matcha" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	name := strings.TrimSpace(s)
	for _, m := range AllModes {
		if strings.EqualFold(name, m.String()) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// ModeFromMatcha maps the matcha flag carried by swipe payloads to a Mode.
func ModeFromMatcha(matcha bool) Mode {
	if matcha {
		return ModeMatcha
	}
	return ModeCoffee
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m != ModeCoffee && m != ModeMatcha {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// InteractionRecord is one logged swipe decision. Records are immutable once created.
type InteractionRecord struct {
	Subject string `json:"subject"`
	ItemID  int64  `json:"item_id"`
	Mode    Mode   `json:"mode"`

	// Title is the item title at swipe time. Only used for recent-activity text.
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`

	// ViewDuration is how long the item was on screen. Zero when unknown.
	ViewDuration time.Duration `json:"view_duration"`
	Accepted     bool          `json:"accepted"`
	RecordedAt   time.Time     `json:"recorded_at"`
}

// SwipeDirection maps the outcome to the UI swipe direction.
func (r *InteractionRecord) SwipeDirection() string {
	if r.Accepted {
		return "right"
	}
	return "left"
}

// ModeSummary aggregates one mode's records.
type ModeSummary struct {
	Mode                  Mode    `json:"mode"`
	TimeSpentSeconds      float64 `json:"time_spent_seconds"`
	Accepted              int     `json:"swipes_right"`
	Rejected              int     `json:"swipes_left"`
	Interactions          int     `json:"interactions"`
	AvgTimePerInteraction float64 `json:"avg_time_per_interaction"`
	LikeRate              float64 `json:"like_rate"`
	HesitationScore       float64 `json:"hesitation_score"`
}

// IsTrivial reports whether the summary carries no behavioral signal.
func (s *ModeSummary) IsTrivial() bool {
	return s.Interactions == 0
}

// Text renders the summary for text-generation prompts.
func (s *ModeSummary) Text() string {
	return fmt.Sprintf(
		"%s mode: %d interactions (%d liked, %d passed), %.0f%% like rate, %.1fs avg time, %.1fs total time, hesitation %.2f",
		s.Mode, s.Interactions, s.Accepted, s.Rejected, s.LikeRate*100,
		s.AvgTimePerInteraction, s.TimeSpentSeconds, s.HesitationScore,
	)
}

// TagCount is one entry of the tag ranking.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagSummary is the tag-frequency ranking over a record set.
type TagSummary struct {
	TopTags            []TagCount `json:"top_tags"`
	TotalTaggedRecords int        `json:"total_tagged_swipes"`
}

// PersonCounters are the per-subject engagement counters shown on the profile.
type PersonCounters struct {
	CoffeeTimeSeconds  float64 `json:"coffee_time"`
	CoffeeInteractions int     `json:"coffee_interactions"`
	MatchaTimeSeconds  float64 `json:"matcha_time"`
	MatchaInteractions int     `json:"matcha_interactions"`
}

// Dashboard is the user-facing aggregate.
type Dashboard struct {
	Subject         string         `json:"subject"`
	Person          PersonCounters `json:"person"`
	Coffee          ModeSummary    `json:"coffee"`
	Matcha          ModeSummary    `json:"matcha"`
	TotalSwipes     int            `json:"total_swipes"`
	OverallLikeRate float64        `json:"overall_like_rate"`
	Tags            TagSummary     `json:"tags"`
	Insights        []string       `json:"ai_insights"`
}

// NarrationInput seeds insight generation with the computed dashboard figures.
type NarrationInput struct {
	Coffee            ModeSummary
	Matcha            ModeSummary
	Tags              TagSummary
	TotalInteractions int
}

// Narrator turns dashboard figures into human-readable insight lines.
type Narrator interface {
	Narrate(ctx context.Context, in NarrationInput) ([]string, error)
}
