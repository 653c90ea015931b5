// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package openai

import (
	"fmt"
	"strings"

	"github.com/tomtom215/brewmatch/internal/analytics"
)

// FallbackInsight is returned when the model produces no usable lines.
const FallbackInsight = "Unable to generate insights at this time."

// maxPromptTags is how many top tags the insights prompt lists.
const maxPromptTags = 3

// BuildAugmentPrompt asks for a single sentence of preference signal to add
// to the base profile description.
func BuildAugmentPrompt(profileText, summaryText string) string {
	var b strings.Builder
	b.WriteString("You help a swipe-based recommender understand a user.\n")
	b.WriteString("Base profile description:\n")
	b.WriteString(strings.TrimSpace(profileText))
	b.WriteString("\n\nRecent behavior:\n")
	b.WriteString(strings.TrimSpace(summaryText))
	b.WriteString("\n\nWrite exactly one sentence describing the user's current preferences, ")
	b.WriteString("suitable for appending to the profile description. Return only the sentence.")
	return b.String()
}

// BuildInsightsPrompt renders dashboard figures into a prompt that asks for a
// few short insight lines.
func BuildInsightsPrompt(in analytics.NarrationInput) string {
	var b strings.Builder
	b.WriteString("Dashboard Summary:\n")
	fmt.Fprintf(&b, "Total swipes: %d\n", in.TotalInteractions)
	writeModeLine(&b, &in.Coffee)
	writeModeLine(&b, &in.Matcha)

	if len(in.Tags.TopTags) > 0 {
		n := len(in.Tags.TopTags)
		if n > maxPromptTags {
			n = maxPromptTags
		}
		parts := make([]string, 0, n)
		for _, tc := range in.Tags.TopTags[:n] {
			parts = append(parts, fmt.Sprintf("%s (%d swipes)", tc.Tag, tc.Count))
		}
		fmt.Fprintf(&b, "Top tags: %s\n", strings.Join(parts, ", "))
	}

	b.WriteString("\nGive 2-3 short, friendly insights about this user's engagement, one per line, ")
	b.WriteString("without numbering or bullet characters.")
	return b.String()
}

func writeModeLine(b *strings.Builder, s *analytics.ModeSummary) {
	name := s.Mode.String()
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	fmt.Fprintf(b, "%s mode: %d interactions, %.0f%% like rate, %.1fs avg time\n",
		name, s.Interactions, s.LikeRate*100, s.AvgTimePerInteraction)
}

// ParseInsights splits a completion into trimmed non-empty lines, stripping
// list markers. An empty completion yields FallbackInsight.
func ParseInsights(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• ")
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return []string{FallbackInsight}
	}
	return out
}
