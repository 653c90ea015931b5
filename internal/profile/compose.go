// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package profile

import (
	"strings"

	"github.com/tomtom215/brewmatch/internal/analytics"
)

// ComposeText joins profile text with its tags rendered as "#tag" tokens.
// Tags are normalized like analytics tags and blank ones are dropped.
//
//	ComposeText("Loves jazz", []string{" Music", ""}) == "Loves jazz #music"
func ComposeText(text string, tags []string) string {
	text = strings.TrimSpace(text)

	var b strings.Builder
	b.WriteString(text)
	for _, tag := range tags {
		t := analytics.NormalizeTag(tag)
		if t == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('#')
		b.WriteString(t)
	}
	return b.String()
}

// summaryText renders the behavioral context handed to the augmenter.
func summaryText(s *analytics.ModeSummary, recent []analytics.InteractionRecord) string {
	text := s.Text()
	if len(recent) == 0 {
		return text
	}
	return text + "\nRecent interests:\n" + analytics.RenderRecent(recent)
}
