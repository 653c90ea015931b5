// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package analytics

import (
	"strings"
)

// DefaultRecentWindow is the number of interactions considered recent.
const DefaultRecentWindow = 5

// NoRecentActivity is rendered when there is nothing to summarize.
const NoRecentActivity = "No recent activity to analyze."

// RecentActivity returns the last n records in log order. The result shares
// no backing array with records.
func RecentActivity(records []InteractionRecord, n int) []InteractionRecord {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	start := len(records) - n
	if start < 0 {
		start = 0
	}
	out := make([]InteractionRecord, len(records)-start)
	copy(out, records[start:])
	return out
}

// RenderRecent renders records as one line per interaction, for prompts:
//
//	Rooftop Jazz (matcha, liked) #music #outdoors
func RenderRecent(records []InteractionRecord) string {
	if len(records) == 0 {
		return NoRecentActivity
	}

	var b strings.Builder
	for i := range records {
		r := &records[i]
		if i > 0 {
			b.WriteByte('\n')
		}
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = "untitled event"
		}
		b.WriteString(title)
		b.WriteString(" (")
		b.WriteString(r.Mode.String())
		if r.Accepted {
			b.WriteString(", liked)")
		} else {
			b.WriteString(", passed)")
		}
		for _, tag := range r.Tags {
			if t := NormalizeTag(tag); t != "" {
				b.WriteString(" #")
				b.WriteString(t)
			}
		}
	}
	return b.String()
}
