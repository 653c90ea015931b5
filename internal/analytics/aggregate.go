// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

package analytics

import (
	"sort"
	"strings"
)

// DefaultTopTags is the number of tags kept by TagBreakdown.
const DefaultTopTags = 5

// safeDiv returns 0 instead of dividing by zero.
func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// Aggregate summarizes the records that belong to mode.
func Aggregate(records []InteractionRecord, mode Mode) ModeSummary {
	summary := ModeSummary{Mode: mode}

	var acceptedSeconds, rejectedSeconds float64
	for i := range records {
		r := &records[i]
		if r.Mode != mode {
			continue
		}
		seconds := 0.0
		if r.ViewDuration > 0 {
			seconds = r.ViewDuration.Seconds()
		}
		summary.TimeSpentSeconds += seconds
		if r.Accepted {
			summary.Accepted++
			acceptedSeconds += seconds
		} else {
			summary.Rejected++
			rejectedSeconds += seconds
		}
	}

	summary.Interactions = summary.Accepted + summary.Rejected
	summary.AvgTimePerInteraction = safeDiv(summary.TimeSpentSeconds, float64(summary.Interactions))
	summary.LikeRate = safeDiv(float64(summary.Accepted), float64(summary.Interactions))

	acceptedMean := safeDiv(acceptedSeconds, float64(summary.Accepted))
	rejectedMean := safeDiv(rejectedSeconds, float64(summary.Rejected))
	summary.HesitationScore = safeDiv(acceptedMean, rejectedMean)

	return summary
}

// NormalizeTag trims and case-folds a tag. Blank tags normalize to "".
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// TagBreakdown ranks normalized tags over all records.
//
// A record counts at most once per distinct tag and is reported as tagged
// when it carries at least one non-blank tag. The top DefaultTopTags tags
// are kept; equal counts keep first-seen order.
func TagBreakdown(records []InteractionRecord) TagSummary {
	return tagBreakdown(records, DefaultTopTags)
}

func tagBreakdown(records []InteractionRecord, limit int) TagSummary {
	counts := make(map[string]int)
	var order []string
	tagged := 0

	seen := make(map[string]struct{})
	for i := range records {
		clear(seen)
		for _, raw := range records[i].Tags {
			tag := NormalizeTag(raw)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			if _, known := counts[tag]; !known {
				order = append(order, tag)
			}
			counts[tag]++
		}
		if len(seen) > 0 {
			tagged++
		}
	}

	ranked := make([]TagCount, 0, len(order))
	for _, tag := range order {
		ranked = append(ranked, TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return TagSummary{TopTags: ranked, TotalTaggedRecords: tagged}
}
