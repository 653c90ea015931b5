// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package analytics reduces a subject's swipe log into per-mode engagement
summaries and the user-facing dashboard.

Every call recomputes from the records it is given; there is no incremental
state. Empty input is never an error: all fields degrade to zero values.

# Modes

Two interaction contexts run side by side:

  - coffee: professional networking events
  - matcha: social events

Aggregate always works on one mode at a time. TagBreakdown works on the full
record set regardless of mode.

# Hesitation

The hesitation score is the mean viewing time of accepted items divided by
the mean viewing time of rejected items. It is 0 whenever the rejected mean
is 0, which includes the case of no rejections at all.

# Insights

BuildDashboard optionally asks a Narrator for human-readable insight lines.
Narration is best effort: any failure leaves the insight list empty.
*/
package analytics
