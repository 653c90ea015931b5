// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package recommend ranks a candidate pool against a query vector.

Recommend is the pure ranking function:

	ids, err := recommend.Recommend(query, pool, exclude, 5)

It scores every candidate that is not excluded with the dot product of the
query and candidate vectors, sorts by score descending, breaks exact ties by
ascending item ID, and returns at most k IDs. Output is deterministic for
identical input regardless of map iteration order.

A candidate vector whose length differs from the query fails the whole call
with vector.ErrDimensionMismatch; no partial ranking is returned. Empty pools,
fully excluded pools and k <= 0 yield an empty result, never an error.

Engine wraps Recommend with configuration limits, metrics, logging and
parallel scoring for large pools. Parallel and serial scoring produce the
same output: candidates are scored concurrently in chunks and sorted once.

Neither the pool nor the exclusion set is modified.
*/
package recommend
