// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package profile turns a subject's profile and recent behavior into a query
vector and runs it through the ranking engine.

The Orchestrator is a stateless pipeline stage:

	profile text + tags ──► ComposeText ──┐
	                                      ├─► Augmenter (best effort) ──► Embedder ──► query vector
	ModeSummary + recent records ─────────┘

Augmentation is optional. It is skipped when there is no behavioral signal
and any failure (error, timeout, blank output) falls back to the composed
text. Embedding is mandatory: without a query vector there is nothing to
rank, so embedding failures are returned as ErrEmbeddingFailed.

Pipeline is the service layer used by the HTTP API. It loads inputs from a
Source, aggregates, builds the query vector and ranks the candidate pool.
It never writes to the Source.
*/
package profile
