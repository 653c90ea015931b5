// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package services provides suture.Service wrappers for Brewmatch components
that do not already implement Serve(ctx) themselves.

  - HTTPServerService binds the listener and drains connections on shutdown.
  - JanitorService prunes expired embedding cache entries on an interval.

The badger store and the event router implement suture.Service directly and
are added to the tree without a wrapper.
*/
package services
