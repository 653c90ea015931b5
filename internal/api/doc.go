// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package api exposes Brewmatch over HTTP using the chi router.

Routes:

	POST /api/v1/swipes                                  record a swipe (202, async)
	PUT  /api/v1/users/{subject}/profiles/{mode}         store profile text and tags
	GET  /api/v1/users/{subject}/profiles/{mode}         read a profile
	GET  /api/v1/users/{subject}/dashboard               engagement dashboard
	GET  /api/v1/users/{subject}/recent?limit=5          recent swipes, newest last
	GET  /api/v1/users/{subject}/recommendations?mode=coffee&k=5&debug=true
	POST /api/v1/items                                   register a candidate item
	GET  /api/v1/items/{mode}/{id}                       read an item
	GET  /health/live, /health/ready
	GET  /metrics                                        Prometheus exposition

Every JSON response uses the APIResponse envelope. Request bodies are checked
with the validation package before anything reaches the core packages, and
core errors are mapped to status codes in one place (errors.go).
*/
package api
