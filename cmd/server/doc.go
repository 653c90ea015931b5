// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package main is the entry point for the Brewmatch server.

Brewmatch ranks catalog items for swipe-style discovery in two modes
(coffee and matcha), records every swipe, and turns the swipe log into an
engagement dashboard with narrated insights.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("brewmatch")
	├── DataSupervisor ("data-layer")
	│   ├── badger-store (value log GC)
	│   └── embedding-cache-janitor (optional)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-router (swipe persistence via Watermill)
	└── APISupervisor ("api-layer")
	    └── http-server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with config file and environment variables
 2. Logging: zerolog, bridged to slog for Suture and Watermill
 3. Store: BadgerDB for profiles, items, swipes and seen sets
 4. Providers: static or OpenAI-compatible, behind rate limiter,
    circuit breaker and embedding cache
 5. Ranking: engine, profile orchestrator and pipeline
 6. Events: in-process pub/sub, publisher and swipe router
 7. HTTP: handler, middleware and server

# Configuration

Sources, highest priority first:

  - Environment variables (HTTP_PORT, PROVIDER_KIND, OPENAI_API_KEY, ...)
  - Config file (config.yaml, or CONFIG_PATH)
  - Built-in defaults

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, the event router closes its handlers, and the store is
closed after the tree stops.

# Example Usage

Offline mode with the deterministic static provider:

	PROVIDER_KIND=static BADGER_PATH=/tmp/brewmatch ./brewmatch

OpenAI-compatible provider:

	PROVIDER_KIND=openai OPENAI_API_KEY=sk-... ./brewmatch
*/
package main
