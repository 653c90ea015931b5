// Brewmatch - Swipe Recommendation and Engagement Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/brewmatch

/*
Package supervisor provides process supervision for Brewmatch using suture v4.

The supervisor tree groups long-running services into three layers so a crash
in one does not take the others down:

	root ("brewmatch")
	├── LayerData ("data-layer")
	│   ├── badger-store (value log GC)
	│   └── embedding-cache-janitor
	├── LayerMessaging ("messaging-layer")
	│   └── event-router (swipe persistence)
	└── LayerAPI ("api-layer")
	    └── http-server

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog using the slog bridge in the logging package.

# Usage

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.Add(supervisor.LayerData, st)
	tree.Add(supervisor.LayerMessaging, router)
	tree.Add(supervisor.LayerAPI, services.NewHTTPServerService(srv, addr, shutdownTimeout, logger))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	<-errCh
*/
package supervisor
