// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

/*
Package services provides suture.Service wrappers for Artifex components.

This package adapts application components to the suture v4 supervision
model, translating their lifecycle patterns (ListenAndServe, periodic loops)
into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Directory Refresh (RefreshService):
  - Periodically copies the provider registry into the local directory store
  - Jittered interval so replicas don't pull in lockstep
  - Rate-limited registry fetches, surviving supervisor restarts of the loop

Components are consumed through small local interfaces (HTTPServer,
RefreshOrigin, RefreshStore) so the wrappers stay testable with mocks and
free of heavyweight dependencies.
*/
package services
