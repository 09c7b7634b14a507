// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

/*
Package supervisor provides process supervision for Artifex using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of the long-running services in the application. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation, and
graceful shutdown.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("artifex")
	├── DataSupervisor ("data-layer")
	│   └── RefreshService (if ARTIFEX_DIRECTORY_REFRESH_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that:
  - A crash in the directory refresh loop doesn't affect the API layer's
    ability to rank against the last good snapshot
  - Each layer can restart independently under its own backoff budget

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Graceful Shutdown:
  - Context cancellation propagates down the tree
  - Services drain within the configured shutdown timeout
  - UnstoppedServiceReport identifies services that failed to stop

Structured Logging:
  - Supervisor events flow through sutureslog into the application logger
  - Service identity comes from each service's String() method

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddDataService(services.NewRefreshService(origin, store, refreshCfg, zlog))

	errCh := tree.ServeBackground(ctx)
	<-errCh

Service wrappers live in the services subpackage.
*/
package supervisor
