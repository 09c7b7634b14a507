// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests,
// providing realistic testing environments that closely match production.
//
// All files except this one carry the "integration" build tag, so the helpers
// only compile when tests run with -tags integration.
//
// # Redis Container
//
// The RedisContainer provides a real Redis instance for testing the shared
// directory store:
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    ctx := context.Background()
//	    rc, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, rc.Container)
//
//	    store, err := directory.NewRedis(directory.RedisOptions{Addr: rc.Addr})
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer store.Close()
//
//	    // Exercise the store against a real server
//	    err = store.Put(ctx, candidates...)
//	    // ...
//	}
//
// # Benefits Over Mocks
//
// Using real containers provides several advantages:
//   - Tests validate actual wire behavior (SCAN cursors, pipelines, MGET batching)
//   - No mock drift (mocks getting out of sync with the real server)
//   - Tests run against production-equivalent services
//   - Keyspace hygiene on a shared server can be verified for real
//
// # CI Considerations
//
// These tests require Docker and network access. In CI:
//   - Self-hosted runners have Docker pre-installed
//   - Container images are cached between runs
//   - Tests are skipped gracefully if Docker is unavailable
//
// # Network Requirements
//
// First run may need to download container images. Subsequent runs use cached images.
package testinfra
