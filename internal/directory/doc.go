// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package directory supplies the provider candidate pool for ranking
// calls.
//
// A Directory answers Snapshot(criteria) with a deterministic,
// ID-sorted slice of provider candidates after applying the coarse
// pre-filter (style, price cap, size limit). Fine-grained scoring is
// the match engine's job; the directory only bounds the pool.
//
// # Backends
//
//   - Memory: map-backed, for single-instance deployments and tests
//   - Badger: BadgerDB persistence for restarts without a registry
//   - Redis: shared directory for multi-instance deployments
//
// All backends implement Store (Directory plus Put/Delete/Close) so the
// refresher and the seed loader can write through the same interface
// ranking reads from.
//
// # Circuit Breaker
//
// Wrap badger and redis stores with NewBreaker so a failing backend
// rejects ranking calls fast (ErrUnavailable) instead of stacking
// timeouts:
//
//	store, err := directory.NewRedis(directory.RedisOptions{Addr: addr})
//	if err != nil {
//	    return err
//	}
//	dir := directory.NewBreaker(store)
//
// # Refresh
//
// Origin abstracts the upstream provider registry. The supervisor's
// refresh service periodically copies Origin.FetchAll into the local
// Store; HTTPOrigin is the production implementation. Deployments
// without a registry seed the store from a JSON file instead:
//
//	n, err := directory.Seed(ctx, store, "/etc/artifex/providers.json")
package directory
