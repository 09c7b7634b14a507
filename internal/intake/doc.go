// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package intake resolves request IDs to feature-ready match requests.
//
// The upstream design-analysis service ingests customer submissions
// (reference images, budget, location) and exposes the analyzed result
// as a match.Request. Client fetches that representation over HTTP and
// implements match.RequestSource for the ranking API's by-ID endpoint.
//
// Wrap the client with NewBreaker in production so a failing analysis
// service rejects lookups fast instead of stacking timeouts:
//
//	source := intake.NewBreaker(intake.NewClient(url, key, 10*time.Second))
//
// A request ID the service does not know yields ErrRequestNotFound
// (mapped to 404 by the API) and never counts against the circuit.
//
// Static is the registry-less stand-in: a fixed request set for
// standalone deployments and tests.
package intake
