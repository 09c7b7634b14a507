// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package api provides the HTTP surface for the matching engine.
//
// The package wires Chi routes, middleware, and handlers into a single
// http.Handler. Every endpoint responds with the standardized envelope
// from internal/models; errors carry stable machine-readable codes so
// clients can branch without parsing messages.
//
// Endpoint groups:
//
//   - /api/v1/match: rank a candidate pool for a request, either posted
//     inline or resolved by ID through the intake client, and explain
//     individual ranked matches
//   - /api/v1/engine: engine introspection (registered strategies,
//     counters, effective configuration)
//   - /api/v1/health: liveness, readiness, and a detailed health report
//   - /metrics: Prometheus scrape endpoint
//
// Middleware is composed per route group: request-ID propagation, CORS,
// and panic recovery run globally; rate limiting, security headers,
// Prometheus instrumentation, gzip compression, and the request body
// cap run on the groups that need them.
package api
