// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package middleware provides HTTP middleware shared across route groups:
// Prometheus request instrumentation and gzip response compression.
//
// Middleware here uses the func(http.HandlerFunc) http.HandlerFunc shape;
// the api package bridges it into Chi's func(http.Handler) http.Handler
// where routes are declared.
package middleware
