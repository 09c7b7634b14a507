// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package models defines the shared HTTP-facing data structures: the
// standardized API response envelope and the health/status payloads.
//
// The matching domain types themselves (Request, Candidate, RankedMatch,
// and friends) live in internal/match; this package only carries the
// transport wrapping around them so every endpoint answers in the same
// shape.
package models
