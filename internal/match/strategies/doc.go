// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package strategies provides the scoring strategy implementations for
// the match engine.
//
// Three built-in strategies ship with the service:
//
//   - analytical: linear weighted sum over the feature vector, the
//     highest-confidence baseline
//   - affective: leans on testimonial signals (rating, review sentiment,
//     completion rate) over hard features
//   - exploratory: rewards dispersed, non-obvious feature profiles to
//     surface creative matches the other two would rank mid-field
//
// A fourth, expr, compiles an operator-supplied CEL expression over the
// feature variables, so new scoring ideas can ship through configuration
// without a deploy.
//
// Every strategy is pure: no I/O, no shared state, no randomness.
// Identical FeatureSets produce identical results. Confidence reflects
// only the inputs a strategy actually used; a strategy with nothing
// measured to work from abstains with confidence 0 rather than guessing.
package strategies
