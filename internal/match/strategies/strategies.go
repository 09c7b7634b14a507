// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package strategies

import (
	"github.com/tomtom215/artifex/internal/match"
)

// Compile-time interface checks for all strategies in this package.
var (
	_ match.Strategy = (*Analytical)(nil)
	_ match.Strategy = (*Affective)(nil)
	_ match.Strategy = (*Exploratory)(nil)
	_ match.Strategy = (*Expr)(nil)
)

// weights is a component weight vector over the FeatureSet. Vectors are
// policy constants; they must sum to 1 so scores stay in [0,1].
type weights struct {
	design     float64
	location   float64
	price      float64
	experience float64
}

// apply computes the linear weighted sum over the component scores.
func (w weights) apply(fs match.FeatureSet) float64 {
	return w.design*fs.Design +
		w.location*fs.Location +
		w.price*fs.Price +
		w.experience*fs.Experience
}

// measuredFraction returns the weighted share of the signal that was
// measured rather than defaulted. Components with zero weight do not
// count: uncertainty in an input a strategy ignores must not lower its
// confidence.
func (w weights) measuredFraction(fs match.FeatureSet) float64 {
	total := w.design + w.location + w.price + w.experience
	if total <= 0 {
		return 0
	}
	var measured float64
	if fs.Measured.Design {
		measured += w.design
	}
	if fs.Measured.Location {
		measured += w.location
	}
	if fs.Measured.Price {
		measured += w.price
	}
	if fs.Measured.Experience {
		measured += w.experience
	}
	return measured / total
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
