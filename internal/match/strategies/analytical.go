// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package strategies

import (
	"context"
	"fmt"

	"github.com/tomtom215/artifex/internal/match"
)

// analyticalWeights is the baseline policy vector: design dominates,
// experience second, price and location round it out.
var analyticalWeights = weights{
	design:     0.4,
	experience: 0.3,
	price:      0.2,
	location:   0.1,
}

// analyticalBaseConfidence applies when every weighted input was
// measured. The analytical strategy is the most trusted baseline, so it
// carries the highest ceiling.
const analyticalBaseConfidence = 0.95

// Analytical scores candidates with a fixed linear weighted sum over the
// feature vector. Deterministic, fast, and the reference point the other
// strategies are compared against.
type Analytical struct{}

// NewAnalytical returns the analytical strategy.
func NewAnalytical() *Analytical { return &Analytical{} }

// Name implements match.Strategy.
func (a *Analytical) Name() string { return "analytical" }

// Evaluate implements match.Strategy.
func (a *Analytical) Evaluate(ctx context.Context, fs match.FeatureSet) (match.EvaluatorResult, error) {
	if err := ctx.Err(); err != nil {
		return match.EvaluatorResult{}, err
	}

	score := clamp01(analyticalWeights.apply(fs))
	confidence := analyticalBaseConfidence * analyticalWeights.measuredFraction(fs)

	return match.EvaluatorResult{
		Strategy:   a.Name(),
		Score:      score,
		Confidence: clamp01(confidence),
		Rationale: fmt.Sprintf(
			"weighted sum: design %.2f*0.40 + experience %.2f*0.30 + price %.2f*0.20 + location %.2f*0.10",
			fs.Design, fs.Experience, fs.Price, fs.Location),
	}, nil
}
