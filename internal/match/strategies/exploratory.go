// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package strategies

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/artifex/internal/match"
)

// Exploratory blend: dispersion and overall plausibility carry equal
// weight, with a design kicker so novelty still respects what the
// customer asked for.
const (
	exploratorySpreadWeight = 0.40
	exploratoryMeanWeight   = 0.40
	exploratoryDesignWeight = 0.20

	// maxComponentStddev is the largest possible population stddev of
	// four values in [0,1] (two at 0, two at 1).
	maxComponentStddev = 0.5

	// exploratoryBaseConfidence is deliberately the lowest of the three
	// built-ins: novelty hunting is a weaker signal than closeness.
	exploratoryBaseConfidence = 0.70
)

// Exploratory rewards candidates whose feature profile is dispersed
// rather than uniformly close: a striking portfolio far away, or an
// unproven artist with a perfect style fit. It surfaces non-obvious but
// plausible matches the closeness-driven strategies rank mid-field.
type Exploratory struct{}

// NewExploratory returns the exploratory strategy.
func NewExploratory() *Exploratory { return &Exploratory{} }

// Name implements match.Strategy.
func (e *Exploratory) Name() string { return "exploratory" }

// Evaluate implements match.Strategy.
func (e *Exploratory) Evaluate(ctx context.Context, fs match.FeatureSet) (match.EvaluatorResult, error) {
	if err := ctx.Err(); err != nil {
		return match.EvaluatorResult{}, err
	}

	components := fs.Components()
	mean := (components[0] + components[1] + components[2] + components[3]) / 4

	var variance float64
	for _, c := range components {
		d := c - mean
		variance += d * d
	}
	variance /= 4
	spread := math.Sqrt(variance) / maxComponentStddev
	if spread > 1 {
		spread = 1
	}

	score := clamp01(exploratorySpreadWeight*spread +
		exploratoryMeanWeight*mean +
		exploratoryDesignWeight*fs.Design)

	// Equal component weighting for confidence: the vector shape uses
	// all four components alike.
	var measuredCount float64
	if fs.Measured.Design {
		measuredCount++
	}
	if fs.Measured.Location {
		measuredCount++
	}
	if fs.Measured.Price {
		measuredCount++
	}
	if fs.Measured.Experience {
		measuredCount++
	}
	confidence := exploratoryBaseConfidence * (measuredCount / 4)

	return match.EvaluatorResult{
		Strategy:   e.Name(),
		Score:      score,
		Confidence: clamp01(confidence),
		Rationale: fmt.Sprintf(
			"profile spread %.2f around mean %.2f with design %.2f",
			spread, mean, fs.Design),
	}, nil
}
