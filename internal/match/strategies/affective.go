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

// Affective component weights. The testimonial blend dominates; price fit
// is nearly ignored because how customers felt about an artist says
// little about what they paid.
const (
	affectiveDesignWeight   = 0.30
	affectiveAffectWeight   = 0.45
	affectiveLocationWeight = 0.15
	affectivePriceWeight    = 0.10
)

// Testimonial blend inside the affect term.
const (
	affectRatingWeight     = 0.45
	affectSentimentWeight  = 0.25
	affectCompletionWeight = 0.15
	affectVolumeWeight     = 0.15
)

const (
	affectiveBaseConfidence = 0.85
	// affectiveEvidenceCap bounds the review-volume bonus: a full review
	// history buys at most +0.10 confidence.
	affectiveEvidenceCap = 0.10
)

// Affective scores candidates by how past customers felt about them:
// rating, review sentiment, completion rate and review volume, with
// design affinity as a secondary term. Its confidence rises with the
// volume of evidence behind those signals.
type Affective struct{}

// NewAffective returns the affective strategy.
func NewAffective() *Affective { return &Affective{} }

// Name implements match.Strategy.
func (a *Affective) Name() string { return "affective" }

// Evaluate implements match.Strategy.
func (a *Affective) Evaluate(ctx context.Context, fs match.FeatureSet) (match.EvaluatorResult, error) {
	if err := ctx.Err(); err != nil {
		return match.EvaluatorResult{}, err
	}

	affect := affectRatingWeight*fs.Affect.Rating +
		affectSentimentWeight*fs.Affect.Sentiment +
		affectCompletionWeight*fs.Affect.Completion +
		affectVolumeWeight*fs.Affect.Volume

	score := clamp01(affectiveDesignWeight*fs.Design +
		affectiveAffectWeight*affect +
		affectiveLocationWeight*fs.Location +
		affectivePriceWeight*fs.Price)

	// Measured fraction over the inputs this strategy actually reads:
	// the affect term is measured only when the provider has reviews,
	// regardless of the experience composite.
	var measured float64
	if fs.Measured.Design {
		measured += affectiveDesignWeight
	}
	if fs.Affect.Measured {
		measured += affectiveAffectWeight
	}
	if fs.Measured.Location {
		measured += affectiveLocationWeight
	}
	if fs.Measured.Price {
		measured += affectivePriceWeight
	}

	confidence := affectiveBaseConfidence * measured
	if fs.Affect.Measured {
		confidence += affectiveEvidenceCap * fs.Affect.Volume
	}

	return match.EvaluatorResult{
		Strategy:   a.Name(),
		Score:      score,
		Confidence: clamp01(confidence),
		Rationale: fmt.Sprintf(
			"testimonial blend %.2f (rating %.2f, sentiment %.2f, completion %.2f, volume %.2f) with design %.2f",
			affect, fs.Affect.Rating, fs.Affect.Sentiment, fs.Affect.Completion, fs.Affect.Volume, fs.Design),
	}, nil
}
