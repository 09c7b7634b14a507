// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"fmt"
	"sort"
)

// Aggregator merges the evaluator results for one candidate into a single
// ConsensusDecision using a confidence-weighted mean. The merge is a pure
// weighted average: re-ordering the input never changes the decision, and
// no strategy name is treated specially. Safe for concurrent use.
type Aggregator struct {
	// floor drops results with Confidence <= floor before merging.
	floor float64
	// conflictSpread is the max-min score spread above which the
	// decision is annotated as conflicted.
	conflictSpread float64
}

// NewAggregator builds an aggregator with the given confidence floor and
// conflict spread threshold.
func NewAggregator(floor, conflictSpread float64) (*Aggregator, error) {
	if floor < 0 || floor >= 1 {
		return nil, fmt.Errorf("confidence floor %v outside [0,1)", floor)
	}
	if conflictSpread <= 0 || conflictSpread > 1 {
		return nil, fmt.Errorf("conflict spread %v outside (0,1]", conflictSpread)
	}
	return &Aggregator{floor: floor, conflictSpread: conflictSpread}, nil
}

// Aggregate merges results into one decision.
//
// Results with Confidence <= floor are dropped first; an abstaining
// strategy (confidence 0) therefore never influences the decision. When
// nothing survives, Aggregate fails with ErrNoQuorum and the caller must
// exclude the candidate rather than invent a score.
//
// Over the surviving results:
//
//	overallConfidence = Σ confidence_i / count
//	finalScore        = Σ (score_i × confidence_i) / Σ confidence_i
//
// The spread (max-min of surviving scores) above the conflict threshold
// sets Conflict; that only annotates the decision, it never blocks it.
func (a *Aggregator) Aggregate(results []EvaluatorResult) (ConsensusDecision, error) {
	surviving := make([]EvaluatorResult, 0, len(results))
	for _, r := range results {
		if r.Confidence > a.floor {
			surviving = append(surviving, r)
		}
	}
	if len(surviving) == 0 {
		return ConsensusDecision{}, fmt.Errorf("aggregate %d results: %w", len(results), ErrNoQuorum)
	}

	var sumConf, weighted float64
	minScore, maxScore := surviving[0].Score, surviving[0].Score
	for _, r := range surviving {
		sumConf += r.Confidence
		weighted += r.Score * r.Confidence
		if r.Score < minScore {
			minScore = r.Score
		}
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}

	// Sorted by strategy name so serialized decisions are byte-stable
	// regardless of completion order upstream.
	sort.Slice(surviving, func(i, j int) bool {
		return surviving[i].Strategy < surviving[j].Strategy
	})

	spread := maxScore - minScore
	return ConsensusDecision{
		FinalScore:        clamp01(weighted / sumConf),
		OverallConfidence: clamp01(sumConf / float64(len(surviving))),
		Conflict:          spread > a.conflictSpread,
		ConflictMagnitude: spread,
		Contributing:      surviving,
	}, nil
}
