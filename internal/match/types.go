// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"context"
	"time"
)

// GeoPoint is a WGS84 coordinate pair in decimal degrees.
type GeoPoint struct {
	// Lat is latitude in degrees, valid range [-90, 90].
	Lat float64 `json:"lat"`
	// Lng is longitude in degrees, valid range [-180, 180].
	Lng float64 `json:"lng"`
}

// RGB is a 3-channel color summary (e.g., the mean color of a design or
// portfolio), each channel in [0, 255].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Request is one customer's matching request, assembled upstream by the
// design-analysis service. Optional fields use nil or the zero value to
// mean "not provided"; the extractor substitutes neutral defaults, it
// never fails on missing data.
type Request struct {
	// ID is the stable request identifier. Generated when empty.
	ID string `json:"id"`

	// Style is the requested design category (e.g., "french", "gradient").
	// Empty means no style preference was expressed.
	Style string `json:"style,omitempty"`

	// Palette is the mean color extracted from the reference design.
	// Nil when no reference image was supplied.
	Palette *RGB `json:"palette,omitempty"`

	// Complexity is the analyzed design complexity in [0, 1].
	Complexity float64 `json:"complexity,omitempty"`

	// BudgetYen is the customer's budget in yen. Zero means unspecified.
	BudgetYen int64 `json:"budget_yen,omitempty"`

	// Location is where the service should take place. Nil when the
	// customer did not share a location.
	Location *GeoPoint `json:"location,omitempty"`

	// EventDate is the requested date, RFC 3339 date form. Informational;
	// availability filtering happens upstream in the directory.
	EventDate string `json:"event_date,omitempty"`

	// Notes carries free-text wishes from the customer.
	Notes string `json:"notes,omitempty"`
}

// Candidate is an immutable snapshot of one provider, refreshed from the
// directory on every ranking call. Zero values mean "unknown" for the
// optional signals and are documented per field.
type Candidate struct {
	// ID is the stable provider identifier, used as the deterministic
	// ranking tiebreak key.
	ID string `json:"id"`

	// Name is the provider's display name.
	Name string `json:"name,omitempty"`

	// PrimaryStyle is the dominant category of the provider's portfolio.
	PrimaryStyle string `json:"primary_style,omitempty"`

	// StyleShares maps style category to its share of the portfolio,
	// each share in [0, 1].
	StyleShares map[string]float64 `json:"style_shares,omitempty"`

	// Palette is the mean color across the provider's portfolio.
	Palette *RGB `json:"palette,omitempty"`

	// BasePriceYen is the representative price in yen. Zero means the
	// provider has not published pricing.
	BasePriceYen int64 `json:"base_price_yen,omitempty"`

	// Location is the provider's service location. Nil when unknown.
	Location *GeoPoint `json:"location,omitempty"`

	// YearsActive is tenure in years. Zero means unknown.
	YearsActive float64 `json:"years_active,omitempty"`

	// Rating is the mean review rating in [0, 5]. Zero means unrated.
	Rating float64 `json:"rating,omitempty"`

	// ReviewCount is the number of reviews behind Rating.
	ReviewCount int `json:"review_count,omitempty"`

	// CompletionRate is completed/total bookings in [0, 1]. Zero means
	// unknown (an active provider with a true 0% completion rate is
	// delisted upstream).
	CompletionRate float64 `json:"completion_rate,omitempty"`

	// Sentiment is the aggregated review-text sentiment in [-1, 1].
	// Meaningful only when ReviewCount > 0.
	Sentiment float64 `json:"sentiment,omitempty"`

	// PortfolioSize is the number of published works.
	PortfolioSize int `json:"portfolio_size,omitempty"`
}

// ComponentFlags records which FeatureSet components were measured from
// real input rather than defaulted to the neutral value.
type ComponentFlags struct {
	Design     bool `json:"design"`
	Location   bool `json:"location"`
	Price      bool `json:"price"`
	Experience bool `json:"experience"`
}

// AffectSignals carries the qualitative signals used by sentiment-leaning
// strategies, each normalized to [0, 1].
type AffectSignals struct {
	// Rating is the review rating scaled from [0,5] to [0,1].
	Rating float64 `json:"rating"`
	// Volume is review count capped and scaled to [0,1].
	Volume float64 `json:"volume"`
	// Sentiment is review sentiment scaled from [-1,1] to [0,1].
	Sentiment float64 `json:"sentiment"`
	// Completion is the completion rate in [0,1].
	Completion float64 `json:"completion"`
	// Measured is false when the provider has no reviews; the values
	// above are neutral defaults in that case.
	Measured bool `json:"measured"`
}

// FeatureSet is the normalized signal vector for one (Request, Candidate)
// pair. It is a freshly constructed, immutable value scoped to a single
// ranking call; the engine never persists it.
type FeatureSet struct {
	// Design is style and palette affinity in [0, 1].
	Design float64 `json:"design"`
	// Location is the banded great-circle proximity score in [0, 1].
	Location float64 `json:"location"`
	// Price is the banded budget/price-ratio score in [0, 1].
	Price float64 `json:"price"`
	// Experience blends tenure, rating, review volume and completion
	// rate into [0, 1].
	Experience float64 `json:"experience"`

	// Measured flags which components came from real input.
	Measured ComponentFlags `json:"measured"`

	// Affect carries the raw qualitative signals for strategies that
	// weight testimonials over hard features.
	Affect AffectSignals `json:"affect"`

	// DistanceKm is the raw great-circle distance, -1 when either side
	// has no usable location.
	DistanceKm float64 `json:"distance_km"`
	// PriceRatio is budget/price, 0 when either side is missing.
	PriceRatio float64 `json:"price_ratio"`
}

// Components returns the four component scores in declaration order.
// Used by strategies that reason over the vector shape rather than
// individual components.
func (f FeatureSet) Components() [4]float64 {
	return [4]float64{f.Design, f.Location, f.Price, f.Experience}
}

// EvaluatorResult is the output of one strategy for one candidate.
// Ephemeral; owned by the runner invocation that produced it.
type EvaluatorResult struct {
	// Strategy is the producing strategy's name.
	Strategy string `json:"strategy"`
	// Score is the strategy's match score in [0, 1].
	Score float64 `json:"score"`
	// Confidence is the strategy's self-assessed confidence in [0, 1].
	// Zero means the strategy abstained.
	Confidence float64 `json:"confidence"`
	// Rationale is a short human-readable account of the score.
	Rationale string `json:"rationale,omitempty"`
	// ElapsedMS is wall time spent evaluating, in milliseconds.
	ElapsedMS float64 `json:"elapsed_ms"`
}

// ConsensusDecision is the merged verdict over all surviving evaluator
// results for one candidate.
type ConsensusDecision struct {
	// FinalScore is the confidence-weighted mean of surviving scores.
	FinalScore float64 `json:"final_score"`
	// OverallConfidence is the arithmetic mean of surviving confidences.
	OverallConfidence float64 `json:"overall_confidence"`
	// Conflict is set when surviving scores disagree by more than the
	// configured spread threshold. Annotation only; never blocks.
	Conflict bool `json:"conflict"`
	// ConflictMagnitude is the max-min spread of surviving scores.
	ConflictMagnitude float64 `json:"conflict_magnitude"`
	// Contributing lists the surviving results, sorted by strategy name
	// for deterministic output.
	Contributing []EvaluatorResult `json:"contributing_strategies"`
}

// RankedMatch is one externally visible ranking entry.
type RankedMatch struct {
	// Candidate is the ranked provider snapshot.
	Candidate Candidate `json:"candidate"`
	// Decision is the consensus verdict that produced this rank.
	Decision ConsensusDecision `json:"decision"`
	// Rank is the 1-based position in the final ordering.
	Rank int `json:"rank"`
}

// Stats reports coverage for one ranking call so degraded evaluation is
// observable, never silent.
type Stats struct {
	// CandidatesConsidered is the pool size handed to Rank.
	CandidatesConsidered int `json:"candidates_considered"`
	// CandidatesRanked is the number of matches returned after filtering
	// and truncation.
	CandidatesRanked int `json:"candidates_ranked"`
	// SkippedNoQuorum counts candidates excluded because no evaluator
	// result survived the confidence floor.
	SkippedNoQuorum int `json:"skipped_no_quorum"`
	// SkippedInvalid counts candidates excluded by snapshot validation.
	SkippedInvalid int `json:"skipped_invalid"`
	// StrategyTimeouts counts individual strategy evaluations abandoned
	// at their deadline, across all candidates.
	StrategyTimeouts int `json:"strategy_timeouts"`
	// BelowMinScore counts decisions filtered out by the score floor.
	BelowMinScore int `json:"below_min_score"`
}

// ResponseMetadata carries tracing and timing information for one call.
type ResponseMetadata struct {
	// RequestID echoes Request.ID, generated when it was empty.
	RequestID string `json:"request_id"`
	// Strategies lists the registered strategy names, in registration
	// order.
	Strategies []string `json:"strategies"`
	// LatencyMS is total Rank wall time in milliseconds.
	LatencyMS int64 `json:"latency_ms"`
	// Timestamp is when the response was assembled (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// Response is the complete, serializable result of one Rank call.
type Response struct {
	// Matches is the ranked list, best first, truncated to top-K.
	Matches []RankedMatch `json:"matches"`
	// Stats reports evaluation coverage.
	Stats Stats `json:"stats"`
	// Metadata carries tracing and timing.
	Metadata ResponseMetadata `json:"metadata"`
}

// StrategyExplanation is one strategy's contribution to a decision.
type StrategyExplanation struct {
	// Strategy is the strategy name.
	Strategy string `json:"strategy"`
	// Score is the strategy's score.
	Score float64 `json:"score"`
	// Confidence is the strategy's confidence.
	Confidence float64 `json:"confidence"`
	// Weight is the strategy's share of the final score,
	// confidence / sum of surviving confidences.
	Weight float64 `json:"weight"`
	// Rationale is the strategy's own account of the score.
	Rationale string `json:"rationale,omitempty"`
}

// Explanation is the audit/UI view of one RankedMatch, reconstructed from
// the stored breakdown without re-evaluating.
type Explanation struct {
	// CandidateID identifies the explained match.
	CandidateID string `json:"candidate_id"`
	// FinalScore echoes the decision's final score.
	FinalScore float64 `json:"final_score"`
	// OverallConfidence echoes the decision's confidence.
	OverallConfidence float64 `json:"overall_confidence"`
	// Conflict echoes the decision's conflict flag.
	Conflict bool `json:"conflict"`
	// ConflictMagnitude echoes the decision's score spread.
	ConflictMagnitude float64 `json:"conflict_magnitude"`
	// PerStrategy lists each contributing strategy's share.
	PerStrategy []StrategyExplanation `json:"per_strategy"`
}

// Options tunes a single Rank call. Zero values fall back to the
// configured defaults.
type Options struct {
	// MinScore excludes decisions with FinalScore <= MinScore.
	MinScore float64 `json:"min_score"`
	// TopK caps the returned match count.
	TopK int `json:"top_k"`
	// PerStrategyTimeout bounds each individual strategy evaluation.
	PerStrategyTimeout time.Duration `json:"per_strategy_timeout"`
}

// Criteria is the coarse pre-filter handed to a CandidateSource. Fine
// scoring is the engine's job; criteria only bound the pool.
type Criteria struct {
	// Styles limits the pool to providers offering any of these
	// categories. Empty means all styles.
	Styles []string `json:"styles,omitempty"`
	// MaxPriceYen excludes providers whose base price exceeds it.
	// Zero means no price cap.
	MaxPriceYen int64 `json:"max_price_yen,omitempty"`
	// Limit bounds the snapshot size. Zero means the source's default.
	Limit int `json:"limit,omitempty"`
}

// Strategy is one pluggable scoring algorithm. Implementations must be
// safe for concurrent use, must not mutate the FeatureSet, and must
// respect ctx cancellation. For a well-formed FeatureSet a strategy
// returns a result rather than an error; abstention is expressed with
// confidence 0.
type Strategy interface {
	// Name returns the unique strategy name used to key results.
	Name() string

	// Evaluate scores one candidate's FeatureSet.
	Evaluate(ctx context.Context, features FeatureSet) (EvaluatorResult, error)
}

// CandidateSource supplies the candidate pool for ranking calls. The
// engine treats the returned slice as an immutable snapshot.
// Implemented by the directory backends.
type CandidateSource interface {
	Snapshot(ctx context.Context, criteria Criteria) ([]Candidate, error)
}

// RequestSource resolves a request ID to its feature-ready Request.
// Implemented by the intake client.
type RequestSource interface {
	RequestContext(ctx context.Context, requestID string) (Request, error)
}
