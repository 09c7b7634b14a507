// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/artifex/internal/match"
)

// MatchSubmission is the POST /api/v1/match request body. Every field
// of the embedded request is optional; the engine substitutes neutral
// defaults for whatever the customer did not provide.
type MatchSubmission struct {
	// Request is the customer's matching request.
	Request match.Request `json:"request"`
	// Options tunes this ranking call.
	Options MatchOptions `json:"options"`
	// Criteria pre-filters the candidate pool.
	Criteria MatchCriteria `json:"criteria"`
}

// MatchOptions are the caller-tunable ranking knobs. Zero values defer
// to the engine's configured defaults.
type MatchOptions struct {
	// MinScore excludes matches whose final score is at or below it.
	MinScore float64 `json:"min_score" validate:"gte=0,lt=1"`
	// TopK caps the number of returned matches.
	TopK int `json:"top_k" validate:"gte=0"`
	// StrategyTimeoutMS bounds each strategy evaluation, milliseconds.
	StrategyTimeoutMS int64 `json:"strategy_timeout_ms" validate:"gte=0"`
}

// toOptions converts the wire shape to engine options.
func (o MatchOptions) toOptions() match.Options {
	return match.Options{
		MinScore:           o.MinScore,
		TopK:               o.TopK,
		PerStrategyTimeout: time.Duration(o.StrategyTimeoutMS) * time.Millisecond,
	}
}

// MatchCriteria bounds the candidate pool fetched from the directory.
// Fine-grained scoring is the engine's job; criteria only filter.
type MatchCriteria struct {
	// Styles limits the pool to providers offering any of these
	// categories.
	Styles []string `json:"styles" validate:"omitempty,max=20,dive,min=1,max=64"`
	// MaxPriceYen excludes providers priced above it. Zero disables.
	MaxPriceYen int64 `json:"max_price_yen" validate:"gte=0"`
	// Limit bounds the pool size. Zero means the engine's maximum.
	Limit int `json:"limit" validate:"gte=0"`
}

// toCriteria converts the wire shape to directory criteria.
func (c MatchCriteria) toCriteria() match.Criteria {
	return match.Criteria{
		Styles:      c.Styles,
		MaxPriceYen: c.MaxPriceYen,
		Limit:       c.Limit,
	}
}

// ExplainSubmission is the POST /api/v1/match/explain request body: a
// ranked match exactly as returned by a ranking call.
type ExplainSubmission struct {
	Match match.RankedMatch `json:"match"`
}

// matchParamsFromQuery assembles ranking options and pool criteria from
// URL query parameters, used by the GET-by-request-ID endpoint.
func matchParamsFromQuery(r *http.Request) (MatchOptions, MatchCriteria) {
	opts := MatchOptions{
		MinScore:          getFloatParam(r, "min_score", 0),
		TopK:              getIntParam(r, "top_k", 0),
		StrategyTimeoutMS: getInt64Param(r, "strategy_timeout_ms", 0),
	}
	criteria := MatchCriteria{
		Styles:      parseCommaSeparated(r.URL.Query().Get("styles")),
		MaxPriceYen: getInt64Param(r, "max_price_yen", 0),
		Limit:       getIntParam(r, "limit", 0),
	}
	return opts, criteria
}
