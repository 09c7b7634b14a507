// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"errors"
	"sort"

	"github.com/tomtom215/artifex/internal/match"
)

// ErrUnavailable is returned when the backend cannot serve the request,
// either because the underlying store failed or because the circuit
// breaker is rejecting calls. Callers can surface it as 503.
var ErrUnavailable = errors.New("directory: backend unavailable")

// Directory supplies provider snapshots for ranking calls. It extends
// match.CandidateSource with a backend name for logs and metrics.
//
// Snapshot applies the coarse Criteria pre-filter (style, price cap,
// size limit) and returns candidates sorted by ID so repeated calls over
// unchanged data produce identical pools. The returned slice and its
// contents are owned by the caller; backends never retain or mutate it.
type Directory interface {
	match.CandidateSource

	// Name returns the backend identifier ("memory", "badger", "redis").
	Name() string
}

// Store is a writable Directory. The refresher and the seed loader use
// Put/Delete to keep the local snapshot in sync with the provider
// registry; ranking calls only ever read.
type Store interface {
	Directory

	// Put inserts or replaces providers keyed by Candidate.ID.
	// Candidates with an empty ID are rejected.
	Put(ctx context.Context, candidates ...match.Candidate) error

	// Delete removes a provider. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources. The store is unusable afterwards.
	Close() error
}

// matchesCriteria reports whether a candidate passes the coarse
// pre-filter. Style matches on the primary style or any positive
// portfolio share; providers without published pricing pass a price cap
// (the engine prices unknown as neutral, the filter must not hide them).
func matchesCriteria(c *match.Candidate, criteria match.Criteria) bool {
	if criteria.MaxPriceYen > 0 && c.BasePriceYen > 0 && c.BasePriceYen > criteria.MaxPriceYen {
		return false
	}
	if len(criteria.Styles) == 0 {
		return true
	}
	for _, style := range criteria.Styles {
		if c.PrimaryStyle == style {
			return true
		}
		if share, ok := c.StyleShares[style]; ok && share > 0 {
			return true
		}
	}
	return false
}

// cloneCandidate returns a deep copy so callers can never alias a
// backend's stored maps or pointers.
func cloneCandidate(c match.Candidate) match.Candidate {
	clone := c
	if c.StyleShares != nil {
		shares := make(map[string]float64, len(c.StyleShares))
		for style, share := range c.StyleShares {
			shares[style] = share
		}
		clone.StyleShares = shares
	}
	if c.Palette != nil {
		palette := *c.Palette
		clone.Palette = &palette
	}
	if c.Location != nil {
		location := *c.Location
		clone.Location = &location
	}
	return clone
}

// finishSnapshot applies the deterministic ID ordering and the optional
// size limit. Limit <= 0 means unbounded.
func finishSnapshot(candidates []match.Candidate, limit int) []match.Candidate {
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

// validatePut rejects candidates that cannot be keyed.
func validatePut(candidates []match.Candidate) error {
	for i := range candidates {
		if candidates[i].ID == "" {
			return errors.New("directory: candidate with empty ID")
		}
	}
	return nil
}
