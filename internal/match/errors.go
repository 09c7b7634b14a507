// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"errors"
	"fmt"
)

// Sentinel errors for the ranking pipeline. Callers classify with
// errors.Is; wrapped context is added at the call site.
var (
	// ErrNoQuorum reports that no evaluator result survived the
	// confidence floor for a candidate. The candidate is excluded from
	// ranking and counted in Stats.SkippedNoQuorum; it is never an
	// error for the whole pipeline.
	ErrNoQuorum = errors.New("no evaluator result survived the confidence floor")

	// ErrInvalidInput marks malformed request or candidate data,
	// such as non-finite coordinates. Distinct from missing data,
	// which is defaulted, never rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoStrategies is returned by Rank when the engine has no
	// registered strategies.
	ErrNoStrategies = errors.New("no strategies registered")

	// ErrDuplicateStrategy is returned when registering a strategy whose
	// name is already taken.
	ErrDuplicateStrategy = errors.New("strategy name already registered")
)

// InvalidInputError reports which field of a Request or Candidate failed
// validation. Matches ErrInvalidInput via errors.Is.
type InvalidInputError struct {
	// Field is the offending field, e.g. "request.location.lat".
	Field string
	// Reason describes the violation.
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func invalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
