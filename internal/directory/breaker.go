// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/artifex/internal/logging"
	"github.com/tomtom215/artifex/internal/match"
	"github.com/tomtom215/artifex/internal/metrics"
)

// Breaker wraps a Store with circuit breaker protection so a failing
// backend degrades ranking calls quickly instead of stacking timeouts.
// Rejected calls return ErrUnavailable.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via
// sony/gobreaker) for its interval and timeout calculations. The timing
// determines when to recover from failures, not data integrity; unit
// tests should exercise the wrapped store directly or drive the breaker
// with failures rather than waiting out timeouts.
type Breaker struct {
	store Store
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

var _ Store = (*Breaker)(nil)

// NewBreaker wraps a backend store. Intended for the badger and redis
// backends; the in-memory backend has no failure mode worth isolating.
//
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreaker(store Store) *Breaker {
	cbName := "directory-" + store.Name()

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,               // Allow 3 concurrent requests in half-open state
		Interval:    time.Minute,     // Reset counts after 1 minute in closed state
		Timeout:     2 * time.Minute, // Wait 2 minutes before transitioning from open to half-open

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need at least 10 requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Str("name", cbName).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("name", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			// Reset consecutive failures when transitioning to closed
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Breaker{
		store: store,
		cb:    cb,
		name:  cbName,
	}
}

// Name implements Directory, reporting the wrapped backend's name so
// snapshot metrics stay attributed to the real store.
func (b *Breaker) Name() string { return b.store.Name() }

// execute runs one store operation through the circuit breaker and
// keeps the breaker metrics current. Rejections are mapped to
// ErrUnavailable; backend errors pass through unchanged.
func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("name", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()

		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)

	return result, nil
}

// Snapshot implements Directory with circuit breaker protection.
func (b *Breaker) Snapshot(ctx context.Context, criteria match.Criteria) ([]match.Candidate, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.store.Snapshot(ctx, criteria)
	})
	if err != nil {
		return nil, err
	}

	candidates, ok := result.([]match.Candidate)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return candidates, nil
}

// Put implements Store with circuit breaker protection. Input
// validation happens before the breaker so bad input never counts as a
// backend failure.
func (b *Breaker) Put(ctx context.Context, candidates ...match.Candidate) error {
	if err := validatePut(candidates); err != nil {
		return err
	}

	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.Put(ctx, candidates...)
	})
	return err
}

// Delete implements Store with circuit breaker protection.
func (b *Breaker) Delete(ctx context.Context, id string) error {
	_, err := b.execute(func() (interface{}, error) {
		return nil, b.store.Delete(ctx, id)
	})
	return err
}

// Close implements Store. Closing bypasses the breaker.
func (b *Breaker) Close() error {
	return b.store.Close()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
