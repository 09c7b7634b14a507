// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package intake

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

// breakerName labels the intake circuit breaker in logs and metrics.
const breakerName = "intake-analysis"

// Breaker wraps a request source with circuit breaker protection so a
// failing analysis service rejects lookups fast (ErrUnavailable)
// instead of stacking timeouts. A missing request is a healthy upstream
// answer and never counts against the circuit.
type Breaker struct {
	source match.RequestSource
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

var _ match.RequestSource = (*Breaker)(nil)

// NewBreaker wraps an analysis client.
//
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreaker(source match.RequestSource) *Breaker {
	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,               // Allow 3 concurrent requests in half-open state
		Interval:    time.Minute,     // Reset counts after 1 minute in closed state
		Timeout:     2 * time.Minute, // Wait 2 minutes before transitioning from open to half-open

		// A 404 is a well-formed upstream response, not a failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrRequestNotFound)
		},

		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need at least 10 requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().
					Str("name", breakerName).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := breakerStateToString(from)
			toStr := breakerStateToString(to)

			logging.Info().Str("name", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			// Reset consecutive failures when transitioning to closed
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &Breaker{
		source: source,
		cb:     cb,
		name:   breakerName,
	}
}

// RequestContext implements match.RequestSource with circuit breaker
// protection.
func (b *Breaker) RequestContext(ctx context.Context, requestID string) (match.Request, error) {
	result, err := b.execute(func() (interface{}, error) {
		return b.source.RequestContext(ctx, requestID)
	})
	if err != nil {
		return match.Request{}, err
	}

	request, ok := result.(match.Request)
	if !ok {
		return match.Request{}, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return request, nil
}

// execute runs one lookup through the circuit breaker and keeps the
// breaker metrics current. Rejections are mapped to ErrUnavailable;
// upstream errors pass through unchanged.
func (b *Breaker) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Str("name", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}

		if errors.Is(err, ErrRequestNotFound) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
			return nil, err
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

// breakerStateToFloat converts circuit breaker state to numeric value for metrics
func breakerStateToFloat(state gobreaker.State) float64 {
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

// breakerStateToString converts circuit breaker state to string for logging
func breakerStateToString(state gobreaker.State) string {
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
