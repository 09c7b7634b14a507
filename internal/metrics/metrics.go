// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Match request throughput, latency and outcomes
// - Per-strategy evaluation results and timing
// - API endpoint latency and throughput
// - Directory snapshot and refresh operations
// - Intake fetches and circuit breaker health

var (
	// Match Engine Metrics
	MatchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_requests_total",
			Help: "Total number of ranking requests",
		},
		[]string{"outcome"}, // "ok", "no_strategies", "invalid_request", "invalid_options", "pool_too_large", "cancelled", "error"
	)

	MatchRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_request_duration_seconds",
			Help:    "End-to-end ranking request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	MatchPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_pool_size",
			Help:    "Number of candidates per ranking request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	MatchCandidatesEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_candidates_evaluated_total",
			Help: "Total number of candidates scored across all requests",
		},
	)

	MatchCandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "match_candidates_skipped_total",
			Help: "Total number of candidates excluded from rankings",
		},
		[]string{"reason"}, // "invalid", "no_quorum", "below_min_score"
	)

	MatchConsensusConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "match_consensus_conflicts_total",
			Help: "Total number of decisions flagged with conflicting strategy opinions",
		},
	)

	MatchFinalScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "match_final_score",
			Help:    "Distribution of consensus scores for returned matches",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	// Strategy Metrics
	StrategyEvaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_evaluations_total",
			Help: "Total number of strategy evaluations",
		},
		[]string{"strategy", "result"}, // result: "ok", "abstain", "timeout", "error"
	)

	StrategyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strategy_duration_seconds",
			Help:    "Duration of individual strategy evaluations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Directory Metrics
	DirectorySnapshotDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "directory_snapshot_duration_seconds",
			Help:    "Duration of candidate pool snapshots in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"}, // "memory", "badger", "redis"
	)

	DirectorySnapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_snapshot_errors_total",
			Help: "Total number of failed candidate pool snapshots",
		},
		[]string{"backend", "error_type"},
	)

	DirectoryProviders = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "directory_providers",
			Help: "Number of providers in the most recent snapshot",
		},
		[]string{"backend"},
	)

	DirectoryRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "directory_refresh_duration_seconds",
			Help:    "Duration of directory refresh operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600}, // Refresh operations can take minutes
		},
	)

	DirectoryRecordsRefreshed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "directory_records_refreshed_total",
			Help: "Total number of provider records written during refresh",
		},
	)

	DirectoryRefreshErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_refresh_errors_total",
			Help: "Total number of directory refresh errors",
		},
		[]string{"error_type"}, // "timeout", "connection", "decode", "other"
	)

	DirectoryLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "directory_refresh_last_success_timestamp",
			Help: "Unix timestamp of last successful directory refresh",
		},
	)

	// Intake Metrics
	IntakeFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intake_fetch_duration_seconds",
			Help:    "Duration of request context fetches from the analysis service",
			Buckets: prometheus.DefBuckets,
		},
	)

	IntakeFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intake_fetches_total",
			Help: "Total number of request context fetches",
		},
		[]string{"result"}, // "ok", "not_found", "timeout", "upstream", "decode"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordMatchRequest records the outcome and duration of one ranking request
func RecordMatchRequest(outcome string, duration time.Duration) {
	MatchRequestsTotal.WithLabelValues(outcome).Inc()
	MatchRequestDuration.Observe(duration.Seconds())
}

// RecordMatchBatch records per-request candidate accounting from a completed ranking
func RecordMatchBatch(poolSize, evaluated, skippedInvalid, skippedNoQuorum, belowMinScore, conflicts int64) {
	MatchPoolSize.Observe(float64(poolSize))
	MatchCandidatesEvaluated.Add(float64(evaluated))
	if skippedInvalid > 0 {
		MatchCandidatesSkipped.WithLabelValues("invalid").Add(float64(skippedInvalid))
	}
	if skippedNoQuorum > 0 {
		MatchCandidatesSkipped.WithLabelValues("no_quorum").Add(float64(skippedNoQuorum))
	}
	if belowMinScore > 0 {
		MatchCandidatesSkipped.WithLabelValues("below_min_score").Add(float64(belowMinScore))
	}
	if conflicts > 0 {
		MatchConsensusConflicts.Add(float64(conflicts))
	}
}

// ObserveMatchScore records the consensus score of one returned match
func ObserveMatchScore(score float64) {
	MatchFinalScore.Observe(score)
}

// RecordStrategyEvaluation records the result and duration of one strategy evaluation
func RecordStrategyEvaluation(strategy, result string, duration time.Duration) {
	StrategyEvaluationsTotal.WithLabelValues(strategy, result).Inc()
	StrategyDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDirectorySnapshot records a candidate pool snapshot and its outcome
func RecordDirectorySnapshot(backend string, size int, duration time.Duration, err error) {
	DirectorySnapshotDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if err != nil {
		DirectorySnapshotErrors.WithLabelValues(backend, categorizeError(err)).Inc()
		return
	}
	DirectoryProviders.WithLabelValues(backend).Set(float64(size))
}

// RecordDirectoryRefresh records a directory refresh operation
func RecordDirectoryRefresh(duration time.Duration, recordsWritten int, err error) {
	DirectoryRefreshDuration.Observe(duration.Seconds())
	DirectoryRecordsRefreshed.Add(float64(recordsWritten))
	if err != nil {
		DirectoryRefreshErrors.WithLabelValues(categorizeError(err)).Inc()
	} else {
		// Update last success timestamp
		DirectoryLastRefresh.Set(float64(time.Now().Unix()))
	}
}

// RecordIntakeFetch records a request context fetch
func RecordIntakeFetch(result string, duration time.Duration) {
	IntakeFetchesTotal.WithLabelValues(result).Inc()
	IntakeFetchDuration.Observe(duration.Seconds())
}

// categorizeError maps an error message to a coarse error_type label
func categorizeError(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"), strings.Contains(msg, "dial"), strings.Contains(msg, "refused"):
		return "connection"
	case strings.Contains(msg, "decode"), strings.Contains(msg, "unmarshal"), strings.Contains(msg, "parse"):
		return "decode"
	default:
		return "other"
	}
}
