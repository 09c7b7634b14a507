// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements comprehensive application instrumentation using the Prometheus
client library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - Match request throughput, latency and outcomes
  - Per-strategy evaluation results and timing
  - HTTP endpoint latency and throughput
  - Directory snapshot and refresh operations
  - Intake fetch performance
  - Circuit breaker state transitions

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8085/metrics

# Available Metrics

Match Engine Metrics:
  - match_requests_total: Ranking requests (counter)
    Labels: outcome (ok, no_strategies, invalid_request, invalid_options,
    pool_too_large, cancelled, error)
  - match_request_duration_seconds: End-to-end ranking latency (histogram)
  - match_pool_size: Candidates per request (histogram)
  - match_candidates_evaluated_total: Candidates scored (counter)
  - match_candidates_skipped_total: Candidates excluded (counter)
    Labels: reason (invalid, no_quorum, below_min_score)
  - match_consensus_conflicts_total: Conflicting decisions (counter)
  - match_final_score: Consensus score distribution (histogram)

Strategy Metrics:
  - strategy_evaluations_total: Strategy evaluations (counter)
    Labels: strategy, result (ok, abstain, timeout, error)
  - strategy_duration_seconds: Per-strategy evaluation time (histogram)
    Labels: strategy

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Directory Metrics:
  - directory_snapshot_duration_seconds: Pool snapshot time (histogram)
    Labels: backend (memory, badger, redis)
  - directory_snapshot_errors_total: Failed snapshots (counter)
    Labels: backend, error_type
  - directory_providers: Providers in last snapshot (gauge)
    Labels: backend
  - directory_refresh_duration_seconds: Refresh duration (histogram)
  - directory_records_refreshed_total: Records written (counter)
  - directory_refresh_errors_total: Refresh errors (counter)
    Labels: error_type (timeout, connection, decode, other)
  - directory_refresh_last_success_timestamp: Last successful refresh (gauge)

Intake Metrics:
  - intake_fetch_duration_seconds: Context fetch time (histogram)
  - intake_fetches_total: Context fetches (counter)
    Labels: result (ok, not_found, timeout, upstream, decode)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through breaker (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Consecutive failures (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total: State transitions (counter)
    Labels: name, from_state, to_state

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/tomtom215/artifex/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    // Register metrics endpoint
	    http.Handle("/metrics", promhttp.Handler())

	    // Record metrics
	    metrics.RecordMatchRequest("ok", 42*time.Millisecond)
	    metrics.RecordStrategyEvaluation("analytical", "ok", 800*time.Microsecond)
	}

Recording strategy metrics inside an evaluation loop:

	start := time.Now()
	result, err := strategy.Evaluate(ctx, features)
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
	    metrics.RecordStrategyEvaluation(name, "timeout", time.Since(start))
	case err != nil:
	    metrics.RecordStrategyEvaluation(name, "error", time.Since(start))
	case result.Confidence == 0:
	    metrics.RecordStrategyEvaluation(name, "abstain", time.Since(start))
	default:
	    metrics.RecordStrategyEvaluation(name, "ok", time.Since(start))
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'artifex'
	    static_configs:
	      - targets: ['localhost:8085']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

# Grafana Dashboards

The metrics support Grafana dashboards with panels for:

  - Match request rate and outcome breakdown
  - Ranking latency (p50, p95, p99 percentiles)
  - Per-strategy timeout and abstention rates
  - Consensus score distribution
  - Directory refresh health and provider counts
  - Circuit breaker state visualization

Example PromQL queries:

	# Match request rate
	rate(match_requests_total[5m])

	# Ranking p95 latency
	histogram_quantile(0.95, rate(match_request_duration_seconds_bucket[5m]))

	# Strategy timeout ratio
	sum(rate(strategy_evaluations_total{result="timeout"}[5m])) by (strategy)
	/
	sum(rate(strategy_evaluations_total[5m])) by (strategy)

	# Candidates skipped for lack of quorum
	rate(match_candidates_skipped_total{reason="no_quorum"}[5m])

# Performance Impact

Metrics collection overhead:
  - Counter increment: ~100ns per operation
  - Histogram observation: ~500ns per operation
  - Memory overhead: ~5KB per metric time series
  - Total overhead: <1% CPU, <10MB RAM for typical workloads

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use route patterns, not raw paths
  - Strategy labels are bounded by the registered strategy set
  - Error types are collapsed to coarse categories
  - Request and candidate IDs are never used as labels

# Alerting Rules

Example Prometheus alerting rules:

	groups:
	  - name: artifex
	    rules:
	      - alert: HighNoQuorumRate
	        expr: |
	          sum(rate(match_candidates_skipped_total{reason="no_quorum"}[5m]))
	          /
	          sum(rate(match_candidates_evaluated_total[5m]))
	          > 0.25
	        for: 5m
	        annotations:
	          summary: "High no-quorum rate: {{ $value }}"

	      - alert: SlowRanking
	        expr: |
	          histogram_quantile(0.95,
	            rate(match_request_duration_seconds_bucket[5m]))
	          > 2
	        for: 5m
	        annotations:
	          summary: "p95 ranking latency: {{ $value }}s"

	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state == 2
	        for: 2m
	        annotations:
	          summary: "Circuit breaker open for {{ $labels.name }}"

# See Also

  - internal/middleware: HTTP middleware with metrics integration
  - internal/match: Engine and runner metrics recording
  - internal/directory: Snapshot and refresh metrics
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
  - https://prometheus.io/docs/practices/instrumentation/: Instrumentation guide
*/
package metrics
