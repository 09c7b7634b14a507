// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/artifex/internal/metrics"
)

// Engine is the ranking pipeline: feature extraction, concurrent strategy
// evaluation, consensus aggregation, then filter/sort/truncate. One
// Engine serves many concurrent Rank calls; all per-call state is local.
type Engine struct {
	config     *Config
	extractor  *Extractor
	runner     *Runner
	aggregator *Aggregator

	mu         sync.RWMutex
	strategies []Strategy
	names      map[string]struct{}

	logger  zerolog.Logger
	metrics engineMetrics
}

// engineMetrics are cheap internal counters behind GetMetrics snapshots.
// Prometheus series are recorded separately as requests flow.
type engineMetrics struct {
	requests         atomic.Int64
	candidates       atomic.Int64
	skippedNoQuorum  atomic.Int64
	skippedInvalid   atomic.Int64
	strategyTimeouts atomic.Int64
	conflicts        atomic.Int64
}

// EngineMetrics is a point-in-time snapshot of the engine counters.
type EngineMetrics struct {
	// Requests is the number of Rank calls accepted.
	Requests int64 `json:"requests"`
	// Candidates is the total candidates evaluated across calls.
	Candidates int64 `json:"candidates"`
	// SkippedNoQuorum counts candidates excluded for lack of quorum.
	SkippedNoQuorum int64 `json:"skipped_no_quorum"`
	// SkippedInvalid counts candidates rejected by snapshot validation.
	SkippedInvalid int64 `json:"skipped_invalid"`
	// StrategyTimeouts counts abandoned strategy evaluations.
	StrategyTimeouts int64 `json:"strategy_timeouts"`
	// Conflicts counts decisions annotated as conflicted.
	Conflicts int64 `json:"conflicts"`
}

// NewEngine builds an engine from cfg. A nil cfg uses DefaultConfig.
// Strategies are registered separately so callers control the lineup.
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	extractor, err := NewExtractor(cfg.Bands.Profile)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}
	aggregator, err := NewAggregator(cfg.Consensus.MinConfidence, cfg.Consensus.ConflictSpread)
	if err != nil {
		return nil, fmt.Errorf("build aggregator: %w", err)
	}

	return &Engine{
		config:     cfg.Clone(),
		extractor:  extractor,
		runner:     NewRunner(logger),
		aggregator: aggregator,
		names:      make(map[string]struct{}),
		logger:     logger.With().Str("component", "match-engine").Logger(),
	}, nil
}

// RegisterStrategy adds a strategy to the lineup. Names must be unique;
// registration order is preserved in response metadata.
func (e *Engine) RegisterStrategy(s Strategy) error {
	if s == nil {
		return errors.New("strategy must not be nil")
	}
	name := s.Name()
	if name == "" {
		return errors.New("strategy name must not be empty")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.names[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateStrategy)
	}
	e.names[name] = struct{}{}
	e.strategies = append(e.strategies, s)

	e.logger.Info().Str("strategy", name).Msg("strategy registered")
	return nil
}

// StrategyNames returns the registered names in registration order.
func (e *Engine) StrategyNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}

// candidateOutcome is the per-candidate result slot. Indexed slice, one
// writer per slot, so the worker pool needs no mutex.
type candidateOutcome struct {
	decision ConsensusDecision
	ranked   bool
	invalid  bool
	noQuorum bool
	timeouts int
}

// Rank evaluates the candidate pool for one request and returns the
// ranked matches.
//
// Request-level invalid input and cancellation abort the whole call;
// anything local to one candidate (malformed snapshot, strategy
// timeouts, no quorum) skips that candidate, feeds the stats counters,
// and lets the batch continue. The ranking is all-or-nothing per call:
// a cancelled call returns no partial matches.
func (e *Engine) Rank(ctx context.Context, req Request, pool []Candidate, opts Options) (*Response, error) {
	start := time.Now()
	outcome := "ok"
	defer func() { metrics.RecordMatchRequest(outcome, time.Since(start)) }()

	strategies := e.snapshotStrategies()
	if len(strategies) == 0 {
		outcome = "no_strategies"
		return nil, ErrNoStrategies
	}
	if err := ValidateRequest(req); err != nil {
		outcome = "invalid_request"
		return nil, err
	}
	opts, err := e.normalizeOptions(opts)
	if err != nil {
		outcome = "invalid_options"
		return nil, err
	}
	if limit := e.config.Limits.MaxCandidates; limit > 0 && len(pool) > limit {
		outcome = "pool_too_large"
		return nil, invalidInput("candidates", fmt.Sprintf("pool size %d exceeds limit %d", len(pool), limit))
	}

	requestID := req.ID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := e.logger.With().Str("request_id", requestID).Logger()

	e.metrics.requests.Add(1)
	e.metrics.candidates.Add(int64(len(pool)))

	outcomes := make([]candidateOutcome, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Limits.MaxConcurrentCandidates)
	for i := range pool {
		i := i // per-iteration copy; the go directive predates Go 1.22 loop semantics
		g.Go(func() error {
			return e.evaluateCandidate(gctx, logger, strategies, req, pool[i], opts, &outcomes[i])
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcome = "cancelled"
			logger.Info().Dur("elapsed", time.Since(start)).Msg("ranking cancelled")
			return nil, fmt.Errorf("ranking cancelled: %w", ctxErr)
		}
		outcome = "error"
		return nil, err
	}

	ranked := make([]RankedMatch, 0, len(pool))
	stats := Stats{CandidatesConsidered: len(pool)}
	conflicts := 0
	for i, o := range outcomes {
		stats.StrategyTimeouts += o.timeouts
		switch {
		case o.invalid:
			stats.SkippedInvalid++
		case o.noQuorum:
			stats.SkippedNoQuorum++
		case o.ranked:
			if o.decision.Conflict {
				conflicts++
			}
			if o.decision.FinalScore > opts.MinScore {
				ranked = append(ranked, RankedMatch{Candidate: pool[i], Decision: o.decision})
			} else {
				stats.BelowMinScore++
			}
		}
	}
	e.metrics.conflicts.Add(int64(conflicts))
	e.metrics.skippedInvalid.Add(int64(stats.SkippedInvalid))
	e.metrics.skippedNoQuorum.Add(int64(stats.SkippedNoQuorum))
	e.metrics.strategyTimeouts.Add(int64(stats.StrategyTimeouts))
	metrics.RecordMatchBatch(
		int64(len(pool)),
		int64(stats.CandidatesConsidered-stats.SkippedInvalid),
		int64(stats.SkippedInvalid),
		int64(stats.SkippedNoQuorum),
		int64(stats.BelowMinScore),
		int64(conflicts),
	)

	sortMatches(ranked)
	if len(ranked) > opts.TopK {
		ranked = ranked[:opts.TopK]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
		metrics.ObserveMatchScore(ranked[i].Decision.FinalScore)
	}
	stats.CandidatesRanked = len(ranked)

	logger.Info().
		Int("considered", stats.CandidatesConsidered).
		Int("ranked", stats.CandidatesRanked).
		Int("skipped_no_quorum", stats.SkippedNoQuorum).
		Int("skipped_invalid", stats.SkippedInvalid).
		Int("strategy_timeouts", stats.StrategyTimeouts).
		Dur("elapsed", time.Since(start)).
		Msg("ranking complete")

	return &Response{
		Matches: ranked,
		Stats:   stats,
		Metadata: ResponseMetadata{
			RequestID:  requestID,
			Strategies: strategyNames(strategies),
			LatencyMS:  time.Since(start).Milliseconds(),
			Timestamp:  time.Now().UTC(),
		},
	}, nil
}

// evaluateCandidate runs the per-candidate pipeline stage. Only
// cancellation produces an error; everything else lands in the outcome
// slot.
func (e *Engine) evaluateCandidate(ctx context.Context, logger zerolog.Logger, strategies []Strategy, req Request, cand Candidate, opts Options, out *candidateOutcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateCandidate(cand); err != nil {
		out.invalid = true
		logger.Warn().
			Err(err).
			Str("candidate_id", cand.ID).
			Msg("candidate snapshot rejected")
		return nil
	}

	features := e.extractor.Extract(req, cand)
	results, timeouts := e.runner.Run(ctx, strategies, features, opts.PerStrategyTimeout)
	out.timeouts = timeouts

	if err := ctx.Err(); err != nil {
		return err
	}

	decision, err := e.aggregator.Aggregate(results)
	if err != nil {
		if errors.Is(err, ErrNoQuorum) {
			out.noQuorum = true
			logger.Debug().
				Str("candidate_id", cand.ID).
				Int("results", len(results)).
				Msg("candidate excluded, no quorum")
			return nil
		}
		return fmt.Errorf("aggregate candidate %s: %w", cand.ID, err)
	}

	out.decision = decision
	out.ranked = true
	return nil
}

// Explain reconstructs the per-strategy breakdown of a ranked match from
// its stored decision. Pure accessor; nothing is re-evaluated.
func (e *Engine) Explain(m RankedMatch) Explanation {
	var sumConf float64
	for _, r := range m.Decision.Contributing {
		sumConf += r.Confidence
	}

	per := make([]StrategyExplanation, 0, len(m.Decision.Contributing))
	for _, r := range m.Decision.Contributing {
		var weight float64
		if sumConf > 0 {
			weight = r.Confidence / sumConf
		}
		per = append(per, StrategyExplanation{
			Strategy:   r.Strategy,
			Score:      r.Score,
			Confidence: r.Confidence,
			Weight:     weight,
			Rationale:  r.Rationale,
		})
	}

	return Explanation{
		CandidateID:       m.Candidate.ID,
		FinalScore:        m.Decision.FinalScore,
		OverallConfidence: m.Decision.OverallConfidence,
		Conflict:          m.Decision.Conflict,
		ConflictMagnitude: m.Decision.ConflictMagnitude,
		PerStrategy:       per,
	}
}

// GetMetrics returns a snapshot of the engine counters.
func (e *Engine) GetMetrics() EngineMetrics {
	return EngineMetrics{
		Requests:         e.metrics.requests.Load(),
		Candidates:       e.metrics.candidates.Load(),
		SkippedNoQuorum:  e.metrics.skippedNoQuorum.Load(),
		SkippedInvalid:   e.metrics.skippedInvalid.Load(),
		StrategyTimeouts: e.metrics.strategyTimeouts.Load(),
		Conflicts:        e.metrics.conflicts.Load(),
	}
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

func (e *Engine) snapshotStrategies() []Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Strategy, len(e.strategies))
	copy(out, e.strategies)
	return out
}

// normalizeOptions applies configured defaults and bounds.
func (e *Engine) normalizeOptions(opts Options) (Options, error) {
	if opts.TopK < 0 {
		return opts, invalidInput("options.top_k", "must not be negative")
	}
	if opts.MinScore < 0 || opts.MinScore >= 1 {
		return opts, invalidInput("options.min_score", "must be in [0,1)")
	}
	if opts.PerStrategyTimeout < 0 {
		return opts, invalidInput("options.per_strategy_timeout", "must not be negative")
	}

	if opts.TopK == 0 {
		opts.TopK = e.config.Limits.DefaultTopK
	}
	if opts.TopK > e.config.Limits.MaxTopK {
		opts.TopK = e.config.Limits.MaxTopK
	}
	if opts.MinScore == 0 {
		opts.MinScore = e.config.Limits.DefaultMinScore
	}
	if opts.PerStrategyTimeout == 0 {
		opts.PerStrategyTimeout = e.config.Limits.PerStrategyTimeout
	}
	return opts, nil
}

// sortMatches orders by final score descending, overall confidence
// descending, then candidate ID ascending. The full chain keys on values
// unique per candidate, so the order is deterministic across runs.
func sortMatches(matches []RankedMatch) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Decision.FinalScore != b.Decision.FinalScore {
			return a.Decision.FinalScore > b.Decision.FinalScore
		}
		if a.Decision.OverallConfidence != b.Decision.OverallConfidence {
			return a.Decision.OverallConfidence > b.Decision.OverallConfidence
		}
		return a.Candidate.ID < b.Candidate.ID
	})
}

func strategyNames(strategies []Strategy) []string {
	names := make([]string, len(strategies))
	for i, s := range strategies {
		names[i] = s.Name()
	}
	return names
}
