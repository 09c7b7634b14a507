// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/artifex/internal/metrics"
)

// Runner fans one FeatureSet out to all strategies concurrently and
// collects whatever completes in time.
//
// Each strategy is raced against its own deadline: a strategy that blows
// its timeout is abandoned, its late result discarded, and the remaining
// strategies are unaffected. The runner never blocks longer than the
// per-strategy timeout, regardless of strategy count, and never returns
// fabricated results for missing strategies.
//
// Result order is completion order. Downstream code must key results by
// strategy name, never by position.
type Runner struct {
	logger zerolog.Logger
}

// NewRunner builds a runner that logs exclusions through logger.
func NewRunner(logger zerolog.Logger) *Runner {
	return &Runner{logger: logger.With().Str("component", "runner").Logger()}
}

type evalOutcome struct {
	result EvaluatorResult
	err    error
}

// Run evaluates features against every strategy with the given
// per-strategy timeout. The returned timeouts count reports how many
// evaluations were abandoned at their deadline; errors and timeouts are
// logged and excluded, never surfaced as a call failure.
func (r *Runner) Run(ctx context.Context, strategies []Strategy, features FeatureSet, timeout time.Duration) (results []EvaluatorResult, timeouts int) {
	if len(strategies) == 0 {
		return nil, 0
	}

	collected := make(chan EvaluatorResult, len(strategies))
	timedOut := make(chan string, len(strategies))

	var wg sync.WaitGroup
	for _, s := range strategies {
		wg.Add(1)
		go func(s Strategy) {
			defer wg.Done()
			r.runOne(ctx, s, features, timeout, collected, timedOut)
		}(s)
	}
	wg.Wait()
	close(collected)
	close(timedOut)

	results = make([]EvaluatorResult, 0, len(strategies))
	for res := range collected {
		results = append(results, res)
	}
	for range timedOut {
		timeouts++
	}
	return results, timeouts
}

// runOne races a single evaluation against its deadline. The evaluation
// goroutine writes to a buffered channel, so a strategy that ignores
// cancellation finishes in the background and its result is dropped on
// the floor instead of leaking a goroutine forever.
func (r *Runner) runOne(ctx context.Context, s Strategy, features FeatureSet, timeout time.Duration, collected chan<- EvaluatorResult, timedOut chan<- string) {
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out := make(chan evalOutcome, 1)
	go func() {
		res, err := s.Evaluate(sctx, features)
		out <- evalOutcome{result: res, err: err}
	}()

	select {
	case o := <-out:
		elapsed := time.Since(start)
		if o.err != nil {
			if errors.Is(o.err, context.DeadlineExceeded) && ctx.Err() == nil {
				timedOut <- s.Name()
				metrics.RecordStrategyEvaluation(s.Name(), "timeout", elapsed)
				r.logger.Warn().
					Str("strategy", s.Name()).
					Dur("timeout", timeout).
					Msg("strategy hit its deadline, result excluded")
				return
			}
			metrics.RecordStrategyEvaluation(s.Name(), "error", elapsed)
			r.logger.Warn().
				Err(o.err).
				Str("strategy", s.Name()).
				Msg("strategy evaluation failed, result excluded")
			return
		}
		res := sanitizeResult(o.result, s.Name(), elapsed)
		result := "ok"
		if res.Confidence == 0 {
			result = "abstain"
		}
		metrics.RecordStrategyEvaluation(s.Name(), result, elapsed)
		collected <- res

	case <-sctx.Done():
		if errors.Is(sctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			timedOut <- s.Name()
			metrics.RecordStrategyEvaluation(s.Name(), "timeout", time.Since(start))
			r.logger.Warn().
				Str("strategy", s.Name()).
				Dur("timeout", timeout).
				Msg("strategy abandoned at deadline, late result will be discarded")
			return
		}
		// Parent cancellation: nothing to record, the whole call is
		// being torn down.
		r.logger.Debug().
			Str("strategy", s.Name()).
			Msg("strategy abandoned by cancellation")
	}
}

// sanitizeResult stamps identity and timing and clamps the numeric fields
// so a misbehaving strategy cannot push values outside [0,1] into the
// consensus math.
func sanitizeResult(res EvaluatorResult, name string, elapsed time.Duration) EvaluatorResult {
	if res.Strategy == "" {
		res.Strategy = name
	}
	res.Score = clamp01(res.Score)
	res.Confidence = clamp01(res.Confidence)
	res.ElapsedMS = float64(elapsed.Microseconds()) / 1000.0
	return res
}
