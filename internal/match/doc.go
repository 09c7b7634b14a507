// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

// Package match implements the matching and consensus ranking engine for
// artist booking requests.
//
// # Architecture
//
// Ranking one request against a candidate pool is a four-stage pipeline,
// executed per candidate:
//
//   - Feature extraction: a pure function deriving a normalized FeatureSet
//     (design, location, price, experience) from a (Request, Candidate) pair
//   - Evaluation: N pluggable scoring strategies run concurrently, each
//     raced against its own timeout
//   - Consensus: surviving strategy results are merged with a
//     confidence-weighted mean into a single ConsensusDecision
//   - Ranking: decisions are filtered, sorted and truncated to top-K
//
// # Design Principles
//
//   - Deterministic: identical inputs and configuration produce identical
//     ranked output across runs
//   - Strategy-agnostic: consensus math never special-cases a strategy name;
//     strategies are equal peers distinguished only by score and confidence
//   - Honest confidence: a strategy's confidence reflects only the inputs it
//     actually used; defaulted inputs lower it, ignored inputs do not
//   - Partial failure is normal: a slow or failing strategy degrades
//     coverage for one candidate, never the batch; a candidate with no
//     surviving results is excluded and counted, never zero-scored
//   - Side-effect free: the engine returns a fully serializable Response;
//     persisting it is the caller's concern
//
// # Usage
//
//	cfg := match.DefaultConfig()
//	engine, err := match.NewEngine(cfg, logger)
//	if err != nil { ... }
//
//	// Register strategies
//	engine.RegisterStrategy(strategies.NewAnalytical())
//	engine.RegisterStrategy(strategies.NewAffective())
//	engine.RegisterStrategy(strategies.NewExploratory())
//
//	// Rank a candidate pool
//	resp, err := engine.Rank(ctx, req, pool, match.Options{TopK: 10})
//
// Strategy implementations live in the strategies subpackage; candidate
// pool backends live in internal/directory.
package match
