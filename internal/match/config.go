// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Config holds all engine tuning. Construct with DefaultConfig and
// override; Validate before handing it to NewEngine.
type Config struct {
	// Bands selects the feature banding policy.
	Bands BandsConfig `json:"bands" koanf:"bands"`
	// Consensus tunes result merging.
	Consensus ConsensusConfig `json:"consensus" koanf:"consensus"`
	// Limits bounds per-call work.
	Limits LimitsConfig `json:"limits" koanf:"limits"`
}

// BandsConfig selects which banding table profile the extractor uses.
type BandsConfig struct {
	// Profile is "canonical" or "legacy". Empty means canonical.
	Profile string `json:"profile" koanf:"profile"`
}

// ConsensusConfig tunes the aggregation stage.
type ConsensusConfig struct {
	// MinConfidence is the floor below which (inclusive) an evaluator
	// result is dropped before merging.
	MinConfidence float64 `json:"min_confidence" koanf:"min_confidence"`
	// ConflictSpread is the max-min score spread above which a decision
	// is annotated as conflicted.
	ConflictSpread float64 `json:"conflict_spread" koanf:"conflict_spread"`
}

// LimitsConfig bounds per-call work and supplies option defaults.
type LimitsConfig struct {
	// PerStrategyTimeout bounds each strategy evaluation unless the
	// caller overrides it per call.
	PerStrategyTimeout time.Duration `json:"per_strategy_timeout" koanf:"per_strategy_timeout"`
	// MaxConcurrentCandidates caps the candidate worker pool.
	MaxConcurrentCandidates int `json:"max_concurrent_candidates" koanf:"max_concurrent_candidates"`
	// DefaultTopK applies when Options.TopK is zero.
	DefaultTopK int `json:"default_top_k" koanf:"default_top_k"`
	// MaxTopK caps Options.TopK.
	MaxTopK int `json:"max_top_k" koanf:"max_top_k"`
	// DefaultMinScore applies when Options.MinScore is zero.
	DefaultMinScore float64 `json:"default_min_score" koanf:"default_min_score"`
	// MaxCandidates rejects pools larger than this. Zero disables the
	// check.
	MaxCandidates int `json:"max_candidates" koanf:"max_candidates"`
}

// DefaultConfig returns production defaults. The consensus constants are
// product policy; change them with product review, not casually.
func DefaultConfig() *Config {
	return &Config{
		Bands: BandsConfig{
			Profile: BandProfileCanonical,
		},
		Consensus: ConsensusConfig{
			MinConfidence:  0.3,
			ConflictSpread: 0.35,
		},
		Limits: LimitsConfig{
			PerStrategyTimeout:      2 * time.Second,
			MaxConcurrentCandidates: 16,
			DefaultTopK:             10,
			MaxTopK:                 100,
			DefaultMinScore:         0.0,
			MaxCandidates:           5000,
		},
	}
}

// Validate checks invariants across all fields.
func (c *Config) Validate() error {
	switch c.Bands.Profile {
	case "", BandProfileCanonical, BandProfileLegacy:
	default:
		return fmt.Errorf("bands.profile must be %q or %q, got %q",
			BandProfileCanonical, BandProfileLegacy, c.Bands.Profile)
	}
	if c.Consensus.MinConfidence < 0 || c.Consensus.MinConfidence >= 1 {
		return fmt.Errorf("consensus.min_confidence must be in [0,1), got %f", c.Consensus.MinConfidence)
	}
	if c.Consensus.ConflictSpread <= 0 || c.Consensus.ConflictSpread > 1 {
		return fmt.Errorf("consensus.conflict_spread must be in (0,1], got %f", c.Consensus.ConflictSpread)
	}
	if c.Limits.PerStrategyTimeout <= 0 {
		return fmt.Errorf("limits.per_strategy_timeout must be positive, got %v", c.Limits.PerStrategyTimeout)
	}
	if c.Limits.MaxConcurrentCandidates < 1 {
		return fmt.Errorf("limits.max_concurrent_candidates must be positive, got %d", c.Limits.MaxConcurrentCandidates)
	}
	if c.Limits.DefaultTopK < 1 {
		return fmt.Errorf("limits.default_top_k must be positive, got %d", c.Limits.DefaultTopK)
	}
	if c.Limits.MaxTopK < c.Limits.DefaultTopK {
		return fmt.Errorf("limits.max_top_k (%d) must be >= limits.default_top_k (%d)",
			c.Limits.MaxTopK, c.Limits.DefaultTopK)
	}
	if c.Limits.DefaultMinScore < 0 || c.Limits.DefaultMinScore >= 1 {
		return fmt.Errorf("limits.default_min_score must be in [0,1), got %f", c.Limits.DefaultMinScore)
	}
	if c.Limits.MaxCandidates < 0 {
		return fmt.Errorf("limits.max_candidates must not be negative, got %d", c.Limits.MaxCandidates)
	}
	return nil
}

// Clone returns a deep copy, safe to mutate independently.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// MarshalJSON renders durations as strings so serialized configs stay
// human-readable.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		Limits struct {
			PerStrategyTimeout      string  `json:"per_strategy_timeout"`
			MaxConcurrentCandidates int     `json:"max_concurrent_candidates"`
			DefaultTopK             int     `json:"default_top_k"`
			MaxTopK                 int     `json:"max_top_k"`
			DefaultMinScore         float64 `json:"default_min_score"`
			MaxCandidates           int     `json:"max_candidates"`
		} `json:"limits"`
	}{
		Alias: (*Alias)(c),
		Limits: struct {
			PerStrategyTimeout      string  `json:"per_strategy_timeout"`
			MaxConcurrentCandidates int     `json:"max_concurrent_candidates"`
			DefaultTopK             int     `json:"default_top_k"`
			MaxTopK                 int     `json:"max_top_k"`
			DefaultMinScore         float64 `json:"default_min_score"`
			MaxCandidates           int     `json:"max_candidates"`
		}{
			PerStrategyTimeout:      c.Limits.PerStrategyTimeout.String(),
			MaxConcurrentCandidates: c.Limits.MaxConcurrentCandidates,
			DefaultTopK:             c.Limits.DefaultTopK,
			MaxTopK:                 c.Limits.MaxTopK,
			DefaultMinScore:         c.Limits.DefaultMinScore,
			MaxCandidates:           c.Limits.MaxCandidates,
		},
	})
}
