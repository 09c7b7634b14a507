// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package strategies

import (
	"context"
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/tomtom215/artifex/internal/match"
)

// Expr is a scoring strategy compiled from a CEL (Common Expression
// Language) expression, letting operators ship new scoring ideas through
// configuration alone.
//
// The expression is evaluated per candidate against these variables, all
// doubles:
//
//	design, location, price, experience  - component scores in [0,1]
//	distance_km                          - raw distance, -1 when unknown
//	price_ratio                          - budget/price, 0 when unknown
//	rating, volume, sentiment, completion - affect signals in [0,1]
//
// It must produce a number; results are clamped to [0,1]. Example:
//
//	expression: "design * 0.7 + (1.0 - price) * 0.3"
//
// Compilation happens once at construction; cel.Program is safe for
// concurrent evaluation.
type Expr struct {
	name           string
	expression     string
	baseConfidence float64
	prg            cel.Program
}

// NewExpr compiles expression into a strategy named name. The
// baseConfidence (0,1] applies when every component was measured and
// degrades with the measured fraction, same as the built-ins.
func NewExpr(name, expression string, baseConfidence float64) (*Expr, error) {
	if name == "" {
		return nil, fmt.Errorf("expr strategy name must not be empty")
	}
	if expression == "" {
		return nil, fmt.Errorf("expr strategy %q: expression must not be empty", name)
	}
	if baseConfidence <= 0 || baseConfidence > 1 {
		return nil, fmt.Errorf("expr strategy %q: base confidence must be in (0,1], got %f", name, baseConfidence)
	}

	env, err := cel.NewEnv(
		cel.Variable("design", cel.DoubleType),
		cel.Variable("location", cel.DoubleType),
		cel.Variable("price", cel.DoubleType),
		cel.Variable("experience", cel.DoubleType),
		cel.Variable("distance_km", cel.DoubleType),
		cel.Variable("price_ratio", cel.DoubleType),
		cel.Variable("rating", cel.DoubleType),
		cel.Variable("volume", cel.DoubleType),
		cel.Variable("sentiment", cel.DoubleType),
		cel.Variable("completion", cel.DoubleType),
	)
	if err != nil {
		return nil, fmt.Errorf("expr strategy %q: build env: %w", name, err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("expr strategy %q: compile: %w", name, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("expr strategy %q: program: %w", name, err)
	}

	return &Expr{
		name:           name,
		expression:     expression,
		baseConfidence: baseConfidence,
		prg:            prg,
	}, nil
}

// Name implements match.Strategy.
func (s *Expr) Name() string { return s.name }

// Evaluate implements match.Strategy.
func (s *Expr) Evaluate(ctx context.Context, fs match.FeatureSet) (match.EvaluatorResult, error) {
	if err := ctx.Err(); err != nil {
		return match.EvaluatorResult{}, err
	}

	out, _, err := s.prg.Eval(map[string]any{
		"design":      fs.Design,
		"location":    fs.Location,
		"price":       fs.Price,
		"experience":  fs.Experience,
		"distance_km": fs.DistanceKm,
		"price_ratio": fs.PriceRatio,
		"rating":      fs.Affect.Rating,
		"volume":      fs.Affect.Volume,
		"sentiment":   fs.Affect.Sentiment,
		"completion":  fs.Affect.Completion,
	})
	if err != nil {
		return match.EvaluatorResult{}, fmt.Errorf("expr strategy %q: eval: %w", s.name, err)
	}

	score, err := toFloat(out.Value())
	if err != nil {
		return match.EvaluatorResult{}, fmt.Errorf("expr strategy %q: %w", s.name, err)
	}

	// The engine cannot see which variables the expression reads, so
	// confidence uses the equal-weight measured fraction.
	var measuredCount float64
	if fs.Measured.Design {
		measuredCount++
	}
	if fs.Measured.Location {
		measuredCount++
	}
	if fs.Measured.Price {
		measuredCount++
	}
	if fs.Measured.Experience {
		measuredCount++
	}
	confidence := s.baseConfidence * (measuredCount / 4)

	return match.EvaluatorResult{
		Strategy:   s.name,
		Score:      clamp01(score),
		Confidence: clamp01(confidence),
		Rationale:  fmt.Sprintf("expression %q", s.expression),
	}, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("expression must return a number, got %T", v)
	}
}
