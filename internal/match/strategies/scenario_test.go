// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package strategies

import (
	"context"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/artifex/internal/match"
)

// kmPerDegreeLat converts a northward offset in kilometers to degrees on
// the sphere model used by the distance banding.
const kmPerDegreeLat = 6371.0 * 3.141592653589793 / 180.0

func northOf(origin match.GeoPoint, km float64) match.GeoPoint {
	return match.GeoPoint{Lat: origin.Lat + km/kmPerDegreeLat, Lng: origin.Lng}
}

func fullEngine(t *testing.T) *match.Engine {
	t.Helper()
	engine, err := match.NewEngine(nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v, want nil", err)
	}
	for _, s := range []match.Strategy{NewAnalytical(), NewAffective(), NewExploratory()} {
		if err := engine.RegisterStrategy(s); err != nil {
			t.Fatalf("RegisterStrategy(%q) error = %v, want nil", s.Name(), err)
		}
	}
	return engine
}

// --- Test: full pipeline with the production lineup ---

func TestEndToEndRanking(t *testing.T) {
	t.Parallel()

	shinjuku := match.GeoPoint{Lat: 35.6938, Lng: 139.7034}
	req := match.Request{
		ID:        "req-e2e",
		Style:     "floral",
		Palette:   &match.RGB{R: 230, G: 180, B: 200},
		BudgetYen: 40000,
		Location:  &shinjuku,
	}

	near := northOf(shinjuku, 3)
	far := northOf(shinjuku, 47)
	pool := []match.Candidate{
		// Higher headline rating than sakura-ink but thin evidence, far
		// away and over budget.
		{
			ID:             "neon-craft",
			Name:           "Neon Craft Studio",
			PrimaryStyle:   "geometric",
			StyleShares:    map[string]float64{"geometric": 0.8, "floral": 0.2},
			Palette:        &match.RGB{R: 30, G: 200, B: 90},
			BasePriceYen:   80000,
			Location:       &far,
			YearsActive:    2,
			Rating:         4.9,
			ReviewCount:    10,
			CompletionRate: 0.80,
			Sentiment:      0.1,
			PortfolioSize:  10,
		},
		{
			ID:             "sakura-ink",
			Name:           "Sakura Ink Atelier",
			PrimaryStyle:   "floral",
			StyleShares:    map[string]float64{"floral": 0.7, "minimal": 0.3},
			Palette:        &match.RGB{R: 235, G: 175, B: 195},
			BasePriceYen:   35000,
			Location:       &near,
			YearsActive:    7,
			Rating:         4.8,
			ReviewCount:    90,
			CompletionRate: 0.98,
			Sentiment:      0.85,
			PortfolioSize:  40,
		},
	}

	engine := fullEngine(t)
	resp, err := engine.Rank(context.Background(), req, pool, match.Options{})
	if err != nil {
		t.Fatalf("Rank() error = %v, want nil", err)
	}

	if len(resp.Matches) != 2 {
		t.Fatalf("Matches count = %d, want 2", len(resp.Matches))
	}
	if resp.Matches[0].Candidate.ID != "sakura-ink" {
		t.Errorf("top match = %q, want %q", resp.Matches[0].Candidate.ID, "sakura-ink")
	}
	if resp.Matches[1].Candidate.ID != "neon-craft" {
		t.Errorf("second match = %q, want %q", resp.Matches[1].Candidate.ID, "neon-craft")
	}
	if resp.Matches[0].Decision.FinalScore <= resp.Matches[1].Decision.FinalScore {
		t.Errorf("scores = %v vs %v, want the close match strictly ahead",
			resp.Matches[0].Decision.FinalScore, resp.Matches[1].Decision.FinalScore)
	}

	for _, m := range resp.Matches {
		if m.Decision.FinalScore < 0 || m.Decision.FinalScore > 1 {
			t.Errorf("%s FinalScore = %v, want [0,1]", m.Candidate.ID, m.Decision.FinalScore)
		}
		if m.Decision.OverallConfidence <= 0 || m.Decision.OverallConfidence > 1 {
			t.Errorf("%s OverallConfidence = %v, want (0,1]", m.Candidate.ID, m.Decision.OverallConfidence)
		}
		if len(m.Decision.Contributing) != 3 {
			t.Errorf("%s Contributing count = %d, want all three strategies", m.Candidate.ID, len(m.Decision.Contributing))
		}
	}

	wantStrategies := []string{"analytical", "affective", "exploratory"}
	if !reflect.DeepEqual(resp.Metadata.Strategies, wantStrategies) {
		t.Errorf("Metadata.Strategies = %v, want %v", resp.Metadata.Strategies, wantStrategies)
	}
	if resp.Metadata.RequestID != "req-e2e" {
		t.Errorf("Metadata.RequestID = %q, want %q", resp.Metadata.RequestID, "req-e2e")
	}
	if resp.Stats.CandidatesConsidered != 2 || resp.Stats.CandidatesRanked != 2 {
		t.Errorf("Stats = %+v, want considered 2 ranked 2", resp.Stats)
	}
}

// --- Test: explanations for a real decision ---

func TestEndToEndExplain(t *testing.T) {
	t.Parallel()

	tokyo := match.GeoPoint{Lat: 35.6762, Lng: 139.6503}
	near := northOf(tokyo, 4)
	req := match.Request{Style: "minimal", BudgetYen: 30000, Location: &tokyo}
	pool := []match.Candidate{{
		ID:             "atelier-one",
		PrimaryStyle:   "minimal",
		BasePriceYen:   28000,
		Location:       &near,
		YearsActive:    5,
		Rating:         4.5,
		ReviewCount:    60,
		CompletionRate: 0.95,
		Sentiment:      0.6,
	}}

	engine := fullEngine(t)
	resp, err := engine.Rank(context.Background(), req, pool, match.Options{})
	if err != nil {
		t.Fatalf("Rank() error = %v, want nil", err)
	}
	if len(resp.Matches) != 1 {
		t.Fatalf("Matches count = %d, want 1", len(resp.Matches))
	}

	exp := engine.Explain(resp.Matches[0])
	if exp.CandidateID != "atelier-one" {
		t.Errorf("CandidateID = %q, want %q", exp.CandidateID, "atelier-one")
	}
	if len(exp.PerStrategy) != len(resp.Matches[0].Decision.Contributing) {
		t.Fatalf("PerStrategy count = %d, want %d", len(exp.PerStrategy), len(resp.Matches[0].Decision.Contributing))
	}

	var weightSum float64
	for _, p := range exp.PerStrategy {
		if p.Rationale == "" {
			t.Errorf("strategy %q Rationale empty, want the scoring account", p.Strategy)
		}
		weightSum += p.Weight
	}
	if !almostEqual(weightSum, 1.0, 1e-9) {
		t.Errorf("weights sum = %v, want 1.0", weightSum)
	}
}

// --- Test: expression strategies slot into the lineup ---

func TestEndToEndWithExprStrategy(t *testing.T) {
	t.Parallel()

	engine := fullEngine(t)
	tuned, err := NewExpr("price-hawk", "price * 0.8 + design * 0.2", 0.9)
	if err != nil {
		t.Fatalf("NewExpr() error = %v, want nil", err)
	}
	if err := engine.RegisterStrategy(tuned); err != nil {
		t.Fatalf("RegisterStrategy() error = %v, want nil", err)
	}

	req := match.Request{Style: "gradient", BudgetYen: 50000}
	pool := []match.Candidate{
		{ID: "thrifty", PrimaryStyle: "gradient", BasePriceYen: 25000, Rating: 4.0, ReviewCount: 20, YearsActive: 3, CompletionRate: 0.9},
		{ID: "lavish", PrimaryStyle: "gradient", BasePriceYen: 100000, Rating: 4.0, ReviewCount: 20, YearsActive: 3, CompletionRate: 0.9},
	}

	resp, err := engine.Rank(context.Background(), req, pool, match.Options{})
	if err != nil {
		t.Fatalf("Rank() error = %v, want nil", err)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("Matches count = %d, want 2", len(resp.Matches))
	}
	if resp.Matches[0].Candidate.ID != "thrifty" {
		t.Errorf("top match = %q, want %q", resp.Matches[0].Candidate.ID, "thrifty")
	}

	found := false
	for _, c := range resp.Matches[0].Decision.Contributing {
		if c.Strategy == "price-hawk" {
			found = true
		}
	}
	if !found {
		t.Error("price-hawk missing from Contributing, want it to survive the floor")
	}
}
