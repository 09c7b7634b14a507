// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"errors"
	"math"
	"testing"
)

const floatTolerance = 1e-9

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func mustExtractor(t *testing.T, profile string) *Extractor {
	t.Helper()
	e, err := NewExtractor(profile)
	if err != nil {
		t.Fatalf("NewExtractor(%q) error = %v, want nil", profile, err)
	}
	return e
}

// pointAtKm returns a coordinate approximately km north of origin.
// Pure latitude offsets make haversine collapse to R*dLat, so the
// distance error is a few meters at most.
func pointAtKm(origin GeoPoint, km float64) GeoPoint {
	const kmPerDegreeLat = earthRadiusKm * math.Pi / 180
	return GeoPoint{Lat: origin.Lat + km/kmPerDegreeLat, Lng: origin.Lng}
}

// --- Test: haversineKm ---

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	tokyoStation := GeoPoint{Lat: 35.6812, Lng: 139.7671}
	osakaStation := GeoPoint{Lat: 34.7025, Lng: 135.4959}

	tests := []struct {
		name      string
		a, b      GeoPoint
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "zero distance",
			a:         tokyoStation,
			b:         tokyoStation,
			wantKm:    0,
			tolerance: 1e-9,
		},
		{
			name:      "tokyo to osaka",
			a:         tokyoStation,
			b:         osakaStation,
			wantKm:    403.0,
			tolerance: 2.0,
		},
		{
			name:      "one degree of latitude",
			a:         GeoPoint{Lat: 0, Lng: 0},
			b:         GeoPoint{Lat: 1, Lng: 0},
			wantKm:    111.195,
			tolerance: 0.01,
		},
		{
			name:      "symmetric",
			a:         osakaStation,
			b:         tokyoStation,
			wantKm:    403.0,
			tolerance: 2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := haversineKm(tt.a, tt.b)
			if !almostEqual(got, tt.wantKm, tt.tolerance) {
				t.Errorf("haversineKm() = %v, want %v within %v", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

// --- Test: distance bands ---

func TestBandForDistance(t *testing.T) {
	t.Parallel()

	canonical := mustExtractor(t, BandProfileCanonical)
	legacy := mustExtractor(t, BandProfileLegacy)

	tests := []struct {
		name       string
		extractor  *Extractor
		distanceKm float64
		want       float64
	}{
		{"canonical at zero", canonical, 0, 1.0},
		{"canonical boundary 5.0 inclusive", canonical, 5.0, 1.0},
		{"canonical 7km", canonical, 7, 0.8},
		{"canonical boundary 10.0 inclusive", canonical, 10.0, 0.8},
		{"canonical 15km", canonical, 15, 0.6},
		{"canonical 30km", canonical, 30, 0.45},
		{"canonical 70km", canonical, 70, 0.3},
		{"canonical 150km", canonical, 150, 0.15},
		{"canonical beyond 200km", canonical, 200.1, 0.1},
		{"canonical extreme distance", canonical, 15000, 0.1},
		{"legacy 30km", legacy, 30, 0.4},
		{"legacy 70km", legacy, 70, 0.2},
		{"legacy beyond 100km", legacy, 150, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.extractor.bandForDistance(tt.distanceKm)
			if got != tt.want {
				t.Errorf("bandForDistance(%v) = %v, want %v", tt.distanceKm, got, tt.want)
			}
		})
	}
}

func TestLocationScoreThroughExtract(t *testing.T) {
	t.Parallel()

	e := mustExtractor(t, BandProfileCanonical)
	origin := GeoPoint{Lat: 35.0, Lng: 139.0}

	tests := []struct {
		name   string
		km     float64
		want   float64
	}{
		{"3km same neighborhood", 3, 1.0},
		{"7km nearby", 7, 0.8},
		{"300km travel job", 300, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			loc := pointAtKm(origin, tt.km)
			fs := e.Extract(
				Request{Location: &origin},
				Candidate{ID: "c1", Location: &loc},
			)
			if fs.Location != tt.want {
				t.Errorf("Location = %v, want %v (distance %v)", fs.Location, tt.want, fs.DistanceKm)
			}
			if !fs.Measured.Location {
				t.Error("Measured.Location = false, want true")
			}
			if !almostEqual(fs.DistanceKm, tt.km, 0.05) {
				t.Errorf("DistanceKm = %v, want ~%v", fs.DistanceKm, tt.km)
			}
		})
	}
}

// --- Test: price bands ---

func TestBandForRatio(t *testing.T) {
	t.Parallel()

	e := mustExtractor(t, BandProfileCanonical)

	tests := []struct {
		name  string
		ratio float64
		want  float64
	}{
		{"generous headroom", 2.0, 1.0},
		{"boundary 1.5 inclusive", 1.5, 1.0},
		{"boundary 1.2 inclusive", 1.2, 0.9},
		{"within budget", 1.1, 0.8},
		{"boundary 1.0 inclusive", 1.0, 0.8},
		{"slightly over", 0.95, 0.6},
		{"boundary 0.9 inclusive", 0.9, 0.6},
		{"stretch", 0.8, 0.4},
		{"boundary 0.75 inclusive", 0.75, 0.4},
		{"double the budget", 0.5, 0.2},
		{"out of reach", 0.49, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := e.bandForRatio(tt.ratio)
			if got != tt.want {
				t.Errorf("bandForRatio(%v) = %v, want %v", tt.ratio, got, tt.want)
			}
		})
	}
}

func TestPriceScoreThroughExtract(t *testing.T) {
	t.Parallel()

	e := mustExtractor(t, BandProfileCanonical)

	tests := []struct {
		name      string
		budgetYen int64
		priceYen  int64
		wantScore float64
		wantRatio float64
	}{
		{"affordable", 40000, 35000, 0.8, 40000.0 / 35000.0},
		{"twice the budget", 40000, 80000, 0.2, 0.5},
		{"well under budget", 60000, 30000, 1.0, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := e.Extract(
				Request{BudgetYen: tt.budgetYen},
				Candidate{ID: "c1", BasePriceYen: tt.priceYen},
			)
			if fs.Price != tt.wantScore {
				t.Errorf("Price = %v, want %v", fs.Price, tt.wantScore)
			}
			if !almostEqual(fs.PriceRatio, tt.wantRatio, floatTolerance) {
				t.Errorf("PriceRatio = %v, want %v", fs.PriceRatio, tt.wantRatio)
			}
			if !fs.Measured.Price {
				t.Error("Measured.Price = false, want true")
			}
		})
	}
}

// --- Test: design similarity ---

func TestDesignScore(t *testing.T) {
	t.Parallel()

	e := mustExtractor(t, BandProfileCanonical)

	tests := []struct {
		name         string
		req          Request
		cand         Candidate
		wantScore    float64
		wantMeasured bool
	}{
		{
			name:         "primary style match, no palettes",
			req:          Request{Style: "french"},
			cand:         Candidate{ID: "c", PrimaryStyle: "french"},
			wantScore:    0.6*1.0 + 0.4*0.5,
			wantMeasured: true,
		},
		{
			name:         "partial share of requested style",
			req:          Request{Style: "gradient"},
			cand:         Candidate{ID: "c", PrimaryStyle: "french", StyleShares: map[string]float64{"gradient": 0.5}},
			wantScore:    0.6*(0.6*0.5) + 0.4*0.5,
			wantMeasured: true,
		},
		{
			name:         "style absent from portfolio",
			req:          Request{Style: "chrome"},
			cand:         Candidate{ID: "c", PrimaryStyle: "french", StyleShares: map[string]float64{"gradient": 0.5}},
			wantScore:    0.6*0 + 0.4*0.5,
			wantMeasured: true,
		},
		{
			name:         "identical palettes, matching style",
			req:          Request{Style: "french", Palette: &RGB{R: 200, G: 100, B: 50}},
			cand:         Candidate{ID: "c", PrimaryStyle: "french", Palette: &RGB{R: 200, G: 100, B: 50}},
			wantScore:    1.0,
			wantMeasured: true,
		},
		{
			name:         "opposite palettes, matching style",
			req:          Request{Style: "french", Palette: &RGB{R: 0, G: 0, B: 0}},
			cand:         Candidate{ID: "c", PrimaryStyle: "french", Palette: &RGB{R: 255, G: 255, B: 255}},
			wantScore:    0.6 * 1.0,
			wantMeasured: true,
		},
		{
			name:         "nothing to compare",
			req:          Request{},
			cand:         Candidate{ID: "c"},
			wantScore:    neutralScore,
			wantMeasured: false,
		},
		{
			name:         "palette only",
			req:          Request{Palette: &RGB{R: 10, G: 10, B: 10}},
			cand:         Candidate{ID: "c", Palette: &RGB{R: 10, G: 10, B: 10}},
			wantScore:    0.6*0.5 + 0.4*1.0,
			wantMeasured: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := e.Extract(tt.req, tt.cand)
			if !almostEqual(fs.Design, tt.wantScore, floatTolerance) {
				t.Errorf("Design = %v, want %v", fs.Design, tt.wantScore)
			}
			if fs.Measured.Design != tt.wantMeasured {
				t.Errorf("Measured.Design = %v, want %v", fs.Measured.Design, tt.wantMeasured)
			}
		})
	}
}

// --- Test: experience composite ---

func TestExperienceScore(t *testing.T) {
	t.Parallel()

	e := mustExtractor(t, BandProfileCanonical)

	tests := []struct {
		name         string
		cand         Candidate
		wantScore    float64
		wantMeasured bool
	}{
		{
			name: "established artist, partial signals",
			cand: Candidate{ID: "a", Rating: 4.8, ReviewCount: 90},
			// tenure and completion unknown contribute neutral 0.5
			wantScore:    0.30*0.5 + 0.35*(4.8/5.0) + 0.20*0.9 + 0.15*0.5,
			wantMeasured: true,
		},
		{
			name: "newcomer with stellar rating",
			cand: Candidate{ID: "b", Rating: 4.9, ReviewCount: 10},
			wantScore:    0.30*0.5 + 0.35*(4.9/5.0) + 0.20*0.1 + 0.15*0.5,
			wantMeasured: true,
		},
		{
			name: "full history",
			cand: Candidate{ID: "c", YearsActive: 12, Rating: 4.0, ReviewCount: 250, CompletionRate: 0.98},
			wantScore:    0.30*1.0 + 0.35*0.8 + 0.20*1.0 + 0.15*0.98,
			wantMeasured: true,
		},
		{
			name:         "nothing known",
			cand:         Candidate{ID: "d"},
			wantScore:    neutralScore,
			wantMeasured: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fs := e.Extract(Request{}, tt.cand)
			if !almostEqual(fs.Experience, tt.wantScore, floatTolerance) {
				t.Errorf("Experience = %v, want %v", fs.Experience, tt.wantScore)
			}
			if fs.Measured.Experience != tt.wantMeasured {
				t.Errorf("Measured.Experience = %v, want %v", fs.Measured.Experience, tt.wantMeasured)
			}
		})
	}
}

// --- Test: neutral defaults ---

func TestExtractNeutralDefaults(t *testing.T) {
	t.Parallel()

	e := mustExtractor(t, BandProfileCanonical)
	fs := e.Extract(Request{}, Candidate{ID: "empty"})

	if fs.Design != neutralScore || fs.Location != neutralScore ||
		fs.Price != neutralScore || fs.Experience != neutralScore {
		t.Errorf("components = %v, want all %v", fs.Components(), neutralScore)
	}
	if fs.Measured.Design || fs.Measured.Location || fs.Measured.Price || fs.Measured.Experience {
		t.Errorf("Measured = %+v, want all false", fs.Measured)
	}
	if fs.DistanceKm != -1 {
		t.Errorf("DistanceKm = %v, want -1", fs.DistanceKm)
	}
	if fs.PriceRatio != 0 {
		t.Errorf("PriceRatio = %v, want 0", fs.PriceRatio)
	}
	if fs.Affect.Measured {
		t.Error("Affect.Measured = true, want false for zero reviews")
	}
}

// --- Test: affect signals ---

func TestAffectSignals(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cand Candidate
		want AffectSignals
	}{
		{
			name: "reviewed artist",
			cand: Candidate{ID: "a", Rating: 4.0, ReviewCount: 50, Sentiment: 0.5, CompletionRate: 0.9},
			want: AffectSignals{Rating: 0.8, Volume: 0.5, Sentiment: 0.75, Completion: 0.9, Measured: true},
		},
		{
			name: "no reviews",
			cand: Candidate{ID: "b", Rating: 5.0},
			want: AffectSignals{Rating: 0.5, Volume: 0, Sentiment: 0.5, Completion: 0.5, Measured: false},
		},
		{
			name: "negative sentiment",
			cand: Candidate{ID: "c", Rating: 2.0, ReviewCount: 20, Sentiment: -1},
			want: AffectSignals{Rating: 0.4, Volume: 0.2, Sentiment: 0, Completion: 0.5, Measured: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := affectSignals(tt.cand)
			if !almostEqual(got.Rating, tt.want.Rating, floatTolerance) ||
				!almostEqual(got.Volume, tt.want.Volume, floatTolerance) ||
				!almostEqual(got.Sentiment, tt.want.Sentiment, floatTolerance) ||
				!almostEqual(got.Completion, tt.want.Completion, floatTolerance) ||
				got.Measured != tt.want.Measured {
				t.Errorf("affectSignals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// --- Test: validation ---

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantErr bool
	}{
		{"empty request is fine", Request{}, false},
		{"complete request", Request{Style: "french", BudgetYen: 40000, Location: &GeoPoint{Lat: 35, Lng: 139}}, false},
		{"NaN latitude", Request{Location: &GeoPoint{Lat: math.NaN(), Lng: 139}}, true},
		{"infinite longitude", Request{Location: &GeoPoint{Lat: 35, Lng: math.Inf(1)}}, true},
		{"latitude out of range", Request{Location: &GeoPoint{Lat: 91, Lng: 0}}, true},
		{"longitude out of range", Request{Location: &GeoPoint{Lat: 0, Lng: -181}}, true},
		{"negative budget", Request{BudgetYen: -1}, true},
		{"complexity above one", Request{Complexity: 1.5}, true},
		{"palette channel out of range", Request{Palette: &RGB{R: 300}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v does not match ErrInvalidInput", err)
			}
		})
	}
}

func TestValidateCandidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cand    Candidate
		wantErr bool
	}{
		{"minimal candidate", Candidate{ID: "a"}, false},
		{"complete candidate", Candidate{
			ID: "a", PrimaryStyle: "french", BasePriceYen: 30000,
			Location: &GeoPoint{Lat: 35, Lng: 139}, YearsActive: 5,
			Rating: 4.5, ReviewCount: 10, CompletionRate: 0.95, Sentiment: 0.3,
		}, false},
		{"missing id", Candidate{}, true},
		{"NaN latitude", Candidate{ID: "a", Location: &GeoPoint{Lat: math.NaN(), Lng: 0}}, true},
		{"negative price", Candidate{ID: "a", BasePriceYen: -100}, true},
		{"rating above five", Candidate{ID: "a", Rating: 5.5}, true},
		{"negative review count", Candidate{ID: "a", ReviewCount: -1}, true},
		{"completion above one", Candidate{ID: "a", CompletionRate: 1.1}, true},
		{"sentiment below minus one", Candidate{ID: "a", Sentiment: -1.5}, true},
		{"infinite years active", Candidate{ID: "a", YearsActive: math.Inf(1)}, true},
		{"style share above one", Candidate{ID: "a", StyleShares: map[string]float64{"french": 1.2}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateCandidate(tt.cand)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCandidate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v does not match ErrInvalidInput", err)
			}
		})
	}
}

// --- Test: extractor construction ---

func TestNewExtractor(t *testing.T) {
	t.Parallel()

	if _, err := NewExtractor(""); err != nil {
		t.Errorf("NewExtractor(\"\") error = %v, want nil (canonical default)", err)
	}
	if _, err := NewExtractor("no-such-profile"); err == nil {
		t.Error("NewExtractor(unknown) error = nil, want error")
	}
}

// --- Test: purity ---

func TestExtractDeterministic(t *testing.T) {
	t.Parallel()

	e := mustExtractor(t, BandProfileCanonical)
	req := Request{
		Style:     "gradient",
		Palette:   &RGB{R: 180, G: 60, B: 90},
		BudgetYen: 40000,
		Location:  &GeoPoint{Lat: 35.0, Lng: 139.0},
	}
	cand := Candidate{
		ID:           "artist-1",
		PrimaryStyle: "gradient",
		StyleShares:  map[string]float64{"gradient": 0.7, "french": 0.3},
		Palette:      &RGB{R: 170, G: 70, B: 80},
		BasePriceYen: 35000,
		Location:     &GeoPoint{Lat: 35.02, Lng: 139.01},
		Rating:       4.6,
		ReviewCount:  42,
	}

	first := e.Extract(req, cand)
	for i := 0; i < 10; i++ {
		if got := e.Extract(req, cand); got != first {
			t.Fatalf("Extract() run %d = %+v, want %+v", i, got, first)
		}
	}
}
