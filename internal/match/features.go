// Artifex - Artist Matching and Consensus Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/artifex

package match

import (
	"fmt"
	"math"
)

// neutralScore is substituted for any component whose inputs are missing.
// Missing data must never read as a bad match (0) or a perfect one (1).
const neutralScore = 0.5

// Design similarity blend. Style category carries more weight than the
// palette term because customers pick artists by style first.
const (
	designStyleWeight   = 0.6
	designPaletteWeight = 0.4

	// partialStyleCredit discounts a non-primary portfolio share when the
	// requested category is present but not the candidate's main style.
	partialStyleCredit = 0.6

	// maxPaletteDistance is the Euclidean diagonal of the RGB cube,
	// sqrt(3 * 255^2).
	maxPaletteDistance = 441.6729559300637
)

// Experience composite weights. Tenure and review volume are capped so a
// long tail of history cannot dominate rating quality.
const (
	experienceTenureWeight     = 0.30
	experienceRatingWeight     = 0.35
	experienceVolumeWeight     = 0.20
	experienceCompletionWeight = 0.15

	tenureCapYears = 10.0
	reviewCapCount = 100.0
	maxRating      = 5.0
)

// DistanceBand maps a great-circle distance ceiling to a score. Bands are
// policy, reviewed with product, and must stay table-driven so boundary
// behavior is auditable.
type DistanceBand struct {
	// MaxKm is the inclusive upper bound of this band in kilometers.
	MaxKm float64 `json:"max_km"`
	// Score is the location score for distances within the band.
	Score float64 `json:"score"`
}

// PriceBand maps a budget/price ratio floor to a score. A higher ratio
// means the candidate is more affordable for this customer.
type PriceBand struct {
	// MinRatio is the inclusive lower bound of this band.
	MinRatio float64 `json:"min_ratio"`
	// Score is the price score for ratios within the band.
	Score float64 `json:"score"`
}

// Band profiles selectable via Config.Bands.Profile.
const (
	// BandProfileCanonical is the current product policy.
	BandProfileCanonical = "canonical"
	// BandProfileLegacy preserves the breakpoints used by the earlier
	// matching rollout, kept selectable for A/B comparison.
	BandProfileLegacy = "legacy"
)

// canonicalDistanceBands: ≤5km is a same-neighborhood match; beyond 200km
// a booking is practically a travel job.
var canonicalDistanceBands = []DistanceBand{
	{MaxKm: 5, Score: 1.0},
	{MaxKm: 10, Score: 0.8},
	{MaxKm: 20, Score: 0.6},
	{MaxKm: 50, Score: 0.45},
	{MaxKm: 100, Score: 0.3},
	{MaxKm: 200, Score: 0.15},
}

var legacyDistanceBands = []DistanceBand{
	{MaxKm: 5, Score: 1.0},
	{MaxKm: 10, Score: 0.8},
	{MaxKm: 20, Score: 0.6},
	{MaxKm: 50, Score: 0.4},
	{MaxKm: 100, Score: 0.2},
}

// distanceFallbackScore applies beyond the last band in both profiles.
const distanceFallbackScore = 0.1

// defaultPriceBands: ratio = budget / base price. At 1.5x budget headroom
// price is a non-issue; below 0.5x the candidate is out of reach.
var defaultPriceBands = []PriceBand{
	{MinRatio: 1.5, Score: 1.0},
	{MinRatio: 1.2, Score: 0.9},
	{MinRatio: 1.0, Score: 0.8},
	{MinRatio: 0.9, Score: 0.6},
	{MinRatio: 0.75, Score: 0.4},
	{MinRatio: 0.5, Score: 0.2},
}

const priceFallbackScore = 0.05

// Extractor derives FeatureSets from (Request, Candidate) pairs. It is
// pure and total: it never fails, performs no I/O, and substitutes
// neutral defaults for missing inputs. Safe for concurrent use.
type Extractor struct {
	distanceBands []DistanceBand
	priceBands    []PriceBand
}

// NewExtractor builds an extractor for the given band profile.
func NewExtractor(profile string) (*Extractor, error) {
	switch profile {
	case "", BandProfileCanonical:
		return &Extractor{distanceBands: canonicalDistanceBands, priceBands: defaultPriceBands}, nil
	case BandProfileLegacy:
		return &Extractor{distanceBands: legacyDistanceBands, priceBands: defaultPriceBands}, nil
	default:
		return nil, fmt.Errorf("unknown band profile %q", profile)
	}
}

// Extract computes the normalized FeatureSet for one pair. Inputs must
// already have passed validation; Extract itself never rejects.
func (e *Extractor) Extract(req Request, cand Candidate) FeatureSet {
	fs := FeatureSet{
		DistanceKm: -1,
		PriceRatio: 0,
	}

	fs.Design, fs.Measured.Design = e.designScore(req, cand)
	fs.Location, fs.DistanceKm, fs.Measured.Location = e.locationScore(req, cand)
	fs.Price, fs.PriceRatio, fs.Measured.Price = e.priceScore(req, cand)
	fs.Experience, fs.Measured.Experience = e.experienceScore(cand)
	fs.Affect = affectSignals(cand)

	return fs
}

// designScore blends categorical style affinity with palette closeness.
// Either term falls back to neutral when its inputs are missing; the
// component is unmeasured only when both are.
func (e *Extractor) designScore(req Request, cand Candidate) (float64, bool) {
	styleScore, styleKnown := styleAffinity(req, cand)
	paletteScore, paletteKnown := paletteSimilarity(req.Palette, cand.Palette)

	if !styleKnown && !paletteKnown {
		return neutralScore, false
	}
	if !styleKnown {
		styleScore = neutralScore
	}
	if !paletteKnown {
		paletteScore = neutralScore
	}
	score := designStyleWeight*styleScore + designPaletteWeight*paletteScore
	return clamp01(score), true
}

func styleAffinity(req Request, cand Candidate) (float64, bool) {
	if req.Style == "" {
		return 0, false
	}
	if cand.PrimaryStyle == "" && len(cand.StyleShares) == 0 {
		return 0, false
	}
	if cand.PrimaryStyle == req.Style {
		return 1.0, true
	}
	share := cand.StyleShares[req.Style]
	return clamp01(partialStyleCredit * share), true
}

func paletteSimilarity(a, b *RGB) (float64, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	dr := a.R - b.R
	dg := a.G - b.G
	db := a.B - b.B
	dist := math.Sqrt(dr*dr + dg*dg + db*db)
	return clamp01(1 - dist/maxPaletteDistance), true
}

// locationScore maps great-circle distance onto the configured band
// table.
func (e *Extractor) locationScore(req Request, cand Candidate) (score, distanceKm float64, measured bool) {
	if req.Location == nil || cand.Location == nil {
		return neutralScore, -1, false
	}
	d := haversineKm(*req.Location, *cand.Location)
	return e.bandForDistance(d), d, true
}

// bandForDistance resolves the location score for a distance. Band
// bounds are inclusive: exactly 5.0 km still scores the ≤5 km band.
func (e *Extractor) bandForDistance(distanceKm float64) float64 {
	for _, band := range e.distanceBands {
		if distanceKm <= band.MaxKm {
			return band.Score
		}
	}
	return distanceFallbackScore
}

// priceScore maps budget/price onto the band table.
func (e *Extractor) priceScore(req Request, cand Candidate) (score, ratio float64, measured bool) {
	if req.BudgetYen <= 0 || cand.BasePriceYen <= 0 {
		return neutralScore, 0, false
	}
	ratio = float64(req.BudgetYen) / float64(cand.BasePriceYen)
	return e.bandForRatio(ratio), ratio, true
}

// bandForRatio resolves the price score for a budget/price ratio. Bands
// are a step function on purpose: exact boundary behavior is part of the
// product contract and must stay testable.
func (e *Extractor) bandForRatio(ratio float64) float64 {
	for _, band := range e.priceBands {
		if ratio >= band.MinRatio {
			return band.Score
		}
	}
	return priceFallbackScore
}

// experienceScore combines capped tenure, normalized rating, capped
// review volume and completion rate. Unknown sub-signals contribute
// their neutral value; the component is unmeasured only when every
// sub-signal is unknown.
func (e *Extractor) experienceScore(cand Candidate) (float64, bool) {
	tenure, tenureKnown := cappedRatio(cand.YearsActive, tenureCapYears)
	rating, ratingKnown := cappedRatio(cand.Rating, maxRating)
	volume, volumeKnown := cappedRatio(float64(cand.ReviewCount), reviewCapCount)
	completion, completionKnown := knownRate(cand.CompletionRate)

	if !tenureKnown && !ratingKnown && !volumeKnown && !completionKnown {
		return neutralScore, false
	}
	if !tenureKnown {
		tenure = neutralScore
	}
	if !ratingKnown {
		rating = neutralScore
	}
	if !volumeKnown {
		volume = neutralScore
	}
	if !completionKnown {
		completion = neutralScore
	}

	score := experienceTenureWeight*tenure +
		experienceRatingWeight*rating +
		experienceVolumeWeight*volume +
		experienceCompletionWeight*completion
	return clamp01(score), true
}

func affectSignals(cand Candidate) AffectSignals {
	if cand.ReviewCount <= 0 {
		return AffectSignals{
			Rating:     neutralScore,
			Volume:     0,
			Sentiment:  neutralScore,
			Completion: neutralScore,
			Measured:   false,
		}
	}
	completion := cand.CompletionRate
	if completion <= 0 {
		completion = neutralScore
	}
	return AffectSignals{
		Rating:     clamp01(cand.Rating / maxRating),
		Volume:     clamp01(float64(cand.ReviewCount) / reviewCapCount),
		Sentiment:  clamp01((cand.Sentiment + 1) / 2),
		Completion: clamp01(completion),
		Measured:   true,
	}
}

func cappedRatio(value, limit float64) (float64, bool) {
	if value <= 0 {
		return 0, false
	}
	return clamp01(value / limit), true
}

func knownRate(value float64) (float64, bool) {
	if value <= 0 {
		return 0, false
	}
	return clamp01(value), true
}

// earthRadiusKm is the mean Earth radius used for great-circle math.
const earthRadiusKm = 6371.0

// haversineKm returns the great-circle distance between two coordinates
// in kilometers.
func haversineKm(a, b GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// ValidateRequest rejects malformed request data before any feature
// extraction. Missing fields are fine; present-but-broken fields are not.
// A failure here aborts the whole ranking call.
func ValidateRequest(req Request) error {
	if req.Location != nil {
		if err := validateGeoPoint("request.location", *req.Location); err != nil {
			return err
		}
	}
	if req.BudgetYen < 0 {
		return invalidInput("request.budget_yen", "must not be negative")
	}
	if !finite(req.Complexity) || req.Complexity < 0 || req.Complexity > 1 {
		return invalidInput("request.complexity", "must be finite in [0,1]")
	}
	if req.Palette != nil {
		if err := validateRGB("request.palette", *req.Palette); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCandidate rejects malformed candidate snapshots. A failure is
// local: the candidate is skipped and counted, the batch continues.
func ValidateCandidate(cand Candidate) error {
	if cand.ID == "" {
		return invalidInput("candidate.id", "must not be empty")
	}
	if cand.Location != nil {
		if err := validateGeoPoint("candidate.location", *cand.Location); err != nil {
			return err
		}
	}
	if cand.BasePriceYen < 0 {
		return invalidInput("candidate.base_price_yen", "must not be negative")
	}
	if !finite(cand.Rating) || cand.Rating < 0 || cand.Rating > maxRating {
		return invalidInput("candidate.rating", "must be finite in [0,5]")
	}
	if cand.ReviewCount < 0 {
		return invalidInput("candidate.review_count", "must not be negative")
	}
	if !finite(cand.CompletionRate) || cand.CompletionRate < 0 || cand.CompletionRate > 1 {
		return invalidInput("candidate.completion_rate", "must be finite in [0,1]")
	}
	if !finite(cand.Sentiment) || cand.Sentiment < -1 || cand.Sentiment > 1 {
		return invalidInput("candidate.sentiment", "must be finite in [-1,1]")
	}
	if !finite(cand.YearsActive) || cand.YearsActive < 0 {
		return invalidInput("candidate.years_active", "must be finite and non-negative")
	}
	if cand.Palette != nil {
		if err := validateRGB("candidate.palette", *cand.Palette); err != nil {
			return err
		}
	}
	for style, share := range cand.StyleShares {
		if !finite(share) || share < 0 || share > 1 {
			return invalidInput("candidate.style_shares."+style, "must be finite in [0,1]")
		}
	}
	return nil
}

func validateGeoPoint(field string, p GeoPoint) error {
	if !finite(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		return invalidInput(field+".lat", "must be finite in [-90,90]")
	}
	if !finite(p.Lng) || p.Lng < -180 || p.Lng > 180 {
		return invalidInput(field+".lng", "must be finite in [-180,180]")
	}
	return nil
}

func validateRGB(field string, c RGB) error {
	for _, ch := range []struct {
		name  string
		value float64
	}{{"r", c.R}, {"g", c.G}, {"b", c.B}} {
		if !finite(ch.value) || ch.value < 0 || ch.value > 255 {
			return invalidInput(field+"."+ch.name, "must be finite in [0,255]")
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
