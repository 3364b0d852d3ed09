package models

import (
	"fmt"
	"math"
)

const (
	// RawFeatureCount is the length of a caller-supplied feature vector
	RawFeatureCount = 7

	// EnhancedFeatureCount is the length of an expanded feature vector
	EnhancedFeatureCount = 12

	// MaxFeatureMagnitude bounds every feature value. Features are form ratings,
	// ratios and per-match goal averages; the bound keeps downstream sums finite.
	MaxFeatureMagnitude = 1e6
)

// Positions of the raw and derived features
const (
	FeatureHomeForm = iota
	FeatureAwayForm
	FeatureH2HRatio
	FeatureHomeGoalsFor
	FeatureHomeGoalsAgainst
	FeatureAwayGoalsFor
	FeatureAwayGoalsAgainst
	FeatureHomeXG
	FeatureAwayXG
	FeatureWeather
	FeatureInjuryImpact
	FeatureMotivation
)

// FeatureNames are the column names of the enhanced feature vector
var FeatureNames = []string{
	"home_form", "away_form", "h2h_ratio",
	"home_goals_for", "home_goals_against",
	"away_goals_for", "away_goals_against",
	"home_xg", "away_xg", "weather_factor",
	"injury_impact", "motivation_index",
}

// FeatureVector is the raw 7-value input for a fixture
type FeatureVector []float64

// Validate checks the vector length and that every value is finite and bounded
func (f FeatureVector) Validate() error {
	if len(f) != RawFeatureCount {
		return fmt.Errorf("%w: feature vector must contain exactly %d values, got %d", ErrValidation, RawFeatureCount, len(f))
	}
	return ValidateFeatureValues(f)
}

// ValidateFeatureValues rejects NaN, infinities and values beyond MaxFeatureMagnitude
func ValidateFeatureValues(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %s is not a finite number", ErrValidation, featureName(i))
		}
		if math.Abs(v) > MaxFeatureMagnitude {
			return fmt.Errorf("%w: feature %s magnitude %g exceeds %g", ErrValidation, featureName(i), v, MaxFeatureMagnitude)
		}
	}
	return nil
}

func featureName(i int) string {
	if i < len(FeatureNames) {
		return FeatureNames[i]
	}
	return fmt.Sprintf("#%d", i)
}

// EnhancedFeatureVector is a FeatureVector extended with five derived signals
type EnhancedFeatureVector []float64

// Validate checks the vector length and values
func (f EnhancedFeatureVector) Validate() error {
	if len(f) != EnhancedFeatureCount {
		return fmt.Errorf("%w: enhanced feature vector must contain exactly %d values, got %d", ErrValidation, EnhancedFeatureCount, len(f))
	}
	return ValidateFeatureValues(f)
}

// Raw returns the first seven entries
func (f EnhancedFeatureVector) Raw() []float64 {
	if len(f) < RawFeatureCount {
		return f
	}
	return f[:RawFeatureCount]
}

// Named returns the features keyed by column name
func (f EnhancedFeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, len(f))
	for i, v := range f {
		if i < len(FeatureNames) {
			out[FeatureNames[i]] = v
		}
	}
	return out
}
