// Package features derives the enhanced feature vector from raw fixture statistics.
package features

import (
	"math/rand"
	"sync"

	"github.com/yourusername/magajico/internal/models"
)

// Expected values used in deterministic mode
const (
	expectedWeather = 0.6
	expectedInjury  = 0.15
)

const (
	xgGoalsFactor    = 0.8
	xgNoiseStdDev    = 0.1
	weatherMin       = 0.2
	weatherMax       = 1.0
	injuryMax        = 0.3
	h2hMotivation    = 0.5
	motivationScaler = 1.5
)

// Expander turns a raw 7-value vector into the 12-value enhanced vector.
// Safe for concurrent use.
type Expander struct {
	mu            sync.Mutex
	rng           *rand.Rand
	deterministic bool
}

// NewExpander creates an expander drawing noise from rng.
// When deterministic is true the expected value of each random term is used instead.
func NewExpander(rng *rand.Rand, deterministic bool) *Expander {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Expander{rng: rng, deterministic: deterministic}
}

// NewSeededExpander creates an expander with its own seeded source
func NewSeededExpander(seed int64, deterministic bool) *Expander {
	return NewExpander(rand.New(rand.NewSource(seed)), deterministic)
}

// Deterministic reports whether the expander samples noise
func (e *Expander) Deterministic() bool {
	return e.deterministic
}

// Expand validates raw and returns the enhanced vector
func (e *Expander) Expand(raw []float64) (models.EnhancedFeatureVector, error) {
	if err := models.FeatureVector(raw).Validate(); err != nil {
		return nil, err
	}

	homeNoise, awayNoise, weather, injury := e.sample()

	out := make(models.EnhancedFeatureVector, models.EnhancedFeatureCount)
	copy(out, raw)
	out[models.FeatureHomeXG] = raw[models.FeatureHomeGoalsFor]*xgGoalsFactor + homeNoise
	out[models.FeatureAwayXG] = raw[models.FeatureAwayGoalsFor]*xgGoalsFactor + awayNoise
	out[models.FeatureWeather] = weather
	out[models.FeatureInjuryImpact] = injury
	out[models.FeatureMotivation] = (raw[models.FeatureHomeForm] + raw[models.FeatureH2HRatio]*h2hMotivation) / motivationScaler

	return out, nil
}

// sample draws the four random terms under the lock
func (e *Expander) sample() (homeNoise, awayNoise, weather, injury float64) {
	if e.deterministic {
		return 0, 0, expectedWeather, expectedInjury
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	homeNoise = e.rng.NormFloat64() * xgNoiseStdDev
	awayNoise = e.rng.NormFloat64() * xgNoiseStdDev
	weather = weatherMin + e.rng.Float64()*(weatherMax-weatherMin)
	injury = e.rng.Float64() * injuryMax
	return homeNoise, awayNoise, weather, injury
}
