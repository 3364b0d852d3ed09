package ensemble

import (
	"math"
	"math/rand"

	"github.com/yourusername/magajico/internal/models"
)

// Synthetic training defaults
const (
	DefaultSyntheticSamples = 2000
	DefaultSyntheticSeed    = 42
)

const (
	closeMatchMargin = 0.25
	baseDrawChance   = 0.4
	homeAdvantage    = 0.1
)

// GenerateSynthetic produces n labelled enhanced feature rows.
// Features are uniform on [0,1) with form/goal and weather/goal correlations;
// labels follow a home/away strength model with draws concentrated in close matches.
func GenerateSynthetic(n int, rng *rand.Rand) ([][]float64, []int) {
	X := make([][]float64, n)
	for i := range X {
		row := make([]float64, models.EnhancedFeatureCount)
		for j := range row {
			row[j] = rng.Float64()
		}

		if row[models.FeatureHomeForm] > 0.7 {
			row[models.FeatureHomeGoalsFor] = math.Min(1, row[models.FeatureHomeGoalsFor]+0.2)
			row[models.FeatureHomeGoalsAgainst] = math.Max(0, row[models.FeatureHomeGoalsAgainst]-0.15)
		}
		if row[models.FeatureWeather] < 0.3 {
			row[models.FeatureHomeGoalsFor] *= 0.9
			row[models.FeatureAwayGoalsFor] *= 0.9
		}
		X[i] = row
	}

	y := make([]int, n)
	for i, f := range X {
		y[i] = int(syntheticLabel(f, rng))
	}
	return X, y
}

func syntheticLabel(f []float64, rng *rand.Rand) models.Outcome {
	home := f[models.FeatureHomeForm]*0.3 +
		f[models.FeatureHomeGoalsFor]/math.Max(f[models.FeatureHomeGoalsAgainst], 0.1)*0.2 +
		f[models.FeatureHomeXG]*0.15 +
		f[models.FeatureMotivation]*0.1 +
		homeAdvantage
	away := f[models.FeatureAwayForm]*0.3 +
		f[models.FeatureAwayGoalsFor]/math.Max(f[models.FeatureAwayGoalsAgainst], 0.1)*0.2 +
		f[models.FeatureAwayXG]*0.15 +
		f[models.FeatureMotivation]*0.05

	home *= 1 - f[models.FeatureInjuryImpact]*0.1
	away *= 1 - f[models.FeatureInjuryImpact]*0.15

	diff := home - away
	switch {
	case diff > closeMatchMargin:
		return models.Home
	case diff < -closeMatchMargin:
		return models.Away
	}

	if rng.Float64() < baseDrawChance-math.Abs(diff)*0.5 {
		return models.Draw
	}
	if diff > 0 {
		return models.Home
	}
	return models.Away
}
