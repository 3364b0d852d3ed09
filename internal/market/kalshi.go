// Package market implements the synthetic market layers: a prediction-market
// style probability model and a sharp bookmaker odds model.
package market

import (
	"fmt"
	"math"

	"github.com/yourusername/magajico/internal/models"
)

const (
	homeDepthWeight = 0.8
	awayDepthWeight = 0.6
	liquidityScale  = 1.2
	newsFormWeight  = 0.1
	newsGoalsWeight = 0.05
	baseDraw        = 0.33
	drawFormPenalty = 0.2
	minSideProb     = 0.1
	maxSideProb     = 0.8
	minDrawProb     = 0.15
	maxDrawProb     = 0.4
)

// KalshiModel derives a market-implied distribution from form and goal statistics
type KalshiModel struct{}

// NewKalshiModel creates the market probability model
func NewKalshiModel() *KalshiModel {
	return &KalshiModel{}
}

// MarketProbability returns the normalized market distribution for f.
// Only the first seven features are read.
func (m *KalshiModel) MarketProbability(f []float64) (models.Distribution, error) {
	if err := requireRaw(f); err != nil {
		return models.Distribution{}, err
	}

	homeForm, awayForm := f[models.FeatureHomeForm], f[models.FeatureAwayForm]
	depth := math.Min(1, homeForm*homeDepthWeight+awayForm*awayDepthWeight)
	news := newsImpact(f)

	dist := models.Distribution{
		models.Home: models.Clamp(homeForm*0.4+depth*0.3+news*0.1, minSideProb, maxSideProb),
		models.Draw: models.Clamp(baseDraw-math.Abs(homeForm-awayForm)*drawFormPenalty, minDrawProb, maxDrawProb),
		models.Away: models.Clamp(awayForm*0.4+(1-depth)*0.3-news*0.05, minSideProb, maxSideProb),
	}
	return dist.Normalize()
}

// LiquidityFactor scales the mean goal statistics; reported, not used in scoring
func (m *KalshiModel) LiquidityFactor(f []float64) float64 {
	if len(f) < models.RawFeatureCount {
		return 0
	}
	return models.Mean(f[models.FeatureHomeGoalsFor:models.RawFeatureCount]) * liquidityScale
}

func newsImpact(f []float64) float64 {
	formDiff := f[models.FeatureHomeForm] - f[models.FeatureAwayForm]
	homeGoals := models.Mean(f[models.FeatureHomeGoalsFor : models.FeatureHomeGoalsAgainst+1])
	awayGoals := models.Mean(f[models.FeatureAwayGoalsFor : models.FeatureAwayGoalsAgainst+1])
	return math.Tanh(formDiff*newsFormWeight + (homeGoals-awayGoals)*newsGoalsWeight)
}

func requireRaw(f []float64) error {
	if len(f) < models.RawFeatureCount {
		return fmt.Errorf("%w: market models need at least %d features, got %d", models.ErrValidation, models.RawFeatureCount, len(f))
	}
	for i, v := range f[:models.RawFeatureCount] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: feature %s is not finite", models.ErrValidation, models.FeatureNames[i])
		}
	}
	return nil
}
