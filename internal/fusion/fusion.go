// Package fusion blends the ensemble, market and sharp distributions and scores the result.
package fusion

import (
	"fmt"
	"math"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

// Result is the fused distribution with its confidence score
type Result struct {
	Probabilities models.Distribution
	Confidence    float64
	Breakdown     models.ConfidenceBreakdown
}

// Fuser combines the three distributions using fixed fusion and confidence weights
type Fuser struct {
	fusion     config.FusionConfig
	confidence config.ConfidenceConfig
}

// NewFuser creates a fuser from the predictor weights
func NewFuser(fusion config.FusionConfig, confidence config.ConfidenceConfig) *Fuser {
	return &Fuser{fusion: fusion, confidence: confidence}
}

// Fuse blends the inputs into the final distribution and computes its confidence
func (f *Fuser) Fuse(ensemble, market models.Distribution, sharp models.SharpOddsResult, enhanced []float64) (Result, error) {
	if len(enhanced) < models.RawFeatureCount {
		return Result{}, fmt.Errorf("%w: fusion needs at least %d features, got %d", models.ErrValidation, models.RawFeatureCount, len(enhanced))
	}

	blended := ensemble.Scale(f.fusion.EnsembleWeight).
		Add(market.Scale(f.fusion.MarketWeight)).
		Add(sharp.Probabilities.Scale(f.fusion.SharpWeight))

	final, err := blended.Normalize()
	if err != nil {
		return Result{}, fmt.Errorf("fuse distributions: %w", err)
	}

	breakdown := Factors(final, []models.Distribution{ensemble, market, sharp.Probabilities}, sharp, enhanced[:models.RawFeatureCount])
	confidence := models.Clamp01(
		f.confidence.BaseWeight*breakdown.Base +
			f.confidence.ConsensusWeight*breakdown.ModelConsensus +
			f.confidence.MarketValidationWeight*breakdown.MarketValidation +
			f.confidence.SharpConfirmationWeight*breakdown.SharpConfirmation +
			f.confidence.FeatureQualityWeight*breakdown.FeatureQuality +
			f.confidence.RiskFactorWeight*breakdown.RiskFactor,
	)

	return Result{
		Probabilities: final,
		Confidence:    confidence,
		Breakdown:     breakdown,
	}, nil
}

// Factors computes the six confidence factors, each clamped to [0,1]
func Factors(final models.Distribution, inputs []models.Distribution, sharp models.SharpOddsResult, raw []float64) models.ConfidenceBreakdown {
	line := math.Abs(sharp.LineMovement)
	return models.ConfidenceBreakdown{
		Base:              models.Clamp01(final.Max()),
		ModelConsensus:    models.Clamp01(1 - 2*inputSpread(inputs)),
		MarketValidation:  models.Clamp01(sharp.SharpConfidence),
		SharpConfirmation: models.Clamp01(math.Min(1, sharp.SharpConfidence+0.5*line)),
		FeatureQuality:    models.Clamp01(0.8*models.Mean(raw) + 0.2*(1-models.StdDev(raw))),
		RiskFactor:        models.Clamp01(1 - 0.5*(final.StdDev()+line)),
	}
}

// inputSpread is the mean over outcomes of the population standard deviation
// of that outcome's probability across the input distributions
func inputSpread(inputs []models.Distribution) float64 {
	if len(inputs) == 0 {
		return 0
	}

	var total float64
	column := make([]float64, len(inputs))
	for _, o := range models.Outcomes {
		for i, d := range inputs {
			column[i] = d[o]
		}
		total += models.StdDev(column)
	}
	return total / models.NumOutcomes
}
