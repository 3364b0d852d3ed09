package analytics

import (
	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

// ValueDetector compares model probabilities with odds-implied probabilities
type ValueDetector struct {
	cfg config.ValueConfig
}

// NewValueDetector creates a detector with the given edge thresholds
func NewValueDetector(cfg config.ValueConfig) *ValueDetector {
	return &ValueDetector{cfg: cfg}
}

// ImpliedProbability converts decimal odds; non-positive odds imply 0
func ImpliedProbability(odds float64) float64 {
	if odds <= 0 {
		return 0
	}
	return 1 / odds
}

// Detect returns one opportunity per outcome whose relative edge exceeds the threshold, in outcome order
func (v *ValueDetector) Detect(model models.Distribution, odds models.Odds) []models.ValueOpportunity {
	opportunities := make([]models.ValueOpportunity, 0, models.NumOutcomes)
	for _, o := range models.Outcomes {
		implied := ImpliedProbability(odds[o])
		if implied <= 0 || model[o] <= implied*(1+v.cfg.EdgeThreshold) {
			continue
		}

		edge := (model[o] - implied) / implied
		level := models.ConfidenceMedium
		if edge > v.cfg.HighEdgeThreshold {
			level = models.ConfidenceHigh
		}

		opportunities = append(opportunities, models.ValueOpportunity{
			Outcome:           o,
			EdgePercentage:    edge * 100,
			ModelProbability:  model[o],
			MarketProbability: implied,
			RecommendedOdds:   odds[o],
			ConfidenceLevel:   level,
		})
	}
	return opportunities
}

// Tag summarizes the opportunities by their largest edge
func (v *ValueDetector) Tag(opportunities []models.ValueOpportunity) string {
	if len(opportunities) == 0 {
		return models.ValueNone
	}

	maxEdge := opportunities[0].EdgePercentage
	for _, opp := range opportunities[1:] {
		if opp.EdgePercentage > maxEdge {
			maxEdge = opp.EdgePercentage
		}
	}

	switch {
	case maxEdge > v.cfg.HighEdgeThreshold*100:
		return models.ValueHigh
	case maxEdge > v.cfg.EdgeThreshold*100:
		return models.ValueMedium
	default:
		return models.ValueLow
	}
}
