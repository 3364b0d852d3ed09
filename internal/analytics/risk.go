// Package analytics derives risk metrics, value opportunities and the strategic
// summary from a fused distribution and the sharp odds.
package analytics

import (
	"math"

	"github.com/yourusername/magajico/internal/models"
)

// Risk level boundaries on the composite score
const (
	lowRiskCeiling    = 0.1
	mediumRiskCeiling = 0.2
)

// CompositeRisk is the variance of the final distribution plus half the absolute line movement
func CompositeRisk(final models.Distribution, lineMovement float64) float64 {
	return final.Variance() + 0.5*math.Abs(lineMovement)
}

// RiskLevel classifies a composite risk score
func RiskLevel(composite float64) string {
	switch {
	case composite < lowRiskCeiling:
		return models.RiskLow
	case composite < mediumRiskCeiling:
		return models.RiskMedium
	default:
		return models.RiskHigh
	}
}

// ComputeRisk builds the risk metrics block
func ComputeRisk(final models.Distribution, sharp models.SharpOddsResult) models.RiskMetrics {
	composite := CompositeRisk(final, sharp.LineMovement)
	return models.RiskMetrics{
		ProbabilityVariance: final.Variance(),
		MarketVolatility:    math.Abs(sharp.LineMovement),
		ConfidenceSpread:    final.Max() - final.Min(),
		SharpMoneyRisk:      1 - sharp.SharpConfidence,
		OverallRiskScore:    composite,
		RiskLevel:           RiskLevel(composite),
	}
}
