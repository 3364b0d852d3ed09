package analytics

import (
	"math"

	"github.com/yourusername/magajico/internal/models"
)

// Market position labels
const (
	PositionMarketLeader = "market_leader"
	PositionStrong       = "strong_position"
	PositionCompetitive  = "competitive"
	PositionUncertain    = "uncertain"
)

const smartMoneyThreshold = 0.7

// MarketPosition labels the prediction by its top probability and sharp confidence
func MarketPosition(maxProb, sharpConfidence float64) string {
	switch {
	case maxProb > 0.8 && sharpConfidence > 0.75:
		return PositionMarketLeader
	case maxProb > 0.7 && sharpConfidence > 0.6:
		return PositionStrong
	case maxProb > 0.6:
		return PositionCompetitive
	default:
		return PositionUncertain
	}
}

// Strategic builds the strategic summary block
func Strategic(final models.Distribution, sharp models.SharpOddsResult, valueTag string) models.StrategicAnalysis {
	maxProb := final.Max()
	return models.StrategicAnalysis{
		InnovationScore:     int(math.Min(100, float64(int(maxProb*130)))),
		MarketPosition:      MarketPosition(maxProb, sharp.SharpConfidence),
		RiskLevel:           RiskLevel(CompositeRisk(final, sharp.LineMovement)),
		ExecutionConfidence: int(maxProb * sharp.SharpConfidence * 100),
		MarketEfficiency:    int(sharp.SharpConfidence * 100),
		ValueDetection:      valueTag,
		LineMovementImpact:  math.Abs(sharp.LineMovement) * 100,
		SmartMoneyIndicator: sharp.SharpConfidence > smartMoneyThreshold,
	}
}
