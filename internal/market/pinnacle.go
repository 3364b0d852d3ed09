package market

import (
	"math"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

const (
	sharpFormWeight  = 0.6
	sharpGoalsWeight = 0.2
	lineGoalsWeight  = 0.1
	lineScale        = 0.5
)

// PinnacleModel turns a market distribution into sharp-adjusted, margin-adjusted decimal odds
type PinnacleModel struct {
	cfg config.SharpConfig
}

// NewPinnacleModel creates the sharp odds model
func NewPinnacleModel(cfg config.SharpConfig) *PinnacleModel {
	return &PinnacleModel{cfg: cfg}
}

// SharpOdds applies sharp money and line movement adjustments to market
func (m *PinnacleModel) SharpOdds(market models.Distribution, f []float64) (models.SharpOddsResult, error) {
	if err := requireRaw(f); err != nil {
		return models.SharpOddsResult{}, err
	}

	sharpHome, sharpAway := sharpMoney(f)
	adjusted := market
	adjustment := models.SharpAdjustmentNone

	switch {
	case sharpHome > m.cfg.SharpMoneyThreshold:
		adjusted[models.Home] *= 1 + m.cfg.SharpAdjustment
		adjusted[models.Away] *= 1 - m.cfg.SharpAdjustment
		adjustment = models.SharpAdjustmentHome
	case sharpAway > m.cfg.SharpMoneyThreshold:
		adjusted[models.Away] *= 1 + m.cfg.SharpAdjustment
		adjusted[models.Home] *= 1 - m.cfg.SharpAdjustment
		adjustment = models.SharpAdjustmentAway
	}

	line := LineMovement(f)
	adjusted[models.Home] += line * m.cfg.LineMovementWeight
	adjusted[models.Away] -= line * m.cfg.LineMovementWeight

	probs, err := adjusted.Normalize()
	if err != nil {
		return models.SharpOddsResult{}, err
	}

	return models.SharpOddsResult{
		Probabilities:   probs,
		Odds:            m.odds(probs),
		SharpConfidence: math.Max(sharpHome, sharpAway),
		LineMovement:    line,
		HomeSharpMoney:  sharpHome,
		AwaySharpMoney:  sharpAway,
		Adjustment:      adjustment,
	}, nil
}

// odds applies the bookmaker margin and converts to decimal odds
func (m *PinnacleModel) odds(probs models.Distribution) models.Odds {
	var out models.Odds
	for i, p := range probs {
		p *= 1 - m.cfg.Margin
		if p <= 0 {
			out[i] = m.cfg.SentinelOdds
			continue
		}
		out[i] = 1 / p
	}
	return out
}

func sharpMoney(f []float64) (home, away float64) {
	home = math.Min(1, f[models.FeatureHomeForm]*sharpFormWeight+
		f[models.FeatureHomeGoalsFor]/math.Max(f[models.FeatureHomeGoalsAgainst], 1)*sharpGoalsWeight)
	away = math.Min(1, f[models.FeatureAwayForm]*sharpFormWeight+
		f[models.FeatureAwayGoalsFor]/math.Max(f[models.FeatureAwayGoalsAgainst], 1)*sharpGoalsWeight)
	return home, away
}

// LineMovement simulates betting line movement in [-1,1]; positive favours home
func LineMovement(f []float64) float64 {
	formDiff := f[models.FeatureHomeForm] - f[models.FeatureAwayForm]
	goalDiff := (f[models.FeatureHomeGoalsFor] - f[models.FeatureHomeGoalsAgainst]) -
		(f[models.FeatureAwayGoalsFor] - f[models.FeatureAwayGoalsAgainst])
	return math.Tanh((formDiff + goalDiff*lineGoalsWeight) * lineScale)
}
