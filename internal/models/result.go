package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Odds holds decimal odds per outcome, indexed by Outcome
type Odds [NumOutcomes]float64

// Map returns the odds keyed by outcome label
func (o Odds) Map() map[string]float64 {
	return Distribution(o).Map()
}

// MarshalJSON encodes the odds as an outcome-keyed object
func (o Odds) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Map())
}

// UnmarshalJSON decodes an outcome-keyed object
func (o *Odds) UnmarshalJSON(data []byte) error {
	var d Distribution
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*o = Odds(d)
	return nil
}

// MarshalJSON encodes the distribution as an outcome-keyed object
func (d Distribution) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// UnmarshalJSON decodes an outcome-keyed object
func (d *Distribution) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Distribution
	for label, v := range raw {
		o, err := ParseOutcome(label)
		if err != nil {
			return err
		}
		out[o] = v
	}
	*d = out
	return nil
}

// SharpAdjustment records which sharp-money branch fired
type SharpAdjustment string

const (
	SharpAdjustmentNone SharpAdjustment = "none"
	SharpAdjustmentHome SharpAdjustment = "home"
	SharpAdjustmentAway SharpAdjustment = "away"
)

// SharpOddsResult is the output of the sharp odds model
type SharpOddsResult struct {
	Probabilities   Distribution    `json:"probabilities"`
	Odds            Odds            `json:"odds"`
	SharpConfidence float64         `json:"sharp_confidence"`
	LineMovement    float64         `json:"line_movement"`
	HomeSharpMoney  float64         `json:"home_sharp_money"`
	AwaySharpMoney  float64         `json:"away_sharp_money"`
	Adjustment      SharpAdjustment `json:"adjustment"`
}

// ConfidenceLevel grades a value opportunity
type ConfidenceLevel string

const (
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// ValueOpportunity is an outcome whose model probability beats the market-implied one
type ValueOpportunity struct {
	Outcome           Outcome         `json:"outcome"`
	EdgePercentage    float64         `json:"edge_percentage"`
	ModelProbability  float64         `json:"model_probability"`
	MarketProbability float64         `json:"market_probability"`
	RecommendedOdds   float64         `json:"recommended_odds"`
	ConfidenceLevel   ConfidenceLevel `json:"confidence_level"`
}

// Edge returns the relative edge as a fraction
func (v ValueOpportunity) Edge() float64 {
	return v.EdgePercentage / 100
}

// Value tags summarizing a prediction's opportunities
const (
	ValueNone   = "no_value"
	ValueLow    = "low_value"
	ValueMedium = "medium_value"
	ValueHigh   = "high_value"
)

// Risk levels
const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

// RiskMetrics summarizes the dispersion and market risk of a prediction
type RiskMetrics struct {
	ProbabilityVariance float64 `json:"probability_variance"`
	MarketVolatility    float64 `json:"market_volatility"`
	ConfidenceSpread    float64 `json:"confidence_spread"`
	SharpMoneyRisk      float64 `json:"sharp_money_risk"`
	OverallRiskScore    float64 `json:"overall_risk_score"`
	RiskLevel           string  `json:"risk_level"`
}

// StrategicAnalysis holds the labels derived from confidence and sharp money
type StrategicAnalysis struct {
	InnovationScore     int     `json:"innovation_score"`
	MarketPosition      string  `json:"market_position"`
	RiskLevel           string  `json:"risk_level"`
	ExecutionConfidence int     `json:"execution_confidence"`
	MarketEfficiency    int     `json:"market_efficiency"`
	ValueDetection      string  `json:"value_detection"`
	LineMovementImpact  float64 `json:"line_movement_impact"`
	SmartMoneyIndicator bool    `json:"smart_money_indicator"`
}

// ConfidenceBreakdown exposes the six clamped confidence factors
type ConfidenceBreakdown struct {
	Base              float64 `json:"base"`
	ModelConsensus    float64 `json:"model_consensus"`
	MarketValidation  float64 `json:"market_validation"`
	SharpConfirmation float64 `json:"sharp_confirmation"`
	FeatureQuality    float64 `json:"feature_quality"`
	RiskFactor        float64 `json:"risk_factor"`
}

// EstimatorOutput is one ensemble member's distribution and weight
type EstimatorOutput struct {
	Name          string       `json:"name"`
	Probabilities Distribution `json:"probabilities"`
	Weight        float64      `json:"weight"`
}

// EnsembleBreakdown lists every estimator's contribution
type EnsembleBreakdown struct {
	Estimators []EstimatorOutput  `json:"estimators"`
	Weights    map[string]float64 `json:"weights"`
	Combined   Distribution       `json:"combined"`
}

// MarketAnalysis is the market-facing part of a prediction
type MarketAnalysis struct {
	KalshiProbabilities Distribution `json:"kalshi_probabilities"`
	PinnacleOdds        Odds         `json:"pinnacle_odds"`
	SharpProbabilities  Distribution `json:"sharp_probabilities"`
	SharpConfidence     float64      `json:"sharp_confidence"`
	LineMovement        float64      `json:"line_movement"`
	LiquidityFactor     float64      `json:"liquidity_factor"`
}

// PredictionResult is the aggregate returned for one fixture
type PredictionResult struct {
	ID                  uuid.UUID           `json:"id"`
	Prediction          Outcome             `json:"prediction"`
	Confidence          float64             `json:"confidence"`
	Probabilities       Distribution        `json:"probabilities"`
	ModelID             uuid.UUID           `json:"model_id"`
	ModelVersion        string              `json:"model_version"`
	Features            []float64           `json:"features"`
	EnhancedFeatures    []float64           `json:"enhanced_features"`
	MarketAnalysis      MarketAnalysis      `json:"market_analysis"`
	EnsembleBreakdown   EnsembleBreakdown   `json:"ensemble_breakdown"`
	ConfidenceBreakdown ConfidenceBreakdown `json:"confidence_breakdown"`
	StrategicAnalysis   StrategicAnalysis   `json:"magajico_analysis"`
	RiskMetrics         RiskMetrics         `json:"risk_metrics"`
	ValueOpportunities  []ValueOpportunity  `json:"value_opportunities"`
	PredictedAt         time.Time           `json:"predicted_at"`
}

// TrainingSource describes where a model's training data came from
type TrainingSource string

const (
	SourceSynthetic TrainingSource = "synthetic"
	SourceExternal  TrainingSource = "external"
)

// ModelInfo describes the active trained model
type ModelInfo struct {
	ModelID         uuid.UUID          `json:"model_id"`
	ModelVersion    string             `json:"model_version"`
	FeatureNames    []string           `json:"feature_names"`
	Weights         map[string]float64 `json:"weights"`
	CVScores        map[string]float64 `json:"cv_scores"`
	TrainingSamples int                `json:"training_samples"`
	Source          TrainingSource     `json:"source"`
	TrainedAt       time.Time          `json:"trained_at"`
}

// TrainingSummary reports the outcome of a training run
type TrainingSummary struct {
	ModelID      uuid.UUID          `json:"model_id"`
	ModelVersion string             `json:"model_version"`
	Samples      int                `json:"samples"`
	CVScores     map[string]float64 `json:"cv_scores"`
	Weights      map[string]float64 `json:"weights"`
	Source       TrainingSource     `json:"source"`
	Duration     time.Duration      `json:"duration"`
}
