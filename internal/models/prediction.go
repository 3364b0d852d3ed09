package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PredictionRecord is the persisted audit row of a served prediction
type PredictionRecord struct {
	ID              uuid.UUID       `db:"id" json:"id" validate:"required"`
	ModelID         uuid.UUID       `db:"model_id" json:"model_id" validate:"required"`
	ModelVersion    string          `db:"model_version" json:"model_version"`
	Prediction      string          `db:"prediction" json:"prediction" validate:"required,oneof=home draw away"`
	Confidence      float64         `db:"confidence" json:"confidence" validate:"gte=0,lte=1"`
	HomeProbability float64         `db:"home_probability" json:"home_probability" validate:"gte=0,lte=1"`
	DrawProbability float64         `db:"draw_probability" json:"draw_probability" validate:"gte=0,lte=1"`
	AwayProbability float64         `db:"away_probability" json:"away_probability" validate:"gte=0,lte=1"`
	RiskLevel       string          `db:"risk_level" json:"risk_level"`
	ValueDetection  string          `db:"value_detection" json:"value_detection"`
	Features        json.RawMessage `db:"features" json:"features"`
	MatchContext    json.RawMessage `db:"match_context" json:"match_context"`
	PredictedAt     time.Time       `db:"predicted_at" json:"predicted_at" validate:"required"`
}

// NewPredictionRecord flattens a prediction result for storage
func NewPredictionRecord(result *PredictionResult, matchContext map[string]string) (*PredictionRecord, error) {
	features, err := json.Marshal(result.Features)
	if err != nil {
		return nil, err
	}
	var ctxJSON json.RawMessage
	if len(matchContext) > 0 {
		if ctxJSON, err = json.Marshal(matchContext); err != nil {
			return nil, err
		}
	}
	return &PredictionRecord{
		ID:              result.ID,
		ModelID:         result.ModelID,
		ModelVersion:    result.ModelVersion,
		Prediction:      result.Prediction.String(),
		Confidence:      result.Confidence,
		HomeProbability: result.Probabilities[Home],
		DrawProbability: result.Probabilities[Draw],
		AwayProbability: result.Probabilities[Away],
		RiskLevel:       result.RiskMetrics.RiskLevel,
		ValueDetection:  result.StrategicAnalysis.ValueDetection,
		Features:        features,
		MatchContext:    ctxJSON,
		PredictedAt:     result.PredictedAt,
	}, nil
}
