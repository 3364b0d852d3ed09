package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModelRecord is a persisted training run
type ModelRecord struct {
	ID              uuid.UUID       `db:"id" json:"id" validate:"required"`
	Version         string          `db:"version" json:"version" validate:"required"`
	Source          TrainingSource  `db:"source" json:"source" validate:"required,oneof=synthetic external"`
	TrainingSamples int             `db:"training_samples" json:"training_samples" validate:"gt=0"`
	Weights         json.RawMessage `db:"weights" json:"weights"`
	CVScores        json.RawMessage `db:"cv_scores" json:"cv_scores"`
	TrainedAt       time.Time       `db:"trained_at" json:"trained_at" validate:"required"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// NewModelRecord builds a record from model info
func NewModelRecord(info ModelInfo) (*ModelRecord, error) {
	weights, err := json.Marshal(info.Weights)
	if err != nil {
		return nil, err
	}
	scores, err := json.Marshal(info.CVScores)
	if err != nil {
		return nil, err
	}
	return &ModelRecord{
		ID:              info.ModelID,
		Version:         info.ModelVersion,
		Source:          info.Source,
		TrainingSamples: info.TrainingSamples,
		Weights:         weights,
		CVScores:        scores,
		TrainedAt:       info.TrainedAt,
	}, nil
}

// GetWeight retrieves one estimator's weight from the Weights JSON
func (m *ModelRecord) GetWeight(name string) (float64, bool, error) {
	if m.Weights == nil {
		return 0, false, nil
	}

	var weights map[string]float64
	if err := json.Unmarshal(m.Weights, &weights); err != nil {
		return 0, false, err
	}

	w, ok := weights[name]
	return w, ok, nil
}
