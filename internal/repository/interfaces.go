package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/magajico/internal/models"
)

// PredictionRepository defines the interface for prediction audit access
type PredictionRepository interface {
	Create(ctx context.Context, prediction *models.PredictionRecord) error
	GetRecent(ctx context.Context, limit int) ([]*models.PredictionRecord, error)
	GetByModelID(ctx context.Context, modelID uuid.UUID, limit int) ([]*models.PredictionRecord, error)
}

// ModelRepository defines the interface for training run access
type ModelRepository interface {
	Create(ctx context.Context, model *models.ModelRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ModelRecord, error)
	GetLatest(ctx context.Context) (*models.ModelRecord, error)
}
