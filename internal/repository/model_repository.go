package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/magajico/internal/models"
)

const modelColumns = `id, version, source, training_samples, weights, cv_scores, trained_at, created_at`

// PostgresModelRepository implements ModelRepository for PostgreSQL
type PostgresModelRepository struct {
	db Querier
}

// NewPostgresModelRepository creates a new model repository
func NewPostgresModelRepository(db Querier) ModelRepository {
	return &PostgresModelRepository{db: db}
}

// Create inserts a training run
func (m *PostgresModelRepository) Create(ctx context.Context, model *models.ModelRecord) error {
	query := `
		INSERT INTO models (id, version, source, training_samples, weights, cv_scores, trained_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := m.db.Exec(ctx, query,
		model.ID, model.Version, string(model.Source), model.TrainingSamples, model.Weights, model.CVScores, model.TrainedAt,
	)
	if err != nil {
		return translateError(err, "create model")
	}

	return nil
}

// GetByID retrieves a training run by ID
func (m *PostgresModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM models WHERE id = $1`
	return m.scanOne(ctx, "get model", query, id)
}

// GetLatest retrieves the most recently trained run
func (m *PostgresModelRepository) GetLatest(ctx context.Context) (*models.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM models ORDER BY trained_at DESC LIMIT 1`
	return m.scanOne(ctx, "get latest model", query)
}

func (m *PostgresModelRepository) scanOne(ctx context.Context, action, query string, args ...interface{}) (*models.ModelRecord, error) {
	model := &models.ModelRecord{}
	var source string
	err := m.db.QueryRow(ctx, query, args...).Scan(
		&model.ID, &model.Version, &source, &model.TrainingSamples,
		&model.Weights, &model.CVScores, &model.TrainedAt, &model.CreatedAt,
	)
	if err != nil {
		return nil, translateError(err, action)
	}
	model.Source = models.TrainingSource(source)

	return model, nil
}
