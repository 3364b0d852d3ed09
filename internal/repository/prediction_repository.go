package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/magajico/internal/models"
)

const predictionColumns = `id, model_id, model_version, prediction, confidence,
	home_probability, draw_probability, away_probability,
	risk_level, value_detection, features, match_context, predicted_at`

const defaultRecentLimit = 50

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db Querier
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db Querier) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// Create inserts a prediction audit row
func (r *PostgresPredictionRepository) Create(ctx context.Context, p *models.PredictionRecord) error {
	query := `
		INSERT INTO predictions (` + predictionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.ModelID, p.ModelVersion, p.Prediction, p.Confidence,
		p.HomeProbability, p.DrawProbability, p.AwayProbability,
		p.RiskLevel, p.ValueDetection, p.Features, p.MatchContext, p.PredictedAt,
	)
	if err != nil {
		return translateError(err, "create prediction")
	}

	return nil
}

// GetRecent returns the newest predictions first
func (r *PostgresPredictionRepository) GetRecent(ctx context.Context, limit int) ([]*models.PredictionRecord, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		ORDER BY predicted_at DESC
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query recent predictions: %w", err)
	}
	return scanPredictions(rows)
}

// GetByModelID returns the newest predictions served by one model
func (r *PostgresPredictionRepository) GetByModelID(ctx context.Context, modelID uuid.UUID, limit int) ([]*models.PredictionRecord, error) {
	query := `
		SELECT ` + predictionColumns + `
		FROM predictions
		WHERE model_id = $1
		ORDER BY predicted_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, modelID, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by model: %w", err)
	}
	return scanPredictions(rows)
}

func scanPredictions(rows pgx.Rows) ([]*models.PredictionRecord, error) {
	defer rows.Close()

	var predictions []*models.PredictionRecord
	for rows.Next() {
		p := &models.PredictionRecord{}
		err := rows.Scan(
			&p.ID, &p.ModelID, &p.ModelVersion, &p.Prediction, &p.Confidence,
			&p.HomeProbability, &p.DrawProbability, &p.AwayProbability,
			&p.RiskLevel, &p.ValueDetection, &p.Features, &p.MatchContext, &p.PredictedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	return limit
}
