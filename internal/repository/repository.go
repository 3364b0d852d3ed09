// Package repository provides PostgreSQL persistence for predictions and training runs.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yourusername/magajico/internal/database"
	"github.com/yourusername/magajico/internal/models"
)

const uniqueViolation = "23505"

// Querier is the subset of the connection pool used by the repositories
type Querier interface {
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
}

// Repositories holds all repository implementations
type Repositories struct {
	Prediction PredictionRepository
	Model      ModelRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Prediction: NewPostgresPredictionRepository(db),
		Model:      NewPostgresModelRepository(db),
	}, nil
}

// translateError maps driver errors onto the model sentinels
func translateError(err error, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", action, models.ErrDuplicateKey)
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
