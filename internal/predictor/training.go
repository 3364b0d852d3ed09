package predictor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/magajico/internal/ensemble"
	"github.com/yourusername/magajico/internal/metrics"
	"github.com/yourusername/magajico/internal/models"
)

const (
	trainingSuccess = "success"
	trainingFailure = "failure"
)

// TrainSynthetic generates samples labelled rows from seed and trains a new snapshot on them
func (p *Predictor) TrainSynthetic(ctx context.Context, samples int, seed int64) (*models.TrainingSummary, error) {
	if samples <= 0 {
		samples = ensemble.DefaultSyntheticSamples
	}
	X, y := ensemble.GenerateSynthetic(samples, rand.New(rand.NewSource(seed)))
	return p.train(ctx, X, y, models.SourceSynthetic)
}

// Train fits a new snapshot on caller-supplied enhanced feature rows and labels
func (p *Predictor) Train(ctx context.Context, X [][]float64, y []int) (*models.TrainingSummary, error) {
	return p.train(ctx, X, y, models.SourceExternal)
}

// train serializes training runs; predictions keep using the previous snapshot until the swap
func (p *Predictor) train(ctx context.Context, X [][]float64, y []int, source models.TrainingSource) (*models.TrainingSummary, error) {
	p.trainMu.Lock()
	defer p.trainMu.Unlock()

	start := time.Now()
	trained, err := ensemble.Train(ctx, p.cfg, X, y)
	if err != nil {
		metrics.RecordTrainingRun(string(source), trainingFailure, 0, len(X))
		p.log.LogModelTrainingError(string(source), len(X), err)
		return nil, fmt.Errorf("train ensemble: %w", err)
	}
	duration := time.Since(start)

	next := &snapshot{
		id:        uuid.New(),
		version:   p.cfg.ModelVersion,
		ensemble:  trained,
		source:    source,
		trainedAt: time.Now().UTC(),
	}
	previous := p.active.Swap(next)

	weights, cvScores := trained.Weights(), trained.CVScores()
	metrics.RecordTrainingRun(string(source), trainingSuccess, duration.Seconds(), len(X))
	metrics.UpdateModelWeights(weights, cvScores)
	p.log.LogModelTraining(next.id.String(), next.version, string(source), len(X), duration, cvScores, weights)

	previousID := ""
	if previous != nil {
		previousID = previous.id.String()
	}
	p.audit.LogModelSwap(previousID, next.id.String(), string(source))

	p.recordModel(ctx, next)

	return &models.TrainingSummary{
		ModelID:      next.id,
		ModelVersion: next.version,
		Samples:      len(X),
		CVScores:     cvScores,
		Weights:      weights,
		Source:       source,
		Duration:     duration,
	}, nil
}

// recordModel persists the run; failures are logged and never fail training
func (p *Predictor) recordModel(ctx context.Context, snap *snapshot) {
	if p.models == nil {
		return
	}

	record, err := models.NewModelRecord(snap.info())
	if err == nil {
		err = p.models.Create(ctx, record)
	}
	if err != nil {
		p.log.WithError(err).WithField("model_id", snap.id.String()).Warn("Failed to persist training run")
	}
}
