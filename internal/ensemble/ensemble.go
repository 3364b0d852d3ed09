package ensemble

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

// Ensemble is a trained, immutable set of estimators with their scaler and weights
type Ensemble struct {
	scaler     *StandardScaler
	estimators []Estimator
	weights    []float64
	cvScores   []float64
	samples    int
}

// NewEstimators returns the unfitted estimators in their fixed order
func NewEstimators(cfg config.PredictorConfig) []Estimator {
	return []Estimator{
		NewRandomForest(cfg.RandomForest),
		NewGradientBoosting(cfg.GradientBoosting),
		NewLogisticRegression(cfg.LogisticRegression),
	}
}

// Train fits the scaler and every estimator, then weights estimators by cross-validated accuracy.
// All-zero accuracies fall back to equal weights.
func Train(ctx context.Context, cfg config.PredictorConfig, X [][]float64, y []int) (*Ensemble, error) {
	if err := validateTrainingSet(X, y); err != nil {
		return nil, err
	}
	for i, row := range X {
		if len(row) != models.EnhancedFeatureCount {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", models.ErrValidation, i, len(row), models.EnhancedFeatureCount)
		}
	}
	folds := cfg.Training.CVFolds
	if len(X) < folds {
		return nil, fmt.Errorf("%w: need at least %d samples for %d-fold cross-validation, got %d", models.ErrValidation, folds, folds, len(X))
	}

	scaler, err := FitScaler(X)
	if err != nil {
		return nil, err
	}
	scaled := scaler.TransformAll(X)

	estimators := NewEstimators(cfg)
	scores := make([]float64, len(estimators))

	g, gctx := errgroup.WithContext(ctx)
	for i, est := range estimators {
		i, est := i, est
		g.Go(func() error {
			if err := est.Fit(scaled, y); err != nil {
				return fmt.Errorf("fit %s: %w", est.Name(), err)
			}
			score, err := CrossValidate(gctx, est, scaled, y, folds)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Ensemble{
		scaler:     scaler,
		estimators: estimators,
		weights:    normalizeWeights(scores),
		cvScores:   scores,
		samples:    len(X),
	}, nil
}

func normalizeWeights(scores []float64) []float64 {
	weights := make([]float64, len(scores))
	var total float64
	for _, s := range scores {
		total += s
	}
	for i, s := range scores {
		if total <= 0 {
			weights[i] = 1 / float64(len(scores))
		} else {
			weights[i] = s / total
		}
	}
	return weights
}

// Predict scales enhanced and returns the weighted average of the estimator distributions
func (e *Ensemble) Predict(enhanced models.EnhancedFeatureVector) (models.Distribution, models.EnsembleBreakdown, error) {
	if err := enhanced.Validate(); err != nil {
		return models.Distribution{}, models.EnsembleBreakdown{}, err
	}

	x := e.scaler.Transform(enhanced)
	breakdown := models.EnsembleBreakdown{
		Estimators: make([]models.EstimatorOutput, 0, len(e.estimators)),
		Weights:    e.Weights(),
	}

	var combined models.Distribution
	for i, est := range e.estimators {
		probs := models.Distribution(est.PredictProba(x))
		combined = combined.Add(probs.Scale(e.weights[i]))
		breakdown.Estimators = append(breakdown.Estimators, models.EstimatorOutput{
			Name:          est.Name(),
			Probabilities: probs,
			Weight:        e.weights[i],
		})
	}

	combined, err := combined.Normalize()
	if err != nil {
		return models.Distribution{}, models.EnsembleBreakdown{}, err
	}
	breakdown.Combined = combined
	return combined, breakdown, nil
}

// Weights returns the estimator weights keyed by name
func (e *Ensemble) Weights() map[string]float64 {
	return e.byName(e.weights)
}

// CVScores returns the cross-validated accuracies keyed by name
func (e *Ensemble) CVScores() map[string]float64 {
	return e.byName(e.cvScores)
}

// Samples returns the number of training rows
func (e *Ensemble) Samples() int {
	return e.samples
}

func (e *Ensemble) byName(values []float64) map[string]float64 {
	out := make(map[string]float64, len(e.estimators))
	for i, est := range e.estimators {
		out[est.Name()] = values[i]
	}
	return out
}
