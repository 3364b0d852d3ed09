// Package ensemble implements the classifier ensemble: three probabilistic
// estimators over standardized enhanced features, weighted by cross-validated accuracy.
package ensemble

import (
	"fmt"
	"math"

	"github.com/yourusername/magajico/internal/models"
)

// Estimator names
const (
	NameRandomForest       = "random_forest"
	NameGradientBoosting   = "gradient_boosting"
	NameLogisticRegression = "logistic_regression"
)

// Estimator is a 3-class probabilistic classifier
type Estimator interface {
	Name() string
	Fit(X [][]float64, y []int) error
	PredictProba(x []float64) [models.NumOutcomes]float64
	// Clone returns an unfitted estimator with the same hyperparameters
	Clone() Estimator
}

// validateTrainingSet checks shapes and labels of a training set
func validateTrainingSet(X [][]float64, y []int) error {
	if len(X) == 0 {
		return fmt.Errorf("%w: training data is empty", models.ErrValidation)
	}
	if len(X) != len(y) {
		return fmt.Errorf("%w: %d rows but %d labels", models.ErrValidation, len(X), len(y))
	}

	width := len(X[0])
	if width == 0 {
		return fmt.Errorf("%w: training rows have no columns", models.ErrValidation)
	}
	for i, row := range X {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d columns, expected %d", models.ErrValidation, i, len(row), width)
		}
		if err := models.ValidateFeatureValues(row); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	for i, label := range y {
		if !models.Outcome(label).Valid() {
			return fmt.Errorf("%w: label %d at row %d is not in {0,1,2}", models.ErrValidation, label, i)
		}
	}
	return nil
}

func uniform() [models.NumOutcomes]float64 {
	return [models.NumOutcomes]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
}

// softmax converts raw scores into probabilities
func softmax(scores [models.NumOutcomes]float64) [models.NumOutcomes]float64 {
	maxScore := math.Max(scores[0], math.Max(scores[1], scores[2]))
	if math.IsNaN(maxScore) {
		return uniform()
	}

	var out [models.NumOutcomes]float64
	var sum float64
	if math.IsInf(maxScore, 1) {
		// saturated classes share the mass
		for k, s := range scores {
			if math.IsInf(s, 1) {
				out[k] = 1
				sum++
			}
		}
	} else {
		for k, s := range scores {
			out[k] = math.Exp(s - maxScore)
			sum += out[k]
		}
	}

	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return uniform()
	}
	for k := range out {
		out[k] /= sum
	}
	return out
}
