package ensemble

import (
	"math"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

// LogisticRegression is multinomial softmax regression fitted by batch gradient descent with an L2 penalty
type LogisticRegression struct {
	cfg     config.LogisticRegressionConfig
	weights [models.NumOutcomes][]float64
	bias    [models.NumOutcomes]float64
	fitted  bool
}

// NewLogisticRegression creates an unfitted logistic regression
func NewLogisticRegression(cfg config.LogisticRegressionConfig) *LogisticRegression {
	return &LogisticRegression{cfg: cfg}
}

// Name returns the estimator name
func (lr *LogisticRegression) Name() string {
	return NameLogisticRegression
}

// Clone returns an unfitted copy
func (lr *LogisticRegression) Clone() Estimator {
	return NewLogisticRegression(lr.cfg)
}

// Fit iterates until the largest gradient component drops below the tolerance or MaxIterations is reached
func (lr *LogisticRegression) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	n, width := len(X), len(X[0])
	var weights [models.NumOutcomes][]float64
	var bias [models.NumOutcomes]float64
	for k := range weights {
		weights[k] = make([]float64, width)
	}

	var gradW [models.NumOutcomes][]float64
	for k := range gradW {
		gradW[k] = make([]float64, width)
	}

	for iter := 0; iter < lr.cfg.MaxIterations; iter++ {
		var gradB [models.NumOutcomes]float64
		for k := range gradW {
			for j := range gradW[k] {
				gradW[k][j] = 0
			}
		}

		for i, row := range X {
			probs := softmax(linearScores(weights, bias, row))
			for k := 0; k < models.NumOutcomes; k++ {
				diff := probs[k]
				if y[i] == k {
					diff--
				}
				gradB[k] += diff
				for j, v := range row {
					gradW[k][j] += diff * v
				}
			}
		}

		maxGrad := 0.0
		for k := 0; k < models.NumOutcomes; k++ {
			gradB[k] /= float64(n)
			bias[k] -= lr.cfg.LearningRate * gradB[k]
			maxGrad = math.Max(maxGrad, math.Abs(gradB[k]))
			for j := range weights[k] {
				g := gradW[k][j]/float64(n) + lr.cfg.L2*weights[k][j]
				weights[k][j] -= lr.cfg.LearningRate * g
				maxGrad = math.Max(maxGrad, math.Abs(g))
			}
		}

		if maxGrad < lr.cfg.Tolerance {
			break
		}
	}

	lr.weights = weights
	lr.bias = bias
	lr.fitted = true
	return nil
}

// PredictProba returns the softmax class probabilities
func (lr *LogisticRegression) PredictProba(x []float64) [models.NumOutcomes]float64 {
	if !lr.fitted {
		return uniform()
	}
	return softmax(linearScores(lr.weights, lr.bias, x))
}

func linearScores(weights [models.NumOutcomes][]float64, bias [models.NumOutcomes]float64, x []float64) [models.NumOutcomes]float64 {
	var scores [models.NumOutcomes]float64
	for k := range scores {
		s := bias[k]
		for j, w := range weights[k] {
			s += w * x[j]
		}
		scores[k] = s
	}
	return scores
}
