package ensemble

import (
	"fmt"
	"math"

	"github.com/yourusername/magajico/internal/models"
)

// maxScaled bounds transformed values
const maxScaled = 1e6

// StandardScaler centers each column on its mean and divides by its population standard deviation
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes column statistics over X
func FitScaler(X [][]float64) (*StandardScaler, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("%w: cannot fit scaler on empty data", models.ErrValidation)
	}

	width := len(X[0])
	mean := make([]float64, width)
	scale := make([]float64, width)
	column := make([]float64, len(X))
	for j := 0; j < width; j++ {
		for i, row := range X {
			column[i] = row[j]
		}
		mean[j] = models.Mean(column)
		std := models.StdDev(column)
		// constant columns pass through centered
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		scale[j] = std
	}

	return &StandardScaler{Mean: mean, Scale: scale}, nil
}

// Transform returns a scaled copy of x
func (s *StandardScaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		scaled := (v - s.Mean[j]) / s.Scale[j]
		if math.IsNaN(scaled) {
			scaled = 0
		}
		out[j] = models.Clamp(scaled, -maxScaled, maxScaled)
	}
	return out
}

// TransformAll scales every row of X
func (s *StandardScaler) TransformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Transform(row)
	}
	return out
}
