package ensemble

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

// testConfig returns small hyperparameters so training stays fast
func testConfig() config.PredictorConfig {
	cfg := config.Default().Predictor
	cfg.Training.Samples = 300
	cfg.Training.CVFolds = 3
	cfg.RandomForest.Trees = 15
	cfg.RandomForest.MaxDepth = 6
	cfg.GradientBoosting.Stages = 15
	cfg.GradientBoosting.MaxDepth = 2
	cfg.LogisticRegression.MaxIterations = 200
	return cfg
}

// bandedData labels rows by which third of [-3,3) column 0 falls in; column 1 is noise
func bandedData(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		v := rng.Float64()*6 - 3
		X[i] = []float64{v, rng.Float64()}
		switch {
		case v < -1:
			y[i] = int(models.Home)
		case v < 1:
			y[i] = int(models.Draw)
		default:
			y[i] = int(models.Away)
		}
	}
	return X, y
}

func accuracy(est Estimator, X [][]float64, y []int) float64 {
	correct := 0
	for i, row := range X {
		if int(models.Distribution(est.PredictProba(row)).ArgMax()) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}

func assertProbabilities(t *testing.T, p [models.NumOutcomes]float64) {
	t.Helper()
	assert.True(t, models.Distribution(p).IsValid(), "invalid distribution %v", p)
}

func TestEstimatorsLearnBandedData(t *testing.T) {
	cfg := testConfig()
	cfg.LogisticRegression.MaxIterations = 1000
	X, y := bandedData(400, 1)
	testX, testY := bandedData(200, 2)

	tests := []struct {
		est         Estimator
		minAccuracy float64
	}{
		{NewRandomForest(cfg.RandomForest), 0.9},
		{NewGradientBoosting(cfg.GradientBoosting), 0.9},
		{NewLogisticRegression(cfg.LogisticRegression), 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.est.Name(), func(t *testing.T) {
			require.NoError(t, tt.est.Fit(X, y))
			assert.GreaterOrEqual(t, accuracy(tt.est, testX, testY), tt.minAccuracy)
			for _, row := range testX[:20] {
				assertProbabilities(t, tt.est.PredictProba(row))
			}
		})
	}
}

func TestUnfittedEstimatorsReturnUniform(t *testing.T) {
	cfg := testConfig()
	for _, est := range NewEstimators(cfg) {
		p := est.PredictProba([]float64{1, 2})
		assert.InDelta(t, 1.0/3, p[0], 1e-12, est.Name())
		assertProbabilities(t, p)
	}
}

func TestCloneIsUnfitted(t *testing.T) {
	cfg := testConfig()
	X, y := bandedData(100, 3)

	rf := NewRandomForest(cfg.RandomForest)
	require.NoError(t, rf.Fit(X, y))

	clone := rf.Clone()
	assert.Equal(t, NameRandomForest, clone.Name())
	assert.InDelta(t, 1.0/3, clone.PredictProba(X[0])[0], 1e-12)
}

func TestRandomForestSeedIsReproducible(t *testing.T) {
	cfg := testConfig()
	X, y := bandedData(150, 4)

	a := NewRandomForest(cfg.RandomForest)
	b := NewRandomForest(cfg.RandomForest)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	for _, row := range X[:25] {
		assert.Equal(t, a.PredictProba(row), b.PredictProba(row))
	}
}

func TestFitValidation(t *testing.T) {
	est := NewLogisticRegression(testConfig().LogisticRegression)

	tests := []struct {
		name string
		X    [][]float64
		y    []int
	}{
		{"empty", nil, nil},
		{"label count mismatch", [][]float64{{1}, {2}}, []int{0}},
		{"ragged rows", [][]float64{{1, 2}, {3}}, []int{0, 1}},
		{"label out of range", [][]float64{{1}, {2}}, []int{0, 3}},
		{"non-finite value", [][]float64{{math.NaN()}, {2}}, []int{0, 1}},
		{"oversized value", [][]float64{{1e308}, {2}}, []int{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := est.Fit(tt.X, tt.y)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrValidation))
		})
	}
}

func TestStandardScaler(t *testing.T) {
	X := [][]float64{{1, 5}, {2, 5}, {3, 5}}
	scaler, err := FitScaler(X)
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 5}, scaler.Mean)
	assert.InDelta(t, math.Sqrt(2.0/3), scaler.Scale[0], 1e-12)
	assert.Equal(t, 1.0, scaler.Scale[1])

	scaled := scaler.TransformAll(X)
	column := []float64{scaled[0][0], scaled[1][0], scaled[2][0]}
	assert.InDelta(t, 0, models.Mean(column), 1e-12)
	assert.InDelta(t, 1, models.StdDev(column), 1e-12)
	assert.Equal(t, 0.0, scaled[1][1])

	_, err = FitScaler(nil)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestFoldBounds(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 3}, {3, 5}, {5, 7}}, foldBounds(7, 3))
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}}, foldBounds(4, 2))
}

func TestCrossValidateRejectsTooFewRows(t *testing.T) {
	X, y := bandedData(3, 5)
	_, err := CrossValidate(context.Background(), NewLogisticRegression(testConfig().LogisticRegression), X, y, 5)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = CrossValidate(context.Background(), NewLogisticRegression(testConfig().LogisticRegression), X, y, 1)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestNormalizeWeights(t *testing.T) {
	assert.InDeltaSlice(t, []float64{0.5, 0.25, 0.25}, normalizeWeights([]float64{0.6, 0.3, 0.3}), 1e-12)
	assert.Equal(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, normalizeWeights([]float64{0, 0, 0}))
}

func TestGenerateSynthetic(t *testing.T) {
	X, y := GenerateSynthetic(500, rand.New(rand.NewSource(DefaultSyntheticSeed)))
	require.Len(t, X, 500)
	require.Len(t, y, 500)

	var counts [models.NumOutcomes]int
	for i, row := range X {
		require.Len(t, row, models.EnhancedFeatureCount)
		for _, v := range row {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		require.True(t, models.Outcome(y[i]).Valid())
		counts[y[i]]++
	}
	for _, c := range counts {
		assert.Positive(t, c)
	}

	X2, y2 := GenerateSynthetic(500, rand.New(rand.NewSource(DefaultSyntheticSeed)))
	assert.Equal(t, X, X2)
	assert.Equal(t, y, y2)
}

func TestTrainAndPredict(t *testing.T) {
	cfg := testConfig()
	X, y := GenerateSynthetic(cfg.Training.Samples, rand.New(rand.NewSource(cfg.Training.Seed)))

	model, err := Train(context.Background(), cfg, X, y)
	require.NoError(t, err)
	assert.Equal(t, cfg.Training.Samples, model.Samples())

	weights := model.Weights()
	require.Len(t, weights, 3)
	var total float64
	for name, w := range weights {
		assert.GreaterOrEqual(t, w, 0.0, name)
		total += w
	}
	assert.InDelta(t, 1, total, 1e-9)

	for name, score := range model.CVScores() {
		assert.Greater(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 1.0, name)
	}

	enhanced := models.EnhancedFeatureVector{0.9, 0.2, 0.8, 0.9, 0.1, 0.2, 0.8, 0.72, 0.16, 0.6, 0.15, 0.866}
	dist, breakdown, err := model.Predict(enhanced)
	require.NoError(t, err)
	assert.True(t, dist.IsValid())
	assert.Greater(t, dist[models.Home], dist[models.Away])
	assert.Len(t, breakdown.Estimators, 3)
	assert.Equal(t, dist, breakdown.Combined)

	again, _, err := model.Predict(enhanced)
	require.NoError(t, err)
	assert.Equal(t, dist, again)
}

func TestTrainValidation(t *testing.T) {
	cfg := testConfig()

	_, err := Train(context.Background(), cfg, [][]float64{{1, 2, 3}}, []int{0})
	assert.True(t, errors.Is(err, models.ErrValidation))

	X, y := GenerateSynthetic(2, rand.New(rand.NewSource(1)))
	_, err = Train(context.Background(), cfg, X, y)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestPredictRejectsWrongWidth(t *testing.T) {
	cfg := testConfig()
	X, y := GenerateSynthetic(60, rand.New(rand.NewSource(9)))
	model, err := Train(context.Background(), cfg, X, y)
	require.NoError(t, err)

	_, _, err = model.Predict(models.EnhancedFeatureVector{0.5, 0.5})
	assert.True(t, errors.Is(err, models.ErrValidation))

	huge := make(models.EnhancedFeatureVector, models.EnhancedFeatureCount)
	for i := range huge {
		huge[i] = 1e308
	}
	_, _, err = model.Predict(huge)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestPredictAtFeatureBounds(t *testing.T) {
	cfg := testConfig()
	X, y := GenerateSynthetic(60, rand.New(rand.NewSource(9)))
	model, err := Train(context.Background(), cfg, X, y)
	require.NoError(t, err)

	high := make(models.EnhancedFeatureVector, models.EnhancedFeatureCount)
	alternating := make(models.EnhancedFeatureVector, models.EnhancedFeatureCount)
	for i := range high {
		high[i] = models.MaxFeatureMagnitude
		alternating[i] = models.MaxFeatureMagnitude
		if i%2 == 1 {
			alternating[i] = -models.MaxFeatureMagnitude
		}
	}

	for _, f := range []models.EnhancedFeatureVector{high, alternating} {
		dist, breakdown, err := model.Predict(f)
		require.NoError(t, err)
		assert.True(t, dist.IsValid(), "%v", dist)
		for _, est := range breakdown.Estimators {
			assert.True(t, est.Probabilities.IsValid(), est.Name)
		}
	}
}

func TestSoftmaxSaturatedScores(t *testing.T) {
	tests := []struct {
		name     string
		scores   [models.NumOutcomes]float64
		expected [models.NumOutcomes]float64
	}{
		{"finite extremes", [3]float64{1e308, -1e308, 0}, [3]float64{1, 0, 0}},
		{"one infinite", [3]float64{0, math.Inf(1), 5}, [3]float64{0, 1, 0}},
		{"two infinite", [3]float64{math.Inf(1), 0, math.Inf(1)}, [3]float64{0.5, 0, 0.5}},
		{"nan", [3]float64{math.NaN(), 1, 2}, uniform()},
		{"all negative infinite", [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}, uniform()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := softmax(tt.scores)
			for k := range got {
				assert.InDelta(t, tt.expected[k], got[k], 1e-12)
			}
		})
	}
}

func TestStandardScalerBoundsOutput(t *testing.T) {
	scaler := &StandardScaler{Mean: []float64{0, 0}, Scale: []float64{1e-9, 1}}

	out := scaler.Transform([]float64{1e6, math.NaN()})
	assert.Equal(t, maxScaled, out[0])
	assert.Equal(t, 0.0, out[1])
}
