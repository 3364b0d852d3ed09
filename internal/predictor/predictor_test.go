package predictor

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/ensemble"
	"github.com/yourusername/magajico/internal/models"
)

var (
	strongHome = []float64{0.9, 0.2, 0.8, 0.9, 0.1, 0.2, 0.8}
	symmetric  = []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
)

// MockModelRecorder is a mock implementation of ModelRecorder
type MockModelRecorder struct {
	mock.Mock
}

func (m *MockModelRecorder) Create(ctx context.Context, record *models.ModelRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func testConfig() config.PredictorConfig {
	cfg := config.Default().Predictor
	cfg.Deterministic = true
	cfg.Seed = 1
	cfg.Training.Samples = 400
	cfg.Training.CVFolds = 3
	cfg.RandomForest.Trees = 20
	cfg.RandomForest.MaxDepth = 6
	cfg.GradientBoosting.Stages = 20
	cfg.GradientBoosting.MaxDepth = 2
	cfg.LogisticRegression.MaxIterations = 200
	return cfg
}

func newTrained(t *testing.T) *Predictor {
	t.Helper()
	return newTrainedWith(t, testConfig())
}

func newTrainedWith(t *testing.T, cfg config.PredictorConfig) *Predictor {
	t.Helper()
	p, err := NewTrained(context.Background(), cfg, Dependencies{})
	require.NoError(t, err)
	return p
}

// predictionModes runs fn against a deterministic and a sampling predictor
func predictionModes(t *testing.T, fn func(t *testing.T, p *Predictor)) {
	for _, mode := range []struct {
		name          string
		deterministic bool
	}{
		{"deterministic", true},
		{"sampling", false},
	} {
		t.Run(mode.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Deterministic = mode.deterministic
			fn(t, newTrainedWith(t, cfg))
		})
	}
}

func assertResultInvariants(t *testing.T, result *models.PredictionResult) {
	t.Helper()

	assert.True(t, result.Probabilities.IsValid(), "%v", result.Probabilities)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
	assert.Equal(t, result.Probabilities.ArgMax(), result.Prediction)
	for _, odds := range result.MarketAnalysis.PinnacleOdds {
		assert.GreaterOrEqual(t, odds, 1.0)
	}
	for _, opp := range result.ValueOpportunities {
		assert.Greater(t, opp.EdgePercentage, 10.0)
	}
	if len(result.ValueOpportunities) == 0 {
		assert.Equal(t, models.ValueNone, result.StrategicAnalysis.ValueDetection)
	}
}

func TestPredictBeforeTraining(t *testing.T) {
	p := New(testConfig(), Dependencies{})
	assert.False(t, p.Ready())
	assert.Equal(t, uuid.Nil, p.ActiveModelID())

	_, err := p.Predict(context.Background(), strongHome)
	assert.True(t, errors.Is(err, models.ErrModelNotTrained))

	_, err = p.ModelInfo()
	assert.True(t, errors.Is(err, models.ErrModelNotTrained))
}

func TestPredictStrongHome(t *testing.T) {
	p := newTrained(t)
	require.True(t, p.Ready())

	result, err := p.Predict(context.Background(), strongHome)
	require.NoError(t, err)

	assert.Equal(t, models.Home, result.Prediction)
	assert.Greater(t, result.Probabilities[models.Home], result.Probabilities[models.Away])
	assert.Equal(t, strongHome, result.Features)
	assert.Len(t, result.EnhancedFeatures, models.EnhancedFeatureCount)
	assert.Equal(t, "3.0.0", result.ModelVersion)
	assert.Equal(t, p.ActiveModelID(), result.ModelID)
	assert.Equal(t, models.SharpAdjustmentHome, sharpAdjustmentFor(t, p, strongHome))
}

func sharpAdjustmentFor(t *testing.T, p *Predictor, raw []float64) models.SharpAdjustment {
	t.Helper()
	marketDist, err := p.kalshi.MarketProbability(raw)
	require.NoError(t, err)
	sharp, err := p.pinnacle.SharpOdds(marketDist, raw)
	require.NoError(t, err)
	return sharp.Adjustment
}

func TestPredictSymmetricDrawNotLowest(t *testing.T) {
	p := newTrained(t)

	result, err := p.Predict(context.Background(), symmetric)
	require.NoError(t, err)

	draw := result.Probabilities[models.Draw]
	assert.True(t, draw >= result.Probabilities[models.Home] || draw >= result.Probabilities[models.Away],
		"draw should be second or highest: %v", result.Probabilities)
}

func TestPredictReferenceFixtures(t *testing.T) {
	p := newTrained(t)

	tests := []struct {
		name  string
		raw   []float64
		check func(t *testing.T, d models.Distribution)
	}{
		{
			name: "home favourite",
			raw:  []float64{0.8, 0.3, 1.5, 0.7, 0.2, 0.4, 0.6},
			check: func(t *testing.T, d models.Distribution) {
				assert.Greater(t, d[models.Home], d[models.Away], "%v", d)
			},
		},
		{
			name: "even fixture",
			raw:  []float64{0.5, 0.5, 1.0, 0.5, 0.5, 0.5, 0.5},
			check: func(t *testing.T, d models.Distribution) {
				draw := d[models.Draw]
				assert.True(t, draw >= d[models.Home] || draw >= d[models.Away],
					"draw should be second or highest: %v", d)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Predict(context.Background(), tt.raw)
			require.NoError(t, err)
			assertResultInvariants(t, result)
			tt.check(t, result.Probabilities)
		})
	}
}

func TestPredictInvariants(t *testing.T) {
	predictionModes(t, func(t *testing.T, p *Predictor) {
		rng := rand.New(rand.NewSource(99))

		for i := 0; i < 50; i++ {
			raw := make([]float64, models.RawFeatureCount)
			for j := range raw {
				raw[j] = rng.Float64()
			}

			result, err := p.Predict(context.Background(), raw)
			require.NoError(t, err)
			assertResultInvariants(t, result)
		}
	})
}

func TestPredictAtFeatureBounds(t *testing.T) {
	filled := func(v float64) []float64 {
		raw := make([]float64, models.RawFeatureCount)
		for i := range raw {
			raw[i] = v
		}
		return raw
	}
	bound := models.MaxFeatureMagnitude

	vectors := map[string][]float64{
		"zeros":       filled(0),
		"negative":    filled(-5),
		"upper bound": filled(bound),
		"lower bound": filled(-bound),
		"alternating": {bound, -bound, bound, -bound, bound, -bound, bound},
	}

	predictionModes(t, func(t *testing.T, p *Predictor) {
		for name, raw := range vectors {
			result, err := p.Predict(context.Background(), raw)
			require.NoError(t, err, name)
			assertResultInvariants(t, result)
		}
	})
}

func TestPredictRejectsUnboundedFeatures(t *testing.T) {
	p := newTrained(t)

	vectors := map[string][]float64{
		"huge":       {1e308, 1e308, 1e308, 1e308, 1e308, 1e308, 1e308},
		"mixed huge": {1e308, -1e308, 1e308, -1e308, 1e308, -1e308, 1e308},
		"nan":        {0.5, 0.5, math.NaN(), 0.5, 0.5, 0.5, 0.5},
		"infinite":   {math.Inf(1), 0.5, 0.5, 0.5, 0.5, 0.5, 0.5},
	}

	for name, raw := range vectors {
		_, err := p.Predict(context.Background(), raw)
		assert.True(t, errors.Is(err, models.ErrValidation), "%s: %v", name, err)
	}
}

func TestPredictDeterministic(t *testing.T) {
	p := newTrained(t)

	first, err := p.Predict(context.Background(), strongHome)
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), strongHome)
	require.NoError(t, err)

	assert.Equal(t, first.Probabilities, second.Probabilities)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestPredictValidation(t *testing.T) {
	p := newTrained(t)

	_, err := p.Predict(context.Background(), []float64{0.5, 0.5})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestPredictCancelledContext(t *testing.T) {
	p := newTrained(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Predict(ctx, strongHome)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestModelInfo(t *testing.T) {
	p := newTrained(t)

	info, err := p.ModelInfo()
	require.NoError(t, err)
	assert.Equal(t, p.ActiveModelID(), info.ModelID)
	assert.Equal(t, models.SourceSynthetic, info.Source)
	assert.Equal(t, 400, info.TrainingSamples)
	assert.Equal(t, models.FeatureNames, info.FeatureNames)

	var total float64
	for _, w := range info.Weights {
		assert.GreaterOrEqual(t, w, 0.0)
		total += w
	}
	assert.InDelta(t, 1, total, 1e-9)
}

func TestTrainExternalSwapsModel(t *testing.T) {
	p := newTrained(t)
	before := p.ActiveModelID()

	X, y := ensemble.GenerateSynthetic(150, rand.New(rand.NewSource(5)))
	summary, err := p.Train(context.Background(), X, y)
	require.NoError(t, err)

	assert.Equal(t, models.SourceExternal, summary.Source)
	assert.Equal(t, 150, summary.Samples)
	assert.NotEqual(t, before, summary.ModelID)
	assert.Equal(t, summary.ModelID, p.ActiveModelID())
}

func TestTrainFailureKeepsModel(t *testing.T) {
	p := newTrained(t)
	before := p.ActiveModelID()

	_, err := p.Train(context.Background(), [][]float64{{1, 2}}, []int{0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Equal(t, before, p.ActiveModelID())
}

func TestTrainRecordsModel(t *testing.T) {
	recorder := new(MockModelRecorder)
	recorder.On("Create", mock.Anything, mock.MatchedBy(func(r *models.ModelRecord) bool {
		return r.Source == models.SourceSynthetic && r.TrainingSamples == 400
	})).Return(nil).Once()

	_, err := NewTrained(context.Background(), testConfig(), Dependencies{Models: recorder})
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestTrainRecorderFailureIsNotFatal(t *testing.T) {
	recorder := new(MockModelRecorder)
	recorder.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	p, err := NewTrained(context.Background(), testConfig(), Dependencies{Models: recorder})
	require.NoError(t, err)
	assert.True(t, p.Ready())
}

func TestConcurrentPredictDuringRetrain(t *testing.T) {
	p := newTrained(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				result, err := p.Predict(context.Background(), strongHome)
				if assert.NoError(t, err) {
					assert.True(t, result.Probabilities.IsValid())
				}
			}
		}()
	}

	_, err := p.TrainSynthetic(context.Background(), 200, 77)
	require.NoError(t, err)
	wg.Wait()
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "validation", errorKind(models.ErrValidation))
	assert.Equal(t, "computation", errorKind(models.ErrComputation))
	assert.Equal(t, "not_trained", errorKind(models.ErrModelNotTrained))
	assert.Equal(t, "cancelled", errorKind(context.DeadlineExceeded))
	assert.Equal(t, "internal", errorKind(errors.New("boom")))
}
