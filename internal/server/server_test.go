package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
	"github.com/yourusername/magajico/internal/predictor"
	"github.com/yourusername/magajico/internal/ratelimit"
)

var strongHome = []float64{0.9, 0.2, 0.8, 0.9, 0.1, 0.2, 0.8}

// MockPredictor is a mock implementation of Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, raw []float64) (*models.PredictionResult, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PredictionResult), args.Error(1)
}

func (m *MockPredictor) Train(ctx context.Context, X [][]float64, y []int) (*models.TrainingSummary, error) {
	args := m.Called(ctx, X, y)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TrainingSummary), args.Error(1)
}

func (m *MockPredictor) ModelInfo() (models.ModelInfo, error) {
	args := m.Called()
	return args.Get(0).(models.ModelInfo), args.Error(1)
}

func (m *MockPredictor) ModelVersion() string {
	return m.Called().String(0)
}

func (m *MockPredictor) ActiveModelID() uuid.UUID {
	return m.Called().Get(0).(uuid.UUID)
}

func (m *MockPredictor) Ready() bool {
	return m.Called().Bool(0)
}

// MockPredictionRepository is a mock implementation of repository.PredictionRepository
type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Create(ctx context.Context, p *models.PredictionRecord) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPredictionRepository) GetRecent(ctx context.Context, limit int) ([]*models.PredictionRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*models.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) GetByModelID(ctx context.Context, id uuid.UUID, limit int) ([]*models.PredictionRecord, error) {
	args := m.Called(ctx, id, limit)
	return args.Get(0).([]*models.PredictionRecord), args.Error(1)
}

var testModelID = uuid.MustParse("0b6d3f4e-52a1-4c8e-9d51-7f1f2a9c3e10")

func cannedResult() *models.PredictionResult {
	return &models.PredictionResult{
		ID:               uuid.New(),
		Prediction:       models.Home,
		Confidence:       0.712345678,
		Probabilities:    models.Distribution{0.55, 0.25, 0.20},
		ModelID:          testModelID,
		ModelVersion:     "3.0.0",
		Features:         strongHome,
		EnhancedFeatures: append(append([]float64(nil), strongHome...), 0.72, 0.16, 0.6, 0.15, 0.8),
		StrategicAnalysis: models.StrategicAnalysis{
			ValueDetection: models.ValueNone,
		},
		PredictedAt: time.Now().UTC(),
	}
}

func readyPredictor() *MockPredictor {
	p := &MockPredictor{}
	p.On("ModelVersion").Return("3.0.0")
	p.On("ActiveModelID").Return(testModelID)
	p.On("Ready").Return(true)
	return p
}

func testServerConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.MaxBatchSize = 3
	return cfg
}

func newTestServer(cfg *config.Config, deps Dependencies) *Server {
	return New(cfg, deps)
}

func do(t *testing.T, s *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	return doWithContext(t, s, context.Background(), method, path, body)
}

func doWithContext(t *testing.T, s *Server, ctx context.Context, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestPredictReturnsPercentages(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{
		Features:     strongHome,
		MatchContext: map[string]string{"home_team": "Arsenal"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home", body["prediction"])
	assert.Equal(t, 71.2346, body["confidence"])
	probs := body["probabilities"].(map[string]interface{})
	assert.Equal(t, 55.0, probs["home"])
	assert.Equal(t, 25.0, probs["draw"])
	assert.Equal(t, 20.0, probs["away"])
	assert.Equal(t, false, body["cached"])
	assert.Equal(t, "Arsenal", body["match_context"].(map[string]interface{})["home_team"])
	assert.Equal(t, []interface{}{0.9, 0.2, 0.8, 0.9, 0.1, 0.2, 0.8}, body["features_used"])
	enhanced := body["enhanced_features"].(map[string]interface{})
	assert.Len(t, enhanced, len(models.FeatureNames))
	assert.Equal(t, 0.72, enhanced["home_xg"])
	assert.NotNil(t, body["value_opportunities"])
}

func TestPredictCacheHit(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})
	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["cached"])
	p.AssertNumberOfCalls(t, "Predict", 1)
}

func TestPredictCacheDisabled(t *testing.T) {
	cfg := testServerConfig()
	cfg.Cache.Enabled = false
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	s := newTestServer(cfg, Dependencies{Predictor: p})

	do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})
	do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})

	p.AssertNumberOfCalls(t, "Predict", 2)
}

func TestPredictValidationError(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, []float64{1, 2, 3}).
		Return(nil, fmt.Errorf("%w: feature vector must contain exactly 7 values, got 3", models.ErrValidation))
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: []float64{1, 2, 3}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["type"])
	assert.Contains(t, body["error"], "exactly 7 values")
}

func TestPredictMalformedBody(t *testing.T) {
	s := newTestServer(testServerConfig(), Dependencies{Predictor: readyPredictor()})

	rec, body := do(t, s, http.MethodPost, "/predict", `{"features": [0.1,`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["type"])
}

func TestPredictNotTrained(t *testing.T) {
	p := &MockPredictor{}
	p.On("ActiveModelID").Return(uuid.Nil)
	p.On("Predict", mock.Anything, strongHome).Return(nil, models.ErrModelNotTrained)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "model_not_ready", body["type"])
}

func TestPredictInternalErrorEnvelope(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(nil, errors.New("boom"))
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "magajico-predictor", body["service"])
	assert.Equal(t, "internal_error", body["type"])
	assert.Equal(t, "/predict", body["path"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotContains(t, body["message"], "boom")
}

func TestPanicRecovered(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Run(func(mock.Arguments) { panic("unexpected") })
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", body["type"])
}

func TestPredictBusy(t *testing.T) {
	cfg := testServerConfig()
	cfg.Server.MaxConcurrent = 1
	cfg.Cache.Enabled = false
	s := newTestServer(cfg, Dependencies{Predictor: readyPredictor()})

	require.NoError(t, s.sem.Acquire(context.Background(), 1))
	defer s.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	rec, body := doWithContext(t, s, ctx, http.MethodPost, "/predict", PredictRequest{Features: strongHome})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service_busy", body["type"])
}

func TestPersistenceFailureDoesNotFailPrediction(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	repo := &MockPredictionRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.PredictionRecord")).Return(errors.New("db down"))
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p, Predictions: repo})

	rec, _ := do(t, s, http.MethodPost, "/predict", PredictRequest{
		Features:     strongHome,
		MatchContext: map[string]string{"league": "EPL"},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, s.waitPending(context.Background()))
	repo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(r *models.PredictionRecord) bool {
		return r.ModelID == testModelID && r.Prediction == "home" && string(r.MatchContext) == `{"league":"EPL"}`
	}))
}

func TestPersistenceDoesNotDelayResponse(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	release := make(chan time.Time)
	repo := &MockPredictionRepository{}
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.PredictionRecord")).
		WaitUntil(release).
		Return(nil)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p, Predictions: repo})

	rec, _ := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})
	assert.Equal(t, http.StatusOK, rec.Code)

	// the write is still blocked, so a short shutdown deadline expires
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, s.Shutdown(context.Background()))
	repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestBatchItemsFailIndependently(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	p.On("Predict", mock.Anything, []float64{0.5}).
		Return(nil, fmt.Errorf("%w: feature vector must contain exactly 7 values, got 1", models.ErrValidation))
	cfg := testServerConfig()
	cfg.Cache.Enabled = false
	s := newTestServer(cfg, Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/predict/batch", BatchRequest{Predictions: []PredictRequest{
		{Features: strongHome},
		{Features: []float64{0.5}},
	}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 1.0, body["count"])
	assert.Equal(t, 1.0, body["failed"])
	assert.Equal(t, "3.0.0", body["model_version"])

	items := body["predictions"].([]interface{})
	require.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, true, first["success"])
	assert.Equal(t, "home", first["prediction"])
	second := items[1].(map[string]interface{})
	assert.Equal(t, false, second["success"])
	assert.Equal(t, 1.0, second["index"])
	assert.Contains(t, second["error"], "exactly 7 values")
}

func TestBatchLimits(t *testing.T) {
	s := newTestServer(testServerConfig(), Dependencies{Predictor: readyPredictor()})

	rec, _ := do(t, s, http.MethodPost, "/predict/batch", BatchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	items := make([]PredictRequest, 4)
	rec, body := do(t, s, http.MethodPost, "/predict/batch", BatchRequest{Predictions: items})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "exceeds the limit")
}

func TestRateLimited(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1, time.Minute)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p, Limiter: limiter})

	rec, _ := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate_limited", body["type"])
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// health endpoints are not limited
	rec, _ = do(t, s, http.MethodGet, "/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func predictFrom(t *testing.T, s *Server, remoteAddr, forwardedFor string) int {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(PredictRequest{Features: strongHome}))
	req := httptest.NewRequest(http.MethodPost, "/predict", &buf)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1, time.Minute)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p, Limiter: limiter})

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		codes = append(codes, predictFrom(t, s, "203.0.113.7:40000", fmt.Sprintf("1.2.3.%d", i)))
	}

	assert.Equal(t, http.StatusOK, codes[0])
	for _, code := range codes[1:] {
		assert.Equal(t, http.StatusTooManyRequests, code)
	}
}

func TestRateLimitHonoursForwardedForFromTrustedProxy(t *testing.T) {
	p := readyPredictor()
	p.On("Predict", mock.Anything, strongHome).Return(cannedResult(), nil)
	cfg := testServerConfig()
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8"}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore(), 1, time.Minute)
	s := newTestServer(cfg, Dependencies{Predictor: p, Limiter: limiter})

	assert.Equal(t, http.StatusOK, predictFrom(t, s, "10.1.2.3:5000", "198.51.100.1"))
	assert.Equal(t, http.StatusOK, predictFrom(t, s, "10.1.2.3:5000", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, predictFrom(t, s, "10.9.9.9:5000", "198.51.100.1"))

	// a client-supplied leftmost entry does not override the address the proxy saw
	assert.Equal(t, http.StatusTooManyRequests, predictFrom(t, s, "10.1.2.3:5000", "1.2.3.4, 198.51.100.2"))
}

func TestClientAddress(t *testing.T) {
	cfg := testServerConfig()
	cfg.Server.TrustedProxies = []string{"10.0.0.0/8"}
	s := newTestServer(cfg, Dependencies{Predictor: readyPredictor()})

	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		expected   string
	}{
		{"direct peer", "203.0.113.7:1234", "", "203.0.113.7"},
		{"untrusted peer header ignored", "203.0.113.7:1234", "1.2.3.4", "203.0.113.7"},
		{"trusted proxy", "10.0.0.1:1234", "198.51.100.9", "198.51.100.9"},
		{"chained trusted proxies", "10.0.0.1:1234", "198.51.100.9, 10.0.0.2", "198.51.100.9"},
		{"trusted proxy without header", "10.0.0.1:1234", "", "10.0.0.1"},
		{"garbage hop", "10.0.0.1:1234", "not-an-ip", "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.expected, s.clientAddress(req))
		})
	}
}

func TestTrainEndpoint(t *testing.T) {
	p := readyPredictor()
	data := [][]float64{{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}}
	p.On("Train", mock.Anything, data, []int{0}).Return(&models.TrainingSummary{
		ModelID:      uuid.New(),
		ModelVersion: "3.0.0",
		Samples:      1,
		Source:       models.SourceExternal,
		Duration:     1500 * time.Millisecond,
	}, nil)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/train", TrainRequest{Data: data, Labels: []int{0}})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "external", body["source"])
	assert.Equal(t, 1.5, body["duration_seconds"])
}

func TestTrainValidation(t *testing.T) {
	p := readyPredictor()
	p.On("Train", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: data and labels length mismatch", models.ErrValidation))
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/train", TrainRequest{Labels: []int{0}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", body["type"])
}

func TestModelInfoEndpoint(t *testing.T) {
	p := readyPredictor()
	p.On("ModelInfo").Return(models.ModelInfo{
		ModelID:      testModelID,
		ModelVersion: "3.0.0",
		FeatureNames: models.FeatureNames,
		Source:       models.SourceSynthetic,
	}, nil)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodGet, "/model/info", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testModelID.String(), body["model_id"])
	assert.Len(t, body["feature_names"], 12)
}

func TestRootDescriptor(t *testing.T) {
	s := newTestServer(testServerConfig(), Dependencies{Predictor: readyPredictor()})

	rec, body := do(t, s, http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "magajico-predictor", body["service"])
	assert.Contains(t, body["endpoints"], "POST /predict/batch")
	assert.Contains(t, body["endpoints"], "GET /ws/predictions")
	assert.Equal(t, true, body["model_ready"])
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(testServerConfig(), Dependencies{Predictor: readyPredictor()})

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))

	rec, _ = do(t, s, http.MethodGet, "/live", nil)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestWriteJSONLogsEncodeFailure(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	s := newTestServer(testServerConfig(), Dependencies{Logger: log, Predictor: readyPredictor()})

	rec := httptest.NewRecorder()
	s.writeJSON(rec, http.StatusOK, map[string]float64{"confidence": math.NaN()})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "Failed to encode response", hook.LastEntry().Message)
	assert.Equal(t, http.StatusOK, hook.LastEntry().Data["status"])
}

func TestNotFound(t *testing.T) {
	s := newTestServer(testServerConfig(), Dependencies{Predictor: readyPredictor()})

	rec, body := do(t, s, http.MethodGet, "/nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["type"])
}

func TestPercentRounding(t *testing.T) {
	assert.Equal(t, 33.3333, percent(1.0/3.0))
	assert.Equal(t, 100.0, percent(1))
	assert.Equal(t, 0.0, percent(0))
	assert.Equal(t, 12.3457, percent(0.123456789))
}

func TestEndToEndWithTrainedPredictor(t *testing.T) {
	pcfg := config.Default().Predictor
	pcfg.Deterministic = true
	pcfg.Seed = 1
	pcfg.Training.Samples = 400
	pcfg.Training.CVFolds = 3
	pcfg.RandomForest.Trees = 20
	pcfg.RandomForest.MaxDepth = 6
	pcfg.GradientBoosting.Stages = 20
	pcfg.GradientBoosting.MaxDepth = 2
	pcfg.LogisticRegression.MaxIterations = 200

	p, err := predictor.NewTrained(context.Background(), pcfg, predictor.Dependencies{})
	require.NoError(t, err)
	s := newTestServer(testServerConfig(), Dependencies{Predictor: p})

	rec, body := do(t, s, http.MethodPost, "/predict", PredictRequest{Features: strongHome})

	require.Equal(t, http.StatusOK, rec.Code)
	probs := body["probabilities"].(map[string]interface{})
	assert.Greater(t, probs["home"].(float64), probs["away"].(float64))
	assert.InDelta(t, 100, probs["home"].(float64)+probs["draw"].(float64)+probs["away"].(float64), 0.001)

	rec, _ = do(t, s, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
