package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("home"))

	RecordPrediction("home", 0.71, 0.002)

	assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues("home")))
}

func TestRecordPredictionError(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name string
		kind string
	}{
		{name: "validation", kind: "validation"},
		{name: "computation", kind: "computation"},
		{name: "internal", kind: "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(PredictionErrorsTotal.WithLabelValues(tt.kind))
			RecordPredictionError(tt.kind)
			assert.Equal(t, before+1, testutil.ToFloat64(PredictionErrorsTotal.WithLabelValues(tt.kind)))
		})
	}
}

func TestUpdateModelWeights(t *testing.T) {
	InitRegistry()

	UpdateModelWeights(
		map[string]float64{"random_forest": 0.35, "logistic_regression": 0.3},
		map[string]float64{"random_forest": 0.62},
	)

	assert.Equal(t, 0.35, testutil.ToFloat64(ModelWeight.WithLabelValues("random_forest")))
	assert.Equal(t, 0.3, testutil.ToFloat64(ModelWeight.WithLabelValues("logistic_regression")))
	assert.Equal(t, 0.62, testutil.ToFloat64(ModelCVScore.WithLabelValues("random_forest")))
}

func TestRecordTrainingRun(t *testing.T) {
	InitRegistry()

	RecordTrainingRun("synthetic", "success", 1.5, 2000)
	assert.Equal(t, 2000.0, testutil.ToFloat64(TrainingSamples))

	RecordTrainingRun("external", "failure", 0, 10)
	assert.Equal(t, 2000.0, testutil.ToFloat64(TrainingSamples))
}

func TestRequestMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordHTTPRequest("/predict", "POST", "200", 0.01)
		RecordCacheHit()
		RecordCacheMiss()
		RecordRateLimited()
		RecordValueOpportunity("high")
		RecordCircuitBreakerTrip("predictor-api")
		SemaphoreInUse.Inc()
		SemaphoreInUse.Dec()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()
	RecordCacheHit()

	handler := Handler()
	require.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "magajico_cache_hits_total")
}

func BenchmarkRecordPrediction(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordPrediction("draw", 0.5, 0.001)
	}
}
