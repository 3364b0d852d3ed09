// Package metrics provides centralized Prometheus metrics registry for the predictor.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "magajico"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Total number of predictions by predicted outcome",
	}, []string{"outcome"})
	PredictionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_errors_total",
		Help:      "Total number of failed predictions by error kind",
	}, []string{"kind"})
	ValueOpportunitiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "value_opportunities_total",
		Help:      "Total number of detected value opportunities by confidence level",
	}, []string{"level"})
)

// Gauge metrics
var (
	ModelWeight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_weight",
		Help:      "Ensemble weight of each estimator in the active model",
	}, []string{"estimator"})
	ModelCVScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "model_cv_score",
		Help:      "Cross-validated accuracy of each estimator in the active model",
	}, []string{"estimator"})
)

// Histogram metrics
var (
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_latency_seconds",
		Help:      "Latency of the prediction pipeline in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})
	PredictionConfidence = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_confidence",
		Help:      "Confidence scores of completed predictions",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register prediction metrics
		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionErrorsTotal)
		registry.MustRegister(ValueOpportunitiesTotal)
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(PredictionConfidence)

		// Register model metrics
		registry.MustRegister(ModelWeight)
		registry.MustRegister(ModelCVScore)
		registry.MustRegister(TrainingRunsTotal)
		registry.MustRegister(TrainingDuration)
		registry.MustRegister(TrainingSamples)

		// Register request metrics
		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(HTTPRequestDuration)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(RateLimitedTotal)
		registry.MustRegister(SemaphoreInUse)
		registry.MustRegister(WebsocketClients)
		registry.MustRegister(CircuitBreakerTripsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records a completed prediction.
func RecordPrediction(outcome string, confidence, latencySeconds float64) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
	PredictionConfidence.Observe(confidence)
	PredictionLatency.Observe(latencySeconds)
}

// RecordPredictionError records a failed prediction.
// kind should be one of: "validation", "computation", "internal"
func RecordPredictionError(kind string) {
	PredictionErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordValueOpportunity records a detected value opportunity.
func RecordValueOpportunity(level string) {
	ValueOpportunitiesTotal.WithLabelValues(level).Inc()
}

// UpdateModelWeights replaces the estimator weight and CV score gauges.
func UpdateModelWeights(weights, cvScores map[string]float64) {
	for name, w := range weights {
		ModelWeight.WithLabelValues(name).Set(w)
	}
	for name, s := range cvScores {
		ModelCVScore.WithLabelValues(name).Set(s)
	}
}
