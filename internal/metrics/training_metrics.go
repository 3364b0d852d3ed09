// Package metrics defines model training metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Training counter vectors
var (
	TrainingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "training_runs_total",
		Help:      "Total number of training runs by source and status",
	}, []string{"source", "status"})
)

// Training histograms
var (
	TrainingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "training_duration_seconds",
		Help:      "Duration of training runs in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})
)

// Training gauges
var (
	TrainingSamples = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "training_samples",
		Help:      "Number of samples the active model was trained on",
	})
)

// RecordTrainingRun records a training run.
// source should be one of: "synthetic", "external"
// status should be one of: "success", "failure"
func RecordTrainingRun(source, status string, durationSeconds float64, samples int) {
	TrainingRunsTotal.WithLabelValues(source, status).Inc()
	if status == "success" {
		TrainingDuration.Observe(durationSeconds)
		TrainingSamples.Set(float64(samples))
	}
}
