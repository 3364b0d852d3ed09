// Package logger provides prediction-pipeline logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for prediction and training events.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "predictor"),
	}
}

// LogPrediction logs a completed prediction.
func (pl *PredictionLogger) LogPrediction(predictionID, outcome string, confidence float64, valueTag string, opportunities int, latency time.Duration) {
	pl.WithFields(logrus.Fields{
		"prediction_id":       predictionID,
		"outcome":             outcome,
		"confidence":          confidence,
		"value_detection":     valueTag,
		"value_opportunities": opportunities,
		"latency_ms":          float64(latency.Microseconds()) / 1000,
	}).Debug("Prediction completed")
}

// LogPredictionError logs a failed prediction.
func (pl *PredictionLogger) LogPredictionError(kind string, err error) {
	pl.WithFields(logrus.Fields{
		"error_kind": kind,
	}).WithError(err).Warn("Prediction failed")
}

// LogValueOpportunity logs a detected value opportunity.
func (pl *PredictionLogger) LogValueOpportunity(predictionID, outcome string, edgePercentage, modelProbability, marketProbability float64, level string) {
	pl.WithFields(logrus.Fields{
		"prediction_id":      predictionID,
		"outcome":            outcome,
		"edge_percentage":    edgePercentage,
		"model_probability":  modelProbability,
		"market_probability": marketProbability,
		"confidence_level":   level,
	}).Info("Value opportunity detected")
}

// LogModelTraining logs model training events.
func (pl *PredictionLogger) LogModelTraining(modelID, version, source string, samples int, duration time.Duration, cvScores, weights map[string]float64) {
	pl.WithFields(logrus.Fields{
		"model_id":          modelID,
		"model_version":     version,
		"source":            source,
		"samples":           samples,
		"training_duration": duration.Seconds(),
		"cv_scores":         cvScores,
		"weights":           weights,
	}).Info("Model training completed")
}

// LogModelTrainingError logs a failed training run.
func (pl *PredictionLogger) LogModelTrainingError(source string, samples int, err error) {
	pl.WithFields(logrus.Fields{
		"source":  source,
		"samples": samples,
	}).WithError(err).Error("Model training failed")
}
