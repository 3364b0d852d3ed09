package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/magajico/internal/models"
)

const percentPlaces = 4

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Service   string `json:"service,omitempty"`
	Error     string `json:"error"`
	Type      string `json:"type"`
	Path      string `json:"path,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
}

// PredictRequest is the body of POST /predict and one batch item
type PredictRequest struct {
	Features     []float64         `json:"features"`
	MatchContext map[string]string `json:"match_context,omitempty"`
}

// BatchRequest is the body of POST /predict/batch
type BatchRequest struct {
	Predictions []PredictRequest `json:"predictions"`
}

// TrainRequest is the body of POST /train
type TrainRequest struct {
	Data   [][]float64 `json:"data"`
	Labels []int       `json:"labels"`
}

// PredictionResponse is a prediction with confidence and probabilities on a 0-100 scale
type PredictionResponse struct {
	PredictionID        string                     `json:"prediction_id"`
	Prediction          string                     `json:"prediction"`
	Confidence          float64                    `json:"confidence"`
	Probabilities       map[string]float64         `json:"probabilities"`
	ModelID             string                     `json:"model_id"`
	ModelVersion        string                     `json:"model_version"`
	FeaturesUsed        []float64                  `json:"features_used"`
	EnhancedFeatures    map[string]float64         `json:"enhanced_features,omitempty"`
	MatchContext        map[string]string          `json:"match_context,omitempty"`
	MarketAnalysis      models.MarketAnalysis      `json:"market_analysis"`
	EnsembleBreakdown   models.EnsembleBreakdown   `json:"ensemble_breakdown"`
	ConfidenceBreakdown models.ConfidenceBreakdown `json:"confidence_breakdown"`
	MagajicoAnalysis    models.StrategicAnalysis   `json:"magajico_analysis"`
	RiskMetrics         models.RiskMetrics         `json:"risk_metrics"`
	ValueOpportunities  []models.ValueOpportunity  `json:"value_opportunities"`
	Cached              bool                       `json:"cached"`
	Timestamp           time.Time                  `json:"timestamp"`
}

// BatchItem is one independently evaluated batch entry
type BatchItem struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	*PredictionResponse
}

// BatchResponse is the body returned by POST /predict/batch
type BatchResponse struct {
	Success      bool        `json:"success"`
	Count        int         `json:"count"`
	Failed       int         `json:"failed"`
	Predictions  []BatchItem `json:"predictions"`
	ModelVersion string      `json:"model_version"`
}

// TrainResponse is the body returned by POST /train
type TrainResponse struct {
	Success         bool    `json:"success"`
	DurationSeconds float64 `json:"duration_seconds"`
	*models.TrainingSummary
}

// percent rescales a probability to 0-100 rounded to four decimal places
func percent(p float64) float64 {
	return decimal.NewFromFloat(p).Shift(2).Round(percentPlaces).InexactFloat64()
}

func percentMap(d models.Distribution) map[string]float64 {
	out := make(map[string]float64, models.NumOutcomes)
	for _, o := range models.Outcomes {
		out[o.String()] = percent(d[o])
	}
	return out
}

// NewPredictionResponse converts a pipeline result to the API representation
func NewPredictionResponse(result *models.PredictionResult, matchContext map[string]string, cached bool) *PredictionResponse {
	opportunities := result.ValueOpportunities
	if opportunities == nil {
		opportunities = []models.ValueOpportunity{}
	}

	return &PredictionResponse{
		PredictionID:        result.ID.String(),
		Prediction:          result.Prediction.String(),
		Confidence:          percent(result.Confidence),
		Probabilities:       percentMap(result.Probabilities),
		ModelID:             result.ModelID.String(),
		ModelVersion:        result.ModelVersion,
		FeaturesUsed:        append([]float64(nil), result.Features...),
		EnhancedFeatures:    models.EnhancedFeatureVector(result.EnhancedFeatures).Named(),
		MatchContext:        matchContext,
		MarketAnalysis:      result.MarketAnalysis,
		EnsembleBreakdown:   result.EnsembleBreakdown,
		ConfidenceBreakdown: result.ConfidenceBreakdown,
		MagajicoAnalysis:    result.StrategicAnalysis,
		RiskMetrics:         result.RiskMetrics,
		ValueOpportunities:  opportunities,
		Cached:              cached,
		Timestamp:           result.PredictedAt,
	}
}

// writeJSON writes body with status; the header is already sent when encoding fails, so the error is only logged
func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).WithField("status", status).Error("Failed to encode response")
	}
}

// writeError maps pipeline errors onto status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Type: "validation_error"})
	case errors.Is(err, models.ErrModelNotTrained):
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   err.Error(),
			Type:    "model_not_ready",
			Message: "Model training has not completed",
		})
	case errors.Is(err, ErrBusy):
		s.writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{
			Error:   err.Error(),
			Type:    "service_busy",
			Message: "All prediction slots are in use, retry later",
		})
	default:
		s.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		s.writeInternalError(w, r)
	}
}

func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Service:   s.cfg.App.Name,
		Error:     "internal server error",
		Type:      "internal_error",
		Path:      r.URL.Path,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Message:   "An unexpected error occurred",
	})
}
