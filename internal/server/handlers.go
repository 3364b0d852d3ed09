package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/magajico/internal/cache"
	"github.com/yourusername/magajico/internal/metrics"
	"github.com/yourusername/magajico/internal/models"
)

const (
	maxBodyBytes   = 10 << 20
	persistTimeout = 2 * time.Second
)

// ErrBusy is returned when a request gives up waiting for a prediction slot
var ErrBusy = errors.New("prediction capacity exhausted")

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	endpoints := []string{
		"GET /",
		"GET /health",
		"GET /live",
		"GET /ready",
		"GET /model/info",
		"POST /predict",
		"POST /predict/batch",
		"POST /train",
	}
	if s.cfg.Metrics.Enabled {
		endpoints = append(endpoints, "GET "+s.cfg.Metrics.Path)
	}
	if s.hub != nil {
		endpoints = append(endpoints, "GET /ws/predictions")
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":       s.cfg.App.Name,
		"model_version": s.predictor.ModelVersion(),
		"model_ready":   s.predictor.Ready(),
		"endpoints":     endpoints,
	})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.predictor.ModelInfo()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.predictOne(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Predictions) == 0 {
		s.writeError(w, r, fmt.Errorf("%w: predictions must not be empty", models.ErrValidation))
		return
	}
	if len(req.Predictions) > s.cfg.Server.MaxBatchSize {
		s.writeError(w, r, fmt.Errorf("%w: batch of %d exceeds the limit of %d",
			models.ErrValidation, len(req.Predictions), s.cfg.Server.MaxBatchSize))
		return
	}

	resp := BatchResponse{
		Success:      true,
		Predictions:  make([]BatchItem, 0, len(req.Predictions)),
		ModelVersion: s.predictor.ModelVersion(),
	}
	for i, item := range req.Predictions {
		prediction, err := s.predictOne(r.Context(), item)
		if err != nil {
			resp.Failed++
			resp.Predictions = append(resp.Predictions, BatchItem{Index: i, Error: err.Error()})
			continue
		}
		resp.Count++
		resp.Predictions = append(resp.Predictions, BatchItem{Index: i, Success: true, PredictionResponse: prediction})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	summary, err := s.predictor.Train(r.Context(), req.Data, req.Labels)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.cache != nil {
		s.cache.Clear()
	}

	s.writeJSON(w, http.StatusOK, TrainResponse{
		Success:         true,
		DurationSeconds: summary.Duration.Seconds(),
		TrainingSummary: summary,
	})
}

// predictOne serves one feature vector from the cache or the pipeline
func (s *Server) predictOne(ctx context.Context, req PredictRequest) (*PredictionResponse, error) {
	if s.cache != nil {
		if modelID := s.predictor.ActiveModelID(); modelID != uuid.Nil {
			if result, ok := s.cache.Get(cache.Key(req.Features, modelID)); ok {
				return NewPredictionResponse(result, req.MatchContext, true), nil
			}
		}
	}

	result, err := s.runPrediction(ctx, req.Features)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(cache.Key(req.Features, result.ModelID), result)
	}
	s.persist(ctx, result, req.MatchContext)
	if s.hub != nil {
		s.hub.Broadcast(newSummary(result))
	}

	return NewPredictionResponse(result, req.MatchContext, false), nil
}

// runPrediction holds one admission slot for the duration of the pipeline
func (s *Server) runPrediction(ctx context.Context, features []float64) (*models.PredictionResult, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBusy, err)
	}
	metrics.SemaphoreInUse.Inc()
	defer func() {
		metrics.SemaphoreInUse.Dec()
		s.sem.Release(1)
	}()

	return s.predictor.Predict(ctx, features)
}

// persist stores the audit row in the background; failures never fail the prediction.
// Shutdown waits for in-flight writes.
func (s *Server) persist(ctx context.Context, result *models.PredictionResult, matchContext map[string]string) {
	if s.predictions == nil {
		return
	}

	record, err := models.NewPredictionRecord(result, matchContext)
	if err != nil {
		s.log.WithError(err).Warn("Failed to build prediction record")
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		ctx, cancel := context.WithTimeout(ctx, persistTimeout)
		defer cancel()

		if err := s.predictions.Create(ctx, record); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"prediction_id": record.ID.String(),
			}).Warn("Failed to persist prediction")
		}
	}()
}

// waitPending blocks until background writes finish or ctx is done
func (s *Server) waitPending(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", models.ErrValidation, err)
	}
	return nil
}
