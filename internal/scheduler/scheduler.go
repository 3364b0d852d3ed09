// Package scheduler runs periodic synthetic retraining of the predictor.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/magajico/internal/logger"
	"github.com/yourusername/magajico/internal/models"
)

const retrainTimeout = 30 * time.Minute

// Trainer retrains the predictor on freshly generated synthetic data
type Trainer interface {
	TrainSynthetic(ctx context.Context, samples int, seed int64) (*models.TrainingSummary, error)
}

// Scheduler manages scheduled retraining jobs
type Scheduler struct {
	cron            *cron.Cron
	trainer         Trainer
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
	seed            func() int64
}

// NewScheduler creates a new scheduler
func NewScheduler(trainer Trainer, base *logrus.Logger) *Scheduler {
	if base == nil {
		base = logger.Discard()
	}

	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		trainer:         trainer,
		logger:          base.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
		seed:            func() int64 { return time.Now().UnixNano() },
	}
}

// ScheduleRetraining schedules synthetic retraining with a fresh seed on every run
func (s *Scheduler) ScheduleRetraining(cronExpression string, samples int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), retrainTimeout)
		defer cancel()
		s.retrain(ctx, samples)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"schedule": cronExpression,
		"samples":  samples,
	}).Info("Scheduled model retraining")

	return nil
}

// retrain runs one retraining; failures keep the previous model active
func (s *Scheduler) retrain(ctx context.Context, samples int) {
	seed := s.seed()
	start := time.Now()

	s.logger.WithFields(logrus.Fields{
		"samples": samples,
		"seed":    seed,
	}).Info("Starting scheduled retraining")

	summary, err := s.trainer.TrainSynthetic(ctx, samples, seed)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled retraining failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"model_id": summary.ModelID.String(),
		"samples":  summary.Samples,
		"duration": time.Since(start).String(),
	}).Info("Scheduled retraining completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop waits for running jobs up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
