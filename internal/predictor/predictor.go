// Package predictor owns the trained model snapshot and runs the full prediction pipeline:
// feature expansion, ensemble, market and sharp models, fusion, then risk and value analytics.
package predictor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/magajico/internal/analytics"
	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/ensemble"
	"github.com/yourusername/magajico/internal/features"
	"github.com/yourusername/magajico/internal/fusion"
	"github.com/yourusername/magajico/internal/logger"
	"github.com/yourusername/magajico/internal/market"
	"github.com/yourusername/magajico/internal/metrics"
	"github.com/yourusername/magajico/internal/models"
)

// ModelRecorder persists completed training runs
type ModelRecorder interface {
	Create(ctx context.Context, record *models.ModelRecord) error
}

// Dependencies holds the optional collaborators of a Predictor
type Dependencies struct {
	Logger *logrus.Logger
	// Models records every successful training run when set
	Models ModelRecorder
}

// snapshot is one immutable trained model
type snapshot struct {
	id        uuid.UUID
	version   string
	ensemble  *ensemble.Ensemble
	source    models.TrainingSource
	trainedAt time.Time
}

// Predictor runs predictions against the active snapshot.
// Predict is safe for concurrent use; training builds a new snapshot and swaps it in atomically.
type Predictor struct {
	cfg      config.PredictorConfig
	expander *features.Expander
	kalshi   *market.KalshiModel
	pinnacle *market.PinnacleModel
	fuser    *fusion.Fuser
	detector *analytics.ValueDetector

	active  atomic.Pointer[snapshot]
	trainMu sync.Mutex

	models ModelRecorder
	log    *logger.PredictionLogger
	audit  *logger.AuditLogger
}

// New creates an untrained predictor
func New(cfg config.PredictorConfig, deps Dependencies) *Predictor {
	base := deps.Logger
	if base == nil {
		base = logger.Discard()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Predictor{
		cfg:      cfg,
		expander: features.NewSeededExpander(seed, cfg.Deterministic),
		kalshi:   market.NewKalshiModel(),
		pinnacle: market.NewPinnacleModel(cfg.Sharp),
		fuser:    fusion.NewFuser(cfg.Fusion, cfg.Confidence),
		detector: analytics.NewValueDetector(cfg.Value),
		models:   deps.Models,
		log:      logger.NewPredictionLogger(base),
		audit:    logger.NewAuditLogger(base),
	}
}

// NewTrained creates a predictor and blocks until the initial synthetic training completes
func NewTrained(ctx context.Context, cfg config.PredictorConfig, deps Dependencies) (*Predictor, error) {
	p := New(cfg, deps)
	if _, err := p.TrainSynthetic(ctx, cfg.Training.Samples, cfg.Training.Seed); err != nil {
		return nil, err
	}
	return p, nil
}

// Ready reports whether a trained model is available
func (p *Predictor) Ready() bool {
	return p.active.Load() != nil
}

// Predict runs the full pipeline for one raw feature vector
func (p *Predictor) Predict(ctx context.Context, raw []float64) (*models.PredictionResult, error) {
	start := time.Now()

	result, err := p.predict(ctx, raw)
	if err != nil {
		kind := errorKind(err)
		metrics.RecordPredictionError(kind)
		p.log.LogPredictionError(kind, err)
		return nil, err
	}

	latency := time.Since(start)
	metrics.RecordPrediction(result.Prediction.String(), result.Confidence, latency.Seconds())
	for _, opp := range result.ValueOpportunities {
		metrics.RecordValueOpportunity(string(opp.ConfidenceLevel))
		p.log.LogValueOpportunity(result.ID.String(), opp.Outcome.String(), opp.EdgePercentage,
			opp.ModelProbability, opp.MarketProbability, string(opp.ConfidenceLevel))
	}
	p.log.LogPrediction(result.ID.String(), result.Prediction.String(), result.Confidence,
		result.StrategicAnalysis.ValueDetection, len(result.ValueOpportunities), latency)

	return result, nil
}

func (p *Predictor) predict(ctx context.Context, raw []float64) (*models.PredictionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := models.FeatureVector(raw).Validate(); err != nil {
		return nil, err
	}

	snap := p.active.Load()
	if snap == nil {
		return nil, models.ErrModelNotTrained
	}

	enhanced, err := p.expander.Expand(raw)
	if err != nil {
		return nil, err
	}

	ensembleDist, breakdown, err := snap.ensemble.Predict(enhanced)
	if err != nil {
		return nil, err
	}

	marketDist, err := p.kalshi.MarketProbability(enhanced)
	if err != nil {
		return nil, err
	}

	sharp, err := p.pinnacle.SharpOdds(marketDist, enhanced)
	if err != nil {
		return nil, err
	}

	fused, err := p.fuser.Fuse(ensembleDist, marketDist, sharp, enhanced)
	if err != nil {
		return nil, err
	}

	opportunities := p.detector.Detect(fused.Probabilities, sharp.Odds)
	valueTag := p.detector.Tag(opportunities)

	return &models.PredictionResult{
		ID:               uuid.New(),
		Prediction:       fused.Probabilities.ArgMax(),
		Confidence:       fused.Confidence,
		Probabilities:    fused.Probabilities,
		ModelID:          snap.id,
		ModelVersion:     snap.version,
		Features:         append([]float64(nil), raw...),
		EnhancedFeatures: []float64(enhanced),
		MarketAnalysis: models.MarketAnalysis{
			KalshiProbabilities: marketDist,
			PinnacleOdds:        sharp.Odds,
			SharpProbabilities:  sharp.Probabilities,
			SharpConfidence:     sharp.SharpConfidence,
			LineMovement:        sharp.LineMovement,
			LiquidityFactor:     p.kalshi.LiquidityFactor(enhanced),
		},
		EnsembleBreakdown:   breakdown,
		ConfidenceBreakdown: fused.Breakdown,
		StrategicAnalysis:   analytics.Strategic(fused.Probabilities, sharp, valueTag),
		RiskMetrics:         analytics.ComputeRisk(fused.Probabilities, sharp),
		ValueOpportunities:  opportunities,
		PredictedAt:         time.Now().UTC(),
	}, nil
}

// ModelInfo describes the active model
func (p *Predictor) ModelInfo() (models.ModelInfo, error) {
	snap := p.active.Load()
	if snap == nil {
		return models.ModelInfo{}, models.ErrModelNotTrained
	}
	return snap.info(), nil
}

// ModelVersion returns the configured version string
func (p *Predictor) ModelVersion() string {
	return p.cfg.ModelVersion
}

// ActiveModelID returns the id of the active snapshot, or uuid.Nil before training
func (p *Predictor) ActiveModelID() uuid.UUID {
	if snap := p.active.Load(); snap != nil {
		return snap.id
	}
	return uuid.Nil
}

func (s *snapshot) info() models.ModelInfo {
	return models.ModelInfo{
		ModelID:         s.id,
		ModelVersion:    s.version,
		FeatureNames:    append([]string(nil), models.FeatureNames...),
		Weights:         s.ensemble.Weights(),
		CVScores:        s.ensemble.CVScores(),
		TrainingSamples: s.ensemble.Samples(),
		Source:          s.source,
		TrainedAt:       s.trainedAt,
	}
}

func errorKind(err error) string {
	switch {
	case models.IsValidation(err):
		return "validation"
	case models.IsComputation(err):
		return "computation"
	case errors.Is(err, models.ErrModelNotTrained):
		return "not_trained"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal"
	}
}
