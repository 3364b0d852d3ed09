// Package server exposes the predictor over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/yourusername/magajico/internal/cache"
	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/health"
	"github.com/yourusername/magajico/internal/logger"
	"github.com/yourusername/magajico/internal/metrics"
	"github.com/yourusername/magajico/internal/models"
	"github.com/yourusername/magajico/internal/ratelimit"
	"github.com/yourusername/magajico/internal/repository"
)

// Predictor is the prediction pipeline served by the API
type Predictor interface {
	Predict(ctx context.Context, raw []float64) (*models.PredictionResult, error)
	Train(ctx context.Context, X [][]float64, y []int) (*models.TrainingSummary, error)
	ModelInfo() (models.ModelInfo, error)
	ModelVersion() string
	ActiveModelID() uuid.UUID
	Ready() bool
}

// Dependencies holds the collaborators of a Server; everything but Predictor is optional
type Dependencies struct {
	Logger      *logrus.Logger
	Predictor   Predictor
	Predictions repository.PredictionRepository
	Limiter     *ratelimit.Limiter
	DB          health.DatabasePinger
}

// Server is the prediction HTTP API
type Server struct {
	cfg         *config.Config
	predictor   Predictor
	predictions repository.PredictionRepository
	cache       *cache.PredictionCache
	limiter     *ratelimit.Limiter
	health      *health.Checker
	hub         *Hub
	sem         *semaphore.Weighted
	proxies     []*net.IPNet
	pending     sync.WaitGroup

	log   *logrus.Entry
	audit *logger.AuditLogger

	handler    http.Handler
	httpServer *http.Server
}

// New creates a server and builds its routes
func New(cfg *config.Config, deps Dependencies) *Server {
	base := deps.Logger
	if base == nil {
		base = logger.Discard()
	}

	s := &Server{
		cfg:         cfg,
		predictor:   deps.Predictor,
		predictions: deps.Predictions,
		limiter:     deps.Limiter,
		sem:         semaphore.NewWeighted(int64(cfg.Server.MaxConcurrent)),
		proxies:     cfg.TrustedProxyNetworks(),
		log:         base.WithField("component", "server"),
		audit:       logger.NewAuditLogger(base),
		health: health.NewChecker(health.Config{
			ServiceName: cfg.App.Name,
			Model:       deps.Predictor,
			DB:          deps.DB,
		}),
	}

	if cfg.Cache.Enabled {
		s.cache = cache.NewPredictionCache(cfg.Cache.TTL(), cfg.Cache.MaxSize)
	}
	if cfg.Server.WebsocketEnabled {
		s.hub = NewHub(base)
	}

	s.handler = s.corsPolicy().Handler(s.routes())
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestID, s.accessLog, s.recoverer)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health.HandleHealth).Methods(http.MethodGet)
	r.HandleFunc("/live", s.health.HandleLive).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.health.HandleReady).Methods(http.MethodGet)
	r.HandleFunc("/model/info", s.handleModelInfo).Methods(http.MethodGet)

	r.Handle("/predict", s.rateLimit(http.HandlerFunc(s.handlePredict))).Methods(http.MethodPost)
	r.Handle("/predict/batch", s.rateLimit(http.HandlerFunc(s.handleBatch))).Methods(http.MethodPost)
	r.Handle("/train", s.rateLimit(http.HandlerFunc(s.handleTrain))).Methods(http.MethodPost)

	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, metrics.Handler()).Methods(http.MethodGet)
	}
	if s.hub != nil {
		r.HandleFunc("/ws/predictions", s.hub.ServeWS).Methods(http.MethodGet)
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not found", Type: "not_found", Path: r.URL.Path})
	})

	return r
}

// corsPolicy allows every origin outside production and only the frontend in production
func (s *Server) corsPolicy() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the prediction stream hub, nil when websockets are disabled
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start serves HTTP until Shutdown is called.
// The websocket hub runs until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s.hub != nil {
		go s.hub.Run(ctx)
	}

	s.log.WithFields(logrus.Fields{
		"address":   s.cfg.Server.Address,
		"websocket": s.hub != nil,
		"cache":     s.cache != nil,
	}).Info("Prediction API starting")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server, then waits for pending prediction writes
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Prediction API shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if err := s.waitPending(ctx); err != nil {
		s.log.WithError(err).Warn("Pending prediction writes did not finish")
		return err
	}
	return nil
}
