// Package health provides liveness and readiness handlers for the prediction API.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const pingTimeout = 3 * time.Second

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Uptime    string `json:"uptime,omitempty"`
	ModelID   string `json:"model_id,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// ModelState reports whether a trained model is available
type ModelState interface {
	Ready() bool
	ModelVersion() string
}

// Config holds the collaborators of a Checker.
type Config struct {
	ServiceName string
	Model       ModelState
	// DB is checked on readiness when set
	DB DatabasePinger
}

// Checker serves /health, /live and /ready.
type Checker struct {
	serviceName string
	model       ModelState
	db          DatabasePinger
	started     time.Time
}

// NewChecker creates a new health checker.
func NewChecker(cfg Config) *Checker {
	return &Checker{
		serviceName: cfg.ServiceName,
		model:       cfg.Model,
		db:          cfg.DB,
		started:     time.Now(),
	}
}

// Check runs every readiness check and reports whether all passed
func (c *Checker) Check(ctx context.Context) (bool, map[string]string) {
	checks := make(map[string]string)
	allHealthy := true

	if c.model == nil || !c.model.Ready() {
		allHealthy = false
		checks["model"] = "not_trained"
	} else {
		checks["model"] = "ok"
	}

	if c.db != nil {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()

		if err := c.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["database"] = "ok"
		}
	}

	return allHealthy, checks
}

// HandleHealth handles the /health endpoint - basic liveness check with model status.
func (c *Checker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Service:   c.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(c.started).Round(time.Second).String(),
	}
	if c.model != nil {
		response.Version = c.model.ModelVersion()
		if !c.model.Ready() {
			response.Status = "training"
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// HandleLive handles the /live endpoint - kubernetes liveness probe.
func (c *Checker) HandleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: c.serviceName,
	})
}

// HandleReady handles the /ready endpoint - requires a trained model and a reachable database.
func (c *Checker) HandleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ready, checks := c.Check(r.Context())

	response := ReadyResponse{
		Service:  c.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	if ready {
		response.Status = "ok"
		writeJSON(w, http.StatusOK, response)
		return
	}

	response.Status = "not_ready"
	writeJSON(w, http.StatusServiceUnavailable, response)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
