// Package client provides a typed HTTP client for the prediction API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/yourusername/magajico/internal/health"
	"github.com/yourusername/magajico/internal/logger"
	"github.com/yourusername/magajico/internal/metrics"
	"github.com/yourusername/magajico/internal/models"
	"github.com/yourusername/magajico/internal/server"
)

const breakerName = "prediction-api"

// Config holds configuration for the API client
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	RetryWaitMin    time.Duration
	RetryWaitMax    time.Duration
	RateLimit       float64 // requests per second
	Burst           int
	BreakerFailures uint32        // consecutive failures before the breaker opens
	BreakerTimeout  time.Duration // time spent open before a trial request
}

// DefaultConfig returns recommended defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryWaitMin:    100 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		RateLimit:       10.0,
		Burst:           1,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// Client calls the prediction API with retries, outbound rate limiting and a circuit breaker
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Entry
}

// New creates a new API client
func New(cfg Config, base *logrus.Logger) *Client {
	if base == nil {
		base = logger.Discard()
	}
	entry := base.WithField("component", "client")
	audit := logger.NewAuditLogger(base)

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = leveledLogger{entry}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    breakerName,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientFault(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			audit.LogCircuitBreakerEvent(name, from.String(), to.String())
			if to == gobreaker.StateOpen {
				metrics.RecordCircuitBreakerTrip(name)
			}
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		breaker: breaker,
		log:     entry,
	}
}

// Predict requests one prediction
func (c *Client) Predict(ctx context.Context, features []float64, matchContext map[string]string) (*server.PredictionResponse, error) {
	var out server.PredictionResponse
	req := server.PredictRequest{Features: features, MatchContext: matchContext}
	if err := c.do(ctx, http.MethodPost, "/predict", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictBatch requests predictions for several fixtures; items fail independently
func (c *Client) PredictBatch(ctx context.Context, items []server.PredictRequest) (*server.BatchResponse, error) {
	var out server.BatchResponse
	if err := c.do(ctx, http.MethodPost, "/predict/batch", server.BatchRequest{Predictions: items}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ModelInfo fetches the active model description
func (c *Client) ModelInfo(ctx context.Context) (*models.ModelInfo, error) {
	var out models.ModelInfo
	if err := c.do(ctx, http.MethodGet, "/model/info", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the service health payload
func (c *Client) Health(ctx context.Context) (*health.HealthResponse, error) {
	var out health.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BreakerState returns the circuit breaker state
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

// Close closes any resources held by the client
func (c *Client) Close() {
	c.http.HTTPClient.CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Prediction API call")

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var envelope server.ErrorResponse
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		apiErr.Type = envelope.Type
		apiErr.Message = envelope.Error
		if envelope.Message != "" && envelope.Type == "internal_error" {
			apiErr.Message = envelope.Message
		}
	} else {
		apiErr.Type = "http_error"
		apiErr.Message = strings.TrimSpace(string(data))
	}
	return apiErr
}

// retryPolicy retries network errors, 429 and gateway or server errors
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// leveledLogger routes retryablehttp logs through logrus
type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Error(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}
