package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/yourusername/magajico/internal/models"
)

var (
	// ErrUnavailable indicates the prediction API could not be reached
	ErrUnavailable = errors.New("prediction api unavailable")

	// ErrCircuitOpen indicates calls are short-circuited after repeated failures
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRateLimited indicates the API rejected the call with 429
	ErrRateLimited = errors.New("rate limited by prediction api")

	// ErrInvalidResponse indicates a response body that could not be decoded
	ErrInvalidResponse = errors.New("invalid response from prediction api")
)

// APIError is a non-2xx response decoded from the API error envelope
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prediction api returned %d (%s): %s", e.StatusCode, e.Type, e.Message)
}

// Unwrap maps status codes onto sentinels so callers can use errors.Is
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusBadRequest:
		return models.ErrValidation
	case e.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case e.StatusCode >= http.StatusInternalServerError:
		return ErrUnavailable
	}
	return nil
}

// clientFault reports whether err was caused by the caller rather than the API
func clientFault(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 &&
		apiErr.StatusCode != http.StatusTooManyRequests
}
