package models

import "errors"

// Error kinds raised by the prediction pipeline
var (
	// ErrValidation indicates malformed caller input (feature length, training shapes, labels)
	ErrValidation = errors.New("validation error")

	// ErrComputation indicates an unexpected numeric degeneracy
	ErrComputation = errors.New("computation error")

	// ErrModelNotTrained indicates a prediction was requested before training completed
	ErrModelNotTrained = errors.New("model not trained")
)

// Storage errors
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsComputation reports whether err is a computation error
func IsComputation(err error) bool {
	return errors.Is(err, ErrComputation)
}
