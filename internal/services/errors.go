package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a flip id is unknown so handlers can respond with 404
	ErrNotFound = errors.New("flip not found")

	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")

	// ErrInvalidInput is returned by the profit calculator for negative cost basis or fees
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError names the field that failed a check.
// Cause is ErrInvalidInput for calculator inputs; errors.Is matches both it and ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.Cause != nil && target == e.Cause
}

// GatewayError wraps a failed marketplace search. It is passed through to
// callers as-is and is never retried here.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
