// Package perrors defines the error taxonomy of the execution kernel (§7).
// Each kind wraps a sentinel so callers can use errors.Is/errors.As, in the
// same shape as tarsy's pkg/config/errors.go (sentinel + wrapping struct).
package perrors

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per taxonomy kind.
var (
	ErrValidation        = errors.New("validation error")
	ErrRouting           = errors.New("routing error")
	ErrSignalMissing     = errors.New("signal missing")
	ErrIntrinsicMissing  = errors.New("intrinsic calibration missing")
	ErrBelowThreshold    = errors.New("method below calibration threshold")
	ErrInsufficientCtx   = errors.New("insufficient calibration context")
	ErrMethodTimeout     = errors.New("method timeout")
	ErrMethodRetryExh    = errors.New("method retry exhausted")
	ErrIntegrity         = errors.New("integrity error")
	ErrDuplicateTask     = errors.New("duplicate task id")
	ErrPlannerValidation = errors.New("planner validation error")
)

// ValidationError reports a phase contract input/output/invariant failure.
type ValidationError struct {
	Phase string
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("phase %q: field %q: %v", e.Phase, e.Field, e.Err)
	}
	return fmt.Sprintf("phase %q: %v", e.Phase, e.Err)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError constructs a ValidationError wrapping ErrValidation.
func NewValidationError(phase, field string, err error) *ValidationError {
	return &ValidationError{Phase: phase, Field: field, Err: err}
}

// RoutingError reports a (PA,DIM) chunk lookup failure (§4.6).
type RoutingError struct {
	QuestionID  string
	PolicyArea  string
	Dimension   string
	Reason      string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing failed for question %q (PA=%s, DIM=%s): %s",
		e.QuestionID, e.PolicyArea, e.Dimension, e.Reason)
}

func (e *RoutingError) Unwrap() error { return ErrRouting }

// SignalMissingError reports a required signal type that failed to resolve (§4.7).
type SignalMissingError struct {
	QuestionID string
	SignalType string
}

func (e *SignalMissingError) Error() string {
	return fmt.Sprintf("signal %q missing for question %q", e.SignalType, e.QuestionID)
}

func (e *SignalMissingError) Unwrap() error { return ErrSignalMissing }

// IntrinsicMissingError reports a method absent from intrinsic_calibration.json.
type IntrinsicMissingError struct {
	MethodID string
}

func (e *IntrinsicMissingError) Error() string {
	return fmt.Sprintf("method %q has no intrinsic calibration", e.MethodID)
}

func (e *IntrinsicMissingError) Unwrap() error { return ErrIntrinsicMissing }

// BelowThresholdError reports a final calibration score under the configured minimum.
type BelowThresholdError struct {
	MethodID  string
	Score     float64
	Threshold float64
}

func (e *BelowThresholdError) Error() string {
	return fmt.Sprintf("method %q scored %.4f, below threshold %.4f", e.MethodID, e.Score, e.Threshold)
}

func (e *BelowThresholdError) Unwrap() error { return ErrBelowThreshold }

// InsufficientContextError reports a required contextual layer (Q/D/P) that
// could not be resolved at all (distinct from a missing-layer penalty).
type InsufficientContextError struct {
	MethodID string
	Layer    string
}

func (e *InsufficientContextError) Error() string {
	return fmt.Sprintf("method %q: insufficient context for layer %q", e.MethodID, e.Layer)
}

func (e *InsufficientContextError) Unwrap() error { return ErrInsufficientCtx }

// MethodTimeoutError reports a method call exceeding its declared timeout.
type MethodTimeoutError struct {
	Class, Method string
	TimeoutS      float64
}

func (e *MethodTimeoutError) Error() string {
	return fmt.Sprintf("method %s.%s exceeded timeout of %.1fs", e.Class, e.Method, e.TimeoutS)
}

func (e *MethodTimeoutError) Unwrap() error { return ErrMethodTimeout }

// MethodRetryExhaustedError reports a method call that failed on every retry attempt.
type MethodRetryExhaustedError struct {
	Class, Method string
	Attempts      int
	LastErr       error
}

func (e *MethodRetryExhaustedError) Error() string {
	return fmt.Sprintf("method %s.%s failed after %d attempts: %v", e.Class, e.Method, e.Attempts, e.LastErr)
}

func (e *MethodRetryExhaustedError) Unwrap() error { return ErrMethodRetryExh }

// IntegrityError reports a content hash mismatch anywhere in the system.
type IntegrityError struct {
	Artifact string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("Hash mismatch in %s: expected %s, got %s", e.Artifact, e.Expected, e.Actual)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
