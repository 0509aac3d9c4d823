/*
errors.go - Centralized error types for the engine

PURPOSE:
  All engine error kinds in one place. Four kinds cover the boundary
  contract:

    ValidationError - malformed/missing input; caller fixes the input
    ConflictError   - state transition violated (double-assign, resolving
                      a resolved request); caller view is stale
    CapacityError   - seat pool or warranty-extension cap exceeded;
                      business-rule rejection, not retryable as-is
    NotFoundError   - referenced id does not exist

  The engine never logs, retries, or suppresses errors. Propagation is
  synchronous and immediate; retry policy belongs to the caller.

USAGE:
  Structured types carry context and unwrap to sentinels:

    if errors.Is(err, engine.ErrCapacity) { ... }
    var cerr *engine.ConflictError
    if errors.As(err, &cerr) { ... }

SEE ALSO:
  - api/handlers.go: maps these kinds to HTTP status codes
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all malformed-input failures.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is the root of all state-transition failures.
	ErrConflict = errors.New("state conflict")

	// ErrCapacity is the root of all cap-exceeded failures.
	ErrCapacity = errors.New("capacity exceeded")

	// ErrNotFound is the root of all missing-reference failures.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation: %s", e.Message)
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports an operation that violates the current state of
// an asset or request (e.g. assigning already-assigned hardware).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return fmt.Sprintf("conflict: %s", e.Message) }
func (e *ConflictError) Unwrap() error { return ErrConflict }

func Conflictf(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// CapacityError reports a business cap being exceeded: a full seat pool
// or a warranty extension past the category ceiling.
type CapacityError struct {
	Message   string
	Limit     int
	Requested int
}

func (e *CapacityError) Error() string { return fmt.Sprintf("capacity: %s", e.Message) }
func (e *CapacityError) Unwrap() error { return ErrCapacity }

// NotFoundError reports a dangling reference.
type NotFoundError struct {
	Kind string // "asset", "user", "request", "location"
	ID   string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %q not found", e.Kind, e.ID) }
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// =============================================================================
// ERROR HELPERS
// =============================================================================

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }
func IsCapacity(err error) bool   { return errors.Is(err, ErrCapacity) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
