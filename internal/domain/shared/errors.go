// Package shared contains common domain types, errors, and events that are
// used across all bounded contexts. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
// They form the error taxonomy every manager speaks: the API layer maps these
// four kinds to transport status codes, so they must stay distinguishable.
var (
	// ErrNotFound - an entity id does not resolve (student, course, enrollment, payment, lesson).
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidOperation - a state-machine guard was violated: wrong status for the
	// requested transition, duplicate enrollment, duplicate certificate, refund of a
	// non-approved payment.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrBadRequest - structurally invalid input: a lesson that does not belong to
	// the named course, a card that fails Luhn or expiry checks.
	ErrBadRequest = errors.New("bad request")

	// ErrInfrastructure - an external collaborator is unreachable (payment gateway
	// network fault). Distinct from a business decline, which is a terminal Payment
	// state and not an error at all.
	ErrInfrastructure = errors.New("infrastructure failure")

	// ErrConcurrentModification - optimistic lock failure on a versioned row.
	// Callers racing on the same aggregate see this instead of silent double-writes.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Context string // Bounded context, e.g. "enrollment", "payment"
	Op      string // Operation that failed, e.g. "Enroll", "Refund"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Context, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Context, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(context, op string, kind error, message string) *DomainError {
	return &DomainError{
		Context: context,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(context, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Context: context,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidOperation checks if the error is a state-machine guard violation.
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsBadRequest checks if the error is a structural validation error.
func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

// IsInfrastructure checks if the error is an external collaborator failure.
func IsInfrastructure(err error) bool {
	return errors.Is(err, ErrInfrastructure)
}

// IsConcurrentModification checks if the error is an optimistic lock failure.
func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}
