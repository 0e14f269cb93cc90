// Package enrollment contains the Enrollment aggregate of the Student store.
// It owns the enrollment state machine; every transition goes through the
// methods on this type, never through direct field writes.
package enrollment

import (
	"fmt"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status defines the lifecycle state of an enrollment.
// The status is shared across stores by value (the Payment store correlates on
// it), so it is defined once here and referenced everywhere.
type Status string

const (
	// StatusPendingPayment - created, awaiting a successful charge.
	StatusPendingPayment Status = "pending_payment"
	// StatusActive - paid, the student can learn.
	StatusActive Status = "active"
	// StatusCompleted - every lesson of the course is done.
	StatusCompleted Status = "completed"
	// StatusCancelled - terminal by value; the row is never deleted.
	StatusCancelled Status = "cancelled"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPendingPayment, StatusActive, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsOpen returns true if the enrollment counts against the "one non-cancelled
// enrollment per (student, course)" invariant.
func (s Status) IsOpen() bool {
	return s != StatusCancelled
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound - enrollment not found.
	ErrNotFound = shared.NewDomainError("enrollment", "Find", shared.ErrNotFound, "enrollment not found")

	// ErrAlreadyEnrolled - a non-cancelled enrollment already exists for the pair.
	ErrAlreadyEnrolled = shared.NewDomainError("enrollment", "Enroll", shared.ErrInvalidOperation, "student already enrolled in course")

	// ErrNotPendingPayment - activation requires PendingPayment status. Seeing this
	// on a payment-confirmed reaction signals a choreography bug upstream.
	ErrNotPendingPayment = shared.NewDomainError("enrollment", "Activate", shared.ErrInvalidOperation, "enrollment is not awaiting payment")

	// ErrNotActive - completion requires Active status.
	ErrNotActive = shared.NewDomainError("enrollment", "Complete", shared.ErrInvalidOperation, "enrollment is not active")

	// ErrAlreadyCompleted - a completed enrollment cannot be cancelled.
	ErrAlreadyCompleted = shared.NewDomainError("enrollment", "Cancel", shared.ErrInvalidOperation, "enrollment is already completed")

	// ErrAlreadyCancelled - the enrollment is already cancelled.
	ErrAlreadyCancelled = shared.NewDomainError("enrollment", "Cancel", shared.ErrInvalidOperation, "enrollment is already cancelled")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Enrollment represents a student's enrollment in a course.
type Enrollment struct {
	// ID - internal unique identifier (UUID string).
	ID string

	// StudentID - the enrolling student. Plain value, never joined across stores.
	StudentID string

	// CourseID - the course being enrolled in. Owned by the Content store.
	CourseID string

	// Price - the course price captured at enrollment time.
	Price shared.Money

	// Status - current lifecycle state.
	Status Status

	// EnrollmentDate - when the enrollment was created.
	EnrollmentDate time.Time

	// ActivationDate - when the payment was confirmed (nil until Active).
	ActivationDate *time.Time

	// CompletionDate - when all lessons were completed (nil until Completed).
	CompletionDate *time.Time

	// PaymentID - the confirming payment, recorded on activation.
	PaymentID *string

	// PaymentFailureReason - the latest gateway decline reason, if any.
	// Kept for support visibility; the status stays PendingPayment.
	PaymentFailureReason *string

	// Version - optimistic concurrency token. The store rejects stale writes so
	// two racing completion detectors cannot both drive Active -> Completed.
	Version int

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewEnrollmentParams contains the parameters for creating an enrollment.
type NewEnrollmentParams struct {
	ID        string
	StudentID string
	CourseID  string
	Price     shared.Money
}

// NewEnrollment creates a new enrollment in PendingPayment status.
func NewEnrollment(params NewEnrollmentParams) (*Enrollment, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrBadRequest, "enrollment id is required")
	}
	if params.StudentID == "" {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrBadRequest, "student id is required")
	}
	if params.CourseID == "" {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrBadRequest, "course id is required")
	}
	if !params.Price.IsValid() {
		return nil, shared.NewDomainError("enrollment", "New", shared.ErrBadRequest, "price must be non-negative")
	}

	now := time.Now().UTC()

	return &Enrollment{
		ID:             params.ID,
		StudentID:      params.StudentID,
		CourseID:       params.CourseID,
		Price:          params.Price,
		Status:         StatusPendingPayment,
		EnrollmentDate: now,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// Activate transitions PendingPayment -> Active and records the confirming
// payment. Called from the payment-confirmed reaction, never by clients.
func (e *Enrollment) Activate(paymentID string, at time.Time) error {
	if e.Status != StatusPendingPayment {
		return ErrNotPendingPayment
	}

	at = at.UTC()
	e.Status = StatusActive
	e.ActivationDate = &at
	e.PaymentID = &paymentID
	e.PaymentFailureReason = nil
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// RecordPaymentFailure notes a gateway decline. The enrollment stays
// PendingPayment so the student can retry with another card.
func (e *Enrollment) RecordPaymentFailure(reason string) error {
	if e.Status != StatusPendingPayment {
		return ErrNotPendingPayment
	}

	e.PaymentFailureReason = &reason
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Complete transitions Active -> Completed. Triggered by the learning progress
// tracker once the completed-lesson set covers the whole course.
func (e *Enrollment) Complete(at time.Time) error {
	if e.Status != StatusActive {
		return ErrNotActive
	}

	at = at.UTC()
	e.Status = StatusCompleted
	e.CompletionDate = &at
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions any non-terminal state to Cancelled.
// A completed enrollment can never be cancelled.
func (e *Enrollment) Cancel() error {
	switch e.Status {
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusCancelled:
		return ErrAlreadyCancelled
	}

	e.Status = StatusCancelled
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// IsCompleted returns true once the enrollment reached Completed.
func (e *Enrollment) IsCompleted() bool {
	return e.Status == StatusCompleted
}

// String returns a representation for logging.
func (e *Enrollment) String() string {
	return fmt.Sprintf("Enrollment{ID: %s, Student: %s, Course: %s, Status: %s}",
		e.ID, e.StudentID, e.CourseID, e.Status)
}

// Clone creates a copy of the enrollment.
func (e *Enrollment) Clone() *Enrollment {
	if e == nil {
		return nil
	}
	clone := *e
	return &clone
}
