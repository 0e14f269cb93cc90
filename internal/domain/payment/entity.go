// Package payment contains the Payment aggregate of the Payment store,
// card validation, and the gateway abstraction.
package payment

import (
	"fmt"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// Status defines the lifecycle state of a payment.
// Pending moves to Approved or Failed exactly once; Approved may move to
// Refunded at most once. No other transition exists.
type Status string

const (
	// StatusPending - persisted before the gateway call, for audit even on crash.
	StatusPending Status = "pending"
	// StatusApproved - the gateway confirmed the charge.
	StatusApproved Status = "approved"
	// StatusFailed - the gateway declined the charge (business decline, not a fault).
	StatusFailed Status = "failed"
	// StatusRefunded - an approved charge was refunded.
	StatusRefunded Status = "refunded"
)

// IsValid checks that the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusFailed, StatusRefunded:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for states that never change again.
func (s Status) IsTerminal() bool {
	return s == StatusFailed || s == StatusRefunded
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound - payment not found.
	ErrNotFound = shared.NewDomainError("payment", "Find", shared.ErrNotFound, "payment not found")

	// ErrNotPending - settlement requires Pending status.
	ErrNotPending = shared.NewDomainError("payment", "Settle", shared.ErrInvalidOperation, "payment is not pending")

	// ErrNotApproved - only approved payments can be refunded.
	ErrNotApproved = shared.NewDomainError("payment", "Refund", shared.ErrInvalidOperation, "payment is not approved")

	// ErrAlreadyRefunded - a payment can be refunded at most once.
	ErrAlreadyRefunded = shared.NewDomainError("payment", "Refund", shared.ErrInvalidOperation, "payment is already refunded")

	// ErrMissingTransaction - refund requires the gateway transaction reference.
	ErrMissingTransaction = shared.NewDomainError("payment", "Refund", shared.ErrInvalidOperation, "payment has no transaction id")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Payment represents a single charge attempt against an enrollment.
// A new Payment row is created per attempt; rows are never deleted.
type Payment struct {
	// ID - internal unique identifier (UUID string).
	ID string

	// StudentID - the paying student.
	StudentID string

	// EnrollmentID - the enrollment being paid for. Plain value, not a join.
	EnrollmentID string

	// Amount - the charged amount.
	Amount shared.Money

	// Status - current lifecycle state.
	Status Status

	// TransactionID - gateway transaction reference, set on approval.
	TransactionID *string

	// FailureReason - gateway decline reason, set on failure.
	FailureReason *string

	// RefundReason - why the payment was refunded.
	RefundReason *string

	// MaskedCard - the card number with the middle digits masked.
	// The full number is never persisted.
	MaskedCard string

	// PaymentDate - when the charge attempt was created.
	PaymentDate time.Time

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewPaymentParams contains the parameters for creating a payment.
type NewPaymentParams struct {
	ID           string
	StudentID    string
	EnrollmentID string
	Amount       shared.Money
	CardNumber   string
}

// NewPayment creates a payment in Pending status with the card already masked.
func NewPayment(params NewPaymentParams) (*Payment, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("payment", "New", shared.ErrBadRequest, "payment id is required")
	}
	if params.StudentID == "" {
		return nil, shared.NewDomainError("payment", "New", shared.ErrBadRequest, "student id is required")
	}
	if params.EnrollmentID == "" {
		return nil, shared.NewDomainError("payment", "New", shared.ErrBadRequest, "enrollment id is required")
	}
	if !params.Amount.IsValid() {
		return nil, shared.NewDomainError("payment", "New", shared.ErrBadRequest, "amount must be non-negative")
	}

	now := time.Now().UTC()

	return &Payment{
		ID:           params.ID,
		StudentID:    params.StudentID,
		EnrollmentID: params.EnrollmentID,
		Amount:       params.Amount,
		Status:       StatusPending,
		MaskedCard:   MaskCardNumber(params.CardNumber),
		PaymentDate:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// MarkApproved transitions Pending -> Approved with the gateway reference.
func (p *Payment) MarkApproved(transactionID string) error {
	if p.Status != StatusPending {
		return ErrNotPending
	}
	if transactionID == "" {
		return shared.NewDomainError("payment", "MarkApproved", shared.ErrBadRequest, "transaction id is required")
	}

	p.Status = StatusApproved
	p.TransactionID = &transactionID
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkFailed transitions Pending -> Failed with the decline reason.
// A decline is a normal business outcome, not an error condition.
func (p *Payment) MarkFailed(reason string) error {
	if p.Status != StatusPending {
		return ErrNotPending
	}

	p.Status = StatusFailed
	p.FailureReason = &reason
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkRefunded transitions Approved -> Refunded.
func (p *Payment) MarkRefunded(reason string) error {
	if p.Status == StatusRefunded {
		return ErrAlreadyRefunded
	}
	if p.Status != StatusApproved {
		return ErrNotApproved
	}
	if p.TransactionID == nil || *p.TransactionID == "" {
		return ErrMissingTransaction
	}

	p.Status = StatusRefunded
	p.RefundReason = &reason
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// CanRefund reports whether a refund attempt is allowed right now.
func (p *Payment) CanRefund() bool {
	return p.Status == StatusApproved && p.TransactionID != nil && *p.TransactionID != ""
}

// String returns a representation for logging. The card stays masked.
func (p *Payment) String() string {
	return fmt.Sprintf("Payment{ID: %s, Enrollment: %s, Amount: %s, Status: %s, Card: %s}",
		p.ID, p.EnrollmentID, p.Amount, p.Status, p.MaskedCard)
}

// Clone creates a copy of the payment.
func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
