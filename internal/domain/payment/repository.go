package payment

import (
	"context"
)

// Repository defines the persistence contract for payments.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create persists a new payment. The Pending row must hit storage before
	// the gateway is called so a crash mid-charge still leaves an audit trail.
	Create(ctx context.Context, p *Payment) error

	// GetByID returns a payment by ID.
	// Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Payment, error)

	// GetByEnrollment returns all payment attempts for an enrollment,
	// newest first.
	GetByEnrollment(ctx context.Context, enrollmentID string) ([]*Payment, error)

	// Update persists a modified payment.
	// Returns ErrNotFound if the row is gone.
	Update(ctx context.Context, p *Payment) error
}
