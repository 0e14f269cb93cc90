package payment

import (
	"context"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY ABSTRACTION
// The wire protocol of the real gateway is out of scope; the core sees an
// opaque two-method interface. A business decline is a normal result with
// Approved=false. A transport fault (timeout, connection refused) is an error,
// and callers must wrap it as shared.ErrInfrastructure - the two must never
// be conflated.
// ══════════════════════════════════════════════════════════════════════════════

// ChargeResult is the outcome of a charge request the gateway actually answered.
type ChargeResult struct {
	// Approved - whether the gateway accepted the charge.
	Approved bool

	// TransactionID - gateway reference, set when approved.
	TransactionID string

	// DeclineReason - why the charge was declined, set when not approved.
	DeclineReason string
}

// RefundResult is the outcome of a refund request the gateway actually answered.
type RefundResult struct {
	// Approved - whether the gateway accepted the refund.
	Approved bool

	// RefundID - gateway reference for the refund, set when approved.
	RefundID string

	// DeclineReason - why the refund was declined, set when not approved.
	DeclineReason string
}

// Gateway is the payment processor abstraction.
type Gateway interface {
	// Charge attempts to collect the amount from the card.
	// A nil error with Approved=false is a business decline; a non-nil error
	// means the gateway could not be reached or gave no usable answer.
	Charge(ctx context.Context, paymentRef string, amount shared.Money, card Card) (*ChargeResult, error)

	// Refund returns a previously charged amount.
	// Same decline-vs-error contract as Charge.
	Refund(ctx context.Context, transactionID string, amount shared.Money, reason string) (*RefundResult, error)
}
