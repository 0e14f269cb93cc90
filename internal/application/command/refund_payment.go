package command

import (
	"context"
	"fmt"

	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFUND PAYMENT COMMAND
// Only an approved payment with a gateway transaction reference can be
// refunded, and only once.
// ══════════════════════════════════════════════════════════════════════════════

// RefundPaymentCommand contains the data to refund a payment.
type RefundPaymentCommand struct {
	// PaymentID is the payment to refund.
	PaymentID string

	// Reason is why the refund is requested.
	Reason string
}

// Validate validates the command.
func (c RefundPaymentCommand) Validate() error {
	if c.PaymentID == "" {
		return shared.NewDomainError("payment", "Refund", shared.ErrBadRequest, "payment_id is required")
	}
	if c.Reason == "" {
		return shared.NewDomainError("payment", "Refund", shared.ErrBadRequest, "reason is required")
	}
	return nil
}

// RefundPaymentResult contains the result of a refund.
type RefundPaymentResult struct {
	// PaymentID is the refunded payment.
	PaymentID string

	// RefundID is the gateway reference for the refund.
	RefundID string
}

// RefundPaymentHandler handles the RefundPaymentCommand.
type RefundPaymentHandler struct {
	paymentRepo    payment.Repository
	gateway        payment.Gateway
	eventPublisher shared.EventPublisher
}

// NewRefundPaymentHandler creates a new RefundPaymentHandler.
func NewRefundPaymentHandler(
	paymentRepo payment.Repository,
	gateway payment.Gateway,
	eventPublisher shared.EventPublisher,
) *RefundPaymentHandler {
	return &RefundPaymentHandler{
		paymentRepo:    paymentRepo,
		gateway:        gateway,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the refund command.
func (h *RefundPaymentHandler) Handle(ctx context.Context, cmd RefundPaymentCommand) (*RefundPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	p, err := h.paymentRepo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("refund_payment: load payment: %w", err)
	}

	// Check the full guard set up front so the gateway is never called for a
	// payment that cannot legally be refunded.
	if p.Status == payment.StatusRefunded {
		return nil, payment.ErrAlreadyRefunded
	}
	if p.Status != payment.StatusApproved {
		return nil, payment.ErrNotApproved
	}
	if p.TransactionID == nil || *p.TransactionID == "" {
		return nil, payment.ErrMissingTransaction
	}

	refund, err := h.gateway.Refund(ctx, *p.TransactionID, p.Amount, cmd.Reason)
	if err != nil {
		return nil, shared.WrapError("payment", "Refund", shared.ErrInfrastructure, "gateway call failed", err)
	}
	if !refund.Approved {
		return nil, shared.NewDomainError("payment", "Refund", shared.ErrInvalidOperation,
			fmt.Sprintf("gateway declined refund: %s", refund.DeclineReason))
	}

	if err := p.MarkRefunded(cmd.Reason); err != nil {
		return nil, err
	}
	if err := h.paymentRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("refund_payment: persist refund: %w", err)
	}

	if err := h.eventPublisher.Publish(ctx, shared.NewPaymentRefundedEvent(p.ID, p.EnrollmentID, cmd.Reason)); err != nil {
		return nil, fmt.Errorf("refund_payment: publish event: %w", err)
	}

	return &RefundPaymentResult{
		PaymentID: p.ID,
		RefundID:  refund.RefundID,
	}, nil
}
