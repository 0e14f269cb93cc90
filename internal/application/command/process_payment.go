package command

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROCESS PAYMENT COMMAND
// The Pending row is persisted before the gateway call so a crash mid-charge
// still leaves an audit trail. A gateway decline becomes a Failed payment and
// a PaymentRejected event; a gateway fault is surfaced as an error and the
// payment stays Pending. The enrollment is never cancelled on decline - the
// student retries with another card.
// ══════════════════════════════════════════════════════════════════════════════

// ProcessPaymentCommand contains the data to charge an enrollment.
type ProcessPaymentCommand struct {
	// EnrollmentID is the enrollment being paid for.
	EnrollmentID string

	// Card is the payment card. It never leaves this command unmasked.
	Card payment.Card
}

// Validate validates the command.
func (c ProcessPaymentCommand) Validate() error {
	if c.EnrollmentID == "" {
		return shared.NewDomainError("payment", "Process", shared.ErrBadRequest, "enrollment_id is required")
	}
	if c.Card.Number == "" {
		return shared.NewDomainError("payment", "Process", shared.ErrBadRequest, "card number is required")
	}
	return nil
}

// ProcessPaymentResult contains the result of a charge attempt.
type ProcessPaymentResult struct {
	// PaymentID is the ID of the payment row (Approved or Failed).
	PaymentID string

	// Status is the terminal status of this attempt.
	Status payment.Status

	// TransactionID is the gateway reference when approved.
	TransactionID string

	// DeclineReason is the gateway reason when declined.
	DeclineReason string
}

// ProcessPaymentHandler handles the ProcessPaymentCommand.
type ProcessPaymentHandler struct {
	paymentRepo    payment.Repository
	enrollmentRepo enrollment.Repository
	gateway        payment.Gateway
	eventPublisher shared.EventPublisher
}

// NewProcessPaymentHandler creates a new ProcessPaymentHandler.
func NewProcessPaymentHandler(
	paymentRepo payment.Repository,
	enrollmentRepo enrollment.Repository,
	gateway payment.Gateway,
	eventPublisher shared.EventPublisher,
) *ProcessPaymentHandler {
	return &ProcessPaymentHandler{
		paymentRepo:    paymentRepo,
		enrollmentRepo: enrollmentRepo,
		gateway:        gateway,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the process payment command.
func (h *ProcessPaymentHandler) Handle(ctx context.Context, cmd ProcessPaymentCommand) (*ProcessPaymentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	e, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("process_payment: load enrollment: %w", err)
	}
	if e.Status != enrollment.StatusPendingPayment {
		return nil, shared.NewDomainError("payment", "Process", shared.ErrInvalidOperation, "enrollment is not awaiting payment")
	}

	if err := payment.ValidateCard(cmd.Card, time.Now()); err != nil {
		return nil, err
	}

	p, err := payment.NewPayment(payment.NewPaymentParams{
		ID:           uuid.NewString(),
		StudentID:    e.StudentID,
		EnrollmentID: e.ID,
		Amount:       e.Price,
		CardNumber:   cmd.Card.Number,
	})
	if err != nil {
		return nil, err
	}

	if err := h.paymentRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("process_payment: persist pending payment: %w", err)
	}

	charge, err := h.gateway.Charge(ctx, p.ID, p.Amount, cmd.Card)
	if err != nil {
		// Transport fault: not a business decline. The payment stays Pending
		// for audit and the caller sees an infrastructure failure.
		return nil, shared.WrapError("payment", "Process", shared.ErrInfrastructure, "gateway call failed", err)
	}

	if !charge.Approved {
		if err := p.MarkFailed(charge.DeclineReason); err != nil {
			return nil, err
		}
		if err := h.paymentRepo.Update(ctx, p); err != nil {
			return nil, fmt.Errorf("process_payment: persist declined payment: %w", err)
		}
		if err := h.eventPublisher.Publish(ctx, shared.NewPaymentRejectedEvent(p.ID, p.EnrollmentID, charge.DeclineReason)); err != nil {
			return nil, fmt.Errorf("process_payment: publish rejection: %w", err)
		}

		return &ProcessPaymentResult{
			PaymentID:     p.ID,
			Status:        p.Status,
			DeclineReason: charge.DeclineReason,
		}, nil
	}

	if err := p.MarkApproved(charge.TransactionID); err != nil {
		return nil, err
	}
	if err := h.paymentRepo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("process_payment: persist approved payment: %w", err)
	}

	// The confirmation reaction activates the enrollment within this same
	// unit of work; its failure fails the command.
	if err := h.eventPublisher.Publish(ctx, shared.NewPaymentConfirmedEvent(p.ID, p.EnrollmentID, charge.TransactionID)); err != nil {
		return nil, fmt.Errorf("process_payment: publish confirmation: %w", err)
	}

	return &ProcessPaymentResult{
		PaymentID:     p.ID,
		Status:        p.Status,
		TransactionID: charge.TransactionID,
	}, nil
}
