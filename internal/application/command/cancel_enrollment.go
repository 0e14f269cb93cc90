package command

import (
	"context"
	"fmt"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CANCEL ENROLLMENT COMMAND
// A completed enrollment can never be cancelled. Cancelling an active, paid
// enrollment refunds the confirming payment in the same command - a plain
// synchronous call, not a saga; if the refund fails the cancel fails with it.
// ══════════════════════════════════════════════════════════════════════════════

// CancelEnrollmentCommand contains the data to cancel an enrollment.
type CancelEnrollmentCommand struct {
	// EnrollmentID is the enrollment to cancel.
	EnrollmentID string

	// Reason is why the enrollment is cancelled.
	Reason string
}

// Validate validates the command.
func (c CancelEnrollmentCommand) Validate() error {
	if c.EnrollmentID == "" {
		return shared.NewDomainError("enrollment", "Cancel", shared.ErrBadRequest, "enrollment_id is required")
	}
	return nil
}

// CancelEnrollmentResult contains the result of the cancellation.
type CancelEnrollmentResult struct {
	// EnrollmentID is the cancelled enrollment.
	EnrollmentID string

	// Refunded is true when an approved payment was refunded as part of the cancel.
	Refunded bool
}

// CancelEnrollmentHandler handles the CancelEnrollmentCommand.
type CancelEnrollmentHandler struct {
	enrollmentRepo enrollment.Repository
	paymentRepo    payment.Repository
	refundHandler  *RefundPaymentHandler
	eventPublisher shared.EventPublisher
}

// NewCancelEnrollmentHandler creates a new CancelEnrollmentHandler.
func NewCancelEnrollmentHandler(
	enrollmentRepo enrollment.Repository,
	paymentRepo payment.Repository,
	refundHandler *RefundPaymentHandler,
	eventPublisher shared.EventPublisher,
) *CancelEnrollmentHandler {
	return &CancelEnrollmentHandler{
		enrollmentRepo: enrollmentRepo,
		paymentRepo:    paymentRepo,
		refundHandler:  refundHandler,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the cancel enrollment command.
func (h *CancelEnrollmentHandler) Handle(ctx context.Context, cmd CancelEnrollmentCommand) (*CancelEnrollmentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	e, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("cancel_enrollment: load enrollment: %w", err)
	}

	// Reject impossible cancels before touching the gateway.
	switch e.Status {
	case enrollment.StatusCompleted:
		return nil, enrollment.ErrAlreadyCompleted
	case enrollment.StatusCancelled:
		return nil, enrollment.ErrAlreadyCancelled
	}

	result := &CancelEnrollmentResult{EnrollmentID: e.ID}

	if e.PaymentID != nil {
		p, perr := h.paymentRepo.GetByID(ctx, *e.PaymentID)
		if perr != nil {
			return nil, fmt.Errorf("cancel_enrollment: load payment: %w", perr)
		}
		if p.CanRefund() {
			reason := cmd.Reason
			if reason == "" {
				reason = "enrollment cancelled"
			}
			if _, rerr := h.refundHandler.Handle(ctx, RefundPaymentCommand{
				PaymentID: p.ID,
				Reason:    reason,
			}); rerr != nil {
				return nil, fmt.Errorf("cancel_enrollment: refund: %w", rerr)
			}
			result.Refunded = true
		}
	}

	if err := e.Cancel(); err != nil {
		return nil, err
	}
	if err := h.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("cancel_enrollment: persist enrollment: %w", err)
	}

	if err := h.eventPublisher.Publish(ctx, shared.NewEnrollmentCancelledEvent(e.ID, e.StudentID, e.CourseID, cmd.Reason)); err != nil {
		return nil, fmt.Errorf("cancel_enrollment: publish event: %w", err)
	}

	return result, nil
}
