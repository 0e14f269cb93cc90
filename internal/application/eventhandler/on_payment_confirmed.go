// Package eventhandler contains the reactions that wire the stores together.
// Handlers run synchronously inside the publishing command's unit of work, so
// a handler error fails the command that emitted the event.
package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PAYMENT CONFIRMED HANDLER
// The Student store's reaction to a confirmed payment: activate the awaiting
// enrollment. This is the only path from PendingPayment to Active.
// ═══════════════════════════════════════════════════════════════════════════

// OnPaymentConfirmedHandler activates an enrollment when its payment confirms.
type OnPaymentConfirmedHandler struct {
	enrollmentRepo enrollment.Repository
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewOnPaymentConfirmedHandler creates a new OnPaymentConfirmedHandler.
func NewOnPaymentConfirmedHandler(
	enrollmentRepo enrollment.Repository,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *OnPaymentConfirmedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnPaymentConfirmedHandler{
		enrollmentRepo: enrollmentRepo,
		eventPublisher: eventPublisher,
		logger:         logger.With("handler", "on_payment_confirmed"),
	}
}

// Handle processes a PaymentConfirmedEvent. The context is the publishing
// command's, so cancelling the command cancels the cascade too.
// Implements shared.EventHandler.
func (h *OnPaymentConfirmedHandler) Handle(ctx context.Context, event shared.Event) error {
	confirmed, ok := event.(shared.PaymentConfirmedEvent)
	if !ok {
		h.logger.Warn("received non-PaymentConfirmedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing payment confirmed event",
		"payment_id", confirmed.PaymentID,
		"enrollment_id", confirmed.EnrollmentID,
	)

	e, err := h.enrollmentRepo.GetByID(ctx, confirmed.EnrollmentID)
	if err != nil {
		return fmt.Errorf("get enrollment: %w", err)
	}

	// Re-delivery of a confirmation that already activated this enrollment is
	// harmless; anything else out of PendingPayment is a real fault.
	if e.Status == enrollment.StatusActive && e.PaymentID != nil && *e.PaymentID == confirmed.PaymentID {
		h.logger.Info("enrollment already activated by this payment",
			"enrollment_id", e.ID,
			"payment_id", confirmed.PaymentID,
		)
		return nil
	}

	activatedAt := time.Now().UTC()
	if err := e.Activate(confirmed.PaymentID, activatedAt); err != nil {
		return fmt.Errorf("activate enrollment: %w", err)
	}

	if err := h.enrollmentRepo.Update(ctx, e); err != nil {
		return fmt.Errorf("persist enrollment: %w", err)
	}

	if err := h.eventPublisher.Publish(ctx, shared.NewEnrollmentActivatedEvent(e.ID, e.StudentID, e.CourseID, activatedAt)); err != nil {
		return fmt.Errorf("publish enrollment activated: %w", err)
	}

	h.logger.Info("enrollment activated",
		"enrollment_id", e.ID,
		"student_id", e.StudentID,
		"course_id", e.CourseID,
	)

	return nil
}

// EventType returns the event type this handler reacts to.
func (h *OnPaymentConfirmedHandler) EventType() shared.EventType {
	return shared.EventPaymentConfirmed
}
