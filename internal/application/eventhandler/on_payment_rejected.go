package eventhandler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON PAYMENT REJECTED HANDLER
// Records the decline reason on the enrollment. The enrollment stays in
// PendingPayment so the student can retry with another card.
// ═══════════════════════════════════════════════════════════════════════════

// OnPaymentRejectedHandler annotates an enrollment with a payment decline.
type OnPaymentRejectedHandler struct {
	enrollmentRepo enrollment.Repository
	logger         *slog.Logger
}

// NewOnPaymentRejectedHandler creates a new OnPaymentRejectedHandler.
func NewOnPaymentRejectedHandler(
	enrollmentRepo enrollment.Repository,
	logger *slog.Logger,
) *OnPaymentRejectedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnPaymentRejectedHandler{
		enrollmentRepo: enrollmentRepo,
		logger:         logger.With("handler", "on_payment_rejected"),
	}
}

// Handle processes a PaymentRejectedEvent.
// Implements shared.EventHandler.
func (h *OnPaymentRejectedHandler) Handle(ctx context.Context, event shared.Event) error {
	rejected, ok := event.(shared.PaymentRejectedEvent)
	if !ok {
		h.logger.Warn("received non-PaymentRejectedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing payment rejected event",
		"payment_id", rejected.PaymentID,
		"enrollment_id", rejected.EnrollmentID,
		"reason", rejected.Reason,
	)

	e, err := h.enrollmentRepo.GetByID(ctx, rejected.EnrollmentID)
	if err != nil {
		return fmt.Errorf("get enrollment: %w", err)
	}

	if err := e.RecordPaymentFailure(rejected.Reason); err != nil {
		return fmt.Errorf("record payment failure: %w", err)
	}

	if err := h.enrollmentRepo.Update(ctx, e); err != nil {
		return fmt.Errorf("persist enrollment: %w", err)
	}

	return nil
}

// EventType returns the event type this handler reacts to.
func (h *OnPaymentRejectedHandler) EventType() shared.EventType {
	return shared.EventPaymentRejected
}
