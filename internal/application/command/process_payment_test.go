package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

func validCard() payment.Card {
	return payment.Card{
		Number:      "4111111111111111",
		HolderName:  "JANE DOE",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
		CVV:         "123",
	}
}

func seedPendingEnrollment(t *testing.T, repo *fakeEnrollmentRepo) *enrollment.Enrollment {
	t.Helper()

	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        "enr-1",
		StudentID: "student-1",
		CourseID:  "course-go",
		Price:     shared.MustMoney(4999, "USD"),
	})
	require.NoError(t, err)
	repo.put(e)
	return e
}

func TestProcessPayment_ApprovedCharge(t *testing.T) {
	ctx := context.Background()
	enrollRepo := newFakeEnrollmentRepo()
	payRepo := newFakePaymentRepo()
	seedPendingEnrollment(t, enrollRepo)
	gw := &fakeGateway{chargeResult: &payment.ChargeResult{Approved: true, TransactionID: "txn-42"}}
	publisher := &recordingPublisher{}
	handler := NewProcessPaymentHandler(payRepo, enrollRepo, gw, publisher)

	result, err := handler.Handle(ctx, ProcessPaymentCommand{EnrollmentID: "enr-1", Card: validCard()})
	require.NoError(t, err)

	assert.Equal(t, payment.StatusApproved, result.Status)
	assert.Equal(t, "txn-42", result.TransactionID)

	stored, err := payRepo.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusApproved, stored.Status)
	assert.Equal(t, "411111******1111", stored.MaskedCard)

	assert.Equal(t, []shared.EventType{shared.EventPaymentConfirmed}, publisher.typesPublished())
}

func TestProcessPayment_DeclineIsNotAnError(t *testing.T) {
	ctx := context.Background()
	enrollRepo := newFakeEnrollmentRepo()
	payRepo := newFakePaymentRepo()
	seedPendingEnrollment(t, enrollRepo)
	gw := &fakeGateway{chargeResult: &payment.ChargeResult{Approved: false, DeclineReason: "insufficient funds"}}
	publisher := &recordingPublisher{}
	handler := NewProcessPaymentHandler(payRepo, enrollRepo, gw, publisher)

	result, err := handler.Handle(ctx, ProcessPaymentCommand{EnrollmentID: "enr-1", Card: validCard()})
	require.NoError(t, err)

	assert.Equal(t, payment.StatusFailed, result.Status)
	assert.Equal(t, "insufficient funds", result.DeclineReason)

	// The enrollment stays PendingPayment so the student can retry.
	e, err := enrollRepo.GetByID(ctx, "enr-1")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPendingPayment, e.Status)

	assert.Equal(t, []shared.EventType{shared.EventPaymentRejected}, publisher.typesPublished())
}

func TestProcessPayment_GatewayFaultLeavesPaymentPending(t *testing.T) {
	ctx := context.Background()
	enrollRepo := newFakeEnrollmentRepo()
	payRepo := newFakePaymentRepo()
	seedPendingEnrollment(t, enrollRepo)
	gw := &fakeGateway{chargeErr: errors.New("connection refused")}
	publisher := &recordingPublisher{}
	handler := NewProcessPaymentHandler(payRepo, enrollRepo, gw, publisher)

	_, err := handler.Handle(ctx, ProcessPaymentCommand{EnrollmentID: "enr-1", Card: validCard()})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInfrastructure)

	// The Pending row survives as the audit trail of the interrupted attempt.
	attempts, err := payRepo.GetByEnrollment(ctx, "enr-1")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, payment.StatusPending, attempts[0].Status)

	assert.Empty(t, publisher.events)
}

func TestProcessPayment_EachAttemptCreatesNewRow(t *testing.T) {
	ctx := context.Background()
	enrollRepo := newFakeEnrollmentRepo()
	payRepo := newFakePaymentRepo()
	seedPendingEnrollment(t, enrollRepo)
	gw := &fakeGateway{chargeResult: &payment.ChargeResult{Approved: false, DeclineReason: "declined"}}
	handler := NewProcessPaymentHandler(payRepo, enrollRepo, gw, &recordingPublisher{})

	_, err := handler.Handle(ctx, ProcessPaymentCommand{EnrollmentID: "enr-1", Card: validCard()})
	require.NoError(t, err)
	_, err = handler.Handle(ctx, ProcessPaymentCommand{EnrollmentID: "enr-1", Card: validCard()})
	require.NoError(t, err)

	attempts, err := payRepo.GetByEnrollment(ctx, "enr-1")
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestProcessPayment_RejectsInvalidCardBeforeGateway(t *testing.T) {
	enrollRepo := newFakeEnrollmentRepo()
	seedPendingEnrollment(t, enrollRepo)
	gw := &fakeGateway{}
	handler := NewProcessPaymentHandler(newFakePaymentRepo(), enrollRepo, gw, &recordingPublisher{})

	bad := validCard()
	bad.Number = "4111111111111112"

	_, err := handler.Handle(context.Background(), ProcessPaymentCommand{EnrollmentID: "enr-1", Card: bad})
	assert.ErrorIs(t, err, payment.ErrInvalidCardNumber)
	assert.Equal(t, 0, gw.chargeCalls)
}

func TestProcessPayment_RequiresPendingPaymentEnrollment(t *testing.T) {
	ctx := context.Background()
	enrollRepo := newFakeEnrollmentRepo()
	e := seedPendingEnrollment(t, enrollRepo)
	require.NoError(t, e.Activate("pay-0", time.Now()))
	enrollRepo.put(e)

	handler := NewProcessPaymentHandler(newFakePaymentRepo(), enrollRepo,
		&fakeGateway{}, &recordingPublisher{})

	_, err := handler.Handle(ctx, ProcessPaymentCommand{EnrollmentID: "enr-1", Card: validCard()})
	assert.ErrorIs(t, err, shared.ErrInvalidOperation)
}

func TestProcessPayment_UnknownEnrollment(t *testing.T) {
	handler := NewProcessPaymentHandler(newFakePaymentRepo(), newFakeEnrollmentRepo(),
		&fakeGateway{}, &recordingPublisher{})

	_, err := handler.Handle(context.Background(), ProcessPaymentCommand{EnrollmentID: "ghost", Card: validCard()})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
