package eventhandler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/enrollment-hub/internal/application/command"
	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/cache"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/content"
	"github.com/learnhub/enrollment-hub/internal/infrastructure/messaging"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHOREOGRAPHY
// End-to-end flow over the real event bus: enroll, charge, activate, learn.
// Exercises the same wiring the composition root builds, minus storage.
// ══════════════════════════════════════════════════════════════════════════════

type memPaymentRepo struct {
	mu   sync.Mutex
	rows map[string]*payment.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{rows: make(map[string]*payment.Payment)}
}

func (r *memPaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.ID] = p.Clone()
	return nil
}

func (r *memPaymentRepo) GetByID(_ context.Context, id string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return row.Clone(), nil
}

func (r *memPaymentRepo) GetByEnrollment(_ context.Context, enrollmentID string) ([]*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*payment.Payment
	for _, row := range r.rows {
		if row.EnrollmentID == enrollmentID {
			out = append(out, row.Clone())
		}
	}
	return out, nil
}

func (r *memPaymentRepo) Update(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[p.ID]; !ok {
		return payment.ErrNotFound
	}
	r.rows[p.ID] = p.Clone()
	return nil
}

type scriptedGateway struct {
	approve bool
}

func (g *scriptedGateway) Charge(_ context.Context, paymentRef string, _ shared.Money, _ payment.Card) (*payment.ChargeResult, error) {
	if !g.approve {
		return &payment.ChargeResult{Approved: false, DeclineReason: "insufficient funds"}, nil
	}
	return &payment.ChargeResult{Approved: true, TransactionID: "txn-" + paymentRef}, nil
}

func (g *scriptedGateway) Refund(_ context.Context, transactionID string, _ shared.Money, _ string) (*payment.RefundResult, error) {
	return &payment.RefundResult{Approved: true, RefundID: "ref-" + transactionID}, nil
}

type choreography struct {
	bus        *messaging.InMemoryEventBus
	enrollRepo *memEnrollmentRepo
	payRepo    *memPaymentRepo
	catalogue  *content.Catalogue
	gateway    *scriptedGateway

	enroll *command.EnrollHandler
	pay    *command.ProcessPaymentHandler
}

func newChoreography(t *testing.T) *choreography {
	t.Helper()

	c := &choreography{
		bus:        messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{}),
		enrollRepo: newMemEnrollmentRepo(),
		payRepo:    newMemPaymentRepo(),
		gateway:    &scriptedGateway{approve: true},
	}
	c.catalogue = content.NewCatalogue(c.bus)

	projection := cache.NewCourseInfoCache(cache.CourseInfoCacheConfig{})
	courseQuery := cache.NewCachedQuery(projection, c.catalogue, nil)

	onConfirmed := NewOnPaymentConfirmedHandler(c.enrollRepo, c.bus, nil)
	require.NoError(t, c.bus.SubscribeNamed(onConfirmed.EventType(), "on_payment_confirmed", onConfirmed.Handle))

	onRejected := NewOnPaymentRejectedHandler(c.enrollRepo, nil)
	require.NoError(t, c.bus.SubscribeNamed(onRejected.EventType(), "on_payment_rejected", onRejected.Handle))

	onCourseChanged := NewOnCourseChangedHandler(projection, nil)
	for _, eventType := range onCourseChanged.EventTypes() {
		require.NoError(t, c.bus.SubscribeNamed(eventType, "on_course_changed", onCourseChanged.Handle))
	}

	c.enroll = command.NewEnrollHandler(c.enrollRepo, courseQuery, c.bus)
	c.pay = command.NewProcessPaymentHandler(c.payRepo, c.enrollRepo, c.gateway, c.bus)

	require.NoError(t, c.catalogue.AddCourse(context.Background(), content.Course{
		ID:        "course-go",
		Name:      "Go Fundamentals",
		Price:     shared.MustMoney(4999, "USD"),
		LessonIDs: []string{"l1", "l2"},
	}))
	return c
}

func testCard() payment.Card {
	return payment.Card{
		Number:      "4111111111111111",
		HolderName:  "JANE DOE",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
		CVV:         "123",
	}
}

func TestChoreography_ApprovedPaymentActivatesEnrollment(t *testing.T) {
	c := newChoreography(t)
	ctx := context.Background()

	enrolled, err := c.enroll.Handle(ctx, command.EnrollCommand{StudentID: "student-1", CourseID: "course-go"})
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPendingPayment, enrolled.Status)

	charged, err := c.pay.Handle(ctx, command.ProcessPaymentCommand{
		EnrollmentID: enrolled.EnrollmentID,
		Card:         testCard(),
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusApproved, charged.Status)

	// The confirmation reaction ran inside the command: the enrollment is
	// Active before ProcessPayment returned.
	e, err := c.enrollRepo.GetByID(ctx, enrolled.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusActive, e.Status)
	require.NotNil(t, e.PaymentID)
	assert.Equal(t, charged.PaymentID, *e.PaymentID)
}

func TestChoreography_DeclinedPaymentLeavesEnrollmentPending(t *testing.T) {
	c := newChoreography(t)
	c.gateway.approve = false
	ctx := context.Background()

	enrolled, err := c.enroll.Handle(ctx, command.EnrollCommand{StudentID: "student-1", CourseID: "course-go"})
	require.NoError(t, err)

	charged, err := c.pay.Handle(ctx, command.ProcessPaymentCommand{
		EnrollmentID: enrolled.EnrollmentID,
		Card:         testCard(),
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, charged.Status)

	e, err := c.enrollRepo.GetByID(ctx, enrolled.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPendingPayment, e.Status)
	require.NotNil(t, e.PaymentFailureReason)
	assert.Equal(t, "insufficient funds", *e.PaymentFailureReason)

	// Retry with an approving gateway succeeds on the same enrollment.
	c.gateway.approve = true
	retried, err := c.pay.Handle(ctx, command.ProcessPaymentCommand{
		EnrollmentID: enrolled.EnrollmentID,
		Card:         testCard(),
	})
	require.NoError(t, err)
	assert.Equal(t, payment.StatusApproved, retried.Status)

	e, err = c.enrollRepo.GetByID(ctx, enrolled.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusActive, e.Status)
	assert.Nil(t, e.PaymentFailureReason)
}

func TestChoreography_CancelledContextStopsActivationCascade(t *testing.T) {
	c := newChoreography(t)

	enrolled, err := c.enroll.Handle(context.Background(), command.EnrollCommand{StudentID: "student-1", CourseID: "course-go"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.pay.Handle(ctx, command.ProcessPaymentCommand{
		EnrollmentID: enrolled.EnrollmentID,
		Card:         testCard(),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// The command's context reaches the confirmation reaction, so the
	// enrollment was never activated.
	e, err := c.enrollRepo.GetByID(context.Background(), enrolled.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPendingPayment, e.Status)
	assert.Nil(t, e.PaymentID)
}

func TestChoreography_CatalogueEventsDriveProjection(t *testing.T) {
	c := newChoreography(t)
	ctx := context.Background()

	// The AddCourse in the fixture already cached the projection via the
	// course-changed reaction; removing the course evicts it and enrollment
	// then falls through to the catalogue, which no longer has it.
	require.NoError(t, c.catalogue.RemoveCourse(ctx, "course-go"))

	_, err := c.enroll.Handle(ctx, command.EnrollCommand{StudentID: "student-1", CourseID: "course-go"})
	assert.Error(t, err)
}
