package eventhandler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL FAKES
// ══════════════════════════════════════════════════════════════════════════════

type memEnrollmentRepo struct {
	mu   sync.Mutex
	rows map[string]*enrollment.Enrollment
}

func newMemEnrollmentRepo() *memEnrollmentRepo {
	return &memEnrollmentRepo{rows: make(map[string]*enrollment.Enrollment)}
}

func (r *memEnrollmentRepo) put(e *enrollment.Enrollment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[e.ID] = e.Clone()
}

func (r *memEnrollmentRepo) Create(_ context.Context, e *enrollment.Enrollment) error {
	r.put(e)
	return nil
}

func (r *memEnrollmentRepo) GetByID(_ context.Context, id string) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, enrollment.ErrNotFound
	}
	return row.Clone(), nil
}

func (r *memEnrollmentRepo) GetOpenByStudentAndCourse(_ context.Context, studentID, courseID string) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.StudentID == studentID && row.CourseID == courseID && row.Status.IsOpen() {
			return row.Clone(), nil
		}
	}
	return nil, enrollment.ErrNotFound
}

func (r *memEnrollmentRepo) GetByStudent(_ context.Context, studentID string) ([]*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*enrollment.Enrollment
	for _, row := range r.rows {
		if row.StudentID == studentID {
			out = append(out, row.Clone())
		}
	}
	return out, nil
}

func (r *memEnrollmentRepo) Update(_ context.Context, e *enrollment.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rows[e.ID]
	if !ok {
		return enrollment.ErrNotFound
	}
	if stored.Version != e.Version {
		return shared.ErrConcurrentModification
	}
	e.Version++
	r.rows[e.ID] = e.Clone()
	return nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func seedPending(t *testing.T, repo *memEnrollmentRepo) *enrollment.Enrollment {
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

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT CONFIRMED
// ══════════════════════════════════════════════════════════════════════════════

func TestOnPaymentConfirmed_ActivatesEnrollment(t *testing.T) {
	repo := newMemEnrollmentRepo()
	seedPending(t, repo)
	publisher := &capturingPublisher{}
	handler := NewOnPaymentConfirmedHandler(repo, publisher, nil)

	err := handler.Handle(context.Background(), shared.NewPaymentConfirmedEvent("pay-1", "enr-1", "txn-42"))
	require.NoError(t, err)

	e, err := repo.GetByID(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusActive, e.Status)
	require.NotNil(t, e.PaymentID)
	assert.Equal(t, "pay-1", *e.PaymentID)
	assert.NotNil(t, e.ActivationDate)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, shared.EventEnrollmentActivated, publisher.events[0].EventType())
}

func TestOnPaymentConfirmed_RedeliveryIsHarmless(t *testing.T) {
	repo := newMemEnrollmentRepo()
	seedPending(t, repo)
	publisher := &capturingPublisher{}
	handler := NewOnPaymentConfirmedHandler(repo, publisher, nil)

	event := shared.NewPaymentConfirmedEvent("pay-1", "enr-1", "txn-42")
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	// Activated exactly once.
	assert.Len(t, publisher.events, 1)
}

func TestOnPaymentConfirmed_DifferentPaymentOnActiveEnrollmentFails(t *testing.T) {
	repo := newMemEnrollmentRepo()
	e := seedPending(t, repo)
	require.NoError(t, e.Activate("pay-other", time.Now()))
	repo.put(e)

	handler := NewOnPaymentConfirmedHandler(repo, &capturingPublisher{}, nil)

	err := handler.Handle(context.Background(), shared.NewPaymentConfirmedEvent("pay-1", "enr-1", "txn-42"))
	assert.ErrorIs(t, err, enrollment.ErrNotPendingPayment)
}

func TestOnPaymentConfirmed_UnknownEnrollmentPropagates(t *testing.T) {
	handler := NewOnPaymentConfirmedHandler(newMemEnrollmentRepo(), &capturingPublisher{}, nil)

	err := handler.Handle(context.Background(), shared.NewPaymentConfirmedEvent("pay-1", "ghost", "txn-42"))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT REJECTED
// ══════════════════════════════════════════════════════════════════════════════

func TestOnPaymentRejected_RecordsReasonAndStaysPending(t *testing.T) {
	repo := newMemEnrollmentRepo()
	seedPending(t, repo)
	handler := NewOnPaymentRejectedHandler(repo, nil)

	err := handler.Handle(context.Background(), shared.NewPaymentRejectedEvent("pay-1", "enr-1", "insufficient funds"))
	require.NoError(t, err)

	e, err := repo.GetByID(context.Background(), "enr-1")
	require.NoError(t, err)
	assert.Equal(t, enrollment.StatusPendingPayment, e.Status)
	require.NotNil(t, e.PaymentFailureReason)
	assert.Equal(t, "insufficient funds", *e.PaymentFailureReason)
}
