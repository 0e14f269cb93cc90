package command

import (
	"context"
	"sync"

	"github.com/learnhub/enrollment-hub/internal/domain/certificate"
	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/learning"
	"github.com/learnhub/enrollment-hub/internal/domain/payment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// Behavioural stand-ins for the postgres repositories. They honor the same
// contracts the interfaces document: duplicate guards, optimistic versioning,
// not-found sentinels.
// ══════════════════════════════════════════════════════════════════════════════

type fakeEnrollmentRepo struct {
	mu   sync.Mutex
	rows map[string]*enrollment.Enrollment
}

func newFakeEnrollmentRepo() *fakeEnrollmentRepo {
	return &fakeEnrollmentRepo{rows: make(map[string]*enrollment.Enrollment)}
}

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *enrollment.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.StudentID == e.StudentID && row.CourseID == e.CourseID && row.Status.IsOpen() {
			return enrollment.ErrAlreadyEnrolled
		}
	}
	r.rows[e.ID] = e.Clone()
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id string) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, enrollment.ErrNotFound
	}
	return row.Clone(), nil
}

func (r *fakeEnrollmentRepo) GetOpenByStudentAndCourse(_ context.Context, studentID, courseID string) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.StudentID == studentID && row.CourseID == courseID && row.Status.IsOpen() {
			return row.Clone(), nil
		}
	}
	return nil, enrollment.ErrNotFound
}

func (r *fakeEnrollmentRepo) GetByStudent(_ context.Context, studentID string) ([]*enrollment.Enrollment, error) {
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

func (r *fakeEnrollmentRepo) Update(_ context.Context, e *enrollment.Enrollment) error {
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

// put seeds a row directly, bypassing the Create guard.
func (r *fakeEnrollmentRepo) put(e *enrollment.Enrollment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[e.ID] = e.Clone()
}

type fakePaymentRepo struct {
	mu   sync.Mutex
	rows map[string]*payment.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{rows: make(map[string]*payment.Payment)}
}

func (r *fakePaymentRepo) Create(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[p.ID] = p.Clone()
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return row.Clone(), nil
}

func (r *fakePaymentRepo) GetByEnrollment(_ context.Context, enrollmentID string) ([]*payment.Payment, error) {
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

func (r *fakePaymentRepo) Update(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[p.ID]; !ok {
		return payment.ErrNotFound
	}
	r.rows[p.ID] = p.Clone()
	return nil
}

type fakeLearningRepo struct {
	mu        sync.Mutex
	histories map[string]*learning.LearningHistory
}

func newFakeLearningRepo() *fakeLearningRepo {
	return &fakeLearningRepo{histories: make(map[string]*learning.LearningHistory)}
}

func (r *fakeLearningRepo) GetByStudent(_ context.Context, studentID string) (*learning.LearningHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.histories[studentID]
	if !ok {
		return nil, learning.ErrHistoryNotFound
	}
	return h, nil
}

func (r *fakeLearningRepo) Save(_ context.Context, h *learning.LearningHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.histories[h.StudentID] = h
	return nil
}

type fakeCertificateRepo struct {
	mu   sync.Mutex
	rows map[string]*certificate.Certificate
}

func newFakeCertificateRepo() *fakeCertificateRepo {
	return &fakeCertificateRepo{rows: make(map[string]*certificate.Certificate)}
}

func (r *fakeCertificateRepo) Create(_ context.Context, c *certificate.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.StudentID == c.StudentID && row.CourseID == c.CourseID {
			return certificate.ErrAlreadyIssued
		}
	}
	r.rows[c.ID] = c
	return nil
}

func (r *fakeCertificateRepo) GetByID(_ context.Context, id string) (*certificate.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok {
		return nil, certificate.ErrNotFound
	}
	return row, nil
}

func (r *fakeCertificateRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*certificate.Certificate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.StudentID == studentID && row.CourseID == courseID {
			return row, nil
		}
	}
	return nil, certificate.ErrNotFound
}

func (r *fakeCertificateRepo) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	_, err := r.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeCertificateRepo) Update(_ context.Context, c *certificate.Certificate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[c.ID]; !ok {
		return certificate.ErrNotFound
	}
	r.rows[c.ID] = c
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY AND PUBLISHER FAKES
// ══════════════════════════════════════════════════════════════════════════════

// fakeGateway answers with scripted results. A nil scripted error with
// Approved=false models a business decline; a non-nil error models a
// transport fault.
type fakeGateway struct {
	chargeResult *payment.ChargeResult
	chargeErr    error
	refundResult *payment.RefundResult
	refundErr    error

	chargeCalls int
	refundCalls int
}

func (g *fakeGateway) Charge(context.Context, string, shared.Money, payment.Card) (*payment.ChargeResult, error) {
	g.chargeCalls++
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	return g.chargeResult, nil
}

func (g *fakeGateway) Refund(context.Context, string, shared.Money, string) (*payment.RefundResult, error) {
	g.refundCalls++
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	return g.refundResult, nil
}

// recordingPublisher collects every published event.
type recordingPublisher struct {
	events []shared.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event shared.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) typesPublished() []shared.EventType {
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// fakeCourseQuery answers course queries from a static registry.
type fakeCourseQuery struct {
	courses map[string]*course.Info
	lessons map[string][]string
}

func newFakeCourseQuery() *fakeCourseQuery {
	return &fakeCourseQuery{
		courses: make(map[string]*course.Info),
		lessons: make(map[string][]string),
	}
}

func (q *fakeCourseQuery) addCourse(info *course.Info, lessonIDs []string) {
	q.courses[info.ID] = info
	q.lessons[info.ID] = lessonIDs
	info.LessonCount = len(lessonIDs)
}

func (q *fakeCourseQuery) GetCourse(_ context.Context, courseID string) (*course.Info, error) {
	info, ok := q.courses[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	clone := *info
	return &clone, nil
}

func (q *fakeCourseQuery) Exists(_ context.Context, courseID string) (bool, error) {
	_, ok := q.courses[courseID]
	return ok, nil
}

func (q *fakeCourseQuery) GetName(_ context.Context, courseID string) (string, error) {
	info, ok := q.courses[courseID]
	if !ok {
		return "", course.ErrCourseNotFound
	}
	return info.Name, nil
}

func (q *fakeCourseQuery) GetLessonIds(_ context.Context, courseID string) ([]string, error) {
	ids, ok := q.lessons[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	return ids, nil
}
