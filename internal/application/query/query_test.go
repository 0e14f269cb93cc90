package query

import (
	"context"
	"sync"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/certificate"
	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/learning"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL FAKES
// ══════════════════════════════════════════════════════════════════════════════

// memEnrollmentRepo keeps insertion order so listings are deterministic.
type memEnrollmentRepo struct {
	mu   sync.Mutex
	rows []*enrollment.Enrollment
}

func (r *memEnrollmentRepo) put(e *enrollment.Enrollment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, e.Clone())
}

func (r *memEnrollmentRepo) Create(_ context.Context, e *enrollment.Enrollment) error {
	r.put(e)
	return nil
}

func (r *memEnrollmentRepo) GetByID(_ context.Context, id string) (*enrollment.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, row := range r.rows {
		if row.ID == id {
			return row.Clone(), nil
		}
	}
	return nil, enrollment.ErrNotFound
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

	for i, row := range r.rows {
		if row.ID == e.ID {
			e.Version++
			r.rows[i] = e.Clone()
			return nil
		}
	}
	return enrollment.ErrNotFound
}

type memLearningRepo struct {
	histories map[string]*learning.LearningHistory
}

func newMemLearningRepo() *memLearningRepo {
	return &memLearningRepo{histories: make(map[string]*learning.LearningHistory)}
}

func (r *memLearningRepo) GetByStudent(_ context.Context, studentID string) (*learning.LearningHistory, error) {
	h, ok := r.histories[studentID]
	if !ok {
		return nil, learning.ErrHistoryNotFound
	}
	return h, nil
}

func (r *memLearningRepo) Save(_ context.Context, h *learning.LearningHistory) error {
	r.histories[h.StudentID] = h
	return nil
}

type memCertificateRepo struct {
	rows map[string]*certificate.Certificate
}

func newMemCertificateRepo() *memCertificateRepo {
	return &memCertificateRepo{rows: make(map[string]*certificate.Certificate)}
}

func (r *memCertificateRepo) Create(_ context.Context, c *certificate.Certificate) error {
	for _, row := range r.rows {
		if row.StudentID == c.StudentID && row.CourseID == c.CourseID {
			return certificate.ErrAlreadyIssued
		}
	}
	r.rows[c.ID] = c
	return nil
}

func (r *memCertificateRepo) GetByID(_ context.Context, id string) (*certificate.Certificate, error) {
	c, ok := r.rows[id]
	if !ok {
		return nil, certificate.ErrNotFound
	}
	return c, nil
}

func (r *memCertificateRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*certificate.Certificate, error) {
	for _, row := range r.rows {
		if row.StudentID == studentID && row.CourseID == courseID {
			return row, nil
		}
	}
	return nil, certificate.ErrNotFound
}

func (r *memCertificateRepo) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	_, err := r.GetByStudentAndCourse(ctx, studentID, courseID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memCertificateRepo) Update(_ context.Context, c *certificate.Certificate) error {
	if _, ok := r.rows[c.ID]; !ok {
		return certificate.ErrNotFound
	}
	r.rows[c.ID] = c
	return nil
}

// memCourseQuery serves names and lesson sets from fixed maps.
type memCourseQuery struct {
	names   map[string]string
	lessons map[string][]string
}

func newMemCourseQuery() *memCourseQuery {
	return &memCourseQuery{
		names:   make(map[string]string),
		lessons: make(map[string][]string),
	}
}

func (q *memCourseQuery) GetCourse(_ context.Context, courseID string) (*course.Info, error) {
	name, ok := q.names[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	return &course.Info{
		ID:          courseID,
		Name:        name,
		LessonCount: len(q.lessons[courseID]),
		IsActive:    true,
		CachedAt:    time.Now().UTC(),
	}, nil
}

func (q *memCourseQuery) GetName(_ context.Context, courseID string) (string, error) {
	name, ok := q.names[courseID]
	if !ok {
		return "", course.ErrCourseNotFound
	}
	return name, nil
}

func (q *memCourseQuery) GetLessonIds(_ context.Context, courseID string) ([]string, error) {
	lessons, ok := q.lessons[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	return lessons, nil
}

func (q *memCourseQuery) Exists(_ context.Context, courseID string) (bool, error) {
	_, ok := q.names[courseID]
	return ok, nil
}
