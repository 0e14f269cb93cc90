// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STUDENT ENROLLMENTS QUERY
// The student-facing enrollment list, newest first, with the course name
// resolved through the cached projection.
// ══════════════════════════════════════════════════════════════════════════════

// GetStudentEnrollmentsQuery contains the parameters of the enrollment list.
type GetStudentEnrollmentsQuery struct {
	// StudentID - the student whose enrollments to list.
	StudentID string

	// Status - optional filter; empty means all statuses.
	Status enrollment.Status
}

// Validate validates the query.
func (q GetStudentEnrollmentsQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("enrollment", "List", shared.ErrBadRequest, "student_id is required")
	}
	if q.Status != "" && !q.Status.IsValid() {
		return shared.NewDomainError("enrollment", "List", shared.ErrBadRequest, "unknown status filter")
	}
	return nil
}

// EnrollmentView is one row of the enrollment list.
type EnrollmentView struct {
	EnrollmentID   string            `json:"enrollment_id"`
	CourseID       string            `json:"course_id"`
	CourseName     string            `json:"course_name,omitempty"`
	Price          shared.Money      `json:"price"`
	Status         enrollment.Status `json:"status"`
	EnrollmentDate time.Time         `json:"enrollment_date"`
	ActivationDate *time.Time        `json:"activation_date,omitempty"`
	CompletionDate *time.Time        `json:"completion_date,omitempty"`
}

// GetStudentEnrollmentsHandler handles the GetStudentEnrollmentsQuery.
type GetStudentEnrollmentsHandler struct {
	enrollmentRepo enrollment.Repository
	courseQuery    course.Query
}

// NewGetStudentEnrollmentsHandler creates a new GetStudentEnrollmentsHandler.
func NewGetStudentEnrollmentsHandler(
	enrollmentRepo enrollment.Repository,
	courseQuery course.Query,
) *GetStudentEnrollmentsHandler {
	return &GetStudentEnrollmentsHandler{
		enrollmentRepo: enrollmentRepo,
		courseQuery:    courseQuery,
	}
}

// Handle executes the query.
func (h *GetStudentEnrollmentsHandler) Handle(ctx context.Context, q GetStudentEnrollmentsQuery) ([]EnrollmentView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	enrollments, err := h.enrollmentRepo.GetByStudent(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_student_enrollments: load enrollments: %w", err)
	}

	views := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		if q.Status != "" && e.Status != q.Status {
			continue
		}

		view := EnrollmentView{
			EnrollmentID:   e.ID,
			CourseID:       e.CourseID,
			Price:          e.Price,
			Status:         e.Status,
			EnrollmentDate: e.EnrollmentDate,
			ActivationDate: e.ActivationDate,
			CompletionDate: e.CompletionDate,
		}

		// Best effort: a missing projection leaves the name blank rather than
		// failing the whole listing.
		if name, nerr := h.courseQuery.GetName(ctx, e.CourseID); nerr == nil {
			view.CourseName = name
		}

		views = append(views, view)
	}

	return views, nil
}
