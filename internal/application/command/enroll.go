// Package command contains write operations (CQRS - Commands).
// Each command runs as one unit of work against its owning store; events it
// publishes fan out synchronously to the other stores' reactions before the
// command returns.
package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLL COMMAND
// Creates an enrollment in PendingPayment. The price is captured from the
// Content store's projection, never taken from the client - the Content store
// owns pricing.
// ══════════════════════════════════════════════════════════════════════════════

// EnrollCommand contains the data to enroll a student in a course.
type EnrollCommand struct {
	// StudentID is the enrolling student.
	StudentID string

	// CourseID is the course to enroll in.
	CourseID string
}

// Validate validates the command.
func (c EnrollCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("enrollment", "Enroll", shared.ErrBadRequest, "student_id is required")
	}
	if c.CourseID == "" {
		return shared.NewDomainError("enrollment", "Enroll", shared.ErrBadRequest, "course_id is required")
	}
	return nil
}

// EnrollResult contains the result of an enrollment.
type EnrollResult struct {
	// EnrollmentID is the new enrollment's ID.
	EnrollmentID string

	// Status is the initial status (always PendingPayment).
	Status enrollment.Status

	// Price is the captured course price awaiting payment.
	Price shared.Money
}

// EnrollHandler handles the EnrollCommand.
type EnrollHandler struct {
	enrollmentRepo enrollment.Repository
	courseQuery    course.Query
	eventPublisher shared.EventPublisher
}

// NewEnrollHandler creates a new EnrollHandler.
func NewEnrollHandler(
	enrollmentRepo enrollment.Repository,
	courseQuery course.Query,
	eventPublisher shared.EventPublisher,
) *EnrollHandler {
	return &EnrollHandler{
		enrollmentRepo: enrollmentRepo,
		courseQuery:    courseQuery,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the enroll command.
func (h *EnrollHandler) Handle(ctx context.Context, cmd EnrollCommand) (*EnrollResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	info, err := h.courseQuery.GetCourse(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("enroll: resolve course: %w", err)
	}
	if !info.IsActive {
		return nil, shared.NewDomainError("enrollment", "Enroll", shared.ErrInvalidOperation, "course is not open for enrollment")
	}

	// Application-level duplicate check; the store's partial unique index is
	// the authoritative guard under concurrency.
	if existing, err := h.enrollmentRepo.GetOpenByStudentAndCourse(ctx, cmd.StudentID, cmd.CourseID); err == nil && existing != nil {
		return nil, enrollment.ErrAlreadyEnrolled
	} else if err != nil && !shared.IsNotFound(err) {
		return nil, fmt.Errorf("enroll: check existing enrollment: %w", err)
	}

	e, err := enrollment.NewEnrollment(enrollment.NewEnrollmentParams{
		ID:        uuid.NewString(),
		StudentID: cmd.StudentID,
		CourseID:  cmd.CourseID,
		Price:     info.Price,
	})
	if err != nil {
		return nil, err
	}

	if err := h.enrollmentRepo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("enroll: persist enrollment: %w", err)
	}

	if err := h.eventPublisher.Publish(ctx, shared.NewStudentEnrolledEvent(e.StudentID, e.CourseID, e.ID)); err != nil {
		return nil, fmt.Errorf("enroll: publish event: %w", err)
	}

	return &EnrollResult{
		EnrollmentID: e.ID,
		Status:       e.Status,
		Price:        e.Price,
	}, nil
}
