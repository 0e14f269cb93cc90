package command

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/learning"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE COURSE COMMAND (admin override)
// Marks an enrollment Completed without requiring every lesson. The canonical
// path is the lesson-completion detector; this exists for support cases.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteCourseCommand contains the data to force-complete an enrollment.
type CompleteCourseCommand struct {
	// EnrollmentID is the enrollment to complete.
	EnrollmentID string
}

// Validate validates the command.
func (c CompleteCourseCommand) Validate() error {
	if c.EnrollmentID == "" {
		return shared.NewDomainError("enrollment", "Complete", shared.ErrBadRequest, "enrollment_id is required")
	}
	return nil
}

// CompleteCourseResult contains the result of the completion.
type CompleteCourseResult struct {
	// EnrollmentID is the completed enrollment.
	EnrollmentID string

	// CompletionDate is when it was completed.
	CompletionDate time.Time
}

// CompleteCourseHandler handles the CompleteCourseCommand.
type CompleteCourseHandler struct {
	enrollmentRepo enrollment.Repository
	learningRepo   learning.Repository
	eventPublisher shared.EventPublisher
}

// NewCompleteCourseHandler creates a new CompleteCourseHandler.
func NewCompleteCourseHandler(
	enrollmentRepo enrollment.Repository,
	learningRepo learning.Repository,
	eventPublisher shared.EventPublisher,
) *CompleteCourseHandler {
	return &CompleteCourseHandler{
		enrollmentRepo: enrollmentRepo,
		learningRepo:   learningRepo,
		eventPublisher: eventPublisher,
	}
}

// Handle executes the complete course command.
func (h *CompleteCourseHandler) Handle(ctx context.Context, cmd CompleteCourseCommand) (*CompleteCourseResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	e, err := h.enrollmentRepo.GetByID(ctx, cmd.EnrollmentID)
	if err != nil {
		return nil, fmt.Errorf("complete_course: load enrollment: %w", err)
	}

	completedAt := time.Now().UTC()
	if err := e.Complete(completedAt); err != nil {
		return nil, err
	}
	if err := h.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("complete_course: persist enrollment: %w", err)
	}

	// Keep the progress record consistent with the override when one exists.
	if history, herr := h.learningRepo.GetByStudent(ctx, e.StudentID); herr == nil {
		if progress := history.ProgressFor(e.CourseID); progress != nil && !progress.IsCompleted {
			progress.MarkCompleted()
			if err := h.learningRepo.Save(ctx, history); err != nil {
				return nil, fmt.Errorf("complete_course: persist history: %w", err)
			}
		}
	} else if !shared.IsNotFound(herr) {
		return nil, fmt.Errorf("complete_course: load history: %w", herr)
	}

	if err := h.eventPublisher.Publish(ctx, shared.NewCourseCompletedEvent(e.ID, e.StudentID, e.CourseID, completedAt)); err != nil {
		return nil, fmt.Errorf("complete_course: publish event: %w", err)
	}

	return &CompleteCourseResult{
		EnrollmentID:   e.ID,
		CompletionDate: completedAt,
	}, nil
}
