package command

import (
	"context"
	"fmt"

	"github.com/learnhub/enrollment-hub/internal/domain/learning"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNCOMPLETE LESSON COMMAND
// The single supported path for removing a lesson from the completed set.
// It clears the course completion flag but never reverses the enrollment
// state machine - a Completed enrollment stays Completed.
// ══════════════════════════════════════════════════════════════════════════════

// UncompleteLessonCommand contains the data to remove a completed lesson.
type UncompleteLessonCommand struct {
	// StudentID is the student whose record is amended.
	StudentID string

	// CourseID is the course the lesson belongs to.
	CourseID string

	// LessonID is the lesson to remove.
	LessonID string
}

// Validate validates the command.
func (c UncompleteLessonCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("learning", "UncompleteLesson", shared.ErrBadRequest, "student_id is required")
	}
	if c.CourseID == "" {
		return shared.NewDomainError("learning", "UncompleteLesson", shared.ErrBadRequest, "course_id is required")
	}
	if c.LessonID == "" {
		return shared.NewDomainError("learning", "UncompleteLesson", shared.ErrBadRequest, "lesson_id is required")
	}
	return nil
}

// UncompleteLessonResult contains the result of the removal.
type UncompleteLessonResult struct {
	// Removed is false when the lesson was not in the completed set.
	Removed bool
}

// UncompleteLessonHandler handles the UncompleteLessonCommand.
type UncompleteLessonHandler struct {
	learningRepo learning.Repository
}

// NewUncompleteLessonHandler creates a new UncompleteLessonHandler.
func NewUncompleteLessonHandler(learningRepo learning.Repository) *UncompleteLessonHandler {
	return &UncompleteLessonHandler{learningRepo: learningRepo}
}

// Handle executes the uncomplete lesson command.
func (h *UncompleteLessonHandler) Handle(ctx context.Context, cmd UncompleteLessonCommand) (*UncompleteLessonResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	history, err := h.learningRepo.GetByStudent(ctx, cmd.StudentID)
	if err != nil {
		return nil, fmt.Errorf("uncomplete_lesson: load history: %w", err)
	}

	progress := history.ProgressFor(cmd.CourseID)
	if progress == nil {
		return nil, learning.ErrProgressNotFound
	}

	removed := progress.UncompleteLesson(cmd.LessonID)
	if removed {
		history.Touch()
		if err := h.learningRepo.Save(ctx, history); err != nil {
			return nil, fmt.Errorf("uncomplete_lesson: persist history: %w", err)
		}
	}

	return &UncompleteLessonResult{Removed: removed}, nil
}
