package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/learning"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD LESSON COMPLETION COMMAND
// Idempotent add to the course's completed-lesson set, followed by the one
// place where progress data crosses into the enrollment state machine: when
// the completed set covers the course's full lesson set, the enrollment is
// driven Active -> Completed.
//
// The lesson must belong to the named course; unknown lessons are rejected
// rather than silently recorded.
// ══════════════════════════════════════════════════════════════════════════════

// RecordLessonCompletionCommand contains the data to record a completed lesson.
type RecordLessonCompletionCommand struct {
	// StudentID is the learning student.
	StudentID string

	// CourseID is the course the lesson belongs to.
	CourseID string

	// LessonID is the completed lesson.
	LessonID string
}

// Validate validates the command.
func (c RecordLessonCompletionCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("learning", "CompleteLesson", shared.ErrBadRequest, "student_id is required")
	}
	if c.CourseID == "" {
		return shared.NewDomainError("learning", "CompleteLesson", shared.ErrBadRequest, "course_id is required")
	}
	if c.LessonID == "" {
		return shared.NewDomainError("learning", "CompleteLesson", shared.ErrBadRequest, "lesson_id is required")
	}
	return nil
}

// RecordLessonCompletionResult contains the result of recording a lesson.
type RecordLessonCompletionResult struct {
	// Added is false when the lesson was already in the completed set.
	Added bool

	// CompletedLessons is the size of the completed set after the call.
	CompletedLessons int

	// TotalLessons is the course's full lesson count at evaluation time.
	TotalLessons int

	// CourseCompleted is true when this call detected full completion and
	// drove the enrollment to Completed.
	CourseCompleted bool
}

// RecordLessonCompletionHandler handles the RecordLessonCompletionCommand.
type RecordLessonCompletionHandler struct {
	learningRepo   learning.Repository
	enrollmentRepo enrollment.Repository
	courseQuery    course.Query
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewRecordLessonCompletionHandler creates a new RecordLessonCompletionHandler.
func NewRecordLessonCompletionHandler(
	learningRepo learning.Repository,
	enrollmentRepo enrollment.Repository,
	courseQuery course.Query,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *RecordLessonCompletionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordLessonCompletionHandler{
		learningRepo:   learningRepo,
		enrollmentRepo: enrollmentRepo,
		courseQuery:    courseQuery,
		eventPublisher: eventPublisher,
		logger:         logger.With("command", "record_lesson_completion"),
	}
}

// Handle executes the record lesson completion command.
func (h *RecordLessonCompletionHandler) Handle(ctx context.Context, cmd RecordLessonCompletionCommand) (*RecordLessonCompletionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	e, err := h.enrollmentRepo.GetOpenByStudentAndCourse(ctx, cmd.StudentID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("complete_lesson: load enrollment: %w", err)
	}
	if e.Status != enrollment.StatusActive && e.Status != enrollment.StatusCompleted {
		return nil, shared.NewDomainError("learning", "CompleteLesson", shared.ErrInvalidOperation, "enrollment is not active")
	}

	lessonIDs, err := h.courseQuery.GetLessonIds(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("complete_lesson: load course lessons: %w", err)
	}
	if !containsLesson(lessonIDs, cmd.LessonID) {
		return nil, learning.ErrLessonNotInCourse
	}

	history, err := h.learningRepo.GetByStudent(ctx, cmd.StudentID)
	if err != nil {
		if !shared.IsNotFound(err) {
			return nil, fmt.Errorf("complete_lesson: load history: %w", err)
		}
		history = learning.NewLearningHistory(cmd.StudentID)
	}

	progress := history.EnsureProgress(uuid.NewString(), cmd.CourseID)
	added := progress.CompleteLesson(cmd.LessonID, time.Now())

	result := &RecordLessonCompletionResult{
		Added:            added,
		CompletedLessons: len(progress.CompletedLessons),
		TotalLessons:     len(lessonIDs),
	}

	// Re-evaluate full completion on every recording, not only on additions:
	// the lesson set may have shrunk since the last evaluation.
	if !progress.IsCompleted && progress.AllCompleted(lessonIDs) {
		progress.MarkCompleted()
		result.CourseCompleted = true
	}

	if err := h.learningRepo.Save(ctx, history); err != nil {
		return nil, fmt.Errorf("complete_lesson: persist history: %w", err)
	}

	if added {
		if err := h.eventPublisher.Publish(ctx, shared.NewLessonCompletedEvent(cmd.StudentID, cmd.CourseID, cmd.LessonID)); err != nil {
			return nil, fmt.Errorf("complete_lesson: publish lesson event: %w", err)
		}
	}

	if result.CourseCompleted {
		if err := h.completeEnrollment(ctx, e); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// completeEnrollment drives the enrollment Active -> Completed. Two concurrent
// recorders can both detect full completion; the versioned update guarantees
// only one transition lands, and the loser's conflict resolves to a no-op once
// it observes the Completed row.
func (h *RecordLessonCompletionHandler) completeEnrollment(ctx context.Context, e *enrollment.Enrollment) error {
	if e.Status == enrollment.StatusCompleted {
		return nil
	}

	completedAt := time.Now().UTC()
	if err := e.Complete(completedAt); err != nil {
		return err
	}

	if err := h.enrollmentRepo.Update(ctx, e); err != nil {
		if shared.IsConcurrentModification(err) {
			fresh, ferr := h.enrollmentRepo.GetByID(ctx, e.ID)
			if ferr == nil && fresh.IsCompleted() {
				h.logger.Info("enrollment already completed by concurrent recorder",
					"enrollment_id", e.ID,
				)
				return nil
			}
		}
		return fmt.Errorf("complete_lesson: complete enrollment: %w", err)
	}

	if err := h.eventPublisher.Publish(ctx, shared.NewCourseCompletedEvent(e.ID, e.StudentID, e.CourseID, completedAt)); err != nil {
		return fmt.Errorf("complete_lesson: publish completion: %w", err)
	}

	h.logger.Info("course completed",
		"enrollment_id", e.ID,
		"student_id", e.StudentID,
		"course_id", e.CourseID,
	)
	return nil
}

func containsLesson(lessonIDs []string, lessonID string) bool {
	for _, id := range lessonIDs {
		if id == lessonID {
			return true
		}
	}
	return false
}
