// Package learning contains the LearningHistory aggregate of the Student
// store: per-course progress records with a mathematical set of completed
// lessons, and the full-completion detection used to drive enrollments to
// Completed.
package learning

import (
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrHistoryNotFound - no learning history exists for the student.
	ErrHistoryNotFound = shared.NewDomainError("learning", "Find", shared.ErrNotFound, "learning history not found")

	// ErrProgressNotFound - the student has no progress for the course.
	ErrProgressNotFound = shared.NewDomainError("learning", "FindProgress", shared.ErrNotFound, "course progress not found")

	// ErrLessonNotInCourse - the lesson does not belong to the named course.
	ErrLessonNotInCourse = shared.NewDomainError("learning", "CompleteLesson", shared.ErrBadRequest, "lesson does not belong to course")
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETED LESSON
// ══════════════════════════════════════════════════════════════════════════════

// CompletedLesson records one finished lesson.
type CompletedLesson struct {
	// LessonID - the lesson that was completed.
	LessonID string

	// CompletedAt - when it was first completed. Re-completions keep the
	// original timestamp.
	CompletedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSE PROGRESS
// ══════════════════════════════════════════════════════════════════════════════

// CourseProgress is a student's completion record for one course.
// The completed-lesson collection behaves as a set: adding an already
// completed lesson is a no-op.
type CourseProgress struct {
	// ID - internal unique identifier (UUID string).
	ID string

	// CourseID - the course this progress tracks.
	CourseID string

	// IsCompleted - true once the completed set covered the full lesson set of
	// the course at evaluation time.
	IsCompleted bool

	// LastUpdated - last modification time.
	LastUpdated time.Time

	// CompletedLessons - the set of finished lessons.
	CompletedLessons []CompletedLesson
}

// NewCourseProgress creates an empty progress record for a course.
func NewCourseProgress(id, courseID string) *CourseProgress {
	return &CourseProgress{
		ID:          id,
		CourseID:    courseID,
		LastUpdated: time.Now().UTC(),
	}
}

// HasLesson reports whether the lesson is already in the completed set.
func (cp *CourseProgress) HasLesson(lessonID string) bool {
	for _, l := range cp.CompletedLessons {
		if l.LessonID == lessonID {
			return true
		}
	}
	return false
}

// CompleteLesson adds a lesson to the completed set.
// Returns true if the set changed, false if the lesson was already completed.
func (cp *CourseProgress) CompleteLesson(lessonID string, at time.Time) bool {
	if cp.HasLesson(lessonID) {
		return false
	}

	cp.CompletedLessons = append(cp.CompletedLessons, CompletedLesson{
		LessonID:    lessonID,
		CompletedAt: at.UTC(),
	})
	cp.LastUpdated = time.Now().UTC()
	return true
}

// UncompleteLesson removes a lesson from the completed set.
// Returns true if the set changed. A removal also clears the completion flag;
// it never reverses the enrollment state machine.
func (cp *CourseProgress) UncompleteLesson(lessonID string) bool {
	for i, l := range cp.CompletedLessons {
		if l.LessonID == lessonID {
			cp.CompletedLessons = append(cp.CompletedLessons[:i], cp.CompletedLessons[i+1:]...)
			cp.IsCompleted = false
			cp.LastUpdated = time.Now().UTC()
			return true
		}
	}
	return false
}

// CompletedSet returns the completed lesson IDs as a set.
func (cp *CourseProgress) CompletedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(cp.CompletedLessons))
	for _, l := range cp.CompletedLessons {
		set[l.LessonID] = struct{}{}
	}
	return set
}

// AllCompleted computes the set difference between the course's full lesson
// set and the completed set. True iff the difference is empty and the course
// actually has lessons - a course with no lessons is never "completed".
func (cp *CourseProgress) AllCompleted(courseLessonIDs []string) bool {
	if len(courseLessonIDs) == 0 {
		return false
	}

	completed := cp.CompletedSet()
	for _, id := range courseLessonIDs {
		if _, ok := completed[id]; !ok {
			return false
		}
	}
	return true
}

// MarkCompleted sets the completion flag.
func (cp *CourseProgress) MarkCompleted() {
	cp.IsCompleted = true
	cp.LastUpdated = time.Now().UTC()
}

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING HISTORY
// ══════════════════════════════════════════════════════════════════════════════

// LearningHistory is the per-student aggregate owning all course progress.
// Its identity is the student ID; it is created lazily on the first progress
// event and lives for the student's lifetime.
type LearningHistory struct {
	// StudentID - aggregate identity.
	StudentID string

	// Courses - progress per course.
	Courses []*CourseProgress

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewLearningHistory creates an empty history for a student.
func NewLearningHistory(studentID string) *LearningHistory {
	now := time.Now().UTC()
	return &LearningHistory{
		StudentID: studentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProgressFor returns the progress record for a course, or nil.
func (h *LearningHistory) ProgressFor(courseID string) *CourseProgress {
	for _, cp := range h.Courses {
		if cp.CourseID == courseID {
			return cp
		}
	}
	return nil
}

// EnsureProgress returns the progress record for a course, creating it with
// the given ID if absent.
func (h *LearningHistory) EnsureProgress(progressID, courseID string) *CourseProgress {
	if cp := h.ProgressFor(courseID); cp != nil {
		return cp
	}

	cp := NewCourseProgress(progressID, courseID)
	h.Courses = append(h.Courses, cp)
	h.UpdatedAt = time.Now().UTC()
	return cp
}

// Touch bumps the aggregate's modification time.
func (h *LearningHistory) Touch() {
	h.UpdatedAt = time.Now().UTC()
}
