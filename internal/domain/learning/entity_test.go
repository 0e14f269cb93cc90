package learning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseProgress_CompleteLessonIsIdempotent(t *testing.T) {
	cp := NewCourseProgress("prog-1", "course-1")
	first := time.Date(2026, time.January, 5, 10, 0, 0, 0, time.UTC)

	assert.True(t, cp.CompleteLesson("lesson-1", first))
	assert.Len(t, cp.CompletedLessons, 1)

	// Re-completion is a no-op and keeps the original timestamp.
	assert.False(t, cp.CompleteLesson("lesson-1", first.Add(48*time.Hour)))
	assert.Len(t, cp.CompletedLessons, 1)
	assert.Equal(t, first, cp.CompletedLessons[0].CompletedAt)
}

func TestCourseProgress_HasLesson(t *testing.T) {
	cp := NewCourseProgress("prog-1", "course-1")
	cp.CompleteLesson("lesson-1", time.Now())

	assert.True(t, cp.HasLesson("lesson-1"))
	assert.False(t, cp.HasLesson("lesson-2"))
}

func TestCourseProgress_UncompleteLesson(t *testing.T) {
	cp := NewCourseProgress("prog-1", "course-1")
	cp.CompleteLesson("lesson-1", time.Now())
	cp.CompleteLesson("lesson-2", time.Now())
	cp.MarkCompleted()

	assert.True(t, cp.UncompleteLesson("lesson-1"))
	assert.False(t, cp.HasLesson("lesson-1"))
	assert.True(t, cp.HasLesson("lesson-2"))

	// Removal clears the completion flag.
	assert.False(t, cp.IsCompleted)

	// Removing an absent lesson changes nothing.
	assert.False(t, cp.UncompleteLesson("lesson-99"))
}

func TestCourseProgress_AllCompleted(t *testing.T) {
	cp := NewCourseProgress("prog-1", "course-1")
	lessons := []string{"l1", "l2", "l3"}

	assert.False(t, cp.AllCompleted(lessons))

	cp.CompleteLesson("l1", time.Now())
	cp.CompleteLesson("l2", time.Now())
	assert.False(t, cp.AllCompleted(lessons))

	cp.CompleteLesson("l3", time.Now())
	assert.True(t, cp.AllCompleted(lessons))
}

func TestCourseProgress_AllCompletedIgnoresExtraLessons(t *testing.T) {
	// Lessons removed from the course after completion must not block the check.
	cp := NewCourseProgress("prog-1", "course-1")
	cp.CompleteLesson("l1", time.Now())
	cp.CompleteLesson("l-removed", time.Now())

	assert.True(t, cp.AllCompleted([]string{"l1"}))
}

func TestCourseProgress_AllCompletedFalseForEmptyCourse(t *testing.T) {
	cp := NewCourseProgress("prog-1", "course-1")

	// A course with no lessons can never be completed.
	assert.False(t, cp.AllCompleted(nil))
	assert.False(t, cp.AllCompleted([]string{}))
}

func TestLearningHistory_EnsureProgress(t *testing.T) {
	h := NewLearningHistory("student-1")
	require.Empty(t, h.Courses)

	cp := h.EnsureProgress("prog-1", "course-1")
	require.NotNil(t, cp)
	assert.Equal(t, "course-1", cp.CourseID)
	assert.Len(t, h.Courses, 1)

	// Second call returns the existing record, ignoring the new ID.
	again := h.EnsureProgress("prog-2", "course-1")
	assert.Same(t, cp, again)
	assert.Equal(t, "prog-1", again.ID)
	assert.Len(t, h.Courses, 1)
}

func TestLearningHistory_ProgressFor(t *testing.T) {
	h := NewLearningHistory("student-1")
	h.EnsureProgress("prog-1", "course-1")

	assert.NotNil(t, h.ProgressFor("course-1"))
	assert.Nil(t, h.ProgressFor("course-2"))
}

func TestLearningHistory_TracksMultipleCourses(t *testing.T) {
	h := NewLearningHistory("student-1")
	a := h.EnsureProgress("prog-1", "course-a")
	b := h.EnsureProgress("prog-2", "course-b")

	a.CompleteLesson("l1", time.Now())

	assert.True(t, h.ProgressFor("course-a").HasLesson("l1"))
	assert.False(t, b.HasLesson("l1"))
}
