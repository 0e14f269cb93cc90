package query

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/learning"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET COURSE PROGRESS QUERY
// A student's progress through one course: the completed set, the remaining
// set, and a percentage computed against the authoritative lesson list.
// ══════════════════════════════════════════════════════════════════════════════

// GetCourseProgressQuery contains the parameters of the progress lookup.
type GetCourseProgressQuery struct {
	// StudentID - the student whose progress to read.
	StudentID string

	// CourseID - the course.
	CourseID string
}

// Validate validates the query.
func (q GetCourseProgressQuery) Validate() error {
	if q.StudentID == "" {
		return shared.NewDomainError("learning", "Progress", shared.ErrBadRequest, "student_id is required")
	}
	if q.CourseID == "" {
		return shared.NewDomainError("learning", "Progress", shared.ErrBadRequest, "course_id is required")
	}
	return nil
}

// CourseProgressView is the progress report for one (student, course) pair.
type CourseProgressView struct {
	CourseID         string    `json:"course_id"`
	IsCompleted      bool      `json:"is_completed"`
	CompletedLessons []string  `json:"completed_lessons"`
	RemainingLessons []string  `json:"remaining_lessons"`
	TotalLessons     int       `json:"total_lessons"`
	PercentComplete  float64   `json:"percent_complete"`
	LastUpdated      time.Time `json:"last_updated"`
}

// GetCourseProgressHandler handles the GetCourseProgressQuery.
type GetCourseProgressHandler struct {
	learningRepo learning.Repository
	courseQuery  course.Query
}

// NewGetCourseProgressHandler creates a new GetCourseProgressHandler.
func NewGetCourseProgressHandler(
	learningRepo learning.Repository,
	courseQuery course.Query,
) *GetCourseProgressHandler {
	return &GetCourseProgressHandler{
		learningRepo: learningRepo,
		courseQuery:  courseQuery,
	}
}

// Handle executes the query.
func (h *GetCourseProgressHandler) Handle(ctx context.Context, q GetCourseProgressQuery) (*CourseProgressView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	history, err := h.learningRepo.GetByStudent(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("get_course_progress: load history: %w", err)
	}

	progress := history.ProgressFor(q.CourseID)
	if progress == nil {
		return nil, learning.ErrProgressNotFound
	}

	lessonIDs, err := h.courseQuery.GetLessonIds(ctx, q.CourseID)
	if err != nil {
		return nil, fmt.Errorf("get_course_progress: load lesson set: %w", err)
	}

	completed := progress.CompletedSet()
	view := &CourseProgressView{
		CourseID:     q.CourseID,
		IsCompleted:  progress.IsCompleted,
		TotalLessons: len(lessonIDs),
		LastUpdated:  progress.LastUpdated,
	}

	for _, l := range progress.CompletedLessons {
		view.CompletedLessons = append(view.CompletedLessons, l.LessonID)
	}
	for _, id := range lessonIDs {
		if _, ok := completed[id]; !ok {
			view.RemainingLessons = append(view.RemainingLessons, id)
		}
	}

	if view.TotalLessons > 0 {
		done := view.TotalLessons - len(view.RemainingLessons)
		view.PercentComplete = float64(done) / float64(view.TotalLessons) * 100
	}

	return view, nil
}
