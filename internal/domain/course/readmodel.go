// Package course contains the consumer-side view of the Content store: the
// CourseInfo read model and the read-only query interface through which other
// stores reach course data. Consumers never call the Content store's command
// side - the flow is strictly one-directional.
package course

import (
	"context"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// READ MODEL
// ══════════════════════════════════════════════════════════════════════════════

// Info is the locally cached projection of a course.
// Not authoritative: it is rebuilt from Course* events and may be momentarily
// stale, which is acceptable for the consumers that read it.
type Info struct {
	// ID - the course identifier, owned by the Content store.
	ID string `json:"id"`

	// Name - course display name.
	Name string `json:"name"`

	// Description - course description.
	Description string `json:"description"`

	// Price - current list price.
	Price shared.Money `json:"price"`

	// LessonCount - number of lessons in the course.
	LessonCount int `json:"lesson_count"`

	// IsActive - whether the course is open for enrollment.
	IsActive bool `json:"is_active"`

	// CachedAt - when this projection was built.
	CachedAt time.Time `json:"cached_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCourseNotFound - the course id does not resolve in the Content store.
	ErrCourseNotFound = shared.NewDomainError("course", "Find", shared.ErrNotFound, "course not found")

	// ErrCacheMiss - the projection is not cached; callers fall back to Query.
	ErrCacheMiss = shared.NewDomainError("course", "CacheGet", shared.ErrNotFound, "course info not cached")
)

// ══════════════════════════════════════════════════════════════════════════════
// CROSS-CONTEXT QUERY
// ══════════════════════════════════════════════════════════════════════════════

// Query is the Content store's read-only interface, the synchronous fallback
// behind the cached projection. Implemented by excluded infrastructure.
type Query interface {
	// GetLessonIds returns the full lesson-id set of the course.
	// Returns ErrCourseNotFound for unknown courses.
	GetLessonIds(ctx context.Context, courseID string) ([]string, error)

	// Exists reports whether the course exists.
	Exists(ctx context.Context, courseID string) (bool, error)

	// GetName returns the course display name.
	// Returns ErrCourseNotFound for unknown courses.
	GetName(ctx context.Context, courseID string) (string, error)

	// GetCourse returns the full course projection.
	// Returns ErrCourseNotFound for unknown courses.
	GetCourse(ctx context.Context, courseID string) (*Info, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE
// ══════════════════════════════════════════════════════════════════════════════

// InfoCache is the consumer-held cache of Info projections.
// Safe for concurrent use; entries are independent, so implementations lock
// per key rather than globally.
type InfoCache interface {
	// Get returns the cached projection or ErrCacheMiss.
	Get(ctx context.Context, courseID string) (*Info, error)

	// Set stores a projection.
	Set(ctx context.Context, info *Info) error

	// Invalidate evicts a single course, e.g. on CourseDeleted.
	Invalidate(ctx context.Context, courseID string) error
}
