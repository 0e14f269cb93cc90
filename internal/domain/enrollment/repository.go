package enrollment

import (
	"context"
)

// Repository defines the persistence contract for enrollments.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// Create persists a new enrollment.
	// Returns ErrAlreadyEnrolled if a non-cancelled enrollment already exists
	// for the (student, course) pair; the store enforces this with a partial
	// unique index, not only application logic.
	Create(ctx context.Context, e *Enrollment) error

	// GetByID returns an enrollment by ID.
	// Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Enrollment, error)

	// GetOpenByStudentAndCourse returns the non-cancelled enrollment for the
	// pair, or ErrNotFound.
	GetOpenByStudentAndCourse(ctx context.Context, studentID, courseID string) (*Enrollment, error)

	// GetByStudent returns all enrollments of a student, newest first.
	GetByStudent(ctx context.Context, studentID string) ([]*Enrollment, error)

	// Update persists a modified enrollment using optimistic concurrency: the
	// write succeeds only if the stored version matches e.Version, and bumps
	// the version on success. Returns shared.ErrConcurrentModification on a
	// version conflict and ErrNotFound if the row is gone.
	Update(ctx context.Context, e *Enrollment) error
}
