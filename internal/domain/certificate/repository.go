package certificate

import (
	"context"
)

// Repository defines the persistence contract for certificates.
type Repository interface {
	// Create persists a new certificate.
	// Returns ErrAlreadyIssued if one exists for the (student, course) pair;
	// the store enforces this with a unique index so concurrent issuance
	// cannot duplicate.
	Create(ctx context.Context, c *Certificate) error

	// GetByID returns a certificate by ID.
	// Returns ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*Certificate, error)

	// GetByStudentAndCourse returns the certificate for the pair, or ErrNotFound.
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*Certificate, error)

	// ExistsByStudentAndCourse reports whether a certificate exists for the pair.
	ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error)

	// Update persists an amended certificate.
	Update(ctx context.Context, c *Certificate) error
}
