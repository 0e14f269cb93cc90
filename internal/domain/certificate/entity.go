// Package certificate contains the Certificate aggregate of the Student store.
// At most one certificate exists per (student, course); the store backs this
// with a unique index because the check-then-insert in the issuer alone cannot
// survive concurrent issuance.
package certificate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrNotFound - certificate not found.
	ErrNotFound = shared.NewDomainError("certificate", "Find", shared.ErrNotFound, "certificate not found")

	// ErrAlreadyIssued - a certificate already exists for the (student, course) pair.
	ErrAlreadyIssued = shared.NewDomainError("certificate", "Issue", shared.ErrInvalidOperation, "certificate already issued for this course")

	// ErrEnrollmentNotCompleted - issuance requires a Completed enrollment.
	ErrEnrollmentNotCompleted = shared.NewDomainError("certificate", "Issue", shared.ErrInvalidOperation, "enrollment is not completed")

	// ErrInvalidScore - score must be between 0 and 100.
	ErrInvalidScore = shared.NewDomainError("certificate", "Validate", shared.ErrBadRequest, "score must be between 0 and 100")
)

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Certificate attests that a student completed a course.
// Immutable once issued, except for score/feedback amendment.
type Certificate struct {
	// ID - internal unique identifier (UUID string).
	ID string

	// StudentID - the certified student.
	StudentID string

	// CourseID - the completed course.
	CourseID string

	// Title - the course name captured at issuance time.
	Title string

	// CertificateNumber - globally unique, human-shareable number.
	CertificateNumber string

	// IssueDate - when the certificate was issued.
	IssueDate time.Time

	// Score - optional final score (0-100).
	Score *float64

	// Feedback - optional instructor feedback.
	Feedback *string

	// CreatedAt - record creation time.
	CreatedAt time.Time

	// UpdatedAt - last modification time.
	UpdatedAt time.Time
}

// NewCertificateParams contains the parameters for issuing a certificate.
type NewCertificateParams struct {
	ID        string
	StudentID string
	CourseID  string
	Title     string
	Score     *float64
	Feedback  *string
}

// NewCertificate creates a certificate with a freshly generated number.
func NewCertificate(params NewCertificateParams) (*Certificate, error) {
	if params.ID == "" {
		return nil, shared.NewDomainError("certificate", "New", shared.ErrBadRequest, "certificate id is required")
	}
	if params.StudentID == "" {
		return nil, shared.NewDomainError("certificate", "New", shared.ErrBadRequest, "student id is required")
	}
	if params.CourseID == "" {
		return nil, shared.NewDomainError("certificate", "New", shared.ErrBadRequest, "course id is required")
	}
	if params.Score != nil && (*params.Score < 0 || *params.Score > 100) {
		return nil, ErrInvalidScore
	}

	now := time.Now().UTC()

	return &Certificate{
		ID:                params.ID,
		StudentID:         params.StudentID,
		CourseID:          params.CourseID,
		Title:             params.Title,
		CertificateNumber: GenerateNumber(now),
		IssueDate:         now,
		Score:             params.Score,
		Feedback:          params.Feedback,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// GenerateNumber produces a certificate number unique per call:
// CERT-YYYYMMDD-XXXXXXXX. The format is cosmetic; uniqueness comes from the
// random suffix and is additionally enforced by the store.
func GenerateNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CERT-%s-%s", at.UTC().Format("20060102"), suffix)
}

// Amend updates score and/or feedback, the only mutation allowed after issue.
func (c *Certificate) Amend(score *float64, feedback *string) error {
	if score != nil && (*score < 0 || *score > 100) {
		return ErrInvalidScore
	}

	if score != nil {
		c.Score = score
	}
	if feedback != nil {
		c.Feedback = feedback
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// String returns a representation for logging.
func (c *Certificate) String() string {
	return fmt.Sprintf("Certificate{ID: %s, Number: %s, Student: %s, Course: %s}",
		c.ID, c.CertificateNumber, c.StudentID, c.CourseID)
}
