package command

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/learnhub/enrollment-hub/internal/domain/certificate"
	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ISSUE CERTIFICATE COMMAND
// Guarded creation of at most one certificate per (student, course).
// The application-level existence check is a fast path; the store's unique
// index is what actually survives concurrent issuance.
// ══════════════════════════════════════════════════════════════════════════════

// IssueCertificateCommand contains the data to issue a certificate.
type IssueCertificateCommand struct {
	// StudentID is the certified student.
	StudentID string

	// CourseID is the completed course.
	CourseID string

	// Score is an optional final score (0-100).
	Score *float64

	// Feedback is optional instructor feedback.
	Feedback *string
}

// Validate validates the command.
func (c IssueCertificateCommand) Validate() error {
	if c.StudentID == "" {
		return shared.NewDomainError("certificate", "Issue", shared.ErrBadRequest, "student_id is required")
	}
	if c.CourseID == "" {
		return shared.NewDomainError("certificate", "Issue", shared.ErrBadRequest, "course_id is required")
	}
	return nil
}

// IssueCertificateResult contains the result of certificate issuance.
type IssueCertificateResult struct {
	// CertificateID is the new certificate's ID.
	CertificateID string

	// CertificateNumber is the unique, shareable number.
	CertificateNumber string
}

// IssueCertificateHandler handles the IssueCertificateCommand.
type IssueCertificateHandler struct {
	certificateRepo certificate.Repository
	enrollmentRepo  enrollment.Repository
	courseQuery     course.Query
	eventPublisher  shared.EventPublisher
}

// NewIssueCertificateHandler creates a new IssueCertificateHandler.
func NewIssueCertificateHandler(
	certificateRepo certificate.Repository,
	enrollmentRepo enrollment.Repository,
	courseQuery course.Query,
	eventPublisher shared.EventPublisher,
) *IssueCertificateHandler {
	return &IssueCertificateHandler{
		certificateRepo: certificateRepo,
		enrollmentRepo:  enrollmentRepo,
		courseQuery:     courseQuery,
		eventPublisher:  eventPublisher,
	}
}

// Handle executes the issue certificate command.
func (h *IssueCertificateHandler) Handle(ctx context.Context, cmd IssueCertificateCommand) (*IssueCertificateResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	e, err := h.enrollmentRepo.GetOpenByStudentAndCourse(ctx, cmd.StudentID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("issue_certificate: load enrollment: %w", err)
	}
	if !e.IsCompleted() {
		return nil, certificate.ErrEnrollmentNotCompleted
	}

	exists, err := h.courseQuery.Exists(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("issue_certificate: check course: %w", err)
	}
	if !exists {
		return nil, course.ErrCourseNotFound
	}

	already, err := h.certificateRepo.ExistsByStudentAndCourse(ctx, cmd.StudentID, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("issue_certificate: check existing: %w", err)
	}
	if already {
		return nil, certificate.ErrAlreadyIssued
	}

	title, err := h.courseQuery.GetName(ctx, cmd.CourseID)
	if err != nil {
		return nil, fmt.Errorf("issue_certificate: resolve title: %w", err)
	}

	cert, err := certificate.NewCertificate(certificate.NewCertificateParams{
		ID:        uuid.NewString(),
		StudentID: cmd.StudentID,
		CourseID:  cmd.CourseID,
		Title:     title,
		Score:     cmd.Score,
		Feedback:  cmd.Feedback,
	})
	if err != nil {
		return nil, err
	}

	if err := h.certificateRepo.Create(ctx, cert); err != nil {
		return nil, fmt.Errorf("issue_certificate: persist certificate: %w", err)
	}

	if err := h.eventPublisher.Publish(ctx, shared.NewCertificateIssuedEvent(cert.ID, cert.StudentID, cert.CourseID, cert.CertificateNumber)); err != nil {
		return nil, fmt.Errorf("issue_certificate: publish event: %w", err)
	}

	return &IssueCertificateResult{
		CertificateID:     cert.ID,
		CertificateNumber: cert.CertificateNumber,
	}, nil
}
