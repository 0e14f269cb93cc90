package query

import (
	"context"
	"fmt"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/certificate"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET CERTIFICATE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetCertificateQuery contains the parameters of the certificate lookup.
// Either the certificate ID or the (student, course) pair must be given.
type GetCertificateQuery struct {
	// CertificateID - direct lookup by ID.
	CertificateID string

	// StudentID and CourseID - lookup by pair.
	StudentID string
	CourseID  string
}

// Validate validates the query.
func (q GetCertificateQuery) Validate() error {
	if q.CertificateID != "" {
		return nil
	}
	if q.StudentID == "" || q.CourseID == "" {
		return shared.NewDomainError("certificate", "Get", shared.ErrBadRequest,
			"either certificate_id or both student_id and course_id are required")
	}
	return nil
}

// CertificateView is the read model of an issued certificate.
type CertificateView struct {
	CertificateID     string    `json:"certificate_id"`
	CertificateNumber string    `json:"certificate_number"`
	StudentID         string    `json:"student_id"`
	CourseID          string    `json:"course_id"`
	Title             string    `json:"title"`
	IssueDate         time.Time `json:"issue_date"`
	Score             *float64  `json:"score,omitempty"`
	Feedback          *string   `json:"feedback,omitempty"`
}

// GetCertificateHandler handles the GetCertificateQuery.
type GetCertificateHandler struct {
	certificateRepo certificate.Repository
}

// NewGetCertificateHandler creates a new GetCertificateHandler.
func NewGetCertificateHandler(certificateRepo certificate.Repository) *GetCertificateHandler {
	return &GetCertificateHandler{certificateRepo: certificateRepo}
}

// Handle executes the query.
func (h *GetCertificateHandler) Handle(ctx context.Context, q GetCertificateQuery) (*CertificateView, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var (
		cert *certificate.Certificate
		err  error
	)
	if q.CertificateID != "" {
		cert, err = h.certificateRepo.GetByID(ctx, q.CertificateID)
	} else {
		cert, err = h.certificateRepo.GetByStudentAndCourse(ctx, q.StudentID, q.CourseID)
	}
	if err != nil {
		return nil, fmt.Errorf("get_certificate: load certificate: %w", err)
	}

	return &CertificateView{
		CertificateID:     cert.ID,
		CertificateNumber: cert.CertificateNumber,
		StudentID:         cert.StudentID,
		CourseID:          cert.CourseID,
		Title:             cert.Title,
		IssueDate:         cert.IssueDate,
		Score:             cert.Score,
		Feedback:          cert.Feedback,
	}, nil
}
