// Package postgres implements the PostgreSQL persistence layer for the
// enrollment hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/enrollment-hub/internal/domain/certificate"
)

// ══════════════════════════════════════════════════════════════════════════════
// CERTIFICATE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CertificateRepository implements certificate.Repository for PostgreSQL.
type CertificateRepository struct {
	conn *Connection
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(conn *Connection) *CertificateRepository {
	return &CertificateRepository{conn: conn}
}

const certificateColumns = `
	id, student_id, course_id, title, certificate_number, issue_date,
	score, feedback, created_at, updated_at
`

// Create persists a new certificate.
// The unique (student_id, course_id) index rejects concurrent duplicate
// issuance that slipped past the application-level existence check.
func (r *CertificateRepository) Create(ctx context.Context, c *certificate.Certificate) error {
	query := `
		INSERT INTO certificates (
			id, student_id, course_id, title, certificate_number, issue_date,
			score, feedback, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.conn.Exec(ctx, query,
		c.ID,
		c.StudentID,
		c.CourseID,
		c.Title,
		c.CertificateNumber,
		c.IssueDate,
		c.Score,
		c.Feedback,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return certificate.ErrAlreadyIssued
		}
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	return nil
}

// GetByID returns a certificate by ID.
func (r *CertificateRepository) GetByID(ctx context.Context, id string) (*certificate.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanCertificate(row)
}

// GetByStudentAndCourse returns the certificate for the pair.
func (r *CertificateRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*certificate.Certificate, error) {
	query := `
		SELECT ` + certificateColumns + `
		FROM certificates
		WHERE student_id = $1 AND course_id = $2
	`

	row := r.conn.QueryRow(ctx, query, studentID, courseID)
	return r.scanCertificate(row)
}

// ExistsByStudentAndCourse reports whether a certificate exists for the pair.
func (r *CertificateRepository) ExistsByStudentAndCourse(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	err := r.conn.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM certificates WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check certificate existence: %w", err)
	}

	return exists, nil
}

// Update persists an amended certificate.
func (r *CertificateRepository) Update(ctx context.Context, c *certificate.Certificate) error {
	query := `
		UPDATE certificates SET
			score = $1,
			feedback = $2,
			updated_at = $3
		WHERE id = $4
	`

	result, err := r.conn.Exec(ctx, query, c.Score, c.Feedback, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update certificate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return certificate.ErrNotFound
	}

	return nil
}

// scanCertificate scans a single certificate row.
func (r *CertificateRepository) scanCertificate(row pgx.Row) (*certificate.Certificate, error) {
	var c certificate.Certificate

	err := row.Scan(
		&c.ID,
		&c.StudentID,
		&c.CourseID,
		&c.Title,
		&c.CertificateNumber,
		&c.IssueDate,
		&c.Score,
		&c.Feedback,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, certificate.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan certificate: %w", err)
	}

	return &c, nil
}
