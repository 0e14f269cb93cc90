// Package postgres implements the PostgreSQL persistence layer for the
// enrollment hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/enrollment-hub/internal/domain/enrollment"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENROLLMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// EnrollmentRepository implements enrollment.Repository for PostgreSQL.
type EnrollmentRepository struct {
	conn *Connection
}

// NewEnrollmentRepository creates a new EnrollmentRepository.
func NewEnrollmentRepository(conn *Connection) *EnrollmentRepository {
	return &EnrollmentRepository{conn: conn}
}

const enrollmentColumns = `
	id, student_id, course_id, price_cents, price_currency, status,
	enrollment_date, activation_date, completion_date, payment_id,
	payment_failure_reason, version, created_at, updated_at
`

// Create persists a new enrollment.
// The partial unique index on (student_id, course_id) WHERE status != 'cancelled'
// rejects a second open enrollment even under concurrent inserts.
func (r *EnrollmentRepository) Create(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		INSERT INTO enrollments (
			id, student_id, course_id, price_cents, price_currency, status,
			enrollment_date, activation_date, completion_date, payment_id,
			payment_failure_reason, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.conn.Exec(ctx, query,
		e.ID,
		e.StudentID,
		e.CourseID,
		e.Price.Cents,
		e.Price.Currency,
		string(e.Status),
		e.EnrollmentDate,
		e.ActivationDate,
		e.CompletionDate,
		e.PaymentID,
		e.PaymentFailureReason,
		e.Version,
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return enrollment.ErrAlreadyEnrolled
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	return nil
}

// GetByID returns an enrollment by ID.
func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*enrollment.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanEnrollment(row)
}

// GetOpenByStudentAndCourse returns the non-cancelled enrollment for the pair.
func (r *EnrollmentRepository) GetOpenByStudentAndCourse(ctx context.Context, studentID, courseID string) (*enrollment.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1 AND course_id = $2 AND status != 'cancelled'
	`

	row := r.conn.QueryRow(ctx, query, studentID, courseID)
	return r.scanEnrollment(row)
}

// GetByStudent returns all enrollments of a student, newest first.
func (r *EnrollmentRepository) GetByStudent(ctx context.Context, studentID string) ([]*enrollment.Enrollment, error) {
	query := `
		SELECT ` + enrollmentColumns + `
		FROM enrollments
		WHERE student_id = $1
		ORDER BY enrollment_date DESC
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var result []*enrollment.Enrollment
	for rows.Next() {
		e, err := r.scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}

	return result, rows.Err()
}

// Update persists a modified enrollment with optimistic concurrency.
// The write succeeds only when the stored version matches e.Version; the row
// version is bumped on success and mirrored back into the entity.
func (r *EnrollmentRepository) Update(ctx context.Context, e *enrollment.Enrollment) error {
	query := `
		UPDATE enrollments SET
			status = $1,
			activation_date = $2,
			completion_date = $3,
			payment_id = $4,
			payment_failure_reason = $5,
			version = version + 1,
			updated_at = $6
		WHERE id = $7 AND version = $8
	`

	result, err := r.conn.Exec(ctx, query,
		string(e.Status),
		e.ActivationDate,
		e.CompletionDate,
		e.PaymentID,
		e.PaymentFailureReason,
		e.UpdatedAt,
		e.ID,
		e.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}

	if result.RowsAffected() == 0 {
		// Distinguish a vanished row from a stale version.
		var exists bool
		checkErr := r.conn.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM enrollments WHERE id = $1)`, e.ID,
		).Scan(&exists)
		if checkErr != nil {
			return fmt.Errorf("failed to check enrollment existence: %w", checkErr)
		}
		if !exists {
			return enrollment.ErrNotFound
		}
		return shared.WrapError("enrollment", "Update", shared.ErrConcurrentModification,
			fmt.Sprintf("enrollment %s version %d is stale", e.ID, e.Version), nil)
	}

	e.Version++
	return nil
}

// scanEnrollment scans a single enrollment row.
func (r *EnrollmentRepository) scanEnrollment(row pgx.Row) (*enrollment.Enrollment, error) {
	var (
		e        enrollment.Enrollment
		status   string
		currency string
	)

	err := row.Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&e.Price.Cents,
		&currency,
		&status,
		&e.EnrollmentDate,
		&e.ActivationDate,
		&e.CompletionDate,
		&e.PaymentID,
		&e.PaymentFailureReason,
		&e.Version,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, enrollment.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan enrollment: %w", err)
	}

	e.Price.Currency = currency
	e.Status = enrollment.Status(status)
	return &e, nil
}
