// Package postgres implements the PostgreSQL persistence layer for the
// enrollment hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/enrollment-hub/internal/domain/payment"
)

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PaymentRepository implements payment.Repository for PostgreSQL.
type PaymentRepository struct {
	conn *Connection
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(conn *Connection) *PaymentRepository {
	return &PaymentRepository{conn: conn}
}

const paymentColumns = `
	id, student_id, enrollment_id, amount_cents, amount_currency, status,
	transaction_id, failure_reason, refund_reason, masked_card, payment_date,
	created_at, updated_at
`

// Create persists a new payment attempt. The Pending row hits storage before
// the gateway call so a crash mid-charge still leaves an audit trail.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (
			id, student_id, enrollment_id, amount_cents, amount_currency, status,
			transaction_id, failure_reason, refund_reason, masked_card, payment_date,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.StudentID,
		p.EnrollmentID,
		p.Amount.Cents,
		p.Amount.Currency,
		string(p.Status),
		p.TransactionID,
		p.FailureReason,
		p.RefundReason,
		p.MaskedCard,
		p.PaymentDate,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// GetByID returns a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanPayment(row)
}

// GetByEnrollment returns all payment attempts for an enrollment, newest first.
func (r *PaymentRepository) GetByEnrollment(ctx context.Context, enrollmentID string) ([]*payment.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE enrollment_id = $1
		ORDER BY payment_date DESC
	`

	rows, err := r.conn.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var result []*payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}

	return result, rows.Err()
}

// Update persists a modified payment.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments SET
			status = $1,
			transaction_id = $2,
			failure_reason = $3,
			refund_reason = $4,
			updated_at = $5
		WHERE id = $6
	`

	result, err := r.conn.Exec(ctx, query,
		string(p.Status),
		p.TransactionID,
		p.FailureReason,
		p.RefundReason,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return payment.ErrNotFound
	}

	return nil
}

// scanPayment scans a single payment row.
func (r *PaymentRepository) scanPayment(row pgx.Row) (*payment.Payment, error) {
	var (
		p        payment.Payment
		status   string
		currency string
	)

	err := row.Scan(
		&p.ID,
		&p.StudentID,
		&p.EnrollmentID,
		&p.Amount.Cents,
		&currency,
		&status,
		&p.TransactionID,
		&p.FailureReason,
		&p.RefundReason,
		&p.MaskedCard,
		&p.PaymentDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, payment.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	p.Amount.Currency = currency
	p.Status = payment.Status(status)
	return &p, nil
}
