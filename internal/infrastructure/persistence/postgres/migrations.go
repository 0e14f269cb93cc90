// Package postgres implements the PostgreSQL persistence layer for the
// enrollment hub.
package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_enrollments",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_payments",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_learning",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "create_certificates",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE ENROLLMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create enrollments table
-- Version: 001

CREATE TABLE IF NOT EXISTS enrollments (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL,
    course_id VARCHAR(64) NOT NULL,
    price_cents BIGINT NOT NULL,
    price_currency VARCHAR(3) NOT NULL DEFAULT 'USD',
    status VARCHAR(20) NOT NULL DEFAULT 'pending_payment',
    enrollment_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    activation_date TIMESTAMP WITH TIME ZONE,
    completion_date TIMESTAMP WITH TIME ZONE,
    payment_id UUID,
    payment_failure_reason TEXT,
    version INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_enrollment_status CHECK (status IN ('pending_payment', 'active', 'completed', 'cancelled')),
    CONSTRAINT valid_price CHECK (price_cents >= 0),
    CONSTRAINT valid_version CHECK (version >= 1)
);

-- One non-cancelled enrollment per (student, course). Cancelled rows stay and
-- do not block re-enrollment, so the uniqueness is partial.
CREATE UNIQUE INDEX IF NOT EXISTS uq_enrollments_open_pair
    ON enrollments(student_id, course_id)
    WHERE status != 'cancelled';

CREATE INDEX IF NOT EXISTS idx_enrollments_student ON enrollments(student_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_course ON enrollments(course_id);
CREATE INDEX IF NOT EXISTS idx_enrollments_status ON enrollments(status) WHERE status = 'pending_payment';
CREATE INDEX IF NOT EXISTS idx_enrollments_student_date ON enrollments(student_id, enrollment_date DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS enrollments;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE PAYMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create payments table
-- Version: 002
-- One row per charge attempt; rows are never deleted. Only the masked card
-- number is ever stored.

CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL,
    enrollment_id UUID NOT NULL,
    amount_cents BIGINT NOT NULL,
    amount_currency VARCHAR(3) NOT NULL DEFAULT 'USD',
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    transaction_id VARCHAR(100),
    failure_reason TEXT,
    refund_reason TEXT,
    masked_card VARCHAR(25) NOT NULL,
    payment_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_payment_status CHECK (status IN ('pending', 'approved', 'failed', 'refunded')),
    CONSTRAINT valid_amount CHECK (amount_cents >= 0)
);

CREATE INDEX IF NOT EXISTS idx_payments_enrollment ON payments(enrollment_id, payment_date DESC);
CREATE INDEX IF NOT EXISTS idx_payments_student ON payments(student_id);
CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status) WHERE status = 'pending';
`

const migration002Down = `
DROP TABLE IF EXISTS payments;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE LEARNING
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create learning history tables
-- Version: 003
-- The learning history aggregate is keyed by student; course progress and the
-- completed-lesson set hang off it.

CREATE TABLE IF NOT EXISTS learning_histories (
    student_id VARCHAR(64) PRIMARY KEY,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS course_progress (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL REFERENCES learning_histories(student_id) ON DELETE CASCADE,
    course_id VARCHAR(64) NOT NULL,
    is_completed BOOLEAN NOT NULL DEFAULT FALSE,
    last_updated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(student_id, course_id)
);

CREATE INDEX IF NOT EXISTS idx_course_progress_student ON course_progress(student_id);
CREATE INDEX IF NOT EXISTS idx_course_progress_course ON course_progress(course_id);

CREATE TABLE IF NOT EXISTS completed_lessons (
    progress_id UUID NOT NULL REFERENCES course_progress(id) ON DELETE CASCADE,
    lesson_id VARCHAR(100) NOT NULL,
    completed_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (progress_id, lesson_id)
);

CREATE INDEX IF NOT EXISTS idx_completed_lessons_progress ON completed_lessons(progress_id);
`

const migration003Down = `
DROP TABLE IF EXISTS completed_lessons;
DROP TABLE IF EXISTS course_progress;
DROP TABLE IF EXISTS learning_histories;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE CERTIFICATES
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create certificates table
-- Version: 004
-- The unique (student_id, course_id) index is what survives concurrent
-- issuance; the issuer's existence check is only a fast path.

CREATE TABLE IF NOT EXISTS certificates (
    id UUID PRIMARY KEY,
    student_id VARCHAR(64) NOT NULL,
    course_id VARCHAR(64) NOT NULL,
    title VARCHAR(255) NOT NULL,
    certificate_number VARCHAR(40) NOT NULL UNIQUE,
    issue_date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    score DECIMAL(5,2),
    feedback TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(student_id, course_id),
    CONSTRAINT valid_score CHECK (score IS NULL OR (score >= 0 AND score <= 100))
);

CREATE INDEX IF NOT EXISTS idx_certificates_student ON certificates(student_id);
CREATE INDEX IF NOT EXISTS idx_certificates_number ON certificates(certificate_number);
`

const migration004Down = `
DROP TABLE IF EXISTS certificates;
`
