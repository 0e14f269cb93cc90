// Package postgres implements the PostgreSQL persistence layer for the
// enrollment hub.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/learnhub/enrollment-hub/internal/domain/learning"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEARNING REPOSITORY IMPLEMENTATION
// The aggregate is saved as a whole: the history row and every progress row
// are upserted, and each progress's completed-lesson set is rewritten to match
// memory. All of it happens in one transaction.
// ══════════════════════════════════════════════════════════════════════════════

// LearningRepository implements learning.Repository for PostgreSQL.
type LearningRepository struct {
	conn *Connection
}

// NewLearningRepository creates a new LearningRepository.
func NewLearningRepository(conn *Connection) *LearningRepository {
	return &LearningRepository{conn: conn}
}

// GetByStudent returns the student's learning history.
func (r *LearningRepository) GetByStudent(ctx context.Context, studentID string) (*learning.LearningHistory, error) {
	history := &learning.LearningHistory{StudentID: studentID}

	err := r.conn.QueryRow(ctx,
		`SELECT created_at, updated_at FROM learning_histories WHERE student_id = $1`,
		studentID,
	).Scan(&history.CreatedAt, &history.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, learning.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to query learning history: %w", err)
	}

	progressByID, err := r.loadProgress(ctx, history, studentID)
	if err != nil {
		return nil, err
	}

	if err := r.loadLessons(ctx, progressByID, studentID); err != nil {
		return nil, err
	}

	return history, nil
}

// loadProgress fills the history's course progress rows.
func (r *LearningRepository) loadProgress(ctx context.Context, history *learning.LearningHistory, studentID string) (map[string]*learning.CourseProgress, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT id, course_id, is_completed, last_updated
		FROM course_progress
		WHERE student_id = $1
		ORDER BY last_updated DESC
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course progress: %w", err)
	}
	defer rows.Close()

	progressByID := make(map[string]*learning.CourseProgress)
	for rows.Next() {
		cp := &learning.CourseProgress{}
		if err := rows.Scan(&cp.ID, &cp.CourseID, &cp.IsCompleted, &cp.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan course progress: %w", err)
		}
		history.Courses = append(history.Courses, cp)
		progressByID[cp.ID] = cp
	}

	return progressByID, rows.Err()
}

// loadLessons fills the completed-lesson sets of the given progress rows.
func (r *LearningRepository) loadLessons(ctx context.Context, progressByID map[string]*learning.CourseProgress, studentID string) error {
	rows, err := r.conn.Query(ctx, `
		SELECT cl.progress_id, cl.lesson_id, cl.completed_at
		FROM completed_lessons cl
		JOIN course_progress cp ON cp.id = cl.progress_id
		WHERE cp.student_id = $1
		ORDER BY cl.completed_at
	`, studentID)
	if err != nil {
		return fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			progressID string
			lesson     learning.CompletedLesson
		)
		if err := rows.Scan(&progressID, &lesson.LessonID, &lesson.CompletedAt); err != nil {
			return fmt.Errorf("failed to scan completed lesson: %w", err)
		}
		if cp, ok := progressByID[progressID]; ok {
			cp.CompletedLessons = append(cp.CompletedLessons, lesson)
		}
	}

	return rows.Err()
}

// Save persists the history, creating it if absent.
func (r *LearningRepository) Save(ctx context.Context, h *learning.LearningHistory) error {
	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO learning_histories (student_id, created_at, updated_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (student_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
		`, h.StudentID, h.CreatedAt, h.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert learning history: %w", err)
		}

		for _, cp := range h.Courses {
			if err := r.saveProgress(ctx, tx, h.StudentID, cp); err != nil {
				return err
			}
		}

		return nil
	})
}

// saveProgress upserts one progress row and rewrites its lesson set.
func (r *LearningRepository) saveProgress(ctx context.Context, tx pgx.Tx, studentID string, cp *learning.CourseProgress) error {
	// On conflict the stored row keeps its id: a concurrent first save may
	// have created the (student, course) row under a different UUID, and the
	// lesson rewrite below must target that id, not the in-memory one.
	var progressID string
	err := tx.QueryRow(ctx, `
		INSERT INTO course_progress (id, student_id, course_id, is_completed, last_updated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, course_id) DO UPDATE SET
			is_completed = EXCLUDED.is_completed,
			last_updated = EXCLUDED.last_updated
		RETURNING id
	`, cp.ID, studentID, cp.CourseID, cp.IsCompleted, cp.LastUpdated).Scan(&progressID)
	if err != nil {
		return fmt.Errorf("failed to upsert course progress: %w", err)
	}
	cp.ID = progressID

	// The set in memory is authoritative; removals (uncomplete) must not
	// leave orphan rows behind.
	if _, err := tx.Exec(ctx,
		`DELETE FROM completed_lessons WHERE progress_id = $1`, progressID,
	); err != nil {
		return fmt.Errorf("failed to clear completed lessons: %w", err)
	}

	for _, lesson := range cp.CompletedLessons {
		if _, err := tx.Exec(ctx, `
			INSERT INTO completed_lessons (progress_id, lesson_id, completed_at)
			VALUES ($1, $2, $3)
		`, progressID, lesson.LessonID, lesson.CompletedAt); err != nil {
			return fmt.Errorf("failed to insert completed lesson: %w", err)
		}
	}

	return nil
}
