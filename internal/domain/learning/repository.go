package learning

import (
	"context"
)

// Repository defines the persistence contract for learning histories.
// The aggregate is saved as a whole; implementations upsert progress rows and
// reconcile the completed-lesson set.
type Repository interface {
	// GetByStudent returns the student's learning history.
	// Returns ErrHistoryNotFound if none exists yet.
	GetByStudent(ctx context.Context, studentID string) (*LearningHistory, error)

	// Save persists the history, creating it if absent.
	Save(ctx context.Context, h *LearningHistory) error
}
