// Package content hosts the in-process stand-in for the Content store's
// read side. The enrollment hub never commands the Content store; it only
// consumes Course* events and this read-only query interface.
package content

import (
	"context"
	"sync"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOGUE
// Implements course.Query over an in-memory course registry and publishes the
// Course* events consumers rebuild their projections from.
// ══════════════════════════════════════════════════════════════════════════════

// Course is one registered course with its authoritative lesson set.
type Course struct {
	ID          string
	Name        string
	Description string
	Price       shared.Money
	LessonIDs   []string
	IsActive    bool
}

// Catalogue is the owning side of the course data.
// Safe for concurrent use.
type Catalogue struct {
	mu        sync.RWMutex
	courses   map[string]*Course
	publisher shared.EventPublisher
}

// NewCatalogue creates an empty catalogue.
// The publisher may be nil; then changes are silent.
func NewCatalogue(publisher shared.EventPublisher) *Catalogue {
	return &Catalogue{
		courses:   make(map[string]*Course),
		publisher: publisher,
	}
}

// AddCourse registers a course and publishes CourseCreated.
func (c *Catalogue) AddCourse(ctx context.Context, course Course) error {
	c.mu.Lock()
	stored := course
	stored.IsActive = true
	stored.LessonIDs = append([]string(nil), course.LessonIDs...)
	c.courses[course.ID] = &stored
	c.mu.Unlock()

	if c.publisher != nil {
		return c.publisher.Publish(ctx, shared.NewCourseCreatedEvent(
			course.ID, course.Name, course.Description, len(course.LessonIDs), course.Price.Cents,
		))
	}
	return nil
}

// UpdateCourse replaces a course's data and publishes CourseUpdated.
func (c *Catalogue) UpdateCourse(ctx context.Context, course Course) error {
	c.mu.Lock()
	stored := course
	stored.LessonIDs = append([]string(nil), course.LessonIDs...)
	c.courses[course.ID] = &stored
	c.mu.Unlock()

	if c.publisher != nil {
		return c.publisher.Publish(ctx, shared.NewCourseUpdatedEvent(
			course.ID, course.Name, course.Description, len(course.LessonIDs), course.Price.Cents, course.IsActive,
		))
	}
	return nil
}

// RemoveCourse deletes a course and publishes CourseDeleted so consumers
// evict their projections.
func (c *Catalogue) RemoveCourse(ctx context.Context, courseID string) error {
	c.mu.Lock()
	delete(c.courses, courseID)
	c.mu.Unlock()

	if c.publisher != nil {
		return c.publisher.Publish(ctx, shared.NewCourseDeletedEvent(courseID))
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// course.Query IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GetLessonIds returns the full lesson-id set of the course.
func (c *Catalogue) GetLessonIds(_ context.Context, courseID string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored, ok := c.courses[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}
	return append([]string(nil), stored.LessonIDs...), nil
}

// Exists reports whether the course exists.
func (c *Catalogue) Exists(_ context.Context, courseID string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.courses[courseID]
	return ok, nil
}

// GetName returns the course display name.
func (c *Catalogue) GetName(_ context.Context, courseID string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored, ok := c.courses[courseID]
	if !ok {
		return "", course.ErrCourseNotFound
	}
	return stored.Name, nil
}

// GetCourse returns the full course projection.
func (c *Catalogue) GetCourse(_ context.Context, courseID string) (*course.Info, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored, ok := c.courses[courseID]
	if !ok {
		return nil, course.ErrCourseNotFound
	}

	return &course.Info{
		ID:          stored.ID,
		Name:        stored.Name,
		Description: stored.Description,
		Price:       stored.Price,
		LessonCount: len(stored.LessonIDs),
		IsActive:    stored.IsActive,
		CachedAt:    time.Now().UTC(),
	}, nil
}
