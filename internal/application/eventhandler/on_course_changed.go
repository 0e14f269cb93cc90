package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/course"
	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON COURSE CHANGED HANDLER
// Maintains the consumer-side course projection from Content store events.
// Created and updated courses overwrite the cached Info; deletion evicts it.
// ═══════════════════════════════════════════════════════════════════════════

// OnCourseChangedHandler keeps the course read-model cache current.
type OnCourseChangedHandler struct {
	cache  course.InfoCache
	logger *slog.Logger
}

// NewOnCourseChangedHandler creates a new OnCourseChangedHandler.
func NewOnCourseChangedHandler(cache course.InfoCache, logger *slog.Logger) *OnCourseChangedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnCourseChangedHandler{
		cache:  cache,
		logger: logger.With("handler", "on_course_changed"),
	}
}

// Handle processes CourseCreated, CourseUpdated and CourseDeleted events.
// Implements shared.EventHandler.
func (h *OnCourseChangedHandler) Handle(ctx context.Context, event shared.Event) error {
	switch ev := event.(type) {
	case shared.CourseCreatedEvent:
		price, err := shared.NewMoney(ev.PriceCents, shared.DefaultCurrency)
		if err != nil {
			return fmt.Errorf("course created price: %w", err)
		}
		info := &course.Info{
			ID:          ev.CourseID,
			Name:        ev.Name,
			Description: ev.Description,
			Price:       price,
			LessonCount: ev.LessonCount,
			IsActive:    true,
			CachedAt:    time.Now().UTC(),
		}
		if err := h.cache.Set(ctx, info); err != nil {
			return fmt.Errorf("cache course %s: %w", ev.CourseID, err)
		}
		h.logger.Info("course projection cached", "course_id", ev.CourseID)
		return nil

	case shared.CourseUpdatedEvent:
		price, err := shared.NewMoney(ev.PriceCents, shared.DefaultCurrency)
		if err != nil {
			return fmt.Errorf("course updated price: %w", err)
		}
		info := &course.Info{
			ID:          ev.CourseID,
			Name:        ev.Name,
			Description: ev.Description,
			Price:       price,
			LessonCount: ev.LessonCount,
			IsActive:    ev.IsActive,
			CachedAt:    time.Now().UTC(),
		}
		if err := h.cache.Set(ctx, info); err != nil {
			return fmt.Errorf("recache course %s: %w", ev.CourseID, err)
		}
		h.logger.Info("course projection refreshed", "course_id", ev.CourseID)
		return nil

	case shared.CourseDeletedEvent:
		if err := h.cache.Invalidate(ctx, ev.CourseID); err != nil {
			return fmt.Errorf("evict course %s: %w", ev.CourseID, err)
		}
		h.logger.Info("course projection evicted", "course_id", ev.CourseID)
		return nil

	default:
		h.logger.Warn("received non-course event",
			"event_type", event.EventType(),
		)
		return nil
	}
}

// EventTypes returns the event types this handler reacts to.
func (h *OnCourseChangedHandler) EventTypes() []shared.EventType {
	return []shared.EventType{
		shared.EventCourseCreated,
		shared.EventCourseUpdated,
		shared.EventCourseDeleted,
	}
}
