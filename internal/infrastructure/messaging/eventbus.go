// Package messaging implements the in-process event bus that choreographs the
// Content, Student and Payment stores.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/learnhub/enrollment-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEventBusClosed is returned when operations are attempted on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus is a synchronous, in-process implementation of
// shared.EventBus. Handlers for an event type run sequentially in registration
// order inside the publishing command's unit of work, and the first handler
// error aborts the publish and propagates to the caller - choreography here is
// deliberately not decoupled. There is no durability: an event that is never
// published simply does not exist.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]namedHandler
	allHandlers []namedHandler
	logger      *slog.Logger
	metrics     *EventBusMetrics
	closed      bool
}

type namedHandler struct {
	name    string
	handler shared.EventHandler
}

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// Logger for structured logging.
	Logger *slog.Logger

	// EnableMetrics enables metrics collection.
	EnableMetrics bool
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	bus := &InMemoryEventBus{
		handlers:    make(map[shared.EventType][]namedHandler),
		allHandlers: make([]namedHandler, 0),
		logger:      config.Logger,
	}

	if config.EnableMetrics {
		bus.metrics = NewEventBusMetrics()
	}

	return bus
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	return b.SubscribeNamed(eventType, "", handler)
}

// SubscribeNamed registers a handler with a name used in logs and errors.
func (b *InMemoryEventBus) SubscribeNamed(eventType shared.EventType, name string, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	if name == "" {
		name = fmt.Sprintf("handler-%d", len(b.handlers[eventType]))
	}

	b.handlers[eventType] = append(b.handlers[eventType], namedHandler{name: name, handler: handler})
	b.logger.Debug("subscribed handler", "event_type", eventType, "handler", name)

	return nil
}

// SubscribeAll registers a handler for all events. Global handlers run after
// the type-specific ones, in registration order.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrEventBusClosed
	}

	b.allHandlers = append(b.allHandlers, namedHandler{name: "global", handler: handler})
	b.logger.Debug("subscribed global handler")

	return nil
}

// Publish sends an event to all subscribed handlers, synchronously and in
// registration order under the caller's context. The first handler error
// stops the fan-out and is returned wrapped with the handler's name; the
// caller decides whether the whole command fails (it does - partial success
// is not reported). A cancelled context stops the fan-out the same way.
func (b *InMemoryEventBus) Publish(ctx context.Context, event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}

	handlers := make([]namedHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		b.logger.Debug("no handlers for event", "event_type", event.EventType())
		return nil
	}

	if b.metrics != nil {
		b.metrics.RecordPublish(event.EventType())
	}

	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			b.logger.Warn("context cancelled, aborting publish",
				"event_type", event.EventType(),
				"handler", h.name,
			)
			return fmt.Errorf("event %s: handler %s: %w", event.EventType(), h.name, err)
		}

		start := time.Now()
		err := h.handler(ctx, event)
		duration := time.Since(start)

		if b.metrics != nil {
			b.metrics.RecordHandlerExecution(event.EventType(), duration, err == nil)
		}

		if err != nil {
			b.logger.Error("handler error, aborting publish",
				"event_type", event.EventType(),
				"handler", h.name,
				"duration", duration,
				"error", err,
			)
			return fmt.Errorf("event %s: handler %s: %w", event.EventType(), h.name, err)
		}
	}

	return nil
}

// Close marks the bus closed. Further Publish/Subscribe calls fail.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	b.logger.Info("event bus closed")
	return nil
}

// Metrics returns the current metrics (nil if disabled).
func (b *InMemoryEventBus) Metrics() *EventBusMetrics {
	return b.metrics
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// EventBusMetrics tracks event bus performance metrics.
type EventBusMetrics struct {
	mu sync.RWMutex

	PublishedTotal map[shared.EventType]int64

	HandlerExecutions    int64
	HandlerSuccesses     int64
	HandlerFailures      int64
	HandlerTotalDuration time.Duration
	HandlersByType       map[shared.EventType]int64
}

// NewEventBusMetrics creates a new metrics tracker.
func NewEventBusMetrics() *EventBusMetrics {
	return &EventBusMetrics{
		PublishedTotal: make(map[shared.EventType]int64),
		HandlersByType: make(map[shared.EventType]int64),
	}
}

// RecordPublish records a publish event.
func (m *EventBusMetrics) RecordPublish(eventType shared.EventType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishedTotal[eventType]++
}

// RecordHandlerExecution records a handler execution.
func (m *EventBusMetrics) RecordHandlerExecution(eventType shared.EventType, duration time.Duration, success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.HandlerExecutions++
	m.HandlerTotalDuration += duration
	m.HandlersByType[eventType]++

	if success {
		m.HandlerSuccesses++
	} else {
		m.HandlerFailures++
	}
}

// Snapshot returns a copy of current metrics.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var published int64
	for _, v := range m.PublishedTotal {
		published += v
	}

	avgDuration := time.Duration(0)
	if m.HandlerExecutions > 0 {
		avgDuration = m.HandlerTotalDuration / time.Duration(m.HandlerExecutions)
	}

	successRate := 1.0
	if m.HandlerExecutions > 0 {
		successRate = float64(m.HandlerSuccesses) / float64(m.HandlerExecutions)
	}

	return EventBusMetricsSnapshot{
		TotalPublished:         published,
		TotalHandlerExecs:      m.HandlerExecutions,
		HandlerSuccessRate:     successRate,
		AverageHandlerDuration: avgDuration,
	}
}

// EventBusMetricsSnapshot is a point-in-time snapshot of metrics.
type EventBusMetricsSnapshot struct {
	TotalPublished         int64
	TotalHandlerExecs      int64
	HandlerSuccessRate     float64
	AverageHandlerDuration time.Duration
}
