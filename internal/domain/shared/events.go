package shared

import (
	"context"
	"encoding/json"
	"time"
)

// EventType represents the type of domain or integration event.
type EventType string

// Event types - these drive the choreography between the Content, Student and
// Payment stores. Each event is a fact published by the store that owns the
// state change; consumers react with their own local commits.
const (
	// Content store events
	EventCourseCreated EventType = "course.created"
	EventCourseUpdated EventType = "course.updated"
	EventCourseDeleted EventType = "course.deleted"

	// Student store events
	EventStudentEnrolled     EventType = "enrollment.created"
	EventEnrollmentActivated EventType = "enrollment.activated"
	EventEnrollmentCancelled EventType = "enrollment.cancelled"
	EventCourseCompleted     EventType = "enrollment.completed"
	EventLessonCompleted     EventType = "learning.lesson_completed"
	EventCertificateIssued   EventType = "certificate.issued"

	// Payment store events
	EventPaymentConfirmed EventType = "payment.confirmed"
	EventPaymentRejected  EventType = "payment.rejected"
	EventPaymentRefunded  EventType = "payment.refunded"
)

// Event is the base interface for all domain and integration events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Content Store Events
// ═══════════════════════════════════════════════════════════════════════════

// CourseCreatedEvent is emitted when a new course is published by the Content store.
type CourseCreatedEvent struct {
	BaseEvent
	CourseID    string `json:"course_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LessonCount int    `json:"lesson_count"`
	PriceCents  int64  `json:"price_cents"`
}

// Payload implements Event interface.
func (e CourseCreatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id":    e.CourseID,
		"name":         e.Name,
		"description":  e.Description,
		"lesson_count": e.LessonCount,
		"price_cents":  e.PriceCents,
	}
}

// NewCourseCreatedEvent creates a new CourseCreatedEvent.
func NewCourseCreatedEvent(courseID, name, description string, lessonCount int, priceCents int64) CourseCreatedEvent {
	return CourseCreatedEvent{
		BaseEvent:   NewBaseEvent(EventCourseCreated, courseID),
		CourseID:    courseID,
		Name:        name,
		Description: description,
		LessonCount: lessonCount,
		PriceCents:  priceCents,
	}
}

// CourseUpdatedEvent is emitted when course metadata changes.
type CourseUpdatedEvent struct {
	BaseEvent
	CourseID    string `json:"course_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LessonCount int    `json:"lesson_count"`
	PriceCents  int64  `json:"price_cents"`
	IsActive    bool   `json:"is_active"`
}

// Payload implements Event interface.
func (e CourseUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id":    e.CourseID,
		"name":         e.Name,
		"description":  e.Description,
		"lesson_count": e.LessonCount,
		"price_cents":  e.PriceCents,
		"is_active":    e.IsActive,
	}
}

// NewCourseUpdatedEvent creates a new CourseUpdatedEvent.
func NewCourseUpdatedEvent(courseID, name, description string, lessonCount int, priceCents int64, isActive bool) CourseUpdatedEvent {
	return CourseUpdatedEvent{
		BaseEvent:   NewBaseEvent(EventCourseUpdated, courseID),
		CourseID:    courseID,
		Name:        name,
		Description: description,
		LessonCount: lessonCount,
		PriceCents:  priceCents,
		IsActive:    isActive,
	}
}

// CourseDeletedEvent is emitted when a course is removed from the catalogue.
// Consumers must evict any cached projection immediately.
type CourseDeletedEvent struct {
	BaseEvent
	CourseID string `json:"course_id"`
}

// Payload implements Event interface.
func (e CourseDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_id": e.CourseID,
	}
}

// NewCourseDeletedEvent creates a new CourseDeletedEvent.
func NewCourseDeletedEvent(courseID string) CourseDeletedEvent {
	return CourseDeletedEvent{
		BaseEvent: NewBaseEvent(EventCourseDeleted, courseID),
		CourseID:  courseID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Student Store Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentEnrolledEvent is emitted when a student enrolls in a course.
// The enrollment is still awaiting payment at this point.
type StudentEnrolledEvent struct {
	BaseEvent
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
	EnrollmentID string `json:"enrollment_id"`
}

// Payload implements Event interface.
func (e StudentEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":    e.StudentID,
		"course_id":     e.CourseID,
		"enrollment_id": e.EnrollmentID,
	}
}

// NewStudentEnrolledEvent creates a new StudentEnrolledEvent.
func NewStudentEnrolledEvent(studentID, courseID, enrollmentID string) StudentEnrolledEvent {
	return StudentEnrolledEvent{
		BaseEvent:    NewBaseEvent(EventStudentEnrolled, enrollmentID),
		StudentID:    studentID,
		CourseID:     courseID,
		EnrollmentID: enrollmentID,
	}
}

// EnrollmentActivatedEvent is emitted when a paid enrollment becomes active.
type EnrollmentActivatedEvent struct {
	BaseEvent
	EnrollmentID   string    `json:"enrollment_id"`
	StudentID      string    `json:"student_id"`
	CourseID       string    `json:"course_id"`
	ActivationDate time.Time `json:"activation_date"`
}

// Payload implements Event interface.
func (e EnrollmentActivatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id":   e.EnrollmentID,
		"student_id":      e.StudentID,
		"course_id":       e.CourseID,
		"activation_date": e.ActivationDate.Format(time.RFC3339),
	}
}

// NewEnrollmentActivatedEvent creates a new EnrollmentActivatedEvent.
func NewEnrollmentActivatedEvent(enrollmentID, studentID, courseID string, activationDate time.Time) EnrollmentActivatedEvent {
	return EnrollmentActivatedEvent{
		BaseEvent:      NewBaseEvent(EventEnrollmentActivated, enrollmentID),
		EnrollmentID:   enrollmentID,
		StudentID:      studentID,
		CourseID:       courseID,
		ActivationDate: activationDate,
	}
}

// EnrollmentCancelledEvent is emitted when an enrollment is cancelled.
type EnrollmentCancelledEvent struct {
	BaseEvent
	EnrollmentID string `json:"enrollment_id"`
	StudentID    string `json:"student_id"`
	CourseID     string `json:"course_id"`
	Reason       string `json:"reason,omitempty"`
}

// Payload implements Event interface.
func (e EnrollmentCancelledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id": e.EnrollmentID,
		"student_id":    e.StudentID,
		"course_id":     e.CourseID,
		"reason":        e.Reason,
	}
}

// NewEnrollmentCancelledEvent creates a new EnrollmentCancelledEvent.
func NewEnrollmentCancelledEvent(enrollmentID, studentID, courseID, reason string) EnrollmentCancelledEvent {
	return EnrollmentCancelledEvent{
		BaseEvent:    NewBaseEvent(EventEnrollmentCancelled, enrollmentID),
		EnrollmentID: enrollmentID,
		StudentID:    studentID,
		CourseID:     courseID,
		Reason:       reason,
	}
}

// CourseCompletedEvent is emitted when a student finishes every lesson of a
// course and the enrollment transitions to Completed.
type CourseCompletedEvent struct {
	BaseEvent
	EnrollmentID   string    `json:"enrollment_id"`
	StudentID      string    `json:"student_id"`
	CourseID       string    `json:"course_id"`
	CompletionDate time.Time `json:"completion_date"`
}

// Payload implements Event interface.
func (e CourseCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"enrollment_id":   e.EnrollmentID,
		"student_id":      e.StudentID,
		"course_id":       e.CourseID,
		"completion_date": e.CompletionDate.Format(time.RFC3339),
	}
}

// NewCourseCompletedEvent creates a new CourseCompletedEvent.
func NewCourseCompletedEvent(enrollmentID, studentID, courseID string, completionDate time.Time) CourseCompletedEvent {
	return CourseCompletedEvent{
		BaseEvent:      NewBaseEvent(EventCourseCompleted, enrollmentID),
		EnrollmentID:   enrollmentID,
		StudentID:      studentID,
		CourseID:       courseID,
		CompletionDate: completionDate,
	}
}

// LessonCompletedEvent is emitted when a lesson is added to a student's
// completed set for a course. Idempotent re-completions do not re-emit.
type LessonCompletedEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
	LessonID  string `json:"lesson_id"`
}

// Payload implements Event interface.
func (e LessonCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"course_id":  e.CourseID,
		"lesson_id":  e.LessonID,
	}
}

// NewLessonCompletedEvent creates a new LessonCompletedEvent.
func NewLessonCompletedEvent(studentID, courseID, lessonID string) LessonCompletedEvent {
	return LessonCompletedEvent{
		BaseEvent: NewBaseEvent(EventLessonCompleted, studentID),
		StudentID: studentID,
		CourseID:  courseID,
		LessonID:  lessonID,
	}
}

// CertificateIssuedEvent is emitted when a certificate is issued for a
// completed enrollment.
type CertificateIssuedEvent struct {
	BaseEvent
	CertificateID     string `json:"certificate_id"`
	StudentID         string `json:"student_id"`
	CourseID          string `json:"course_id"`
	CertificateNumber string `json:"certificate_number"`
}

// Payload implements Event interface.
func (e CertificateIssuedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"certificate_id":     e.CertificateID,
		"student_id":         e.StudentID,
		"course_id":          e.CourseID,
		"certificate_number": e.CertificateNumber,
	}
}

// NewCertificateIssuedEvent creates a new CertificateIssuedEvent.
func NewCertificateIssuedEvent(certificateID, studentID, courseID, certificateNumber string) CertificateIssuedEvent {
	return CertificateIssuedEvent{
		BaseEvent:         NewBaseEvent(EventCertificateIssued, certificateID),
		CertificateID:     certificateID,
		StudentID:         studentID,
		CourseID:          courseID,
		CertificateNumber: certificateNumber,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Payment Store Events
// ═══════════════════════════════════════════════════════════════════════════

// PaymentConfirmedEvent is emitted when the gateway approves a charge.
type PaymentConfirmedEvent struct {
	BaseEvent
	PaymentID     string `json:"payment_id"`
	EnrollmentID  string `json:"enrollment_id"`
	TransactionID string `json:"transaction_id"`
}

// Payload implements Event interface.
func (e PaymentConfirmedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"payment_id":     e.PaymentID,
		"enrollment_id":  e.EnrollmentID,
		"transaction_id": e.TransactionID,
	}
}

// NewPaymentConfirmedEvent creates a new PaymentConfirmedEvent.
func NewPaymentConfirmedEvent(paymentID, enrollmentID, transactionID string) PaymentConfirmedEvent {
	return PaymentConfirmedEvent{
		BaseEvent:     NewBaseEvent(EventPaymentConfirmed, paymentID),
		PaymentID:     paymentID,
		EnrollmentID:  enrollmentID,
		TransactionID: transactionID,
	}
}

// PaymentRejectedEvent is emitted when the gateway declines a charge.
// The enrollment deliberately stays PendingPayment so the student can retry.
type PaymentRejectedEvent struct {
	BaseEvent
	PaymentID    string `json:"payment_id"`
	EnrollmentID string `json:"enrollment_id"`
	Reason       string `json:"reason"`
}

// Payload implements Event interface.
func (e PaymentRejectedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"payment_id":    e.PaymentID,
		"enrollment_id": e.EnrollmentID,
		"reason":        e.Reason,
	}
}

// NewPaymentRejectedEvent creates a new PaymentRejectedEvent.
func NewPaymentRejectedEvent(paymentID, enrollmentID, reason string) PaymentRejectedEvent {
	return PaymentRejectedEvent{
		BaseEvent:    NewBaseEvent(EventPaymentRejected, paymentID),
		PaymentID:    paymentID,
		EnrollmentID: enrollmentID,
		Reason:       reason,
	}
}

// PaymentRefundedEvent is emitted when an approved payment is refunded.
type PaymentRefundedEvent struct {
	BaseEvent
	PaymentID    string `json:"payment_id"`
	EnrollmentID string `json:"enrollment_id"`
	Reason       string `json:"reason"`
}

// Payload implements Event interface.
func (e PaymentRefundedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"payment_id":    e.PaymentID,
		"enrollment_id": e.EnrollmentID,
		"reason":        e.Reason,
	}
}

// NewPaymentRefundedEvent creates a new PaymentRefundedEvent.
func NewPaymentRefundedEvent(paymentID, enrollmentID, reason string) PaymentRefundedEvent {
	return PaymentRefundedEvent{
		BaseEvent:    NewBaseEvent(EventPaymentRefunded, paymentID),
		PaymentID:    paymentID,
		EnrollmentID: enrollmentID,
		Reason:       reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event. The context is the
// publishing command's context, so cancellation reaches every cascading
// repository call a handler makes.
type EventHandler func(ctx context.Context, event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers. Handlers run synchronously in
	// registration order under the caller's context; the first handler error
	// aborts the publish and is returned to the caller.
	Publish(ctx context.Context, event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
