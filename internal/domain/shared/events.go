package shared

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents a completed change to the records.
const (
	// Student events
	EventStudentEnrolled EventType = "student.enrolled"
	EventStudentRemoved  EventType = "student.removed"

	// Course events
	EventCourseAdded   EventType = "course.added"
	EventCourseRemoved EventType = "course.removed"

	// Grade events
	EventGradeRecorded EventType = "grade.recorded"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventID returns the unique identifier of this occurrence.
	EventID() string

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
	ID            string    `json:"id"`
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventID implements Event interface.
func (e BaseEvent) EventID() string {
	return e.ID
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
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now(),
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
// Student Events
// ═══════════════════════════════════════════════════════════════════════════

// StudentEnrolledEvent is emitted when a student is added to the records.
type StudentEnrolledEvent struct {
	BaseEvent
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Payload implements Event interface.
func (e StudentEnrolledEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id": e.StudentID,
		"name":       e.Name,
		"email":      e.Email,
	}
}

// NewStudentEnrolledEvent creates a new StudentEnrolledEvent.
func NewStudentEnrolledEvent(studentID, name, email string) StudentEnrolledEvent {
	return StudentEnrolledEvent{
		BaseEvent: NewBaseEvent(EventStudentEnrolled, studentID),
		StudentID: studentID,
		Name:      name,
		Email:     email,
	}
}

// StudentRemovedEvent is emitted after a student and their grades were removed.
type StudentRemovedEvent struct {
	BaseEvent
	StudentID    string `json:"student_id"`
	GradesPurged int    `json:"grades_purged"`
}

// Payload implements Event interface.
func (e StudentRemovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"student_id":    e.StudentID,
		"grades_purged": e.GradesPurged,
	}
}

// NewStudentRemovedEvent creates a new StudentRemovedEvent.
func NewStudentRemovedEvent(studentID string, gradesPurged int) StudentRemovedEvent {
	return StudentRemovedEvent{
		BaseEvent:    NewBaseEvent(EventStudentRemoved, studentID),
		StudentID:    studentID,
		GradesPurged: gradesPurged,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Course Events
// ═══════════════════════════════════════════════════════════════════════════

// CourseAddedEvent is emitted when a course is added to the records.
type CourseAddedEvent struct {
	BaseEvent
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Credits    int    `json:"credits"`
}

// Payload implements Event interface.
func (e CourseAddedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_code": e.CourseCode,
		"course_name": e.CourseName,
		"credits":     e.Credits,
	}
}

// NewCourseAddedEvent creates a new CourseAddedEvent.
func NewCourseAddedEvent(code, name string, credits int) CourseAddedEvent {
	return CourseAddedEvent{
		BaseEvent:  NewBaseEvent(EventCourseAdded, code),
		CourseCode: code,
		CourseName: name,
		Credits:    credits,
	}
}

// CourseRemovedEvent is emitted after a course and its grades were removed.
type CourseRemovedEvent struct {
	BaseEvent
	CourseCode   string `json:"course_code"`
	GradesPurged int    `json:"grades_purged"`
}

// Payload implements Event interface.
func (e CourseRemovedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_code":   e.CourseCode,
		"grades_purged": e.GradesPurged,
	}
}

// NewCourseRemovedEvent creates a new CourseRemovedEvent.
func NewCourseRemovedEvent(code string, gradesPurged int) CourseRemovedEvent {
	return CourseRemovedEvent{
		BaseEvent:    NewBaseEvent(EventCourseRemoved, code),
		CourseCode:   code,
		GradesPurged: gradesPurged,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Grade Events
// ═══════════════════════════════════════════════════════════════════════════

// GradeRecordedEvent is emitted when a grade is recorded or replaced.
type GradeRecordedEvent struct {
	BaseEvent
	StudentID     string   `json:"student_id"`
	CourseCode    string   `json:"course_code"`
	Value         float64  `json:"value"`
	Letter        string   `json:"letter"`
	Points        float64  `json:"points"`
	PreviousValue *float64 `json:"previous_value,omitempty"` // nil on first record
}

// Payload implements Event interface.
func (e GradeRecordedEvent) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"student_id":  e.StudentID,
		"course_code": e.CourseCode,
		"value":       e.Value,
		"letter":      e.Letter,
		"points":      e.Points,
	}
	if e.PreviousValue != nil {
		payload["previous_value"] = *e.PreviousValue
	}
	return payload
}

// Replaced reports whether the event overwrote an earlier grade.
func (e GradeRecordedEvent) Replaced() bool {
	return e.PreviousValue != nil
}

// NewGradeRecordedEvent creates a new GradeRecordedEvent.
func NewGradeRecordedEvent(studentID, courseCode string, value float64, letter string, points float64, previous *float64) GradeRecordedEvent {
	return GradeRecordedEvent{
		BaseEvent:     NewBaseEvent(EventGradeRecorded, studentID),
		StudentID:     studentID,
		CourseCode:    courseCode,
		Value:         value,
		Letter:        letter,
		Points:        points,
		PreviousValue: previous,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bus contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
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
