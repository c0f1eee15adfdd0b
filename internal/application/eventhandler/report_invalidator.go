// Package eventhandler contains the handlers that react to records events.
package eventhandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// REPORT INVALIDATOR
// Drops cached reports that a records change made stale:
//   - grade.recorded  → the student's transcript and the course summary
//   - student.removed → the student's transcript and, if grades were purged,
//     every course summary
//   - course.removed  → the course summary and every transcript
// ═══════════════════════════════════════════════════════════════════════════

// ReportInvalidator keeps the report cache in step with the store.
type ReportInvalidator struct {
	cache   records.ReportCache
	logger  *slog.Logger
	timeout time.Duration
}

// NewReportInvalidator creates a new invalidator.
func NewReportInvalidator(cache records.ReportCache, logger *slog.Logger) *ReportInvalidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportInvalidator{
		cache:   cache,
		logger:  logger.With("handler", "report_invalidator"),
		timeout: 5 * time.Second,
	}
}

// Register subscribes the invalidator to the events it handles.
func (h *ReportInvalidator) Register(bus shared.EventSubscriber) error {
	for _, t := range []shared.EventType{
		shared.EventGradeRecorded,
		shared.EventStudentRemoved,
		shared.EventCourseRemoved,
	} {
		if err := bus.Subscribe(t, h.Handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}
	return nil
}

// Handle implements shared.EventHandler.
func (h *ReportInvalidator) Handle(event shared.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	var err error
	switch e := event.(type) {
	case shared.GradeRecordedEvent:
		err = errors.Join(
			h.cache.InvalidateStudent(ctx, e.StudentID),
			h.cache.InvalidateCourse(ctx, e.CourseCode),
		)
	case shared.StudentRemovedEvent:
		err = h.cache.InvalidateStudent(ctx, e.StudentID)
		if e.GradesPurged > 0 {
			// Summaries are keyed by course, which the event does not list.
			err = errors.Join(err, h.cache.InvalidateCourseSummaries(ctx))
		}
	case shared.CourseRemovedEvent:
		err = errors.Join(
			h.cache.InvalidateCourse(ctx, e.CourseCode),
			h.cache.InvalidateTranscripts(ctx),
		)
	default:
		h.logger.Debug("ignoring event", "event_type", event.EventType())
		return nil
	}

	if err != nil {
		h.logger.Warn("report invalidation failed",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
		return fmt.Errorf("invalidate reports for %s: %w", event.EventType(), err)
	}

	h.logger.Debug("reports invalidated", "event_type", event.EventType(), "aggregate_id", event.AggregateID())
	return nil
}
