package command

import (
	"context"
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// RemoveCourseCommand names the course to remove. The code is normalized.
type RemoveCourseCommand struct {
	CourseCode    string
	CorrelationID string
}

// RemoveCourseResult reports what the removal did.
type RemoveCourseResult struct {
	CourseCode   string
	Removed      bool
	GradesPurged int
}

// RemoveCourseHandler removes a course and cascades to its grades.
type RemoveCourseHandler struct {
	store          *records.Store
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewRemoveCourseHandler creates a new RemoveCourseHandler.
func NewRemoveCourseHandler(
	store *records.Store,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *RemoveCourseHandler {
	return &RemoveCourseHandler{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         withLogger(logger, "remove_course"),
	}
}

// Handle executes the remove course command.
func (h *RemoveCourseHandler) Handle(ctx context.Context, cmd RemoveCourseCommand) (*RemoveCourseResult, error) {
	code := course.NormalizeCode(cmd.CourseCode)
	removed, purged := h.store.PurgeCourse(code)

	result := &RemoveCourseResult{
		CourseCode:   code,
		Removed:      removed,
		GradesPurged: purged,
	}

	if !removed {
		h.logger.DebugContext(ctx, "course not found", "course_code", code)
		return result, nil
	}

	h.logger.InfoContext(ctx, "course removed", "course_code", code, "grades_purged", purged)

	event := shared.NewCourseRemovedEvent(code, purged)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.logger, event)

	return result, nil
}
