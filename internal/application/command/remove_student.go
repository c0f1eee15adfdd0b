package command

import (
	"context"
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REMOVE STUDENT COMMAND
// Removes a student together with every grade recorded for them.
// ══════════════════════════════════════════════════════════════════════════════

// RemoveStudentCommand names the student to remove.
type RemoveStudentCommand struct {
	StudentID     string
	CorrelationID string
}

// RemoveStudentResult reports what the removal did. Removing an unknown
// student is not an error; Removed is false.
type RemoveStudentResult struct {
	StudentID    string
	Removed      bool
	GradesPurged int
}

// RemoveStudentHandler handles the RemoveStudentCommand.
type RemoveStudentHandler struct {
	store          *records.Store
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewRemoveStudentHandler creates a new RemoveStudentHandler.
func NewRemoveStudentHandler(
	store *records.Store,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *RemoveStudentHandler {
	return &RemoveStudentHandler{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         withLogger(logger, "remove_student"),
	}
}

// Handle executes the remove student command.
func (h *RemoveStudentHandler) Handle(ctx context.Context, cmd RemoveStudentCommand) (*RemoveStudentResult, error) {
	removed, purged := h.store.PurgeStudent(cmd.StudentID)

	result := &RemoveStudentResult{
		StudentID:    cmd.StudentID,
		Removed:      removed,
		GradesPurged: purged,
	}

	if !removed {
		h.logger.DebugContext(ctx, "student not found", "student_id", cmd.StudentID)
		return result, nil
	}

	h.logger.InfoContext(ctx, "student removed", "student_id", cmd.StudentID, "grades_purged", purged)

	event := shared.NewStudentRemovedEvent(cmd.StudentID, purged)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.logger, event)

	return result, nil
}
