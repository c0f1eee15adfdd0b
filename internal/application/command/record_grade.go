package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD GRADE COMMAND
// Records a score for a student in a course. An existing grade for the same
// pair is replaced, never duplicated.
// ══════════════════════════════════════════════════════════════════════════════

// RecordGradeCommand contains the score to record.
type RecordGradeCommand struct {
	StudentID  string
	CourseCode string
	Value      float64

	CorrelationID string
}

// RecordGradeResult contains the recorded grade and what it replaced.
type RecordGradeResult struct {
	StudentID  string
	CourseCode string
	Value      float64
	Letter     string
	Points     float64

	// Replaced is true when an earlier grade for the pair was overwritten.
	Replaced      bool
	PreviousValue *float64

	RecordedAt time.Time
}

// RecordGradeHandler handles the RecordGradeCommand.
type RecordGradeHandler struct {
	store          *records.Store
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewRecordGradeHandler creates a new RecordGradeHandler.
func NewRecordGradeHandler(
	store *records.Store,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *RecordGradeHandler {
	return &RecordGradeHandler{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         withLogger(logger, "record_grade"),
	}
}

// Handle executes the record grade command. Lookups happen before the value
// check, so an unknown student wins over an out-of-range score.
func (h *RecordGradeHandler) Handle(ctx context.Context, cmd RecordGradeCommand) (*RecordGradeResult, error) {
	recorded, replaced, err := h.store.UpsertGrade(cmd.StudentID, cmd.CourseCode, cmd.Value)
	if err != nil {
		h.logger.DebugContext(ctx, "grade rejected",
			"student_id", cmd.StudentID,
			"course_code", cmd.CourseCode,
			"value", cmd.Value,
			"error", err,
		)
		return nil, fmt.Errorf("record_grade: %w", err)
	}

	var previous *float64
	if replaced != nil {
		v := replaced.Value()
		previous = &v
	}

	h.logger.InfoContext(ctx, "grade recorded",
		"student_id", recorded.StudentID(),
		"course_code", recorded.CourseCode(),
		"value", recorded.Value(),
		"letter", recorded.Letter(),
		"replaced", replaced != nil,
	)

	event := shared.NewGradeRecordedEvent(
		recorded.StudentID(),
		recorded.CourseCode(),
		recorded.Value(),
		recorded.Letter().String(),
		recorded.Points(),
		previous,
	)
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.logger, event)

	return &RecordGradeResult{
		StudentID:     recorded.StudentID(),
		CourseCode:    recorded.CourseCode(),
		Value:         recorded.Value(),
		Letter:        recorded.Letter().String(),
		Points:        recorded.Points(),
		Replaced:      replaced != nil,
		PreviousValue: previous,
		RecordedAt:    event.OccurredAt(),
	}, nil
}
