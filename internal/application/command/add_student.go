package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD STUDENT COMMAND
// Enrols a new student. IDs are kept verbatim after trimming.
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentCommand contains the data of the student to enrol.
type AddStudentCommand struct {
	StudentID string
	Name      string
	Email     string

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate checks the fields the way the student entity does, in the same order.
func (c AddStudentCommand) Validate() error {
	_, err := c.toStudent()
	return err
}

func (c AddStudentCommand) toStudent() (*student.Student, error) {
	return student.New(c.StudentID, c.Name, c.Email)
}

// AddStudentResult contains the enrolled student.
type AddStudentResult struct {
	StudentID  string
	Name       string
	Email      string
	EnrolledAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentHandler handles the AddStudentCommand.
type AddStudentHandler struct {
	store          *records.Store
	eventPublisher shared.EventPublisher // optional
	logger         *slog.Logger
}

// NewAddStudentHandler creates a new AddStudentHandler.
func NewAddStudentHandler(
	store *records.Store,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *AddStudentHandler {
	return &AddStudentHandler{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         withLogger(logger, "add_student"),
	}
}

// Handle executes the add student command.
func (h *AddStudentHandler) Handle(ctx context.Context, cmd AddStudentCommand) (*AddStudentResult, error) {
	st, err := cmd.toStudent()
	if err != nil {
		return nil, fmt.Errorf("add_student: %w", err)
	}

	if err := h.store.AddStudent(st); err != nil {
		h.logger.DebugContext(ctx, "student rejected", "student_id", st.ID(), "error", err)
		return nil, fmt.Errorf("add_student: %w", err)
	}

	h.logger.InfoContext(ctx, "student enrolled", "student_id", st.ID())

	event := shared.NewStudentEnrolledEvent(st.ID(), st.Name(), st.Email())
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.logger, event)

	return &AddStudentResult{
		StudentID:  st.ID(),
		Name:       st.Name(),
		Email:      st.Email(),
		EnrolledAt: event.OccurredAt(),
	}, nil
}
