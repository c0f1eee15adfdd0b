package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD COURSE COMMAND
// Adds a course to the catalogue. The code is stored upper-cased.
// ══════════════════════════════════════════════════════════════════════════════

// AddCourseCommand contains the data of the course to add.
type AddCourseCommand struct {
	CourseCode string
	CourseName string
	Credits    int

	CorrelationID string
}

// Validate checks the fields the way the course entity does.
func (c AddCourseCommand) Validate() error {
	_, err := c.toCourse()
	return err
}

func (c AddCourseCommand) toCourse() (*course.Course, error) {
	return course.New(c.CourseCode, c.CourseName, c.Credits)
}

// AddCourseResult contains the stored course.
type AddCourseResult struct {
	CourseCode string
	CourseName string
	Credits    int
}

// AddCourseHandler handles the AddCourseCommand.
type AddCourseHandler struct {
	store          *records.Store
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewAddCourseHandler creates a new AddCourseHandler.
func NewAddCourseHandler(
	store *records.Store,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *AddCourseHandler {
	return &AddCourseHandler{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         withLogger(logger, "add_course"),
	}
}

// Handle executes the add course command.
func (h *AddCourseHandler) Handle(ctx context.Context, cmd AddCourseCommand) (*AddCourseResult, error) {
	c, err := cmd.toCourse()
	if err != nil {
		return nil, fmt.Errorf("add_course: %w", err)
	}

	if err := h.store.AddCourse(c); err != nil {
		h.logger.DebugContext(ctx, "course rejected", "course_code", c.Code(), "error", err)
		return nil, fmt.Errorf("add_course: %w", err)
	}

	h.logger.InfoContext(ctx, "course added", "course_code", c.Code(), "credits", c.Credits())

	event := shared.NewCourseAddedEvent(c.Code(), c.Name(), c.Credits())
	event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	publish(h.eventPublisher, h.logger, event)

	return &AddCourseResult{
		CourseCode: c.Code(),
		CourseName: c.Name(),
		Credits:    c.Credits(),
	}, nil
}
