package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// recordingPublisher collects published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.Event
	err    error
}

func (p *recordingPublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []shared.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]shared.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type handlers struct {
	store         *records.Store
	pub           *recordingPublisher
	addStudent    *AddStudentHandler
	removeStudent *RemoveStudentHandler
	addCourse     *AddCourseHandler
	removeCourse  *RemoveCourseHandler
	recordGrade   *RecordGradeHandler
}

func newHandlers() handlers {
	store := records.NewStore()
	pub := &recordingPublisher{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handlers{
		store:         store,
		pub:           pub,
		addStudent:    NewAddStudentHandler(store, pub, log),
		removeStudent: NewRemoveStudentHandler(store, pub, log),
		addCourse:     NewAddCourseHandler(store, pub, log),
		removeCourse:  NewRemoveCourseHandler(store, pub, log),
		recordGrade:   NewRecordGradeHandler(store, pub, log),
	}
}

func (h handlers) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := h.addStudent.Handle(ctx, AddStudentCommand{StudentID: "S001", Name: "John Doe", Email: "john.doe@example.com"})
	require.NoError(t, err)
	_, err = h.addCourse.Handle(ctx, AddCourseCommand{CourseCode: "cs101", CourseName: "Intro", Credits: 3})
	require.NoError(t, err)
	h.pub.events = nil
}

func TestAddStudent(t *testing.T) {
	h := newHandlers()

	res, err := h.addStudent.Handle(context.Background(), AddStudentCommand{
		StudentID:     " S001 ",
		Name:          "John Doe",
		Email:         "john.doe@example.com",
		CorrelationID: "req-1",
	})
	require.NoError(t, err)

	assert.Equal(t, "S001", res.StudentID)
	assert.False(t, res.EnrolledAt.IsZero())
	_, ok := h.store.Student("S001")
	assert.True(t, ok)

	require.Len(t, h.pub.events, 1)
	event, ok := h.pub.events[0].(shared.StudentEnrolledEvent)
	require.True(t, ok)
	assert.Equal(t, "S001", event.StudentID)
	assert.Equal(t, "req-1", event.CorrelationID)
}

func TestAddStudent_Rejections(t *testing.T) {
	h := newHandlers()
	h.seed(t)
	ctx := context.Background()

	_, err := h.addStudent.Handle(ctx, AddStudentCommand{StudentID: "S001", Name: "Dup", Email: "d@x"})
	assert.True(t, shared.IsAlreadyExists(err))
	assert.Equal(t, "Student with ID S001 already exists", shared.MessageOf(err))

	_, err = h.addStudent.Handle(ctx, AddStudentCommand{StudentID: "S009", Name: "  ", Email: ""})
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, "Name cannot be null or empty", shared.MessageOf(err))

	assert.Empty(t, h.pub.events)
}

func TestCommandValidate(t *testing.T) {
	assert.NoError(t, AddStudentCommand{StudentID: "S1", Name: "A", Email: "a@x"}.Validate())
	assert.Equal(t, "Student ID cannot be null or empty",
		shared.MessageOf(AddStudentCommand{Name: "A", Email: "a@x"}.Validate()))

	assert.NoError(t, AddCourseCommand{CourseCode: "c1", CourseName: "C", Credits: 1}.Validate())
	assert.Equal(t, "Credits must be positive",
		shared.MessageOf(AddCourseCommand{CourseCode: "c1", CourseName: "C"}.Validate()))
}

func TestAddCourse_NormalizesCode(t *testing.T) {
	h := newHandlers()
	ctx := context.Background()

	res, err := h.addCourse.Handle(ctx, AddCourseCommand{CourseCode: " math101 ", CourseName: "Calc", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, "MATH101", res.CourseCode)

	_, err = h.addCourse.Handle(ctx, AddCourseCommand{CourseCode: "MATH101", CourseName: "Other", Credits: 3})
	assert.Equal(t, "Course with code MATH101 already exists", shared.MessageOf(err))

	assert.Equal(t, []shared.EventType{shared.EventCourseAdded}, h.pub.types())
}

func TestRecordGrade_FirstAndReplacement(t *testing.T) {
	h := newHandlers()
	h.seed(t)
	ctx := context.Background()

	first, err := h.recordGrade.Handle(ctx, RecordGradeCommand{StudentID: "S001", CourseCode: "cs101", Value: 78})
	require.NoError(t, err)
	assert.Equal(t, "CS101", first.CourseCode)
	assert.Equal(t, "C", first.Letter)
	assert.Equal(t, 2.0, first.Points)
	assert.False(t, first.Replaced)
	assert.Nil(t, first.PreviousValue)

	second, err := h.recordGrade.Handle(ctx, RecordGradeCommand{StudentID: "S001", CourseCode: "CS101", Value: 91})
	require.NoError(t, err)
	assert.True(t, second.Replaced)
	require.NotNil(t, second.PreviousValue)
	assert.Equal(t, 78.0, *second.PreviousValue)
	assert.Len(t, h.store.Grades(), 1)

	require.Len(t, h.pub.events, 2)
	event := h.pub.events[1].(shared.GradeRecordedEvent)
	assert.True(t, event.Replaced())
	assert.Equal(t, "A", event.Letter)
}

func TestRecordGrade_Errors(t *testing.T) {
	h := newHandlers()
	h.seed(t)
	ctx := context.Background()

	_, err := h.recordGrade.Handle(ctx, RecordGradeCommand{StudentID: "S999", CourseCode: "CS101", Value: 150})
	assert.Equal(t, "Student with ID S999 not found", shared.MessageOf(err))

	_, err = h.recordGrade.Handle(ctx, RecordGradeCommand{StudentID: "S001", CourseCode: "cs999", Value: 50})
	assert.Equal(t, "Course with code cs999 not found", shared.MessageOf(err))
	assert.True(t, shared.IsNotFound(err))

	_, err = h.recordGrade.Handle(ctx, RecordGradeCommand{StudentID: "S001", CourseCode: "CS101", Value: -1})
	assert.Equal(t, "Grade value must be between 0.0 and 100.0", shared.MessageOf(err))
	assert.True(t, errors.Is(err, shared.ErrInvalidArgument))

	assert.Empty(t, h.pub.events)
	assert.Empty(t, h.store.Grades())
}

func TestRemoveStudent_CascadesAndReports(t *testing.T) {
	h := newHandlers()
	h.seed(t)
	ctx := context.Background()
	_, err := h.recordGrade.Handle(ctx, RecordGradeCommand{StudentID: "S001", CourseCode: "CS101", Value: 88})
	require.NoError(t, err)

	res, err := h.removeStudent.Handle(ctx, RemoveStudentCommand{StudentID: "S001"})
	require.NoError(t, err)
	assert.True(t, res.Removed)
	assert.Equal(t, 1, res.GradesPurged)
	assert.Empty(t, h.store.Grades())

	res, err = h.removeStudent.Handle(ctx, RemoveStudentCommand{StudentID: "S001"})
	require.NoError(t, err)
	assert.False(t, res.Removed)

	assert.Equal(t, []shared.EventType{shared.EventGradeRecorded, shared.EventStudentRemoved}, h.pub.types())
}

func TestRemoveCourse_NormalizesAndCascades(t *testing.T) {
	h := newHandlers()
	h.seed(t)
	ctx := context.Background()
	_, err := h.recordGrade.Handle(ctx, RecordGradeCommand{StudentID: "S001", CourseCode: "CS101", Value: 88})
	require.NoError(t, err)

	res, err := h.removeCourse.Handle(ctx, RemoveCourseCommand{CourseCode: " cs101"})
	require.NoError(t, err)
	assert.Equal(t, "CS101", res.CourseCode)
	assert.True(t, res.Removed)
	assert.Equal(t, 1, res.GradesPurged)

	res, err = h.removeCourse.Handle(ctx, RemoveCourseCommand{CourseCode: ""})
	require.NoError(t, err)
	assert.False(t, res.Removed)
}

func TestPublishFailureDoesNotFailCommand(t *testing.T) {
	h := newHandlers()
	h.pub.err = errors.New("bus closed")

	_, err := h.addCourse.Handle(context.Background(), AddCourseCommand{CourseCode: "X1", CourseName: "X", Credits: 1})
	assert.NoError(t, err)
}

func TestNilPublisherIsAllowed(t *testing.T) {
	store := records.NewStore()
	handler := NewAddStudentHandler(store, nil, nil)

	_, err := handler.Handle(context.Background(), AddStudentCommand{StudentID: "S1", Name: "A", Email: "a@x"})
	assert.NoError(t, err)
}
