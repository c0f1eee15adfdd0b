// Package main runs a scripted walk through the gradebook: it enrolls
// students, adds courses, records grades, prints GPAs and course averages,
// and then shows how removals cascade. Everything happens in memory.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/infrastructure/messaging"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if _, err := runDemo(context.Background(), log); err != nil {
		fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the handlers the demo drives.
type app struct {
	addStudent    *command.AddStudentHandler
	removeStudent *command.RemoveStudentHandler
	addCourse     *command.AddCourseHandler
	removeCourse  *command.RemoveCourseHandler
	recordGrade   *command.RecordGradeHandler
	gpa           *query.GetStudentGPAHandler
	average       *query.GetCourseAverageHandler
	reader        *query.Reader
}

func newApp(store *records.Store, bus shared.EventPublisher, log *slog.Logger) *app {
	// Command handlers log at info; keep their output out of the walk-through.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &app{
		addStudent:    command.NewAddStudentHandler(store, bus, quiet),
		removeStudent: command.NewRemoveStudentHandler(store, bus, quiet),
		addCourse:     command.NewAddCourseHandler(store, bus, quiet),
		removeCourse:  command.NewRemoveCourseHandler(store, bus, quiet),
		recordGrade:   command.NewRecordGradeHandler(store, bus, quiet),
		gpa:           query.NewGetStudentGPAHandler(store, nil, 0, log),
		average:       query.NewGetCourseAverageHandler(store, nil, 0, log),
		reader:        query.NewReader(store),
	}
}

func runDemo(ctx context.Context, log *slog.Logger) (*records.Store, error) {
	store := records.NewStore()

	bus := messaging.NewInMemoryEventBus(messaging.InMemoryEventBusConfig{Logger: log})
	defer bus.Close()
	if err := bus.SubscribeAll(func(e shared.Event) error {
		log.Info("event", "type", e.EventType(), "aggregate_id", e.AggregateID())
		return nil
	}); err != nil {
		return nil, err
	}

	a := newApp(store, bus, log)

	// ─────────────────────────────────────────────────────────────────────────
	// Students and courses
	// ─────────────────────────────────────────────────────────────────────────
	for _, c := range []command.AddStudentCommand{
		{StudentID: "S001", Name: "John Doe", Email: "john.doe@example.com"},
		{StudentID: "S002", Name: "Jane Smith", Email: "jane.smith@example.com"},
	} {
		if _, err := a.addStudent.Handle(ctx, c); err != nil {
			return nil, err
		}
	}

	for _, c := range []command.AddCourseCommand{
		{CourseCode: "CS101", CourseName: "Introduction to Computer Science", Credits: 3},
		{CourseCode: "MATH101", CourseName: "Calculus I", Credits: 4},
		{CourseCode: "ENG101", CourseName: "English Composition", Credits: 3},
	} {
		if _, err := a.addCourse.Handle(ctx, c); err != nil {
			return nil, err
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Grades
	// ─────────────────────────────────────────────────────────────────────────
	for _, c := range []command.RecordGradeCommand{
		{StudentID: "S001", CourseCode: "CS101", Value: 95.0},
		{StudentID: "S001", CourseCode: "MATH101", Value: 87.5},
		{StudentID: "S001", CourseCode: "ENG101", Value: 72.0},
		{StudentID: "S002", CourseCode: "CS101", Value: 88.0},
		{StudentID: "S002", CourseCode: "MATH101", Value: 91.0},
	} {
		res, err := a.recordGrade.Handle(ctx, c)
		if err != nil {
			return nil, err
		}
		log.Info("grade recorded",
			"student_id", res.StudentID,
			"course_code", res.CourseCode,
			"value", res.Value,
			"letter", res.Letter,
			"points", res.Points,
		)
	}

	if err := a.report(ctx, log); err != nil {
		return nil, err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Rejected operations
	// ─────────────────────────────────────────────────────────────────────────
	expectRejected(log, "duplicate student", func() error {
		_, err := a.addStudent.Handle(ctx, command.AddStudentCommand{StudentID: "S001", Name: "Someone", Email: "x@example.com"})
		return err
	})
	expectRejected(log, "score out of range", func() error {
		_, err := a.recordGrade.Handle(ctx, command.RecordGradeCommand{StudentID: "S001", CourseCode: "CS101", Value: 105})
		return err
	})
	expectRejected(log, "unknown student", func() error {
		_, err := a.recordGrade.Handle(ctx, command.RecordGradeCommand{StudentID: "S999", CourseCode: "CS101", Value: 80})
		return err
	})

	// ─────────────────────────────────────────────────────────────────────────
	// Re-grading and removals
	// ─────────────────────────────────────────────────────────────────────────
	res, err := a.recordGrade.Handle(ctx, command.RecordGradeCommand{StudentID: "S002", CourseCode: "CS101", Value: 93})
	if err != nil {
		return nil, err
	}
	log.Info("grade replaced", "student_id", res.StudentID, "course_code", res.CourseCode,
		"previous", *res.PreviousValue, "value", res.Value)

	rc, err := a.removeCourse.Handle(ctx, command.RemoveCourseCommand{CourseCode: "ENG101"})
	if err != nil {
		return nil, err
	}
	log.Info("course removed", "course_code", rc.CourseCode, "grades_purged", rc.GradesPurged)

	rs, err := a.removeStudent.Handle(ctx, command.RemoveStudentCommand{StudentID: "S002"})
	if err != nil {
		return nil, err
	}
	log.Info("student removed", "student_id", rs.StudentID, "grades_purged", rs.GradesPurged)

	if err := a.report(ctx, log); err != nil {
		return nil, err
	}

	stats := a.reader.Stats(ctx)
	log.Info("final state", "students", stats.Students, "courses", stats.Courses, "grades", stats.Grades)

	return store, nil
}

// report logs every student's GPA and every course's average.
func (a *app) report(ctx context.Context, log *slog.Logger) error {
	for _, st := range a.reader.ListStudents(ctx) {
		t, err := a.gpa.Handle(ctx, query.GetStudentGPAQuery{StudentID: st.StudentID})
		if err != nil {
			return err
		}
		log.Info("gpa",
			"student_id", t.StudentID,
			"name", t.Name,
			"gpa", fmt.Sprintf("%.2f", t.GPA),
			"credits", t.TotalCredits,
		)
	}
	for _, c := range a.reader.ListCourses(ctx) {
		s, err := a.average.Handle(ctx, query.GetCourseAverageQuery{CourseCode: c.CourseCode})
		if err != nil {
			return err
		}
		log.Info("course average",
			"course_code", s.CourseCode,
			"average", fmt.Sprintf("%.2f", s.Average),
			"grades", s.GradeCount,
		)
	}
	return nil
}

func expectRejected(log *slog.Logger, what string, fn func() error) {
	err := fn()
	if err == nil {
		log.Error("operation unexpectedly accepted", "case", what)
		return
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		log.Info("rejected", "case", what, "reason", de.Message)
		return
	}
	log.Warn("rejected", "case", what, "error", err)
}
