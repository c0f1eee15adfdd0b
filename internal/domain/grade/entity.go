// Package grade contains the grade a student earned in a course and the
// fixed mapping from a raw score to a letter and grade points.
package grade

import (
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

const domainName = "grade"

// Score bounds, inclusive.
const (
	MinValue = 0.0
	MaxValue = 100.0
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADING SCALE
// ══════════════════════════════════════════════════════════════════════════════

// Letter is a letter grade.
type Letter string

const (
	LetterA Letter = "A"
	LetterB Letter = "B"
	LetterC Letter = "C"
	LetterD Letter = "D"
	LetterF Letter = "F"
)

// String returns the letter as a plain string.
func (l Letter) String() string {
	return string(l)
}

// band is one row of the grading scale: scores at or above Min earn Letter.
type band struct {
	Min    float64
	Letter Letter
	Points float64
}

// scale is checked from the top down; a boundary score belongs to the higher band.
var scale = []band{
	{Min: 90.0, Letter: LetterA, Points: 4.0},
	{Min: 80.0, Letter: LetterB, Points: 3.0},
	{Min: 70.0, Letter: LetterC, Points: 2.0},
	{Min: 60.0, Letter: LetterD, Points: 1.0},
}

// LetterFor maps a raw score to its letter grade.
func LetterFor(value float64) Letter {
	for _, b := range scale {
		if value >= b.Min {
			return b.Letter
		}
	}
	return LetterF
}

// PointsFor maps a raw score to grade points on the 4.0 scale.
func PointsFor(value float64) float64 {
	for _, b := range scale {
		if value >= b.Min {
			return b.Points
		}
	}
	return 0.0
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY
// ══════════════════════════════════════════════════════════════════════════════

// Grade associates a student, a course and the score earned.
// It is never mutated: recording a new score replaces the whole Grade.
type Grade struct {
	student *student.Student
	course  *course.Course
	value   float64
}

// New validates and creates a grade.
func New(s *student.Student, c *course.Course, value float64) (*Grade, error) {
	if s == nil {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrNilReference, "Student cannot be null")
	}
	if c == nil {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrNilReference, "Course cannot be null")
	}
	// Negated comparison also rejects NaN.
	if !(value >= MinValue && value <= MaxValue) {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrValueOutOfRange, "Grade value must be between 0.0 and 100.0")
	}

	return &Grade{student: s, course: c, value: value}, nil
}

// Student returns the graded student.
func (g *Grade) Student() *student.Student { return g.student }

// Course returns the course the grade belongs to.
func (g *Grade) Course() *course.Course { return g.course }

// Value returns the raw score.
func (g *Grade) Value() float64 { return g.value }

// Letter returns the letter grade derived from the score.
func (g *Grade) Letter() Letter { return LetterFor(g.value) }

// Points returns the grade points derived from the score.
func (g *Grade) Points() float64 { return PointsFor(g.value) }

// StudentID is a shortcut for g.Student().ID().
func (g *Grade) StudentID() string { return g.student.ID() }

// CourseCode is a shortcut for g.Course().Code().
func (g *Grade) CourseCode() string { return g.course.Code() }

// Belongs reports whether the grade is for the given student and normalized course code.
func (g *Grade) Belongs(studentID, courseCode string) bool {
	return g.student.ID() == studentID && g.course.Code() == courseCode
}

// Equal compares grades by student, course and score.
func (g *Grade) Equal(other *Grade) bool {
	if g == nil || other == nil {
		return g == other
	}
	return g.value == other.value &&
		g.student.Equal(other.student) &&
		g.course.Equal(other.course)
}

// String implements fmt.Stringer.
func (g *Grade) String() string {
	return fmt.Sprintf("Grade{student=%s, course=%s, gradeValue=%v, letterGrade=%s}",
		g.student.Name(), g.course.Code(), g.value, g.Letter())
}
