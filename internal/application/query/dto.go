// Package query contains read operations (CQRS - Queries) over the record
// store. Results are plain DTOs safe to serialize.
package query

import (
	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/grade"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

// StudentDTO is a student as returned by queries.
type StudentDTO struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// CourseDTO is a course as returned by queries.
type CourseDTO struct {
	CourseCode string `json:"course_code"`
	CourseName string `json:"course_name"`
	Credits    int    `json:"credits"`
}

// GradeDTO is a recorded grade with its derived letter and points.
type GradeDTO struct {
	StudentID   string  `json:"student_id"`
	StudentName string  `json:"student_name"`
	CourseCode  string  `json:"course_code"`
	Value       float64 `json:"value"`
	Letter      string  `json:"letter"`
	Points      float64 `json:"points"`
}

func newStudentDTO(s *student.Student) StudentDTO {
	return StudentDTO{StudentID: s.ID(), Name: s.Name(), Email: s.Email()}
}

func newCourseDTO(c *course.Course) CourseDTO {
	return CourseDTO{CourseCode: c.Code(), CourseName: c.Name(), Credits: c.Credits()}
}

func newGradeDTO(g *grade.Grade) GradeDTO {
	return GradeDTO{
		StudentID:   g.StudentID(),
		StudentName: g.Student().Name(),
		CourseCode:  g.CourseCode(),
		Value:       g.Value(),
		Letter:      g.Letter().String(),
		Points:      g.Points(),
	}
}
