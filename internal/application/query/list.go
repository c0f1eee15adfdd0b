package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/grade"
	"github.com/alem-hub/gradebook/internal/domain/records"
	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOOKUPS AND LISTINGS
// ══════════════════════════════════════════════════════════════════════════════

// ListGradesQuery filters the grade listing. Both filters may be combined;
// empty means no filter.
type ListGradesQuery struct {
	StudentID  string
	CourseCode string
}

// Reader serves the lookup and listing queries straight from the store.
type Reader struct {
	store *records.Store
}

// NewReader creates a new Reader.
func NewReader(store *records.Store) *Reader {
	return &Reader{store: store}
}

// GetStudent returns one student or a not-found error.
func (r *Reader) GetStudent(_ context.Context, studentID string) (*StudentDTO, error) {
	st, ok := r.store.Student(studentID)
	if !ok {
		return nil, shared.InvalidArgument("query", "GetStudent", shared.ErrNotFound,
			"Student with ID %s not found", studentID)
	}
	dto := newStudentDTO(st)
	return &dto, nil
}

// GetCourse returns one course or a not-found error. The code is normalized.
func (r *Reader) GetCourse(_ context.Context, courseCode string) (*CourseDTO, error) {
	c, ok := r.store.Course(courseCode)
	if !ok {
		return nil, shared.InvalidArgument("query", "GetCourse", shared.ErrNotFound,
			"Course with code %s not found", courseCode)
	}
	dto := newCourseDTO(c)
	return &dto, nil
}

// ListStudents returns every student ordered by ID.
func (r *Reader) ListStudents(_ context.Context) []StudentDTO {
	students := r.store.Students()
	out := make([]StudentDTO, 0, len(students))
	for _, s := range students {
		out = append(out, newStudentDTO(s))
	}
	return out
}

// ListCourses returns every course ordered by code.
func (r *Reader) ListCourses(_ context.Context) []CourseDTO {
	courses := r.store.Courses()
	out := make([]CourseDTO, 0, len(courses))
	for _, c := range courses {
		out = append(out, newCourseDTO(c))
	}
	return out
}

// ListGrades returns grades in recording order. Filtering by an unknown
// student or course fails with not-found rather than returning nothing, so a
// typo is distinguishable from an empty record.
func (r *Reader) ListGrades(ctx context.Context, q ListGradesQuery) ([]GradeDTO, error) {
	if q.StudentID != "" {
		if _, err := r.GetStudent(ctx, q.StudentID); err != nil {
			return nil, fmt.Errorf("list_grades: %w", err)
		}
	}
	if q.CourseCode != "" {
		if _, err := r.GetCourse(ctx, q.CourseCode); err != nil {
			return nil, fmt.Errorf("list_grades: %w", err)
		}
	}

	var grades []*grade.Grade
	switch {
	case q.StudentID != "" && q.CourseCode != "":
		code := course.NormalizeCode(q.CourseCode)
		for _, g := range r.store.GradesForStudent(q.StudentID) {
			if g.CourseCode() == code {
				grades = append(grades, g)
			}
		}
	case q.StudentID != "":
		grades = r.store.GradesForStudent(q.StudentID)
	case q.CourseCode != "":
		grades = r.store.GradesForCourse(q.CourseCode)
	default:
		grades = r.store.Grades()
	}

	out := make([]GradeDTO, 0, len(grades))
	for _, g := range grades {
		out = append(out, newGradeDTO(g))
	}
	return out, nil
}

// StatsDTO summarizes the size of the store.
type StatsDTO struct {
	Students int    `json:"students"`
	Courses  int    `json:"courses"`
	Grades   int    `json:"grades"`
	Version  uint64 `json:"version"`
}

// Stats returns the current record counts.
func (r *Reader) Stats(_ context.Context) StatsDTO {
	students, courses, grades := r.store.Counts()
	return StatsDTO{
		Students: students,
		Courses:  courses,
		Grades:   grades,
		Version:  r.store.Version(),
	}
}
