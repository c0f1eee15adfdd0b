// Package records contains the record store: the authoritative collections of
// students, courses and grades, the rules that keep them consistent, and the
// GPA and course-average aggregates computed from them.
package records

import (
	"sort"
	"strings"
	"sync"

	"github.com/alem-hub/gradebook/internal/domain/course"
	"github.com/alem-hub/gradebook/internal/domain/grade"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/domain/student"
)

const domainName = "records"

// Store owns students keyed by ID, courses keyed by normalized code, and an
// unordered list of grades.
//
// Invariant: every grade references a student and a course that are still in
// the store. Removing a student or course purges its grades first.
//
// Course codes are normalized at every boundary; student IDs are compared
// verbatim.
//
// All methods are safe for concurrent use; each runs to completion under a
// single store-wide lock.
type Store struct {
	mu       sync.RWMutex
	students map[string]*student.Student
	courses  map[string]*course.Course
	grades   []*grade.Grade

	// version increases on every successful mutation. Reports carry the
	// version they were computed at.
	version uint64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		students: make(map[string]*student.Student),
		courses:  make(map[string]*course.Course),
		grades:   make([]*grade.Grade, 0),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

// AddStudent inserts a student. It fails if s is nil or its ID is taken.
func (s *Store) AddStudent(st *student.Student) error {
	if st == nil {
		return shared.NewDomainError(domainName, "AddStudent", shared.ErrNilReference, "Student cannot be null")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.students[st.ID()]; exists {
		return shared.InvalidArgument(domainName, "AddStudent", shared.ErrAlreadyExists,
			"Student with ID %s already exists", st.ID())
	}
	s.students[st.ID()] = st
	s.version++
	return nil
}

// RemoveStudent deletes a student and every grade referencing it.
// A blank or unknown ID is not an error; it reports false.
func (s *Store) RemoveStudent(id string) bool {
	removed, _ := s.PurgeStudent(id)
	return removed
}

// PurgeStudent is RemoveStudent that also reports how many grades the
// cascade dropped.
func (s *Store) PurgeStudent(id string) (removed bool, gradesPurged int) {
	if strings.TrimSpace(id) == "" {
		return false, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gradesPurged = s.dropGrades(func(g *grade.Grade) bool { return g.StudentID() == id })

	if _, ok := s.students[id]; !ok {
		return false, gradesPurged
	}
	delete(s.students, id)
	s.version++
	return true, gradesPurged
}

// Student returns the student with the exact ID.
func (s *Store) Student(id string) (*student.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.students[id]
	return st, ok
}

// Students returns a snapshot of all students ordered by ID.
func (s *Store) Students() []*student.Student {
	s.mu.RLock()
	out := make([]*student.Student, 0, len(s.students))
	for _, st := range s.students {
		out = append(out, st)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// COURSES
// ══════════════════════════════════════════════════════════════════════════════

// AddCourse inserts a course. It fails if c is nil or its code is taken.
func (s *Store) AddCourse(c *course.Course) error {
	if c == nil {
		return shared.NewDomainError(domainName, "AddCourse", shared.ErrNilReference, "Course cannot be null")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.courses[c.Code()]; exists {
		return shared.InvalidArgument(domainName, "AddCourse", shared.ErrAlreadyExists,
			"Course with code %s already exists", c.Code())
	}
	s.courses[c.Code()] = c
	s.version++
	return nil
}

// RemoveCourse deletes a course and every grade referencing it.
// A blank or unknown code is not an error; it reports false.
func (s *Store) RemoveCourse(code string) bool {
	removed, _ := s.PurgeCourse(code)
	return removed
}

// PurgeCourse is RemoveCourse that also reports how many grades the cascade
// dropped.
func (s *Store) PurgeCourse(code string) (removed bool, gradesPurged int) {
	normalized := course.NormalizeCode(code)
	if normalized == "" {
		return false, 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	gradesPurged = s.dropGrades(func(g *grade.Grade) bool { return g.CourseCode() == normalized })

	if _, ok := s.courses[normalized]; !ok {
		return false, gradesPurged
	}
	delete(s.courses, normalized)
	s.version++
	return true, gradesPurged
}

// Course returns the course with the given code after normalization.
func (s *Store) Course(code string) (*course.Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[course.NormalizeCode(code)]
	return c, ok
}

// Courses returns a snapshot of all courses ordered by code.
func (s *Store) Courses() []*course.Course {
	s.mu.RLock()
	out := make([]*course.Course, 0, len(s.courses))
	for _, c := range s.courses {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Code() < out[j].Code() })
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// GRADES
// ══════════════════════════════════════════════════════════════════════════════

// RecordGrade stores a grade for the pair, replacing any earlier one, so the
// store never holds more than one grade per student and course.
func (s *Store) RecordGrade(studentID, courseCode string, value float64) (*grade.Grade, error) {
	recorded, _, err := s.UpsertGrade(studentID, courseCode, value)
	return recorded, err
}

// UpsertGrade is RecordGrade that also returns the grade it replaced, or nil.
// On failure nothing is changed, including the previous grade.
func (s *Store) UpsertGrade(studentID, courseCode string, value float64) (recorded, replaced *grade.Grade, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.students[studentID]
	if !ok {
		return nil, nil, shared.InvalidArgument(domainName, "RecordGrade", shared.ErrNotFound,
			"Student with ID %s not found", studentID)
	}

	normalized := course.NormalizeCode(courseCode)
	c, ok := s.courses[normalized]
	if !ok {
		return nil, nil, shared.InvalidArgument(domainName, "RecordGrade", shared.ErrNotFound,
			"Course with code %s not found", courseCode)
	}

	recorded, err = grade.New(st, c, value)
	if err != nil {
		return nil, nil, err
	}

	for i, g := range s.grades {
		if g.Belongs(studentID, normalized) {
			replaced = g
			s.grades = append(s.grades[:i], s.grades[i+1:]...)
			break
		}
	}
	s.grades = append(s.grades, recorded)
	s.version++

	return recorded, replaced, nil
}

// Grades returns a snapshot of all grades in recording order.
func (s *Store) Grades() []*grade.Grade {
	return s.filterGrades(func(*grade.Grade) bool { return true })
}

// GradesForStudent returns a snapshot of the grades of the exact student ID.
func (s *Store) GradesForStudent(id string) []*grade.Grade {
	return s.filterGrades(func(g *grade.Grade) bool { return g.StudentID() == id })
}

// GradesForCourse returns a snapshot of the grades of a course; the code is
// normalized first.
func (s *Store) GradesForCourse(code string) []*grade.Grade {
	normalized := course.NormalizeCode(code)
	return s.filterGrades(func(g *grade.Grade) bool { return g.CourseCode() == normalized })
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATES
// ══════════════════════════════════════════════════════════════════════════════

// CalculateGPA returns the credit-weighted mean of grade points across the
// student's grades, or 0.0 when the student has none. Unknown students fail.
func (s *Store) CalculateGPA(studentID string) (float64, error) {
	t, err := s.Transcript(studentID)
	if err != nil {
		return 0, err
	}
	return t.GPA, nil
}

// CalculateCourseAverage returns the arithmetic mean of raw scores recorded
// for the course, or 0.0 when there are none. Unknown courses fail.
func (s *Store) CalculateCourseAverage(courseCode string) (float64, error) {
	summary, err := s.CourseSummary(courseCode)
	if err != nil {
		return 0, err
	}
	return summary.Average, nil
}

// Transcript builds the student's graded courses together with the GPA.
func (s *Store) Transcript(studentID string) (*Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.students[studentID]
	if !ok {
		return nil, shared.InvalidArgument(domainName, "CalculateGPA", shared.ErrNotFound,
			"Student with ID %s not found", studentID)
	}

	t := &Transcript{
		StudentID: st.ID(),
		Name:      st.Name(),
		Entries:   make([]TranscriptEntry, 0),
		Version:   s.version,
	}

	var weighted float64
	for _, g := range s.grades {
		if g.StudentID() != studentID {
			continue
		}
		credits := g.Course().Credits()
		weighted += g.Points() * float64(credits)
		t.TotalCredits += credits
		t.Entries = append(t.Entries, newTranscriptEntry(g))
	}

	if t.TotalCredits > 0 {
		t.GPA = weighted / float64(t.TotalCredits)
	}
	return t, nil
}

// CourseSummary builds the course's average and grade count.
func (s *Store) CourseSummary(courseCode string) (*CourseSummary, error) {
	normalized := course.NormalizeCode(courseCode)

	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[normalized]
	if !ok {
		return nil, shared.InvalidArgument(domainName, "CalculateCourseAverage", shared.ErrNotFound,
			"Course with code %s not found", courseCode)
	}

	summary := &CourseSummary{
		CourseCode: c.Code(),
		CourseName: c.Name(),
		Credits:    c.Credits(),
		Version:    s.version,
	}

	var total float64
	for _, g := range s.grades {
		if g.CourseCode() != normalized {
			continue
		}
		total += g.Value()
		summary.GradeCount++
	}

	if summary.GradeCount > 0 {
		summary.Average = total / float64(summary.GradeCount)
	}
	return summary, nil
}

// Version returns the current mutation counter. A report whose Version differs
// is out of date.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Counts returns the sizes of the three collections.
func (s *Store) Counts() (students, courses, grades int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.students), len(s.courses), len(s.grades)
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// dropGrades removes matching grades in place and returns how many went.
// Callers must hold the write lock.
func (s *Store) dropGrades(match func(*grade.Grade) bool) int {
	kept := s.grades[:0]
	for _, g := range s.grades {
		if !match(g) {
			kept = append(kept, g)
		}
	}
	dropped := len(s.grades) - len(kept)
	clear(s.grades[len(kept):])
	s.grades = kept
	return dropped
}

func (s *Store) filterGrades(match func(*grade.Grade) bool) []*grade.Grade {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*grade.Grade, 0)
	for _, g := range s.grades {
		if match(g) {
			out = append(out, g)
		}
	}
	return out
}
