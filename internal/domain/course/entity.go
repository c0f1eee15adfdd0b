// Package course contains the domain model of a course offered for credit.
// This is a pure domain layer with zero external dependencies.
package course

import (
	"fmt"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

const domainName = "course"

// Course is an immutable course record. Identity is the normalized code.
type Course struct {
	code    string
	name    string
	credits int
}

// NormalizeCode trims surrounding whitespace and upper-cases a course code.
// Every boundary that accepts a raw code goes through it, so "cs101",
// "CS101" and " Cs101 " name the same course.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// New validates and creates a course.
func New(code, name string, credits int) (*Course, error) {
	code = NormalizeCode(code)
	name = strings.TrimSpace(name)

	if code == "" {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrEmptyValue, "Course code cannot be null or empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrEmptyValue, "Course name cannot be null or empty")
	}
	if credits <= 0 {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrValueOutOfRange, "Credits must be positive")
	}

	return &Course{code: code, name: name, credits: credits}, nil
}

// MustNew is like New but panics on invalid input. Intended for fixtures.
func MustNew(code, name string, credits int) *Course {
	c, err := New(code, name, credits)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the normalized course code.
func (c *Course) Code() string { return c.code }

// Name returns the course name.
func (c *Course) Name() string { return c.name }

// Credits returns the credit weight used for GPA calculation.
func (c *Course) Credits() int { return c.credits }

// Equal reports whether both courses share the same normalized code.
func (c *Course) Equal(other *Course) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.code == other.code
}

// String implements fmt.Stringer.
func (c *Course) String() string {
	return fmt.Sprintf("Course{courseCode='%s', courseName='%s', credits=%d}", c.code, c.name, c.credits)
}
