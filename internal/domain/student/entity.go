// Package student contains the domain model of an enrolled student.
// This is a pure domain layer with zero external dependencies.
package student

import (
	"fmt"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

const domainName = "student"

// Student is an immutable record of a person enrolled in the school.
// Identity is the student ID alone; the ID is trimmed but keeps its case.
type Student struct {
	id    string
	name  string
	email string
}

// New validates and creates a student. All three fields are trimmed and must
// be non-empty afterwards. The email format is not checked.
func New(id, name, email string) (*Student, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if id == "" {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrEmptyValue, "Student ID cannot be null or empty")
	}
	if name == "" {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrEmptyValue, "Name cannot be null or empty")
	}
	if email == "" {
		return nil, shared.NewDomainError(domainName, "New", shared.ErrEmptyValue, "Email cannot be null or empty")
	}

	return &Student{id: id, name: name, email: email}, nil
}

// MustNew is like New but panics on invalid input. Intended for fixtures.
func MustNew(id, name, email string) *Student {
	s, err := New(id, name, email)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the student identifier.
func (s *Student) ID() string { return s.id }

// Name returns the student's full name.
func (s *Student) Name() string { return s.name }

// Email returns the student's email address.
func (s *Student) Email() string { return s.email }

// Equal reports whether both students share the same ID.
func (s *Student) Equal(other *Student) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.id == other.id
}

// String implements fmt.Stringer.
func (s *Student) String() string {
	return fmt.Sprintf("Student{studentId='%s', name='%s', email='%s'}", s.id, s.name, s.email)
}
