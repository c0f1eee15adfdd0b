package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_MatchesInvalidArgument(t *testing.T) {
	err := NewDomainError("records", "AddStudent", ErrAlreadyExists, "Student with ID S001 already exists")

	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.True(t, errors.Is(err, ErrAlreadyExists))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.True(t, IsInvalidArgument(err))
	assert.True(t, IsAlreadyExists(err))
	assert.False(t, IsValidation(err))
}

func TestDomainError_ErrorFormat(t *testing.T) {
	err := InvalidArgument("records", "RecordGrade", ErrNotFound, "Course with code %s not found", "cs999")
	assert.Equal(t, "records.RecordGrade: Course with code cs999 not found", err.Error())

	wrapped := WrapError("records", "Load", ErrNotFound, "lookup failed", errors.New("boom"))
	assert.Equal(t, "records.Load: lookup failed: boom", wrapped.Error())
}

func TestMessageOf(t *testing.T) {
	err := NewDomainError("student", "New", ErrEmptyValue, "Name cannot be null or empty")
	wrapped := fmt.Errorf("add_student: %w", err)

	assert.Equal(t, "Name cannot be null or empty", MessageOf(wrapped))
	assert.Equal(t, "plain", MessageOf(errors.New("plain")))
	assert.Equal(t, "", MessageOf(nil))
	assert.True(t, IsValidation(wrapped))
}

func TestPlainErrorIsNotInvalidArgument(t *testing.T) {
	assert.False(t, IsInvalidArgument(errors.New("other")))
}
