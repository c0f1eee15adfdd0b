package course

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

func TestNew_NormalizesCode(t *testing.T) {
	c, err := New(" cs101 ", "  Introduction to Computer Science ", 3)
	require.NoError(t, err)

	assert.Equal(t, "CS101", c.Code())
	assert.Equal(t, "Introduction to Computer Science", c.Name())
	assert.Equal(t, 3, c.Credits())
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "CS101", NormalizeCode("cs101"))
	assert.Equal(t, "CS101", NormalizeCode("CS101"))
	assert.Equal(t, "CS101", NormalizeCode(" Cs101 "))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		cname   string
		credits int
		kind    error
		message string
	}{
		{"empty code", "", "Calculus", 4, shared.ErrEmptyValue, "Course code cannot be null or empty"},
		{"blank code", "  ", "Calculus", 4, shared.ErrEmptyValue, "Course code cannot be null or empty"},
		{"empty name", "MATH101", "", 4, shared.ErrEmptyValue, "Course name cannot be null or empty"},
		{"zero credits", "MATH101", "Calculus", 0, shared.ErrValueOutOfRange, "Credits must be positive"},
		{"negative credits", "MATH101", "Calculus", -1, shared.ErrValueOutOfRange, "Credits must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.code, tt.cname, tt.credits)
			assert.Nil(t, c)
			assert.ErrorIs(t, err, shared.ErrInvalidArgument)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, shared.MessageOf(err))
		})
	}
}

func TestEqual_ByNormalizedCode(t *testing.T) {
	a := MustNew("CS101", "Intro", 3)
	b := MustNew("cs101", "Different", 4)
	c := MustNew("CS102", "Intro", 3)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
