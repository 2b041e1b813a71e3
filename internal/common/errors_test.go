package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapError(t *testing.T) {
	t.Run("should keep nil as nil", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "read x"))
	})

	t.Run("should prefix the message and keep the cause", func(t *testing.T) {
		err := WrapError(NewAppError("X", "bad row", ErrValidation), "parse logs.csv")
		assert.ErrorContains(t, err, "parse logs.csv: ")
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Equal(t, 4, ExitCode(err))
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil", err: nil, expected: 0},
		{name: "invalid input", err: WrapError(ErrInvalidInput, "flag"), expected: 2},
		{name: "schema drift", err: ErrSchemaDrift, expected: 3},
		{name: "validation", err: ErrValidation, expected: 4},
		{name: "upstream", err: ErrUpstream, expected: 5},
		{name: "other", err: errors.New("boom"), expected: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCode(tt.err))
		})
	}
}
