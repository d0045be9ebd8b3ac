package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", NewValidationError("bad role"), IsValidation},
		{"not found", NewNotFoundError("node"), IsNotFound},
		{"database", NewDatabaseError("GetOwners", errors.New("boom")), IsDatabase},
		{"unavailable", NewUnavailableError("chat-store"), IsUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, IsAppError(tt.err))
		})
	}
}

func TestDatabaseErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDatabaseError("ListByNodes", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "ListByNodes")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})

	t.Run("app error keeps its type", func(t *testing.T) {
		err := Wrap(NewValidationError("empty ref"), "load snapshot")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.Equal(t, "load snapshot: empty ref", GetAppError(err).Message)
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrapf(cause, "write %s", "metrics")
		assert.True(t, IsType(err, ErrorTypeInternal))
		assert.ErrorIs(t, err, cause)
	})
}
