package utils

import (
	"testing"

	pkgerrors "canvaschat/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `validate:"required,max=5"`
	Mode  string `validate:"omitempty,oneof=fast slow"`
	Alias string `validate:"required_without=Name"`
}

func TestValidateStruct(t *testing.T) {
	require.NoError(t, ValidateStruct(sample{Name: "abc", Mode: "fast"}))

	err := ValidateStruct(sample{Name: "toolong", Mode: "medium"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "name must be at most 5 characters")
	assert.Contains(t, err.Error(), "mode must be one of: fast slow")

	err = ValidateStruct(sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "alias is required when name is empty")
}
