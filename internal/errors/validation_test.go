package errors

import (
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("test_field", "test message", "test_value")

	assert.Equal(t, "test_field", err.Field)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, "test_value", err.Value)
	assert.Equal(t, "validation error on field 'test_field': test message", err.Error())
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("field1", "message1", nil))
	assert.Equal(t, "validation failed: field1 message1", errs.Error())

	errs = append(errs, *NewValidationError("field2", "message2", nil))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("test_field", "test message", "required", "test_value")

	assert.Equal(t, "required", err.Rule)
	assert.Equal(t, "test_field", err.Field)
}

type sample struct {
	Name   string  `validate:"required"`
	Amount int     `validate:"min=0"`
	Score  float64 `validate:"max=100"`
}

func TestToValidationErrors(t *testing.T) {
	err := validator.New().Struct(sample{Amount: -1, Score: 120})
	require.Error(t, err)

	errs := ToValidationErrors(err)

	require.Len(t, errs, 3)
	assert.Equal(t, "Name", errs[0].Field)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "required", errs[0].Rule)
	assert.Equal(t, "must be at least 0", errs[1].Message)
	assert.Equal(t, "must be at most 100", errs[2].Message)
}

func TestToValidationErrors_Wrapped(t *testing.T) {
	err := validator.New().Struct(sample{Name: "x", Amount: -5})

	errs := ToValidationErrors(fmt.Errorf("add xp: %w", err))

	require.Len(t, errs, 1)
	assert.Equal(t, "Amount", errs[0].Field)
}

func TestToValidationErrors_OtherError(t *testing.T) {
	assert.Nil(t, ToValidationErrors(fmt.Errorf("boom")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ValidationErrors{{Field: "a"}}))
	assert.True(t, IsValidation(fmt.Errorf("wrap: %w", NewValidationError("a", "b", nil))))
	assert.False(t, IsValidation(fmt.Errorf("boom")))
	assert.False(t, IsValidation(nil))
}
