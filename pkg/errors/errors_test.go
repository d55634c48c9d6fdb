package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableErrorBuilder(t *testing.T) {
	cause := stdErrors.New("boom")
	err := NewTableError(cause, ErrTableClosed, "table is closed").
		WithOperation("insert").
		WithSlot(3).
		WithAddress("00:1a:2b:3c:4d:5e").
		WithDetail("attempt", 1)

	assert.Equal(t, "table is closed: boom", err.Error())
	assert.Equal(t, ErrTableClosed, err.Code())
	assert.Equal(t, "insert", err.Operation())
	assert.Equal(t, 3, err.Slot())
	assert.Equal(t, "00:1a:2b:3c:4d:5e", err.Address())
	assert.Equal(t, 1, err.Details()["attempt"])
	assert.ErrorIs(t, err, cause)
}

func TestTableErrorDefaultsToNoSlot(t *testing.T) {
	assert.Equal(t, -1, NewTableError(nil, ErrTableFull, "full").Slot())
}

func TestAsHelpersThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewFieldRangeError("slot", 9, 0, 4))

	ve, ok := AsValidationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrValidationOutOfRange, ve.Code())
	assert.Equal(t, "slot", ve.Field())
	assert.Equal(t, 9, ve.Provided())

	_, ok = AsTableError(wrapped)
	assert.False(t, ok)

	assert.True(t, HasCode(wrapped, ErrValidationOutOfRange))
	assert.False(t, HasCode(wrapped, ErrTableClosed))
}

func TestRequiredFieldError(t *testing.T) {
	err := NewRequiredFieldError("capacity").WithProvided(0).WithExpected(1)
	assert.Equal(t, "capacity is required", err.Error())
	assert.Equal(t, ErrValidationRequiredField, err.Code())
	assert.Equal(t, 1, err.Expected())
}

func TestBaseErrorWithoutCause(t *testing.T) {
	err := NewTableError(nil, ErrTableFull, "table is full")
	assert.Equal(t, "table is full", err.Error())
	assert.Nil(t, err.Unwrap())
	assert.Nil(t, err.Details())
}
