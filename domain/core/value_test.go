package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_UndefinedIsNotZero(t *testing.T) {
	zero := Some(0)
	none := None()

	assert.True(t, zero.Valid)
	assert.False(t, none.Valid)
	assert.NotEqual(t, zero, none)

	b, err := json.Marshal([]Value{zero, none})
	require.NoError(t, err)
	assert.Equal(t, "[0,null]", string(b))
}

func TestValue_NaNBecomesUndefined(t *testing.T) {
	assert.False(t, Some(math.NaN()).Valid)
	assert.False(t, Some(math.Inf(1)).Valid)
	assert.Equal(t, 7.0, None().Or(7))
}

func TestErrors_Classification(t *testing.T) {
	err := NewConfigError("rolling_window", "must be between 2 and 12")
	assert.True(t, IsConfigError(err))
	assert.False(t, IsInsufficientData(err))

	err = NewInsufficientDataError("sleep_hours", 0, 1)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	assert.True(t, IsSchemaError(NewUnknownFieldError("shoe_size")))
	assert.True(t, IsNotFoundError(ErrPersonaNotFound))
}

func TestParseDate_Layouts(t *testing.T) {
	want := NewDate(2024, 3, 9)
	for _, s := range []string{"2024-03-09", "09/03/2024", "2024-03-09T13:45:00Z", "2024-03-09 08:00:00"} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseDate("March 9th")
	assert.Error(t, err)

	assert.True(t, NewDate(2024, 1, 1).Equal(FromExcelSerial(45292)))
}
