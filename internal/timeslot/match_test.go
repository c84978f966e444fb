package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) TimeOfDay {
	t.Helper()
	tod, err := Parse(text)
	require.NoError(t, err)
	return tod
}

func TestFindContainingRangeIsEndExclusive(t *testing.T) {
	ranges := []string{"09:00-10:00"}

	_, ok := FindContainingRange(mustParse(t, "10:00"), ranges)
	assert.False(t, ok)

	got, ok := FindContainingRange(mustParse(t, "09:59"), ranges)
	assert.True(t, ok)
	assert.Equal(t, "09:00-10:00", got)

	got, ok = FindContainingRange(mustParse(t, "09:00"), ranges)
	assert.True(t, ok)
	assert.Equal(t, "09:00-10:00", got)
}

func TestFindContainingRangeAdjacentRanges(t *testing.T) {
	ranges := []string{"09:00-10:00", "10:00-11:00"}

	got, ok := FindContainingRange(mustParse(t, "10:00"), ranges)
	require.True(t, ok)
	assert.Equal(t, "10:00-11:00", got)
}

func TestFindContainingRangeSkipsMalformedTokens(t *testing.T) {
	ranges := []string{"garbage", "11:00-10:00", "9-10", "14:00-15:00"}

	got, ok := FindContainingRange(mustParse(t, "2:30 PM"), ranges)
	require.True(t, ok)
	assert.Equal(t, "14:00-15:00", got)

	_, ok = FindContainingRange(mustParse(t, "10:30"), ranges)
	assert.False(t, ok)

	_, ok = FindContainingRange(mustParse(t, "10:30"), nil)
	assert.False(t, ok)
}

func TestIsValidRangeToken(t *testing.T) {
	assert.True(t, IsValidRangeToken("09:00-10:00"))
	assert.True(t, IsValidRangeToken("9:00 AM-10:00 AM"))
	assert.False(t, IsValidRangeToken("09:00"))
	assert.False(t, IsValidRangeToken("09:00-10:00-11:00"))
	assert.False(t, IsValidRangeToken("09:00-25:00"))
	assert.False(t, IsValidRangeToken(""))
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("14:00-15:30")
	require.NoError(t, err)
	assert.Equal(t, "14:00-15:30", r.String())

	_, err = ParseRange("15:00-14:00")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = ParseRange("10:00-10:00")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestConvertToRange(t *testing.T) {
	r, err := ConvertToRange("9:45 AM", 0)
	require.NoError(t, err)
	assert.Equal(t, "09:45-10:15", r.String())

	r, err = ConvertToRange("16:00", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "16:00-17:00", r.String())

	_, err = ConvertToRange("23:45", DefaultAppointmentDuration)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestBusinessHours(t *testing.T) {
	assert.True(t, IsWithinBusinessHours("08:00", DefaultBusinessHours))
	assert.True(t, IsWithinBusinessHours("6:00 PM", DefaultBusinessHours))
	assert.False(t, IsWithinBusinessHours("18:01", DefaultBusinessHours))
	assert.False(t, IsWithinBusinessHours("7:59 AM", DefaultBusinessHours))
	assert.False(t, IsWithinBusinessHours("nonsense", DefaultBusinessHours))

	hours, err := ParseBusinessHours("07:00", "20:00")
	require.NoError(t, err)
	assert.True(t, IsWithinBusinessHours("19:30", hours))
	assert.Equal(t, "7:00 AM - 8:00 PM", hours.String())

	_, err = ParseBusinessHours("20:00", "07:00")
	assert.Error(t, err)
}
