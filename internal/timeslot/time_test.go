package timeslot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid24Hour(t *testing.T) {
	cases := map[string]bool{
		"00:00":  true,
		"9:30":   true,
		"09:30":  true,
		"23:59":  true,
		" 14:05": true,
		"24:00":  false,
		"12:60":  false,
		"9:5":    false,
		"930":    false,
		"":       false,
		"9:30PM": false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsValid24Hour(input), "input %q", input)
	}
}

func TestIsValid12Hour(t *testing.T) {
	cases := map[string]bool{
		"9:30 AM":  true,
		"09:30 pm": true,
		"12:00PM":  true,
		"1:05 Am":  true,
		"0:30 AM":  false,
		"13:00 PM": false,
		"9:30":     false,
		"9:30  PM": false,
		"9:30 XM":  false,
	}
	for input, want := range cases {
		assert.Equal(t, want, IsValid12Hour(input), "input %q", input)
	}
}

func TestNormalizeTo24Hour(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12:00 AM", "00:00"},
		{"12:15 am", "00:15"},
		{"12:00 PM", "12:00"},
		{"1:30 PM", "13:30"},
		{"11:59 PM", "23:59"},
		{"9:05AM", "09:05"},
		{"9:05", "09:05"},
		{"17:45", "17:45"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeTo24Hour(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := NormalizeTo24Hour("25:00 PM")
	assert.ErrorIs(t, err, ErrFormat)

	_, err = NormalizeTo24Hour("noon")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestNormalizeIsIdentityForEvery24HourTime(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			want, err := NewTimeOfDay(h, m)
			require.NoError(t, err)

			text := want.String()
			assert.True(t, IsValid(text))

			got, err := NormalizeTo24Hour(text)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "%s", text)
		}
	}
}

func TestTwelveHourRoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 1, 30, 59} {
			original, err := NewTimeOfDay(h, m)
			require.NoError(t, err)

			twelve := original.Format12Hour()
			require.True(t, IsValid12Hour(twelve), "%s", twelve)

			back, err := NormalizeTo24Hour(twelve)
			require.NoError(t, err)
			assert.True(t, original.Equal(back), "%s -> %s -> %s", original, twelve, back)
		}
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("2:45 pm")
	require.NoError(t, err)
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 45, got.Minute())

	_, err = Parse("tomorrow")
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "tomorrow")
	assert.Contains(t, err.Error(), AcceptedFormats)
}

func TestNewTimeOfDayRejectsOutOfRange(t *testing.T) {
	_, err := NewTimeOfDay(24, 0)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NewTimeOfDay(10, -1)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestTimeOfDayOn(t *testing.T) {
	tod, err := Parse("09:30")
	require.NoError(t, err)

	day := time.Date(2025, 1, 1, 17, 12, 44, 0, time.Local)
	assert.Equal(t, time.Date(2025, 1, 1, 9, 30, 0, 0, time.Local), tod.On(day))
	assert.True(t, FromTime(day).Equal(TimeOfDay{hour: 17, minute: 12}))
}
