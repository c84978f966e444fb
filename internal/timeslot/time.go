package timeslot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrFormat возвращается, когда текст не является допустимым временем суток
var ErrFormat = errors.New("invalid time format")

var (
	time24Pattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
	time12Pattern = regexp.MustCompile(`(?i)^(1[0-2]|0?[1-9]):([0-5][0-9])\s?(am|pm)$`)
)

// AcceptedFormats описывает допустимые форматы для сообщений об ошибках
const AcceptedFormats = "HH:MM or HH:MM AM/PM"

// TimeOfDay is a wall-clock time with minute precision. The zero value is 00:00.
type TimeOfDay struct {
	hour   int
	minute int
}

// NewTimeOfDay builds a TimeOfDay, rejecting out-of-range components.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %02d:%02d out of range", ErrFormat, hour, minute)
	}
	return TimeOfDay{hour: hour, minute: minute}, nil
}

// FromTime берёт часы и минуты из момента времени
func FromTime(t time.Time) TimeOfDay {
	return TimeOfDay{hour: t.Hour(), minute: t.Minute()}
}

func (t TimeOfDay) Hour() int   { return t.hour }
func (t TimeOfDay) Minute() int { return t.minute }

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.hour*60 + t.minute
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Minutes() < o.Minutes() }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t.Minutes() > o.Minutes() }
func (t TimeOfDay) Equal(o TimeOfDay) bool  { return t.Minutes() == o.Minutes() }

// String returns the canonical HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.hour, t.minute)
}

// Format12Hour returns h:MM AM/PM.
func (t TimeOfDay) Format12Hour() string {
	period := "AM"
	hour := t.hour
	switch {
	case hour == 0:
		hour = 12
	case hour == 12:
		period = "PM"
	case hour > 12:
		hour -= 12
		period = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.minute, period)
}

// On places the time of day on the calendar date of d.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.hour, t.minute, 0, 0, d.Location())
}

// IsValid24Hour reports whether text looks like H:MM or HH:MM with hour 0-23.
func IsValid24Hour(text string) bool {
	return time24Pattern.MatchString(strings.TrimSpace(text))
}

// IsValid12Hour reports whether text looks like H:MM AM/PM with hour 1-12.
func IsValid12Hour(text string) bool {
	return time12Pattern.MatchString(strings.TrimSpace(text))
}

// IsValid проверяет любой из поддерживаемых форматов
func IsValid(text string) bool {
	return IsValid24Hour(text) || IsValid12Hour(text)
}

// Parse разбирает время в 24-часовом или 12-часовом формате
func Parse(text string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(text)

	if m := time24Pattern.FindStringSubmatch(trimmed); m != nil {
		return fromParts(m[1], m[2])
	}

	if IsValid12Hour(trimmed) {
		return NormalizeTo24Hour(trimmed)
	}

	return TimeOfDay{}, fmt.Errorf("%w: %q, expected %s", ErrFormat, text, AcceptedFormats)
}

// NormalizeTo24Hour converts a 12-hour expression to its 24-hour value.
// A valid 24-hour expression is returned unchanged.
func NormalizeTo24Hour(text string) (TimeOfDay, error) {
	trimmed := strings.TrimSpace(text)

	if m := time24Pattern.FindStringSubmatch(trimmed); m != nil {
		return fromParts(m[1], m[2])
	}

	m := time12Pattern.FindStringSubmatch(trimmed)
	if m == nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q is not a 12-hour time", ErrFormat, text)
	}

	t, err := fromParts(m[1], m[2])
	if err != nil {
		return TimeOfDay{}, err
	}

	pm := strings.EqualFold(m[3], "pm")
	switch {
	case pm && t.hour != 12:
		t.hour += 12
	case !pm && t.hour == 12:
		t.hour = 0
	}

	return t, nil
}

func fromParts(hourText, minuteText string) (TimeOfDay, error) {
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: hour %q", ErrFormat, hourText)
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: minute %q", ErrFormat, minuteText)
	}
	return NewTimeOfDay(hour, minute)
}
