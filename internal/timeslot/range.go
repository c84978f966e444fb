package timeslot

import (
	"fmt"
	"strings"
	"time"
)

// DefaultAppointmentDuration длительность приёма по умолчанию
const DefaultAppointmentDuration = 30 * time.Minute

// TimeRange is one bookable window, [Start, End) within a single day.
type TimeRange struct {
	Start TimeOfDay
	End   TimeOfDay
}

// String returns the token form HH:MM-HH:MM.
func (r TimeRange) String() string {
	return r.Start.String() + "-" + r.End.String()
}

// Contains is end-exclusive so adjacent ranges never both match.
func (r TimeRange) Contains(t TimeOfDay) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// IsValidRangeToken reports whether text splits on a single '-' into two valid times.
func IsValidRangeToken(text string) bool {
	parts, ok := splitRange(text)
	if !ok {
		return false
	}
	return IsValid(parts[0]) && IsValid(parts[1])
}

// ParseRange разбирает токен диапазона и проверяет, что начало раньше конца
func ParseRange(token string) (TimeRange, error) {
	parts, ok := splitRange(token)
	if !ok {
		return TimeRange{}, fmt.Errorf("%w: range %q, expected HH:MM-HH:MM", ErrFormat, token)
	}

	start, err := Parse(parts[0])
	if err != nil {
		return TimeRange{}, fmt.Errorf("range start: %w", err)
	}
	end, err := Parse(parts[1])
	if err != nil {
		return TimeRange{}, fmt.Errorf("range end: %w", err)
	}

	if !start.Before(end) {
		return TimeRange{}, fmt.Errorf("%w: range %q must end after it starts", ErrFormat, token)
	}

	return TimeRange{Start: start, End: end}, nil
}

// ConvertToRange builds a range of the given length starting at text.
func ConvertToRange(text string, d time.Duration) (TimeRange, error) {
	start, err := Parse(text)
	if err != nil {
		return TimeRange{}, err
	}

	if d <= 0 {
		d = DefaultAppointmentDuration
	}

	endMinutes := start.Minutes() + int(d/time.Minute)
	if endMinutes >= 24*60 {
		return TimeRange{}, fmt.Errorf("%w: range from %s crosses midnight", ErrFormat, start)
	}

	return TimeRange{Start: start, End: TimeOfDay{hour: endMinutes / 60, minute: endMinutes % 60}}, nil
}

func splitRange(text string) ([]string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, false
	}
	parts := strings.Split(trimmed, "-")
	if len(parts) != 2 {
		return nil, false
	}
	return parts, true
}
