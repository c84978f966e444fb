package timeslot

import "fmt"

// FindContainingRange returns the first token in ranges whose window contains instant.
// Malformed tokens are skipped.
func FindContainingRange(instant TimeOfDay, ranges []string) (string, bool) {
	for _, token := range ranges {
		r, err := ParseRange(token)
		if err != nil {
			continue
		}
		if r.Contains(instant) {
			return token, true
		}
	}
	return "", false
}

// BusinessHours is an inclusive opening window.
type BusinessHours struct {
	Start TimeOfDay
	End   TimeOfDay
}

// DefaultBusinessHours 08:00-18:00
var DefaultBusinessHours = BusinessHours{
	Start: TimeOfDay{hour: 8},
	End:   TimeOfDay{hour: 18},
}

// ParseBusinessHours разбирает границы рабочего дня из конфигурации
func ParseBusinessHours(start, end string) (BusinessHours, error) {
	s, err := Parse(start)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("business hours start: %w", err)
	}
	e, err := Parse(end)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("business hours end: %w", err)
	}
	if s.After(e) {
		return BusinessHours{}, fmt.Errorf("business hours start %s is after end %s", s, e)
	}
	return BusinessHours{Start: s, End: e}, nil
}

// Contains включает обе границы
func (b BusinessHours) Contains(t TimeOfDay) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

func (b BusinessHours) String() string {
	return b.Start.Format12Hour() + " - " + b.End.Format12Hour()
}

// IsWithinBusinessHours returns false for unparseable input.
func IsWithinBusinessHours(text string, hours BusinessHours) bool {
	t, err := Parse(text)
	if err != nil {
		return false
	}
	return hours.Contains(t)
}
