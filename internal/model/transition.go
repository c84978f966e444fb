package model

import "strings"

// Action is a lifecycle operation requested on an appointment.
type Action string

const (
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
	ActionComplete   Action = "mark as completed"
	ActionNoShow     Action = "mark as no-show"
)

type transition struct {
	from []AppointmentStatus
	to   AppointmentStatus
}

// Полная таблица допустимых переходов. Всё остальное отклоняется.
var transitions = map[Action]transition{
	ActionCancel: {
		from: []AppointmentStatus{StatusScheduled, StatusConfirmed},
		to:   StatusCancelled,
	},
	ActionReschedule: {
		from: []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusRescheduled},
		to:   StatusRescheduled,
	},
	ActionComplete: {
		from: []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusRescheduled},
		to:   StatusCompleted,
	},
	ActionNoShow: {
		from: []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusRescheduled},
		to:   StatusNoShow,
	},
}

// NextStatus returns the status reached by applying action to current,
// or an InvalidTransition error naming the current status.
func NextStatus(current AppointmentStatus, action Action) (AppointmentStatus, error) {
	t, ok := transitions[action]
	if ok {
		for _, from := range t.from {
			if from == current {
				return t.to, nil
			}
		}
	}
	return "", NewError(KindInvalidTransition,
		"Cannot %s appointment with status: %s", action, current.DisplayName())
}

// CanApply is NextStatus without the error.
func CanApply(current AppointmentStatus, action Action) bool {
	_, err := NextStatus(current, action)
	return err == nil
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
