package model

import "time"

type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"   // Создана, начальное состояние
	StatusConfirmed   AppointmentStatus = "confirmed"   // Подтверждена
	StatusRescheduled AppointmentStatus = "rescheduled" // Перенесена
	StatusCompleted   AppointmentStatus = "completed"   // Приём состоялся
	StatusCancelled   AppointmentStatus = "cancelled"   // Отменена
	StatusNoShow      AppointmentStatus = "no_show"     // Пациент не пришёл
)

// AllStatuses в порядке жизненного цикла
var AllStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusRescheduled,
	StatusCompleted,
	StatusCancelled,
	StatusNoShow,
}

// DisplayName возвращает название статуса для сообщений пользователю
func (s AppointmentStatus) DisplayName() string {
	switch s {
	case StatusScheduled:
		return "Scheduled"
	case StatusConfirmed:
		return "Confirmed"
	case StatusRescheduled:
		return "Rescheduled"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	case StatusNoShow:
		return "No Show"
	default:
		return string(s)
	}
}

func (s AppointmentStatus) IsValid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsUpcoming reports whether the appointment still expects the patient.
func (s AppointmentStatus) IsUpcoming() bool {
	return s == StatusScheduled || s == StatusConfirmed || s == StatusRescheduled
}

// ParseStatus accepts the stored value or the display name, case-insensitively.
func ParseStatus(text string) (AppointmentStatus, bool) {
	for _, s := range AllStatuses {
		if equalFold(text, string(s)) || equalFold(text, s.DisplayName()) {
			return s, true
		}
	}
	return "", false
}

type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	DoctorID    string            `json:"doctor_id"`
	ScheduledAt time.Time         `json:"scheduled_at"`
	TimeSlot    string            `json:"time_slot"` // диапазон, изъятый из пула врача
	Status      AppointmentStatus `json:"status"`
	Notes       string            `json:"notes"`
	RemindedAt  *time.Time        `json:"reminded_at,omitempty"` // nil - напоминание ещё не отправлено
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewAppointment создаёт запись в статусе Scheduled
func NewAppointment(patientID, doctorID string, scheduledAt time.Time, timeSlot string, now time.Time) *Appointment {
	return &Appointment{
		PatientID:   patientID,
		DoctorID:    doctorID,
		ScheduledAt: TruncateToMinute(scheduledAt),
		TimeSlot:    timeSlot,
		Status:      StatusScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a copy safe to hand out or to keep as a snapshot.
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	cp := *a
	if a.RemindedAt != nil {
		at := *a.RemindedAt
		cp.RemindedAt = &at
	}
	return &cp
}

// TruncateToMinute drops seconds and below; instants have minute granularity.
func TruncateToMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

// SameDay сравнивает только календарную дату
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
