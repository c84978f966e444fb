package service

import (
	"context"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
)

// Хранилища возвращают (nil, nil), если запись не найдена.

type AppointmentStore interface {
	Save(ctx context.Context, a *model.Appointment) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	// ExistsActiveAt reports a non-cancelled appointment of the doctor at
	// exactly this instant, ignoring excludeID.
	ExistsActiveAt(ctx context.Context, doctorID string, at time.Time, excludeID string) (bool, error)
	FindByPatientID(ctx context.Context, patientID string) ([]*model.Appointment, error)
	FindByDoctorID(ctx context.Context, doctorID string) ([]*model.Appointment, error)
	FindByStatus(ctx context.Context, status model.AppointmentStatus) ([]*model.Appointment, error)
	FindByDate(ctx context.Context, day time.Time) ([]*model.Appointment, error)
	FindByDoctorAndDate(ctx context.Context, doctorID string, day time.Time) ([]*model.Appointment, error)
	FindAll(ctx context.Context) ([]*model.Appointment, error)
	CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error)
}

// Save у DoctorStore и PatientStore возвращает repository.ErrDuplicateContact
// при занятом email, лицензии или чате Telegram.

type DoctorStore interface {
	Save(ctx context.Context, d *model.Doctor) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Doctor, error)
	FindByEmail(ctx context.Context, email string) (*model.Doctor, error)
	FindByLicense(ctx context.Context, license string) (*model.Doctor, error)
	FindAll(ctx context.Context) ([]*model.Doctor, error)
	// Search matches substrings case-insensitively; an empty filter matches all.
	Search(ctx context.Context, name, specialization string) ([]*model.Doctor, error)
}

type PatientStore interface {
	Save(ctx context.Context, p *model.Patient) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Patient, error)
	FindByEmail(ctx context.Context, email string) (*model.Patient, error)
	FindByTelegramChatID(ctx context.Context, chatID int64) (*model.Patient, error)
	FindAll(ctx context.Context) ([]*model.Patient, error)
	SearchByName(ctx context.Context, name string) ([]*model.Patient, error)
}

// Notifier доставляет уведомления; ошибки не откатывают операцию
type Notifier interface {
	NotifyBooked(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error
	NotifyCancelled(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error
	NotifyRescheduled(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error
	NotifyReminder(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error
}

// Метки событий для метрик и предупреждений
const (
	eventBooked      = "booked"
	eventCancelled   = "cancelled"
	eventRescheduled = "rescheduled"
	eventReminder    = "reminder"
)

type notifyFunc func(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error

// nopNotifier используется, пока уведомления не настроены
type nopNotifier struct{}

func (nopNotifier) NotifyBooked(context.Context, *model.Patient, *model.Doctor, *model.Appointment) error {
	return nil
}

func (nopNotifier) NotifyCancelled(context.Context, *model.Patient, *model.Doctor, *model.Appointment) error {
	return nil
}

func (nopNotifier) NotifyRescheduled(context.Context, *model.Patient, *model.Doctor, *model.Appointment) error {
	return nil
}

func (nopNotifier) NotifyReminder(context.Context, *model.Patient, *model.Doctor, *model.Appointment) error {
	return nil
}
