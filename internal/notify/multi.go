package notify

import (
	"context"
	"errors"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
)

var (
	_ service.Notifier = Multi(nil)
	_ service.Notifier = (*Log)(nil)
	_ service.Notifier = (*Telegram)(nil)
)

// Multi fans a notification out to every sink and joins their errors.
// A failing sink does not stop the others.
type Multi []service.Notifier

func (m Multi) NotifyBooked(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return m.each(func(n service.Notifier) error { return n.NotifyBooked(ctx, p, d, a) })
}

func (m Multi) NotifyCancelled(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return m.each(func(n service.Notifier) error { return n.NotifyCancelled(ctx, p, d, a) })
}

func (m Multi) NotifyRescheduled(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return m.each(func(n service.Notifier) error { return n.NotifyRescheduled(ctx, p, d, a) })
}

func (m Multi) NotifyReminder(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return m.each(func(n service.Notifier) error { return n.NotifyReminder(ctx, p, d, a) })
}

func (m Multi) each(send func(service.Notifier) error) error {
	var errs []error
	for _, n := range m {
		if err := send(n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
