package notify

import (
	"context"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"go.uber.org/zap"
)

// Log writes notifications to the structured log instead of delivering them.
type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) NotifyBooked(_ context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	l.write(Compose(EventBooked, p, d, a), p, a)
	return nil
}

func (l *Log) NotifyCancelled(_ context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	l.write(Compose(EventCancelled, p, d, a), p, a)
	return nil
}

func (l *Log) NotifyRescheduled(_ context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	l.write(Compose(EventRescheduled, p, d, a), p, a)
	return nil
}

func (l *Log) NotifyReminder(_ context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	l.write(Compose(EventReminder, p, d, a), p, a)
	return nil
}

func (l *Log) write(msg Message, p *model.Patient, a *model.Appointment) {
	l.logger.Info("Notification",
		zap.String("event", string(msg.Event)),
		zap.String("to", p.Email),
		zap.String("patient", p.FullName()),
		zap.String("appointment_id", a.ID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
}
