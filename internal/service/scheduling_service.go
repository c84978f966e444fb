package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/lock"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/metrics"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/timeslot"
	"go.uber.org/zap"
)

const (
	DateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// ScheduleAt собирает момент приёма из даты YYYY-MM-DD и времени в локальной зоне
func ScheduleAt(date, text string) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), time.Local)
	if err != nil {
		return time.Time{}, model.InvalidInput("Invalid date %s. Use YYYY-MM-DD format.", date)
	}
	tod, err := timeslot.Parse(text)
	if err != nil {
		return time.Time{}, model.InvalidInput("Invalid time slot format: %s. Please use %s format.", text, timeslot.AcceptedFormats)
	}
	return tod.On(day), nil
}

type BookRequest struct {
	PatientID   string
	DoctorID    string
	ScheduledAt time.Time
	Time        string // "HH:MM" или "HH:MM AM/PM"
}

type RescheduleRequest struct {
	ScheduledAt time.Time
	Time        string
}

// Result is the outcome of a mutating operation. Warnings carry soft failures
// that did not abort it.
type Result struct {
	Appointment *model.Appointment
	Warnings    []string
}

func (r *Result) warn(logger *zap.Logger, msg string, fields ...zap.Field) {
	r.Warnings = append(r.Warnings, msg)
	logger.Warn(msg, fields...)
}

type SchedulingOption func(*SchedulingService)

func WithNotifier(n Notifier) SchedulingOption {
	return func(s *SchedulingService) { s.notifier = n }
}

func WithLocker(l lock.Locker) SchedulingOption {
	return func(s *SchedulingService) { s.locker = l }
}

func WithMetrics(m *metrics.Metrics) SchedulingOption {
	return func(s *SchedulingService) { s.metrics = m }
}

func WithClock(now func() time.Time) SchedulingOption {
	return func(s *SchedulingService) { s.now = now }
}

// WithBusinessHours rejects bookings outside hours when enforce is set.
func WithBusinessHours(hours timeslot.BusinessHours, enforce bool) SchedulingOption {
	return func(s *SchedulingService) {
		s.hours = hours
		s.enforceHours = enforce
	}
}

// SchedulingService единственный, кто меняет статусы записей и пулы врачей.
// Все изменяющие операции выполняются под блокировкой врача.
type SchedulingService struct {
	appointments AppointmentStore
	doctors      DoctorStore
	patients     PatientStore
	notifier     Notifier
	locker       lock.Locker
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
	hours        timeslot.BusinessHours
	enforceHours bool
}

func NewSchedulingService(
	appointments AppointmentStore,
	doctors DoctorStore,
	patients PatientStore,
	logger *zap.Logger,
	opts ...SchedulingOption,
) *SchedulingService {
	s := &SchedulingService{
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		notifier:     nopNotifier{},
		locker:       lock.NewLocal(),
		logger:       logger,
		now:          time.Now,
		hours:        timeslot.DefaultBusinessHours,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book создаёт запись и забирает содержащий диапазон из пула врача
func (s *SchedulingService) Book(ctx context.Context, req BookRequest) (res *Result, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("book", err, time.Since(start)) }(time.Now())

	patientID := strings.TrimSpace(req.PatientID)
	doctorID := strings.TrimSpace(req.DoctorID)
	if patientID == "" {
		return nil, model.InvalidInput("Patient ID is required")
	}
	if doctorID == "" {
		return nil, model.InvalidInput("Doctor ID is required")
	}

	at, tod, err := s.validateSchedule(req.ScheduledAt, req.Time)
	if err != nil {
		return nil, err
	}

	res = &Result{}
	var (
		patient *model.Patient
		doctor  *model.Doctor
	)

	err = s.withDoctorLock(ctx, doctorID, func() error {
		patient, err = s.patients.FindByID(ctx, patientID)
		if err != nil {
			return fmt.Errorf("get patient: %w", err)
		}
		if patient == nil {
			return model.NotFound("Patient", patientID)
		}

		doctor, err = s.findDoctor(ctx, doctorID)
		if err != nil {
			return err
		}

		// Занятый момент времени важнее отсутствующего диапазона
		if err := s.checkConflict(ctx, doctorID, at, ""); err != nil {
			return err
		}

		slot, ok := timeslot.FindContainingRange(tod, doctor.Slots())
		if !ok {
			return slotUnavailable(req.Time, doctor)
		}

		now := s.now()
		appointment := model.NewAppointment(patientID, doctorID, at, slot, now)
		if err := s.saveAppointment(ctx, appointment, doctorID, at); err != nil {
			return err
		}

		doctor.RemoveSlot(slot)
		doctor.UpdatedAt = now
		if err := s.doctors.Save(ctx, doctor); err != nil {
			// Компенсация: запись без изъятого диапазона не должна остаться
			if delErr := s.appointments.Delete(ctx, appointment.ID); delErr != nil {
				s.logger.Error("Failed to roll back appointment",
					zap.String("appointment_id", appointment.ID),
					zap.Error(delErr),
				)
			}
			return fmt.Errorf("save doctor: %w", err)
		}

		res.Appointment = appointment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment booked",
		zap.String("appointment_id", res.Appointment.ID),
		zap.String("patient_id", patientID),
		zap.String("doctor_id", doctorID),
		zap.Time("scheduled_at", res.Appointment.ScheduledAt),
		zap.String("time_slot", res.Appointment.TimeSlot),
	)

	s.notify(ctx, res, eventBooked, s.notifier.NotifyBooked, patient, doctor, res.Appointment)
	return res, nil
}

// Cancel отменяет запись и возвращает диапазон в пул врача
func (s *SchedulingService) Cancel(ctx context.Context, appointmentID string) (res *Result, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("cancel", err, time.Since(start)) }(time.Now())

	res = &Result{}
	var (
		patient *model.Patient
		doctor  *model.Doctor
	)

	err = s.withAppointment(ctx, appointmentID, func(a *model.Appointment) error {
		doctor, err = s.closeAndRelease(ctx, res, a, model.ActionCancel)
		if err != nil {
			return err
		}
		patient = s.lookupPatient(ctx, res, a)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment cancelled",
		zap.String("appointment_id", res.Appointment.ID),
		zap.String("doctor_id", res.Appointment.DoctorID),
		zap.String("time_slot", res.Appointment.TimeSlot),
	)

	if patient == nil || doctor == nil {
		res.warn(s.logger, fmt.Sprintf("Patient or doctor not found for cancellation notification for appointment ID: %s", res.Appointment.ID))
		return res, nil
	}

	s.notify(ctx, res, eventCancelled, s.notifier.NotifyCancelled, patient, doctor, res.Appointment)
	return res, nil
}

// Reschedule переносит запись. Старый диапазон возвращается в пул в той же
// мутации, что забирает новый, и сохраняется одним Save врача.
func (s *SchedulingService) Reschedule(ctx context.Context, appointmentID string, req RescheduleRequest) (res *Result, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("reschedule", err, time.Since(start)) }(time.Now())

	res = &Result{}
	var (
		patient *model.Patient
		doctor  *model.Doctor
		oldSlot string
	)

	err = s.withAppointment(ctx, appointmentID, func(a *model.Appointment) error {
		next, err := model.NextStatus(a.Status, model.ActionReschedule)
		if err != nil {
			return err
		}

		at, tod, err := s.validateSchedule(req.ScheduledAt, req.Time)
		if err != nil {
			return err
		}

		doctor, err = s.findDoctor(ctx, a.DoctorID)
		if err != nil {
			return err
		}

		if err := s.checkConflict(ctx, a.DoctorID, at, a.ID); err != nil {
			return err
		}

		// Диапазон, занятый самой записью, тоже доступен для переноса
		oldSlot = a.TimeSlot
		candidates := doctor.Slots()
		if oldSlot != "" && !doctor.HasSlot(oldSlot) && timeslot.IsValidRangeToken(oldSlot) {
			candidates = append(candidates, oldSlot)
		}

		newSlot, ok := timeslot.FindContainingRange(tod, candidates)
		if !ok {
			return slotUnavailable(req.Time, doctor)
		}

		snapshot := a.Clone()
		now := s.now()

		poolChanged := newSlot != oldSlot
		if poolChanged {
			s.returnOldSlot(res, doctor, oldSlot, a.ID)
			doctor.RemoveSlot(newSlot)
		}

		a.ScheduledAt = at
		a.TimeSlot = newSlot
		a.Status = next
		// новая дата - новое напоминание
		a.RemindedAt = nil
		a.UpdatedAt = now
		if err := s.saveAppointment(ctx, a, a.DoctorID, at); err != nil {
			return err
		}

		if poolChanged {
			doctor.UpdatedAt = now
			if err := s.doctors.Save(ctx, doctor); err != nil {
				s.restore(ctx, snapshot)
				return fmt.Errorf("save doctor: %w", err)
			}
		}

		patient = s.lookupPatient(ctx, res, a)
		res.Appointment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment rescheduled",
		zap.String("appointment_id", res.Appointment.ID),
		zap.String("doctor_id", res.Appointment.DoctorID),
		zap.String("old_time_slot", oldSlot),
		zap.String("time_slot", res.Appointment.TimeSlot),
		zap.Time("scheduled_at", res.Appointment.ScheduledAt),
	)

	if patient != nil {
		s.notify(ctx, res, eventRescheduled, s.notifier.NotifyRescheduled, patient, doctor, res.Appointment)
	}
	return res, nil
}

// Complete отмечает приём состоявшимся; пул врача не меняется
func (s *SchedulingService) Complete(ctx context.Context, appointmentID, notes string) (res *Result, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("complete", err, time.Since(start)) }(time.Now())

	res = &Result{}
	err = s.withAppointment(ctx, appointmentID, func(a *model.Appointment) error {
		next, err := model.NextStatus(a.Status, model.ActionComplete)
		if err != nil {
			return err
		}

		a.Status = next
		a.Notes = notes
		a.UpdatedAt = s.now()
		if err := s.appointments.Save(ctx, a); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}

		res.Appointment = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment completed", zap.String("appointment_id", res.Appointment.ID))
	return res, nil
}

// MarkNoShow отмечает неявку и освобождает диапазон
func (s *SchedulingService) MarkNoShow(ctx context.Context, appointmentID string) (res *Result, err error) {
	defer func(start time.Time) { s.metrics.ObserveOperation("no_show", err, time.Since(start)) }(time.Now())

	res = &Result{}
	err = s.withAppointment(ctx, appointmentID, func(a *model.Appointment) error {
		_, err := s.closeAndRelease(ctx, res, a, model.ActionNoShow)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointment marked as no-show",
		zap.String("appointment_id", res.Appointment.ID),
		zap.String("time_slot", res.Appointment.TimeSlot),
	)
	return res, nil
}

// closeAndRelease переводит запись в конечный статус и возвращает её диапазон
// в пул. Отсутствующий врач даёт предупреждение, а не ошибку.
func (s *SchedulingService) closeAndRelease(ctx context.Context, res *Result, a *model.Appointment, action model.Action) (*model.Doctor, error) {
	next, err := model.NextStatus(a.Status, action)
	if err != nil {
		return nil, err
	}

	snapshot := a.Clone()
	now := s.now()

	a.Status = next
	a.UpdatedAt = now
	if err := s.appointments.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save appointment: %w", err)
	}
	res.Appointment = a

	doctor, err := s.doctors.FindByID(ctx, a.DoctorID)
	if err != nil {
		s.restore(ctx, snapshot)
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if doctor == nil {
		res.warn(s.logger, fmt.Sprintf("Doctor not found with ID: %s; time slot %s was not returned to the pool", a.DoctorID, a.TimeSlot),
			zap.String("appointment_id", a.ID))
		return nil, nil
	}

	if !doctor.AddSlot(a.TimeSlot) {
		res.warn(s.logger, fmt.Sprintf("Time slot %s is already available for doctor %s", a.TimeSlot, doctor.ID),
			zap.String("appointment_id", a.ID))
		return doctor, nil
	}

	doctor.UpdatedAt = now
	if err := s.doctors.Save(ctx, doctor); err != nil {
		s.restore(ctx, snapshot)
		return nil, fmt.Errorf("save doctor: %w", err)
	}

	return doctor, nil
}

// returnOldSlot кладёт прежний диапазон обратно без проверки членства в пуле
func (s *SchedulingService) returnOldSlot(res *Result, doctor *model.Doctor, oldSlot, appointmentID string) {
	if _, err := timeslot.ParseRange(oldSlot); err != nil {
		res.warn(s.logger, fmt.Sprintf("Previous time slot %q is not a valid range and was not returned to the pool", oldSlot),
			zap.String("appointment_id", appointmentID))
		return
	}
	if !doctor.AddSlot(oldSlot) {
		res.warn(s.logger, fmt.Sprintf("Time slot %s is already available for doctor %s", oldSlot, doctor.ID),
			zap.String("appointment_id", appointmentID))
	}
}

// Get возвращает запись по ID
func (s *SchedulingService) Get(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	id := strings.TrimSpace(appointmentID)
	if id == "" {
		return nil, model.InvalidInput("Appointment ID is required")
	}

	a, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if a == nil {
		return nil, model.NotFound("Appointment", id)
	}
	return a, nil
}

func (s *SchedulingService) ListByPatient(ctx context.Context, patientID string) ([]*model.Appointment, error) {
	return s.appointments.FindByPatientID(ctx, strings.TrimSpace(patientID))
}

func (s *SchedulingService) ListByDoctor(ctx context.Context, doctorID string) ([]*model.Appointment, error) {
	return s.appointments.FindByDoctorID(ctx, strings.TrimSpace(doctorID))
}

func (s *SchedulingService) ListByStatus(ctx context.Context, status model.AppointmentStatus) ([]*model.Appointment, error) {
	if !status.IsValid() {
		return nil, model.InvalidInput("Unknown appointment status: %s", status)
	}
	return s.appointments.FindByStatus(ctx, status)
}

func (s *SchedulingService) ListByDate(ctx context.Context, day time.Time) ([]*model.Appointment, error) {
	return s.appointments.FindByDate(ctx, day)
}

func (s *SchedulingService) ListByDoctorAndDate(ctx context.Context, doctorID string, day time.Time) ([]*model.Appointment, error) {
	return s.appointments.FindByDoctorAndDate(ctx, strings.TrimSpace(doctorID), day)
}

func (s *SchedulingService) ListAll(ctx context.Context) ([]*model.Appointment, error) {
	return s.appointments.FindAll(ctx)
}

// AvailableSlots возвращает копию текущего пула врача
func (s *SchedulingService) AvailableSlots(ctx context.Context, doctorID string) ([]string, error) {
	doctor, err := s.findDoctor(ctx, strings.TrimSpace(doctorID))
	if err != nil {
		return nil, err
	}
	return doctor.Slots(), nil
}

// SendReminders напоминает о всех активных записях на день и возвращает
// число доставленных напоминаний. Каждая запись получает напоминание один раз:
// отметка ставится под блокировкой врача до отправки и снимается, если
// доставка не удалась. Ошибки отдельных доставок только логируются.
func (s *SchedulingService) SendReminders(ctx context.Context, day time.Time) (int, error) {
	// Один прогон на день среди всех экземпляров
	unlock, err := s.locker.Lock(ctx, reminderLockKey(day))
	if err != nil {
		return 0, fmt.Errorf("lock reminders: %w", err)
	}
	defer unlock()

	appointments, err := s.appointments.FindByDate(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("get appointments by date: %w", err)
	}

	doctors := make(map[string]*model.Doctor)
	sent := 0
	for _, a := range appointments {
		if !a.Status.IsUpcoming() || a.RemindedAt != nil {
			continue
		}

		patient, err := s.patients.FindByID(ctx, a.PatientID)
		if err != nil || patient == nil {
			s.logger.Warn("Skipping reminder, patient unavailable",
				zap.String("appointment_id", a.ID), zap.String("patient_id", a.PatientID), zap.Error(err))
			continue
		}

		doctor, ok := doctors[a.DoctorID]
		if !ok {
			doctor, err = s.doctors.FindByID(ctx, a.DoctorID)
			if err != nil || doctor == nil {
				s.logger.Warn("Skipping reminder, doctor unavailable",
					zap.String("appointment_id", a.ID), zap.String("doctor_id", a.DoctorID), zap.Error(err))
				continue
			}
			doctors[a.DoctorID] = doctor
		}

		claimed, err := s.claimReminder(ctx, a, day)
		if err != nil {
			s.logger.Warn("Failed to mark reminder", zap.String("appointment_id", a.ID), zap.Error(err))
			continue
		}
		if claimed == nil {
			continue
		}

		if err := s.notifier.NotifyReminder(ctx, patient, doctor, claimed); err != nil {
			s.metrics.NotificationFailed(eventReminder)
			s.logger.Warn("Failed to send reminder", zap.String("appointment_id", a.ID), zap.Error(err))
			s.unclaimReminder(ctx, claimed)
			continue
		}
		sent++
	}

	s.metrics.RemindersSent(sent)
	return sent, nil
}

// claimReminder перечитывает запись под блокировкой врача и ставит отметку.
// nil без ошибки: запись уже напомнена, перенесена на другой день или закрыта.
func (s *SchedulingService) claimReminder(ctx context.Context, a *model.Appointment, day time.Time) (*model.Appointment, error) {
	var claimed *model.Appointment
	err := s.withDoctorLock(ctx, a.DoctorID, func() error {
		current, err := s.appointments.FindByID(ctx, a.ID)
		if err != nil {
			return fmt.Errorf("get appointment: %w", err)
		}
		if current == nil || !current.Status.IsUpcoming() || current.RemindedAt != nil ||
			!model.SameDay(current.ScheduledAt, day) {
			return nil
		}

		now := s.now()
		current.RemindedAt = &now
		if err := s.appointments.Save(ctx, current); err != nil {
			return fmt.Errorf("save appointment: %w", err)
		}
		claimed = current
		return nil
	})
	return claimed, err
}

// unclaimReminder снимает отметку, чтобы следующий прогон повторил доставку
func (s *SchedulingService) unclaimReminder(ctx context.Context, a *model.Appointment) {
	err := s.withDoctorLock(ctx, a.DoctorID, func() error {
		current, err := s.appointments.FindByID(ctx, a.ID)
		if err != nil || current == nil || current.RemindedAt == nil {
			return err
		}
		current.RemindedAt = nil
		return s.appointments.Save(ctx, current)
	})
	if err != nil {
		s.logger.Error("Failed to clear reminder mark",
			zap.String("appointment_id", a.ID),
			zap.Error(err),
		)
	}
}

func reminderLockKey(day time.Time) string {
	return "reminders:" + day.Format(DateLayout)
}

// validateSchedule проверяет момент приёма и выражение времени
func (s *SchedulingService) validateSchedule(at time.Time, text string) (time.Time, timeslot.TimeOfDay, error) {
	if at.IsZero() {
		return time.Time{}, timeslot.TimeOfDay{}, model.InvalidInput("Appointment date and time is required")
	}

	at = model.TruncateToMinute(at)
	if at.Before(model.TruncateToMinute(s.now())) {
		return time.Time{}, timeslot.TimeOfDay{}, model.InvalidInput(
			"Invalid appointment date/time %s. Must be in the future.", at.Format(dateTimeLayout))
	}

	tod, err := timeslot.Parse(text)
	if err != nil {
		return time.Time{}, timeslot.TimeOfDay{}, model.InvalidInput(
			"Invalid time slot format: %s. Please use %s format.", text, timeslot.AcceptedFormats)
	}

	if s.enforceHours && !s.hours.Contains(tod) {
		return time.Time{}, timeslot.TimeOfDay{}, model.InvalidInput(
			"Time %s is outside business hours (%s)", tod.Format12Hour(), s.hours)
	}

	return at, tod, nil
}

func (s *SchedulingService) findDoctor(ctx context.Context, doctorID string) (*model.Doctor, error) {
	if doctorID == "" {
		return nil, model.InvalidInput("Doctor ID is required")
	}
	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if doctor == nil {
		return nil, model.NotFound("Doctor", doctorID)
	}
	return doctor, nil
}

func (s *SchedulingService) lookupPatient(ctx context.Context, res *Result, a *model.Appointment) *model.Patient {
	patient, err := s.patients.FindByID(ctx, a.PatientID)
	if err != nil {
		res.warn(s.logger, fmt.Sprintf("Could not load patient %s for notification", a.PatientID),
			zap.String("appointment_id", a.ID), zap.Error(err))
		return nil
	}
	if patient == nil {
		res.warn(s.logger, fmt.Sprintf("Patient not found with ID: %s", a.PatientID),
			zap.String("appointment_id", a.ID))
	}
	return patient
}

func (s *SchedulingService) checkConflict(ctx context.Context, doctorID string, at time.Time, excludeID string) error {
	exists, err := s.appointments.ExistsActiveAt(ctx, doctorID, at, excludeID)
	if err != nil {
		return fmt.Errorf("check conflict: %w", err)
	}
	if exists {
		return conflict(doctorID, at)
	}
	return nil
}

// saveAppointment переводит нарушение уникального индекса в Conflict
func (s *SchedulingService) saveAppointment(ctx context.Context, a *model.Appointment, doctorID string, at time.Time) error {
	if err := s.appointments.Save(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateActive) {
			return conflict(doctorID, at)
		}
		return fmt.Errorf("save appointment: %w", err)
	}
	return nil
}

// restore откатывает запись к снимку после неудачного сохранения врача
func (s *SchedulingService) restore(ctx context.Context, snapshot *model.Appointment) {
	if err := s.appointments.Save(ctx, snapshot); err != nil {
		s.logger.Error("Failed to restore appointment",
			zap.String("appointment_id", snapshot.ID),
			zap.Error(err),
		)
	}
}

func (s *SchedulingService) withDoctorLock(ctx context.Context, doctorID string, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, doctorID)
	if err != nil {
		return fmt.Errorf("lock doctor %s: %w", doctorID, err)
	}
	defer unlock()
	return fn()
}

// withAppointment находит запись, берёт блокировку её врача и перечитывает
// запись уже под блокировкой.
func (s *SchedulingService) withAppointment(ctx context.Context, appointmentID string, fn func(a *model.Appointment) error) error {
	found, err := s.Get(ctx, appointmentID)
	if err != nil {
		return err
	}

	return s.withDoctorLock(ctx, found.DoctorID, func() error {
		current, err := s.Get(ctx, found.ID)
		if err != nil {
			return err
		}
		return fn(current)
	})
}

func (s *SchedulingService) notify(ctx context.Context, res *Result, event string, send notifyFunc, p *model.Patient, d *model.Doctor, a *model.Appointment) {
	err := send(ctx, p, d, a)
	if err == nil {
		return
	}

	s.metrics.NotificationFailed(event)
	res.warn(s.logger, fmt.Sprintf("Appointment %s: %s notification failed: %v", a.ID, event, err),
		zap.String("appointment_id", a.ID))
}

func slotUnavailable(requested string, doctor *model.Doctor) error {
	available := "none"
	if slots := doctor.Slots(); len(slots) > 0 {
		available = strings.Join(slots, ", ")
	}
	return model.NewError(model.KindSlotUnavailable,
		"Time slot %s is not available for this doctor. Available slots: %s",
		strings.TrimSpace(requested), available)
}

func conflict(doctorID string, at time.Time) error {
	return model.NewError(model.KindConflict,
		"Doctor already has an active appointment at this time (doctor %s, %s)", doctorID, at.Format(dateTimeLayout))
}
