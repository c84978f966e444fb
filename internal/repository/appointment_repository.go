package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, patient_id, doctor_id, scheduled_at, time_slot, status, notes, reminded_at, created_at, updated_at`

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

// Save вставляет или обновляет запись. Пустой ID назначается при первом сохранении.
func (r *AppointmentRepository) Save(ctx context.Context, a *model.Appointment) error {
	if a.ID == "" {
		a.ID = model.NewID(model.AppointmentIDPrefix)
	}

	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			scheduled_at = EXCLUDED.scheduled_at,
			time_slot = EXCLUDED.time_slot,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes,
			reminded_at = EXCLUDED.reminded_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.ExecAffected(
		ctx, query,
		a.ID,
		a.PatientID,
		a.DoctorID,
		a.ScheduledAt,
		a.TimeSlot,
		a.Status,
		a.Notes,
		a.RemindedAt,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("save appointment: %w", ErrDuplicateActive)
		}
		return fmt.Errorf("save appointment: %w", err)
	}

	return nil
}

// Delete удаляет запись; используется только для компенсации неудачного бронирования
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// FindByID получает запись по ID
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	a, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return a, nil
}

// ExistsActiveAt проверяет, есть ли у врача неотменённая запись на этот момент
func (r *AppointmentRepository) ExistsActiveAt(ctx context.Context, doctorID string, at time.Time, excludeID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND scheduled_at = $2 AND status <> $3 AND id <> $4
		)
	`

	var exists bool
	err := r.QueryRow(ctx, query, doctorID, model.TruncateToMinute(at), model.StatusCancelled, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active appointment: %w", err)
	}

	return exists, nil
}

func (r *AppointmentRepository) FindByPatientID(ctx context.Context, patientID string) ([]*model.Appointment, error) {
	return r.list(ctx, "get appointments by patient", `WHERE patient_id = $1`, patientID)
}

func (r *AppointmentRepository) FindByDoctorID(ctx context.Context, doctorID string) ([]*model.Appointment, error) {
	return r.list(ctx, "get appointments by doctor", `WHERE doctor_id = $1`, doctorID)
}

func (r *AppointmentRepository) FindByStatus(ctx context.Context, status model.AppointmentStatus) ([]*model.Appointment, error) {
	return r.list(ctx, "get appointments by status", `WHERE status = $1`, status)
}

func (r *AppointmentRepository) FindByDate(ctx context.Context, day time.Time) ([]*model.Appointment, error) {
	from, to := base.DayBounds(day)
	return r.list(ctx, "get appointments by date", `WHERE scheduled_at >= $1 AND scheduled_at < $2`, from, to)
}

func (r *AppointmentRepository) FindByDoctorAndDate(ctx context.Context, doctorID string, day time.Time) ([]*model.Appointment, error) {
	from, to := base.DayBounds(day)
	return r.list(ctx, "get appointments by doctor and date",
		`WHERE doctor_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3`, doctorID, from, to)
}

func (r *AppointmentRepository) FindAll(ctx context.Context) ([]*model.Appointment, error) {
	return r.list(ctx, "get all appointments", "")
}

// CountByStatus возвращает количество записей по каждому статусу
func (r *AppointmentRepository) CountByStatus(ctx context.Context) (map[model.AppointmentStatus]int, error) {
	rows, err := r.Query(ctx, `SELECT status, COUNT(*) FROM appointments GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count appointments by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.AppointmentStatus]int)
	for rows.Next() {
		var (
			status model.AppointmentStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func (r *AppointmentRepository) list(ctx context.Context, op, where string, args ...interface{}) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ` + where + ` ORDER BY scheduled_at, id`

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return appointments, nil
}

func scanAppointment(row pgx.Row) (*model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&a.DoctorID,
		&a.ScheduledAt,
		&a.TimeSlot,
		&a.Status,
		&a.Notes,
		&a.RemindedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if a.RemindedAt != nil {
		at := base.LocalWallClock(*a.RemindedAt)
		a.RemindedAt = &at
	}

	a.ScheduledAt = base.LocalWallClock(a.ScheduledAt)
	a.CreatedAt = base.LocalWallClock(a.CreatedAt)
	a.UpdatedAt = base.LocalWallClock(a.UpdatedAt)
	return &a, nil
}
