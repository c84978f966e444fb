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

const doctorColumns = `id, first_name, last_name, specialization, email, phone, license_number,
	consultation_fee, qualification, experience_years, slots, created_at, updated_at`

type DoctorRepository struct {
	*base.Repository
}

func NewDoctorRepository(pool *pgxpool.Pool) *DoctorRepository {
	return &DoctorRepository{Repository: base.NewRepository(pool)}
}

// Save вставляет или обновляет врача вместе с его пулом диапазонов
func (r *DoctorRepository) Save(ctx context.Context, d *model.Doctor) error {
	if d.ID == "" {
		d.ID = model.NewID(model.DoctorIDPrefix)
	}

	query := `
		INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			specialization = EXCLUDED.specialization,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			license_number = EXCLUDED.license_number,
			consultation_fee = EXCLUDED.consultation_fee,
			qualification = EXCLUDED.qualification,
			experience_years = EXCLUDED.experience_years,
			slots = EXCLUDED.slots,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.ExecAffected(
		ctx, query,
		d.ID,
		d.FirstName,
		d.LastName,
		d.Specialization,
		d.Email,
		d.Phone,
		d.LicenseNumber,
		d.ConsultationFee,
		d.Qualification,
		d.ExperienceYears,
		d.Slots(),
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("save doctor: %w", ErrDuplicateContact)
		}
		return fmt.Errorf("save doctor: %w", err)
	}

	return nil
}

// Delete удаляет врача; записи к нему должны быть удалены раньше
func (r *DoctorRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM doctors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}

// FindByID получает врача по ID
func (r *DoctorRepository) FindByID(ctx context.Context, id string) (*model.Doctor, error) {
	return r.findOne(ctx, "get doctor by id", `WHERE id = $1`, id)
}

func (r *DoctorRepository) FindByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	return r.findOne(ctx, "get doctor by email", `WHERE lower(email) = lower($1)`, email)
}

func (r *DoctorRepository) FindByLicense(ctx context.Context, license string) (*model.Doctor, error) {
	return r.findOne(ctx, "get doctor by license", `WHERE license_number = $1`, license)
}

// FindAll получает всех врачей
func (r *DoctorRepository) FindAll(ctx context.Context) ([]*model.Doctor, error) {
	return r.list(ctx, "get all doctors", `ORDER BY last_name, first_name, id`)
}

// Search ищет по подстроке имени или фамилии и специализации без учёта регистра
func (r *DoctorRepository) Search(ctx context.Context, name, specialization string) ([]*model.Doctor, error) {
	return r.list(ctx, "search doctors", `
		WHERE (first_name ILIKE $1 OR last_name ILIKE $1) AND specialization ILIKE $2
		ORDER BY last_name, first_name, id`,
		base.ContainsPattern(name), base.ContainsPattern(specialization),
	)
}

func (r *DoctorRepository) list(ctx context.Context, op, tail string, args ...interface{}) ([]*model.Doctor, error) {
	rows, err := r.Query(ctx, `SELECT `+doctorColumns+` FROM doctors `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var doctors []*model.Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}

	return doctors, rows.Err()
}

func (r *DoctorRepository) findOne(ctx context.Context, op, where string, arg interface{}) (*model.Doctor, error) {
	d, err := scanDoctor(r.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors `+where, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

func scanDoctor(row pgx.Row) (*model.Doctor, error) {
	var (
		d         model.Doctor
		slots     []string
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(
		&d.ID,
		&d.FirstName,
		&d.LastName,
		&d.Specialization,
		&d.Email,
		&d.Phone,
		&d.LicenseNumber,
		&d.ConsultationFee,
		&d.Qualification,
		&d.ExperienceYears,
		&slots,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.SetSlots(slots)
	d.CreatedAt = base.LocalWallClock(createdAt)
	d.UpdatedAt = base.LocalWallClock(updatedAt)
	return &d, nil
}
