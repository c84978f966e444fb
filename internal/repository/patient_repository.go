package repository

import (
	"context"
	"fmt"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const patientColumns = `id, first_name, last_name, email, phone, date_of_birth, address, telegram_chat_id, created_at`

type PatientRepository struct {
	*base.Repository
}

func NewPatientRepository(pool *pgxpool.Pool) *PatientRepository {
	return &PatientRepository{Repository: base.NewRepository(pool)}
}

// Save вставляет или обновляет пациента
func (r *PatientRepository) Save(ctx context.Context, p *model.Patient) error {
	if p.ID == "" {
		p.ID = model.NewID(model.PatientIDPrefix)
	}

	query := `
		INSERT INTO patients (` + patientColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			date_of_birth = EXCLUDED.date_of_birth,
			address = EXCLUDED.address,
			telegram_chat_id = EXCLUDED.telegram_chat_id
	`

	_, err := r.ExecAffected(
		ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.DateOfBirth,
		p.Address,
		p.TelegramChatID,
		p.CreatedAt,
	)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("save patient: %w", ErrDuplicateContact)
		}
		return fmt.Errorf("save patient: %w", err)
	}

	return nil
}

// Delete удаляет пациента; записи пациента должны быть удалены раньше
func (r *PatientRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.ExecAffected(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

// FindByID получает пациента по ID
func (r *PatientRepository) FindByID(ctx context.Context, id string) (*model.Patient, error) {
	return r.findOne(ctx, "get patient by id", `WHERE id = $1`, id)
}

func (r *PatientRepository) FindByEmail(ctx context.Context, email string) (*model.Patient, error) {
	return r.findOne(ctx, "get patient by email", `WHERE lower(email) = lower($1)`, email)
}

// FindByTelegramChatID находит пациента, привязавшего чат
func (r *PatientRepository) FindByTelegramChatID(ctx context.Context, chatID int64) (*model.Patient, error) {
	return r.findOne(ctx, "get patient by telegram chat", `WHERE telegram_chat_id = $1 ORDER BY id LIMIT 1`, chatID)
}

// FindAll получает всех пациентов
func (r *PatientRepository) FindAll(ctx context.Context) ([]*model.Patient, error) {
	return r.list(ctx, "get all patients", `ORDER BY last_name, first_name, id`)
}

func (r *PatientRepository) SearchByName(ctx context.Context, name string) ([]*model.Patient, error) {
	return r.list(ctx, "search patients", `
		WHERE first_name ILIKE $1 OR last_name ILIKE $1
		ORDER BY last_name, first_name, id`,
		base.ContainsPattern(name),
	)
}

func (r *PatientRepository) list(ctx context.Context, op, tail string, args ...interface{}) ([]*model.Patient, error) {
	rows, err := r.Query(ctx, `SELECT `+patientColumns+` FROM patients `+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var patients []*model.Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}

	return patients, rows.Err()
}

func (r *PatientRepository) findOne(ctx context.Context, op, where string, arg interface{}) (*model.Patient, error) {
	p, err := scanPatient(r.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients `+where, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func scanPatient(row pgx.Row) (*model.Patient, error) {
	var p model.Patient
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.DateOfBirth,
		&p.Address,
		&p.TelegramChatID,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.CreatedAt = base.LocalWallClock(p.CreatedAt)
	return &p, nil
}
