package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/lock"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/timeslot"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]?[0-9]{7,15}$`)
)

type DoctorInput struct {
	FirstName       string  `json:"firstName" validate:"name"`
	LastName        string  `json:"lastName" validate:"name"`
	Specialization  string  `json:"specialization"`
	Email           string  `json:"email" validate:"contact_email"`
	Phone           string  `json:"phone" validate:"phone"`
	LicenseNumber   string  `json:"licenseNumber" validate:"required"`
	ConsultationFee float64 `json:"consultationFee" validate:"gte=0"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experienceYears" validate:"gte=0,lte=60"`
}

// DoctorUpdate меняет карточку врача. Номер лицензии не меняется.
type DoctorUpdate struct {
	FirstName       string  `json:"firstName" validate:"name"`
	LastName        string  `json:"lastName" validate:"name"`
	Specialization  string  `json:"specialization"`
	Email           string  `json:"email" validate:"contact_email"`
	Phone           string  `json:"phone" validate:"phone"`
	ConsultationFee float64 `json:"consultationFee" validate:"gte=0"`
	Qualification   string  `json:"qualification"`
	ExperienceYears int     `json:"experienceYears" validate:"gte=0,lte=60"`
}

type PatientInput struct {
	FirstName   string     `json:"firstName" validate:"name"`
	LastName    string     `json:"lastName" validate:"name"`
	Email       string     `json:"email" validate:"contact_email"`
	Phone       string     `json:"phone" validate:"phone"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Address     string     `json:"address"`
}

// Сообщения об ошибках валидации по имени поля
var validationMessages = map[string]string{
	"FirstName":       "Invalid first name. Must be at least 2 characters.",
	"LastName":        "Invalid last name. Must be at least 2 characters.",
	"Email":           "Invalid email format.",
	"Phone":           "Invalid phone number format.",
	"LicenseNumber":   "License number is required.",
	"ConsultationFee": "Invalid consultation fee. Must be non-negative.",
	"ExperienceYears": "Invalid experience years. Must be between 0 and 60.",
}

// DirectoryService регистрирует врачей и пациентов и управляет пулами вручную
type DirectoryService struct {
	appointments AppointmentStore
	doctors      DoctorStore
	patients     PatientStore
	locker       lock.Locker
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

type fieldRule struct {
	tag   string
	check validator.Func
}

var contactRules = []fieldRule{
	{"name", func(fl validator.FieldLevel) bool {
		return len([]rune(strings.TrimSpace(fl.Field().String()))) >= 2
	}},
	{"contact_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}},
	{"phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}},
}

// NewDirectoryService shares locker with the scheduling service so manual
// pool edits are serialized with bookings.
func NewDirectoryService(
	appointments AppointmentStore,
	doctors DoctorStore,
	patients PatientStore,
	locker lock.Locker,
	validate *validator.Validate,
	logger *zap.Logger,
) (*DirectoryService, error) {
	if validate == nil {
		validate = validator.New()
	}
	if locker == nil {
		locker = lock.NewLocal()
	}

	if err := registerRules(validate, contactRules); err != nil {
		return nil, err
	}

	return &DirectoryService{
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		locker:       locker,
		validator:    validate,
		logger:       logger,
		now:          time.Now,
	}, nil
}

func registerRules(validate *validator.Validate, rules []fieldRule) error {
	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.check); err != nil {
			return fmt.Errorf("register %q validation: %w", r.tag, err)
		}
	}
	return nil
}

// RegisterDoctor создаёт врача с пулом по умолчанию
func (s *DirectoryService) RegisterDoctor(ctx context.Context, in DoctorInput) (*model.Doctor, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.LicenseNumber = strings.TrimSpace(in.LicenseNumber)

	if err := s.validate(in); err != nil {
		return nil, err
	}

	existing, err := s.doctors.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get doctor by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewError(model.KindConflict, "Doctor with this email already exists: %s", in.Email)
	}

	existing, err = s.doctors.FindByLicense(ctx, in.LicenseNumber)
	if err != nil {
		return nil, fmt.Errorf("get doctor by license: %w", err)
	}
	if existing != nil {
		return nil, model.NewError(model.KindConflict, "Doctor with this license number already exists: %s", in.LicenseNumber)
	}

	now := s.now()
	doctor := model.NewDoctor()
	doctor.FirstName = in.FirstName
	doctor.LastName = in.LastName
	doctor.Specialization = strings.TrimSpace(in.Specialization)
	doctor.Email = in.Email
	doctor.Phone = in.Phone
	doctor.LicenseNumber = in.LicenseNumber
	doctor.ConsultationFee = in.ConsultationFee
	doctor.Qualification = strings.TrimSpace(in.Qualification)
	doctor.ExperienceYears = in.ExperienceYears
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	if err := s.doctors.Save(ctx, doctor); err != nil {
		return nil, saveError("doctor", err)
	}

	s.logger.Info("Doctor registered",
		zap.String("doctor_id", doctor.ID),
		zap.String("name", doctor.FullName()),
		zap.String("specialization", doctor.Specialization),
	)

	return doctor, nil
}

// RegisterPatient создаёт пациента
func (s *DirectoryService) RegisterPatient(ctx context.Context, in PatientInput) (*model.Patient, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := s.validate(in); err != nil {
		return nil, err
	}
	if in.DateOfBirth != nil && in.DateOfBirth.After(s.now()) {
		return nil, model.InvalidInput("Invalid date of birth.")
	}

	existing, err := s.patients.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get patient by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewError(model.KindConflict, "Patient with this email already exists: %s", in.Email)
	}

	patient := &model.Patient{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		Phone:       in.Phone,
		DateOfBirth: in.DateOfBirth,
		Address:     strings.TrimSpace(in.Address),
		CreatedAt:   s.now(),
	}

	if err := s.patients.Save(ctx, patient); err != nil {
		return nil, saveError("patient", err)
	}

	s.logger.Info("Patient registered",
		zap.String("patient_id", patient.ID),
		zap.String("name", patient.FullName()),
	)

	return patient, nil
}

func (s *DirectoryService) GetDoctor(ctx context.Context, id string) (*model.Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.InvalidInput("Doctor ID is required")
	}
	doctor, err := s.doctors.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	if doctor == nil {
		return nil, model.NotFound("Doctor", id)
	}
	return doctor, nil
}

func (s *DirectoryService) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	return s.doctors.FindAll(ctx)
}

func (s *DirectoryService) GetPatient(ctx context.Context, id string) (*model.Patient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, model.InvalidInput("Patient ID is required")
	}
	patient, err := s.patients.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	if patient == nil {
		return nil, model.NotFound("Patient", id)
	}
	return patient, nil
}

func (s *DirectoryService) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	return s.patients.FindAll(ctx)
}

// SearchDoctors ищет по подстроке имени или фамилии и по специализации
func (s *DirectoryService) SearchDoctors(ctx context.Context, name, specialization string) ([]*model.Doctor, error) {
	doctors, err := s.doctors.Search(ctx, strings.TrimSpace(name), strings.TrimSpace(specialization))
	if err != nil {
		return nil, fmt.Errorf("search doctors: %w", err)
	}
	return doctors, nil
}

func (s *DirectoryService) SearchPatients(ctx context.Context, name string) ([]*model.Patient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.InvalidInput("Search term cannot be empty")
	}
	patients, err := s.patients.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return patients, nil
}

// UpdateDoctor переписывает карточку врача, пул диапазонов сохраняется
func (s *DirectoryService) UpdateDoctor(ctx context.Context, id string, in DoctorUpdate) (*model.Doctor, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := s.validate(in); err != nil {
		return nil, err
	}

	unlock, err := s.lockDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	doctor, err := s.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.doctors.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get doctor by email: %w", err)
	}
	if existing != nil && existing.ID != doctor.ID {
		return nil, model.NewError(model.KindConflict, "Another doctor with this email already exists: %s", in.Email)
	}

	doctor.FirstName = in.FirstName
	doctor.LastName = in.LastName
	doctor.Specialization = strings.TrimSpace(in.Specialization)
	doctor.Email = in.Email
	doctor.Phone = in.Phone
	doctor.ConsultationFee = in.ConsultationFee
	doctor.Qualification = strings.TrimSpace(in.Qualification)
	doctor.ExperienceYears = in.ExperienceYears
	doctor.UpdatedAt = s.now()

	if err := s.doctors.Save(ctx, doctor); err != nil {
		return nil, saveError("doctor", err)
	}

	s.logger.Info("Doctor updated", zap.String("doctor_id", doctor.ID))
	return doctor, nil
}

// UpdatePatient переписывает карточку пациента; привязка Telegram остаётся
func (s *DirectoryService) UpdatePatient(ctx context.Context, id string, in PatientInput) (*model.Patient, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := s.validate(in); err != nil {
		return nil, err
	}
	if in.DateOfBirth != nil && in.DateOfBirth.After(s.now()) {
		return nil, model.InvalidInput("Invalid date of birth.")
	}

	unlock, err := s.lockPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.patients.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("get patient by email: %w", err)
	}
	if existing != nil && existing.ID != patient.ID {
		return nil, model.NewError(model.KindConflict, "Another patient with this email already exists: %s", in.Email)
	}

	patient.FirstName = in.FirstName
	patient.LastName = in.LastName
	patient.Email = in.Email
	patient.Phone = in.Phone
	patient.DateOfBirth = in.DateOfBirth
	patient.Address = strings.TrimSpace(in.Address)

	if err := s.patients.Save(ctx, patient); err != nil {
		return nil, saveError("patient", err)
	}

	s.logger.Info("Patient updated", zap.String("patient_id", patient.ID))
	return patient, nil
}

// DeleteDoctor удаляет врача вместе с закрытой историей записей.
// Пока есть предстоящие записи, возвращает Conflict.
func (s *DirectoryService) DeleteDoctor(ctx context.Context, id string) error {
	unlock, err := s.lockDoctor(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	doctor, err := s.GetDoctor(ctx, id)
	if err != nil {
		return err
	}

	history, err := s.appointments.FindByDoctorID(ctx, doctor.ID)
	if err != nil {
		return fmt.Errorf("get appointments by doctor: %w", err)
	}
	if n := countUpcoming(history); n > 0 {
		return model.NewError(model.KindConflict,
			"Doctor %s has %d upcoming appointment(s). Cancel or close them first.", doctor.ID, n)
	}

	if err := s.purgeHistory(ctx, history); err != nil {
		return err
	}
	if err := s.doctors.Delete(ctx, doctor.ID); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}

	s.logger.Info("Doctor deleted",
		zap.String("doctor_id", doctor.ID),
		zap.Int("history", len(history)),
	)
	return nil
}

func (s *DirectoryService) DeletePatient(ctx context.Context, id string) error {
	unlock, err := s.lockPatient(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return err
	}

	history, err := s.appointments.FindByPatientID(ctx, patient.ID)
	if err != nil {
		return fmt.Errorf("get appointments by patient: %w", err)
	}
	if n := countUpcoming(history); n > 0 {
		return model.NewError(model.KindConflict,
			"Patient %s has %d upcoming appointment(s). Cancel them first.", patient.ID, n)
	}

	if err := s.purgeHistory(ctx, history); err != nil {
		return err
	}
	if err := s.patients.Delete(ctx, patient.ID); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}

	s.logger.Info("Patient deleted",
		zap.String("patient_id", patient.ID),
		zap.Int("history", len(history)),
	)
	return nil
}

// purgeHistory удаляет закрытые записи, иначе внешний ключ не даст удалить карточку
func (s *DirectoryService) purgeHistory(ctx context.Context, history []*model.Appointment) error {
	for _, a := range history {
		if err := s.appointments.Delete(ctx, a.ID); err != nil {
			return fmt.Errorf("delete appointment %s: %w", a.ID, err)
		}
	}
	return nil
}

func countUpcoming(appointments []*model.Appointment) int {
	n := 0
	for _, a := range appointments {
		if a.Status.IsUpcoming() {
			n++
		}
	}
	return n
}

// AddSlot открывает диапазон врачу. false означает, что он уже был открыт.
func (s *DirectoryService) AddSlot(ctx context.Context, doctorID, token string) (bool, error) {
	return s.editPool(ctx, doctorID, token, (*model.Doctor).AddSlot, "Time slot already exists for doctor")
}

// RemoveSlot закрывает диапазон. false означает, что его не было в пуле.
func (s *DirectoryService) RemoveSlot(ctx context.Context, doctorID, token string) (bool, error) {
	return s.editPool(ctx, doctorID, token, (*model.Doctor).RemoveSlot, "Time slot not found for doctor")
}

func (s *DirectoryService) editPool(ctx context.Context, doctorID, token string, edit func(*model.Doctor, string) bool, noopMsg string) (bool, error) {
	token = strings.TrimSpace(token)
	r, err := timeslot.ParseRange(token)
	if err != nil {
		return false, model.InvalidInput("Invalid time slot format: %s. Use HH:MM-HH:MM", token)
	}
	// Храним только каноническую форму, иначе "9:00-10:00" и "09:00-10:00" разойдутся
	token = r.String()

	unlock, err := s.lockDoctor(ctx, doctorID)
	if err != nil {
		return false, err
	}
	defer unlock()

	doctor, err := s.GetDoctor(ctx, doctorID)
	if err != nil {
		return false, err
	}

	if !edit(doctor, token) {
		s.logger.Warn(noopMsg,
			zap.String("doctor_id", doctor.ID),
			zap.String("time_slot", token),
		)
		return false, nil
	}

	doctor.UpdatedAt = s.now()
	if err := s.doctors.Save(ctx, doctor); err != nil {
		return false, fmt.Errorf("save doctor: %w", err)
	}

	s.logger.Info("Doctor slot pool changed",
		zap.String("doctor_id", doctor.ID),
		zap.String("time_slot", token),
		zap.Strings("slots", doctor.Slots()),
	)
	return true, nil
}

// LinkTelegram привязывает чат к пациенту. Email из карточки пациента
// подтверждает личность; чужую привязку молча не перезаписываем.
func (s *DirectoryService) LinkTelegram(ctx context.Context, patientID, email string, chatID int64) (*model.Patient, error) {
	if chatID == 0 {
		return nil, model.InvalidInput("Telegram chat ID is required")
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, model.InvalidInput("Email on file is required to link Telegram")
	}

	unlock, err := s.lockPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	patient, err := s.GetPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Email == "" || !strings.EqualFold(patient.Email, email) {
		s.logger.Warn("Telegram link rejected, email mismatch",
			zap.String("patient_id", patient.ID),
			zap.Int64("chat_id", chatID),
		)
		return nil, model.InvalidInput("Patient ID and email do not match")
	}

	if patient.TelegramChatID == chatID {
		return patient, nil
	}
	if patient.TelegramChatID != 0 {
		return nil, model.NewError(model.KindConflict,
			"Patient %s is already linked to another Telegram chat. Send /unlink from that chat first.", patient.ID)
	}

	other, err := s.patients.FindByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get patient by telegram chat: %w", err)
	}
	if other != nil {
		return nil, model.NewError(model.KindConflict,
			"This chat is already linked to patient %s. Send /unlink first.", other.ID)
	}

	patient.TelegramChatID = chatID
	if err := s.patients.Save(ctx, patient); err != nil {
		return nil, saveError("patient", err)
	}

	s.logger.Info("Telegram linked",
		zap.String("patient_id", patient.ID),
		zap.Int64("chat_id", chatID),
	)
	return patient, nil
}

// UnlinkTelegram снимает привязку чата. Уведомления в чат прекращаются.
func (s *DirectoryService) UnlinkTelegram(ctx context.Context, chatID int64) (*model.Patient, error) {
	linked, err := s.PatientByTelegram(ctx, chatID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockPatient(ctx, linked.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	patient, err := s.GetPatient(ctx, linked.ID)
	if err != nil {
		return nil, err
	}
	if patient.TelegramChatID != chatID {
		return nil, model.NotFound("Patient", fmt.Sprintf("telegram chat %d", chatID))
	}

	patient.TelegramChatID = 0
	if err := s.patients.Save(ctx, patient); err != nil {
		return nil, saveError("patient", err)
	}

	s.logger.Info("Telegram unlinked",
		zap.String("patient_id", patient.ID),
		zap.Int64("chat_id", chatID),
	)
	return patient, nil
}

// PatientByTelegram возвращает пациента, привязанного к чату, или NotFound
func (s *DirectoryService) PatientByTelegram(ctx context.Context, chatID int64) (*model.Patient, error) {
	patient, err := s.patients.FindByTelegramChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get patient by telegram chat: %w", err)
	}
	if patient == nil {
		return nil, model.NotFound("Patient", fmt.Sprintf("telegram chat %d", chatID))
	}
	return patient, nil
}

// lockDoctor берёт тот же ключ, что и бронирование
func (s *DirectoryService) lockDoctor(ctx context.Context, doctorID string) (func(), error) {
	doctorID = strings.TrimSpace(doctorID)
	unlock, err := s.locker.Lock(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("lock doctor %s: %w", doctorID, err)
	}
	return unlock, nil
}

func (s *DirectoryService) lockPatient(ctx context.Context, patientID string) (func(), error) {
	patientID = strings.TrimSpace(patientID)
	unlock, err := s.locker.Lock(ctx, "patient:"+patientID)
	if err != nil {
		return nil, fmt.Errorf("lock patient %s: %w", patientID, err)
	}
	return unlock, nil
}

// saveError: гонку двух регистраций ловит уникальный индекс
func saveError(entity string, err error) error {
	if errors.Is(err, repository.ErrDuplicateContact) {
		return model.NewError(model.KindConflict, "Another %s with the same email, license or Telegram chat already exists", entity)
	}
	return fmt.Errorf("save %s: %w", entity, err)
}

// validate превращает первую ошибку валидатора в InvalidInput
func (s *DirectoryService) validate(in interface{}) error {
	err := s.validator.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := validationMessages[fieldErrs[0].StructField()]; ok {
			return model.InvalidInput("%s", msg)
		}
		return model.InvalidInput("Invalid %s", fieldErrs[0].Field())
	}
	return model.InvalidInput("invalid payload: %v", err)
}
