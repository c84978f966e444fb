package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"go.uber.org/zap"
)

// StatusCount is one row of the status breakdown.
type StatusCount struct {
	Status      model.AppointmentStatus `json:"status"`
	DisplayName string                  `json:"displayName"`
	Count       int                     `json:"count"`
}

// Summary сводка по системе для отчётов
type Summary struct {
	Doctors      int           `json:"doctors"`
	Patients     int           `json:"patients"`
	Appointments int           `json:"appointments"`
	Upcoming     int           `json:"upcoming"`
	ByStatus     []StatusCount `json:"byStatus"`
	GeneratedAt  time.Time     `json:"generatedAt"`
}

type ReportService struct {
	appointments AppointmentStore
	doctors      DoctorStore
	patients     PatientStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewReportService(appointments AppointmentStore, doctors DoctorStore, patients PatientStore, logger *zap.Logger) *ReportService {
	return &ReportService{
		appointments: appointments,
		doctors:      doctors,
		patients:     patients,
		logger:       logger,
		now:          time.Now,
	}
}

// Summary считает врачей, пациентов и записи по каждому статусу.
// Статусы без записей тоже попадают в отчёт с нулём.
func (s *ReportService) Summary(ctx context.Context) (*Summary, error) {
	doctors, err := s.doctors.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get doctors: %w", err)
	}

	patients, err := s.patients.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get patients: %w", err)
	}

	counts, err := s.appointments.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}

	summary := &Summary{
		Doctors:     len(doctors),
		Patients:    len(patients),
		ByStatus:    make([]StatusCount, 0, len(model.AllStatuses)),
		GeneratedAt: s.now(),
	}
	for _, status := range model.AllStatuses {
		n := counts[status]
		summary.Appointments += n
		if status.IsUpcoming() {
			summary.Upcoming += n
		}
		summary.ByStatus = append(summary.ByStatus, StatusCount{
			Status:      status,
			DisplayName: status.DisplayName(),
			Count:       n,
		})
	}

	s.logger.Debug("Summary generated",
		zap.Int("doctors", summary.Doctors),
		zap.Int("patients", summary.Patients),
		zap.Int("appointments", summary.Appointments),
	)

	return summary, nil
}
