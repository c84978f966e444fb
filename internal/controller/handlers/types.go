package handlers

import (
	"context"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"go.uber.org/zap"
)

// Scheduling операции движка записи, доступные из бота
type Scheduling interface {
	Book(ctx context.Context, req service.BookRequest) (*service.Result, error)
	Cancel(ctx context.Context, appointmentID string) (*service.Result, error)
	Reschedule(ctx context.Context, appointmentID string, req service.RescheduleRequest) (*service.Result, error)
	Complete(ctx context.Context, appointmentID, notes string) (*service.Result, error)
	MarkNoShow(ctx context.Context, appointmentID string) (*service.Result, error)
	Get(ctx context.Context, appointmentID string) (*model.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*model.Appointment, error)
	AvailableSlots(ctx context.Context, doctorID string) ([]string, error)
}

type Directory interface {
	LinkTelegram(ctx context.Context, patientID, email string, chatID int64) (*model.Patient, error)
	UnlinkTelegram(ctx context.Context, chatID int64) (*model.Patient, error)
	PatientByTelegram(ctx context.Context, chatID int64) (*model.Patient, error)
}

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	scheduling Scheduling
	directory  Directory
	staff      map[int64]struct{}
	logger     *zap.Logger
}

// NewHandlers создаёт новый обработчик команд.
// staffChatIDs получают служебные команды и доступ ко всем записям.
func NewHandlers(scheduling Scheduling, directory Directory, staffChatIDs []int64, logger *zap.Logger) *Handlers {
	staff := make(map[int64]struct{}, len(staffChatIDs))
	for _, id := range staffChatIDs {
		staff[id] = struct{}{}
	}
	return &Handlers{
		scheduling: scheduling,
		directory:  directory,
		staff:      staff,
		logger:     logger,
	}
}
