package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"go.uber.org/zap"
)

const (
	linkFirstText = "🔗 Link this chat to your patient record first: /link <patientID> <email>"
	staffOnlyText = "⛔ This command is for clinic staff only."
)

func (h *Handlers) isStaff(chatID int64) bool {
	_, ok := h.staff[chatID]
	return ok
}

// requirePatient проверяет что чат привязан к пациенту.
// Возвращает пациента и true если OK, иначе текст ответа и false.
func (h *Handlers) requirePatient(ctx context.Context, chatID int64) (*model.Patient, string, bool) {
	patient, err := h.directory.PatientByTelegram(ctx, chatID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, linkFirstText, false
		}
		return nil, h.fail("get linked patient", err), false
	}
	return patient, "", true
}

// requireStaff пропускает только чаты из STAFF_CHAT_IDS
func (h *Handlers) requireStaff(chatID int64, command string) (string, bool) {
	if h.isStaff(chatID) {
		return "", true
	}
	h.logger.Warn("Staff command refused",
		zap.Int64("chat_id", chatID),
		zap.String("command", command),
	)
	return staffOnlyText, false
}

// requirePatientID: пациент действует только от своего имени, персонал от любого
func (h *Handlers) requirePatientID(ctx context.Context, chatID int64, patientID string) (string, bool) {
	if h.isStaff(chatID) {
		return "", true
	}
	patient, reply, ok := h.requirePatient(ctx, chatID)
	if !ok {
		return reply, false
	}
	if strings.TrimSpace(patientID) != patient.ID {
		h.logger.Warn("Foreign patient refused",
			zap.Int64("chat_id", chatID),
			zap.String("patient_id", patientID),
		)
		return "⛔ You can only act for your own patient record (" + patient.ID + ").", false
	}
	return "", true
}

// requireAppointment открывает запись персоналу или её пациенту.
// Чужая запись выглядит как несуществующая.
func (h *Handlers) requireAppointment(ctx context.Context, chatID int64, appointmentID string) (*model.Appointment, string, bool) {
	var patient *model.Patient
	if !h.isStaff(chatID) {
		var (
			reply string
			ok    bool
		)
		patient, reply, ok = h.requirePatient(ctx, chatID)
		if !ok {
			return nil, reply, false
		}
	}

	a, err := h.scheduling.Get(ctx, appointmentID)
	if err != nil {
		return nil, h.fail("get appointment", err), false
	}

	if patient != nil && a.PatientID != patient.ID {
		h.logger.Warn("Foreign appointment refused",
			zap.Int64("chat_id", chatID),
			zap.String("appointment_id", a.ID),
		)
		return nil, ErrorMessage(model.NotFound("Appointment", strings.TrimSpace(appointmentID))), false
	}
	return a, "", true
}
