package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"github.com/gin-gonic/gin"
)

type bookRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM или HH:MM AM/PM
}

type rescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type completeRequest struct {
	Notes string `json:"notes"`
}

func (h *Handler) bookAppointment(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body: %v", err)
		return
	}

	at, err := service.ScheduleAt(req.Date, req.Time)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	res, err := h.scheduling.Book(c.Request.Context(), service.BookRequest{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: at,
		Time:        req.Time,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, res.Appointment, res.Warnings)
}

// listAppointments: doctorId+date, затем patientId, doctorId, status, date
func (h *Handler) listAppointments(c *gin.Context) {
	ctx := c.Request.Context()
	patientID := strings.TrimSpace(c.Query("patientId"))
	doctorID := strings.TrimSpace(c.Query("doctorId"))
	status := strings.TrimSpace(c.Query("status"))
	date := strings.TrimSpace(c.Query("date"))

	var day time.Time
	if date != "" {
		var err error
		day, err = time.ParseInLocation(service.DateLayout, date, time.Local)
		if err != nil {
			badRequest(c, h.logger, "Invalid date %s. Use YYYY-MM-DD format.", date)
			return
		}
	}

	var (
		list []*model.Appointment
		err  error
	)
	switch {
	case doctorID != "" && date != "":
		list, err = h.scheduling.ListByDoctorAndDate(ctx, doctorID, day)
	case patientID != "":
		list, err = h.scheduling.ListByPatient(ctx, patientID)
	case doctorID != "":
		list, err = h.scheduling.ListByDoctor(ctx, doctorID)
	case status != "":
		parsed, ok := model.ParseStatus(status)
		if !ok {
			parsed = model.AppointmentStatus(status)
		}
		list, err = h.scheduling.ListByStatus(ctx, parsed)
	case date != "":
		list, err = h.scheduling.ListByDate(ctx, day)
	default:
		list, err = h.scheduling.ListAll(ctx)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if list == nil {
		list = []*model.Appointment{}
	}
	respond(c, http.StatusOK, list, nil)
}

func (h *Handler) getAppointment(c *gin.Context) {
	a, err := h.scheduling.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, a, nil)
}

func (h *Handler) cancelAppointment(c *gin.Context) {
	h.result(c)(h.scheduling.Cancel(c.Request.Context(), c.Param("id")))
}

func (h *Handler) rescheduleAppointment(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body: %v", err)
		return
	}

	at, err := service.ScheduleAt(req.Date, req.Time)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.result(c)(h.scheduling.Reschedule(c.Request.Context(), c.Param("id"), service.RescheduleRequest{
		ScheduledAt: at,
		Time:        req.Time,
	}))
}

func (h *Handler) completeAppointment(c *gin.Context) {
	var req completeRequest
	// Тело необязательно
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, h.logger, "Invalid request body: %v", err)
			return
		}
	}
	h.result(c)(h.scheduling.Complete(c.Request.Context(), c.Param("id"), req.Notes))
}

func (h *Handler) markNoShow(c *gin.Context) {
	h.result(c)(h.scheduling.MarkNoShow(c.Request.Context(), c.Param("id")))
}

func (h *Handler) result(c *gin.Context) func(*service.Result, error) {
	return func(res *service.Result, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		respond(c, http.StatusOK, res.Appointment, res.Warnings)
	}
}
