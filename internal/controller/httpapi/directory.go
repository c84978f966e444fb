package httpapi

import (
	"context"
	"net/http"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"github.com/gin-gonic/gin"
)

// doctorView добавляет к врачу текущий пул, который не сериализуется сам
type doctorView struct {
	*model.Doctor
	AvailableSlots []string `json:"available_slots"`
}

func viewDoctor(d *model.Doctor) doctorView {
	return doctorView{Doctor: d, AvailableSlots: d.Slots()}
}

type slotRequest struct {
	Slot string `json:"slot"`
}

type slotResult struct {
	DoctorID string   `json:"doctorId"`
	Slot     string   `json:"slot"`
	Changed  bool     `json:"changed"`
	Slots    []string `json:"slots"`
}

func (h *Handler) registerDoctor(c *gin.Context) {
	var in service.DoctorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "Invalid request body: %v", err)
		return
	}
	d, err := h.directory.RegisterDoctor(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, viewDoctor(d), nil)
}

// listDoctors: ?name= и ?specialization= сужают выборку
func (h *Handler) listDoctors(c *gin.Context) {
	ctx := c.Request.Context()
	name, byName := c.GetQuery("name")
	specialization, bySpecialization := c.GetQuery("specialization")

	var (
		doctors []*model.Doctor
		err     error
	)
	if byName || bySpecialization {
		doctors, err = h.directory.SearchDoctors(ctx, name, specialization)
	} else {
		doctors, err = h.directory.ListDoctors(ctx)
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	views := make([]doctorView, 0, len(doctors))
	for _, d := range doctors {
		views = append(views, viewDoctor(d))
	}
	respond(c, http.StatusOK, views, nil)
}

func (h *Handler) getDoctor(c *gin.Context) {
	d, err := h.directory.GetDoctor(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, viewDoctor(d), nil)
}

func (h *Handler) updateDoctor(c *gin.Context) {
	var in service.DoctorUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "Invalid request body: %v", err)
		return
	}
	d, err := h.directory.UpdateDoctor(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, viewDoctor(d), nil)
}

func (h *Handler) deleteDoctor(c *gin.Context) {
	if err := h.directory.DeleteDoctor(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) availableSlots(c *gin.Context) {
	slots, err := h.scheduling.AvailableSlots(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, slots, nil)
}

func (h *Handler) addSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "Invalid request body: %v", err)
		return
	}
	h.editSlot(c, req.Slot, h.directory.AddSlot)
}

func (h *Handler) removeSlot(c *gin.Context) {
	h.editSlot(c, c.Param("slot"), h.directory.RemoveSlot)
}

// editSlot отвечает 200 и при холостом изменении, Changed=false
func (h *Handler) editSlot(c *gin.Context, token string, edit func(ctx context.Context, doctorID, token string) (bool, error)) {
	ctx := c.Request.Context()
	doctorID := c.Param("id")

	changed, err := edit(ctx, doctorID, token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	slots, err := h.scheduling.AvailableSlots(ctx, doctorID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respond(c, http.StatusOK, slotResult{DoctorID: doctorID, Slot: token, Changed: changed, Slots: slots}, nil)
}

func (h *Handler) registerPatient(c *gin.Context) {
	var in service.PatientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "Invalid request body: %v", err)
		return
	}
	p, err := h.directory.RegisterPatient(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, p, nil)
}

func (h *Handler) listPatients(c *gin.Context) {
	var (
		patients []*model.Patient
		err      error
	)
	if name, ok := c.GetQuery("name"); ok {
		patients, err = h.directory.SearchPatients(c.Request.Context(), name)
	} else {
		patients, err = h.directory.ListPatients(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if patients == nil {
		patients = []*model.Patient{}
	}
	respond(c, http.StatusOK, patients, nil)
}

func (h *Handler) getPatient(c *gin.Context) {
	p, err := h.directory.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, p, nil)
}

func (h *Handler) updatePatient(c *gin.Context) {
	var in service.PatientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, "Invalid request body: %v", err)
		return
	}
	p, err := h.directory.UpdatePatient(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, p, nil)
}

func (h *Handler) deletePatient(c *gin.Context) {
	if err := h.directory.DeletePatient(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) summary(c *gin.Context) {
	s, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, s, nil)
}
