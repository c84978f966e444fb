package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/metrics"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Scheduling is the slice of the scheduling engine exposed over HTTP.
type Scheduling interface {
	Book(ctx context.Context, req service.BookRequest) (*service.Result, error)
	Cancel(ctx context.Context, appointmentID string) (*service.Result, error)
	Reschedule(ctx context.Context, appointmentID string, req service.RescheduleRequest) (*service.Result, error)
	Complete(ctx context.Context, appointmentID, notes string) (*service.Result, error)
	MarkNoShow(ctx context.Context, appointmentID string) (*service.Result, error)
	Get(ctx context.Context, appointmentID string) (*model.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*model.Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*model.Appointment, error)
	ListByStatus(ctx context.Context, status model.AppointmentStatus) ([]*model.Appointment, error)
	ListByDate(ctx context.Context, day time.Time) ([]*model.Appointment, error)
	ListByDoctorAndDate(ctx context.Context, doctorID string, day time.Time) ([]*model.Appointment, error)
	ListAll(ctx context.Context) ([]*model.Appointment, error)
	AvailableSlots(ctx context.Context, doctorID string) ([]string, error)
}

type Directory interface {
	RegisterDoctor(ctx context.Context, in service.DoctorInput) (*model.Doctor, error)
	RegisterPatient(ctx context.Context, in service.PatientInput) (*model.Patient, error)
	GetDoctor(ctx context.Context, id string) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]*model.Doctor, error)
	GetPatient(ctx context.Context, id string) (*model.Patient, error)
	ListPatients(ctx context.Context) ([]*model.Patient, error)
	SearchDoctors(ctx context.Context, name, specialization string) ([]*model.Doctor, error)
	SearchPatients(ctx context.Context, name string) ([]*model.Patient, error)
	UpdateDoctor(ctx context.Context, id string, in service.DoctorUpdate) (*model.Doctor, error)
	UpdatePatient(ctx context.Context, id string, in service.PatientInput) (*model.Patient, error)
	DeleteDoctor(ctx context.Context, id string) error
	DeletePatient(ctx context.Context, id string) error
	AddSlot(ctx context.Context, doctorID, token string) (bool, error)
	RemoveSlot(ctx context.Context, doctorID, token string) (bool, error)
}

type Reports interface {
	Summary(ctx context.Context) (*service.Summary, error)
}

type Handler struct {
	scheduling Scheduling
	directory  Directory
	reports    Reports
	logger     *zap.Logger
}

func NewHandler(scheduling Scheduling, directory Directory, reports Reports, logger *zap.Logger) *Handler {
	return &Handler{
		scheduling: scheduling,
		directory:  directory,
		reports:    reports,
		logger:     logger,
	}
}

// NewRouter собирает gin.Engine со всеми маршрутами API.
// m может быть nil, тогда /metrics отвечает 503.
func NewRouter(h *Handler, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), observe(m))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", func(c *gin.Context) {
		if m == nil {
			c.Status(http.StatusServiceUnavailable)
			return
		}
		m.Handler().ServeHTTP(c.Writer, c.Request)
	})

	api := r.Group("/api/v1")

	appointments := api.Group("/appointments")
	appointments.POST("", h.bookAppointment)
	appointments.GET("", h.listAppointments)
	appointments.GET("/:id", h.getAppointment)
	appointments.POST("/:id/cancel", h.cancelAppointment)
	appointments.POST("/:id/reschedule", h.rescheduleAppointment)
	appointments.POST("/:id/complete", h.completeAppointment)
	appointments.POST("/:id/no-show", h.markNoShow)

	doctors := api.Group("/doctors")
	doctors.POST("", h.registerDoctor)
	doctors.GET("", h.listDoctors)
	doctors.GET("/:id", h.getDoctor)
	doctors.PUT("/:id", h.updateDoctor)
	doctors.DELETE("/:id", h.deleteDoctor)
	doctors.GET("/:id/slots", h.availableSlots)
	doctors.POST("/:id/slots", h.addSlot)
	doctors.DELETE("/:id/slots/:slot", h.removeSlot)

	patients := api.Group("/patients")
	patients.POST("", h.registerPatient)
	patients.GET("", h.listPatients)
	patients.GET("/:id", h.getPatient)
	patients.PUT("/:id", h.updatePatient)
	patients.DELETE("/:id", h.deletePatient)

	api.GET("/reports/summary", h.summary)

	return r
}

// observe пишет длительность запросов по шаблону маршрута, а не по сырому пути
func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
