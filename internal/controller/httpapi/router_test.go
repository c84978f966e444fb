package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/lock"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/metrics"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository/memory"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var clock = time.Date(2024, 12, 31, 12, 0, 0, 0, time.Local)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *ErrorBody      `json:"error"`
	Meta  *Meta           `json:"meta"`
}

type testServer struct {
	router  *gin.Engine
	metrics *metrics.Metrics
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	appointments := memory.NewAppointmentStore()
	doctors := memory.NewDoctorStore()
	patients := memory.NewPatientStore()

	d := &model.Doctor{ID: "D1", FirstName: "Asha", LastName: "Fernando"}
	d.SetSlots([]string{"09:00-10:00", "14:00-15:00"})
	require.NoError(t, doctors.Save(ctx, d))
	require.NoError(t, patients.Save(ctx, &model.Patient{ID: "P1", FirstName: "Nimal", LastName: "Perera", Email: "nimal@mail.lk"}))
	require.NoError(t, patients.Save(ctx, &model.Patient{ID: "P2", FirstName: "Kamal", LastName: "Silva", Email: "kamal@mail.lk"}))

	logger := zap.NewNop()
	m := metrics.New()
	locker := lock.NewLocal()

	scheduling := service.NewSchedulingService(appointments, doctors, patients, logger,
		service.WithLocker(locker),
		service.WithMetrics(m),
		service.WithClock(func() time.Time { return clock }),
	)
	directory, err := service.NewDirectoryService(appointments, doctors, patients, locker, validator.New(), logger)
	require.NoError(t, err)
	reports := service.NewReportService(appointments, doctors, patients, logger)

	return &testServer{
		router:  NewRouter(NewHandler(scheduling, directory, reports, logger), m, logger),
		metrics: m,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestBookAndCancelOverHTTP(t *testing.T) {
	s := newServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/appointments",
		`{"patientId":"P1","doctorId":"D1","date":"2025-01-01","time":"9:30 AM"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	booked := decode[model.Appointment](t, env.Data)
	assert.Equal(t, "09:00-10:00", booked.TimeSlot)
	assert.Equal(t, model.StatusScheduled, booked.Status)
	assert.Equal(t, 9, booked.ScheduledAt.Hour())
	assert.Equal(t, 30, booked.ScheduledAt.Minute())

	w, env = s.do(t, http.MethodGet, "/api/v1/doctors/D1/slots", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"14:00-15:00"}, decode[[]string](t, env.Data))

	w, env = s.do(t, http.MethodPost, "/api/v1/appointments/"+booked.ID+"/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusCancelled, decode[model.Appointment](t, env.Data).Status)

	_, env = s.do(t, http.MethodGet, "/api/v1/doctors/D1/slots", "")
	assert.Equal(t, []string{"09:00-10:00", "14:00-15:00"}, decode[[]string](t, env.Data))
}

func TestAppointmentLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/appointments",
		`{"patientId":"P1","doctorId":"D1","date":"2025-01-01","time":"09:30"}`)
	id := decode[model.Appointment](t, env.Data).ID

	w, env := s.do(t, http.MethodPost, "/api/v1/appointments/"+id+"/reschedule", `{"date":"2025-01-01","time":"14:15"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	moved := decode[model.Appointment](t, env.Data)
	assert.Equal(t, model.StatusRescheduled, moved.Status)
	assert.Equal(t, "14:00-15:00", moved.TimeSlot)

	w, env = s.do(t, http.MethodPost, "/api/v1/appointments/"+id+"/complete", `{"notes":"follow up in 2 weeks"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "follow up in 2 weeks", decode[model.Appointment](t, env.Data).Notes)

	w, env = s.do(t, http.MethodPost, "/api/v1/appointments/"+id+"/no-show", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_transition", env.Error.Code)
	assert.Equal(t, "Cannot mark as no-show appointment with status: Completed", env.Error.Message)

	w, env = s.do(t, http.MethodGet, "/api/v1/appointments?status=completed", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Appointment](t, env.Data), 1)

	w, env = s.do(t, http.MethodGet, "/api/v1/appointments?doctorId=D1&date=2025-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Appointment](t, env.Data), 1)

	w, env = s.do(t, http.MethodGet, "/api/v1/appointments?patientId=P2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", string(env.Data))
}

func TestErrorMapping(t *testing.T) {
	s := newServer(t)

	_, env := s.do(t, http.MethodPost, "/api/v1/appointments",
		`{"patientId":"P1","doctorId":"D1","date":"2025-01-01","time":"09:30"}`)
	cancelled := decode[model.Appointment](t, env.Data).ID
	s.do(t, http.MethodPost, "/api/v1/appointments/"+cancelled+"/cancel", "")
	s.do(t, http.MethodPost, "/api/v1/appointments",
		`{"patientId":"P1","doctorId":"D1","date":"2025-01-01","time":"14:30"}`)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   string
	}{
		{"malformed body", http.MethodPost, "/api/v1/appointments", `{"patientId":`, http.StatusBadRequest, "invalid_input"},
		{"bad date", http.MethodPost, "/api/v1/appointments", `{"patientId":"P1","doctorId":"D1","date":"01/01/2025","time":"09:30"}`, http.StatusBadRequest, "invalid_input"},
		{"bad time", http.MethodPost, "/api/v1/appointments", `{"patientId":"P1","doctorId":"D1","date":"2025-01-01","time":"9.30"}`, http.StatusBadRequest, "invalid_input"},
		{"past", http.MethodPost, "/api/v1/appointments", `{"patientId":"P1","doctorId":"D1","date":"2024-12-30","time":"09:30"}`, http.StatusBadRequest, "invalid_input"},
		{"unknown patient", http.MethodPost, "/api/v1/appointments", `{"patientId":"P9","doctorId":"D1","date":"2025-01-01","time":"09:30"}`, http.StatusNotFound, "not_found"},
		{"slot unavailable", http.MethodPost, "/api/v1/appointments", `{"patientId":"P2","doctorId":"D1","date":"2025-01-02","time":"16:00"}`, http.StatusConflict, "slot_unavailable"},
		{"conflict", http.MethodPost, "/api/v1/appointments", `{"patientId":"P2","doctorId":"D1","date":"2025-01-01","time":"14:30"}`, http.StatusConflict, "conflict"},
		{"cancel twice", http.MethodPost, "/api/v1/appointments/" + cancelled + "/cancel", "", http.StatusUnprocessableEntity, "invalid_transition"},
		{"unknown appointment", http.MethodGet, "/api/v1/appointments/A00000000", "", http.StatusNotFound, "not_found"},
		{"unknown status", http.MethodGet, "/api/v1/appointments?status=archived", "", http.StatusBadRequest, "invalid_input"},
		{"unknown doctor", http.MethodGet, "/api/v1/doctors/D404", "", http.StatusNotFound, "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := s.do(t, tt.method, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotEmpty(t, env.Error.Message)
		})
	}
}

func TestDoctorsAndPatientsOverHTTP(t *testing.T) {
	s := newServer(t)

	w, env := s.do(t, http.MethodPost, "/api/v1/doctors", `{
		"firstName":"Ruwan","lastName":"Jayasuriya","specialization":"Dermatology",
		"email":"ruwan@clinic.lk","phone":"+94771112222","licenseNumber":"SLMC-7",
		"consultationFee":3000,"experienceYears":8}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]interface{}](t, env.Data)
	id := created["id"].(string)
	assert.Len(t, created["available_slots"], len(model.DefaultSlots))

	w, env = s.do(t, http.MethodPost, "/api/v1/doctors/"+id+"/slots", `{"slot":"7:00 PM-8:00 PM"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[slotResult](t, env.Data)
	assert.True(t, added.Changed)
	assert.Contains(t, added.Slots, "19:00-20:00")

	w, env = s.do(t, http.MethodDelete, "/api/v1/doctors/"+id+"/slots/09:00-10:00", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode[slotResult](t, env.Data).Slots, "09:00-10:00")

	w, env = s.do(t, http.MethodDelete, "/api/v1/doctors/"+id+"/slots/09:00-10:00", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[slotResult](t, env.Data).Changed)

	w, env = s.do(t, http.MethodPost, "/api/v1/doctors", `{"firstName":"R","lastName":"J","email":"x@y.z","phone":"0771112222","licenseNumber":"L"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid first name. Must be at least 2 characters.", env.Error.Message)

	w, env = s.do(t, http.MethodPost, "/api/v1/patients", `{
		"firstName":"Sunil","lastName":"Dias","email":"sunil@mail.lk","phone":"0712345678",
		"dateOfBirth":"1985-03-02T00:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	patient := decode[model.Patient](t, env.Data)

	w, env = s.do(t, http.MethodGet, "/api/v1/patients/"+patient.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode[model.Patient](t, env.Data)
	assert.Equal(t, "Sunil Dias", fetched.FullName())

	w, env = s.do(t, http.MethodGet, "/api/v1/patients", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Patient](t, env.Data), 3)

	w, env = s.do(t, http.MethodGet, "/api/v1/doctors", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, env.Data), 2)
}

func TestDirectoryMaintenanceOverHTTP(t *testing.T) {
	s := newServer(t)

	w, env := s.do(t, http.MethodGet, "/api/v1/doctors?name=FERN", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, env.Data), 1)

	w, env = s.do(t, http.MethodGet, "/api/v1/doctors?specialization=neuro", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]interface{}](t, env.Data))

	w, env = s.do(t, http.MethodGet, "/api/v1/patients?name=silva", "")
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]model.Patient](t, env.Data)
	require.Len(t, found, 1)
	assert.Equal(t, "P2", found[0].ID)

	w, env = s.do(t, http.MethodGet, "/api/v1/patients?name=", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Search term cannot be empty", env.Error.Message)

	w, env = s.do(t, http.MethodPut, "/api/v1/doctors/D1", `{
		"firstName":"Asha","lastName":"Fernando","specialization":"Cardiology",
		"email":"asha@clinic.lk","phone":"+94771234567","consultationFee":2500,"experienceYears":12}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]interface{}](t, env.Data)
	assert.Equal(t, "Cardiology", updated["specialization"])
	assert.Len(t, updated["available_slots"], 2)

	w, env = s.do(t, http.MethodPut, "/api/v1/patients/P1", `{
		"firstName":"Nimal","lastName":"Perera","email":"kamal@mail.lk","phone":"0771234567"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Error.Code)

	w, _ = s.do(t, http.MethodPut, "/api/v1/patients/P1", `{
		"firstName":"Nimal","lastName":"Perera","email":"nimal@mail.lk","phone":"0771234567","address":"Kandy"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// пациент с предстоящей записью не удаляется
	s.do(t, http.MethodPost, "/api/v1/appointments", `{"patientId":"P1","doctorId":"D1","date":"2025-01-01","time":"09:30"}`)
	w, env = s.do(t, http.MethodDelete, "/api/v1/patients/P1", "")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", env.Error.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/v1/doctors/D1", "")
	require.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/v1/patients/P2", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(t, http.MethodGet, "/api/v1/patients/P2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(t, http.MethodDelete, "/api/v1/patients/P2", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSummaryOverHTTP(t *testing.T) {
	s := newServer(t)

	s.do(t, http.MethodPost, "/api/v1/appointments", `{"patientId":"P1","doctorId":"D1","date":"2025-01-01","time":"09:30"}`)

	w, env := s.do(t, http.MethodGet, "/api/v1/reports/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[service.Summary](t, env.Data)
	assert.Equal(t, 1, summary.Doctors)
	assert.Equal(t, 2, summary.Patients)
	assert.Equal(t, 1, summary.Appointments)
	assert.Equal(t, 1, summary.Upcoming)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t)

	w, _ := s.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	s.do(t, http.MethodGet, "/api/v1/appointments/A404", "")

	w, _ = s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `dcs_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
	assert.Contains(t, body, `dcs_http_requests_total{method="GET",path="/api/v1/appointments/:id",status="404"} 1`)
}

// brokenScheduling отдаёт инфраструктурную ошибку
type brokenScheduling struct {
	Scheduling
}

func (brokenScheduling) Get(context.Context, string) (*model.Appointment, error) {
	return nil, errors.New("get appointment: connection refused")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(NewHandler(brokenScheduling{}, nil, nil, zap.NewNop()), nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/A1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, w.Body.String(), codeInternal)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
