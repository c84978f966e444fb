package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository"
)

// AppointmentStore хранит записи в памяти процесса. Наружу отдаются только копии.
type AppointmentStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Appointment
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{byID: make(map[string]*model.Appointment)}
}

// Save повторяет частичный уникальный индекс PostgreSQL:
// одна неотменённая запись на врача и момент времени.
func (s *AppointmentStore) Save(_ context.Context, a *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = model.NewID(model.AppointmentIDPrefix)
	}

	if a.Status != model.StatusCancelled {
		for id, other := range s.byID {
			if id != a.ID && other.DoctorID == a.DoctorID &&
				other.Status != model.StatusCancelled && other.ScheduledAt.Equal(a.ScheduledAt) {
				return fmt.Errorf("save appointment: %w", repository.ErrDuplicateActive)
			}
		}
	}

	s.byID[a.ID] = a.Clone()
	return nil
}

func (s *AppointmentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *AppointmentStore) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id].Clone(), nil
}

func (s *AppointmentStore) ExistsActiveAt(_ context.Context, doctorID string, at time.Time, excludeID string) (bool, error) {
	at = model.TruncateToMinute(at)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, a := range s.byID {
		if id == excludeID || a.DoctorID != doctorID || a.Status == model.StatusCancelled {
			continue
		}
		if a.ScheduledAt.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (s *AppointmentStore) FindByPatientID(_ context.Context, patientID string) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool { return a.PatientID == patientID }), nil
}

func (s *AppointmentStore) FindByDoctorID(_ context.Context, doctorID string) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool { return a.DoctorID == doctorID }), nil
}

func (s *AppointmentStore) FindByStatus(_ context.Context, status model.AppointmentStatus) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool { return a.Status == status }), nil
}

func (s *AppointmentStore) FindByDate(_ context.Context, day time.Time) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool { return model.SameDay(a.ScheduledAt, day) }), nil
}

func (s *AppointmentStore) FindByDoctorAndDate(_ context.Context, doctorID string, day time.Time) ([]*model.Appointment, error) {
	return s.filter(func(a *model.Appointment) bool {
		return a.DoctorID == doctorID && model.SameDay(a.ScheduledAt, day)
	}), nil
}

func (s *AppointmentStore) FindAll(_ context.Context) ([]*model.Appointment, error) {
	return s.filter(func(*model.Appointment) bool { return true }), nil
}

func (s *AppointmentStore) CountByStatus(_ context.Context) (map[model.AppointmentStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.AppointmentStatus]int)
	for _, a := range s.byID {
		counts[a.Status]++
	}
	return counts, nil
}

// filter возвращает копии, упорядоченные по времени приёма
func (s *AppointmentStore) filter(keep func(*model.Appointment) bool) []*model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Appointment
	for _, a := range s.byID {
		if keep(a) {
			out = append(out, a.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
