package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository"
)

// DoctorStore хранит врачей вместе с пулами диапазонов
type DoctorStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Doctor
}

func NewDoctorStore() *DoctorStore {
	return &DoctorStore{byID: make(map[string]*model.Doctor)}
}

// Save повторяет уникальные индексы таблицы doctors: email без учёта
// регистра и номер лицензии. Пустые значения не сравниваются.
func (s *DoctorStore) Save(_ context.Context, d *model.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.byID {
		if id == d.ID {
			continue
		}
		if d.Email != "" && strings.EqualFold(other.Email, d.Email) {
			return fmt.Errorf("save doctor: email %s: %w", d.Email, repository.ErrDuplicateContact)
		}
		if d.LicenseNumber != "" && other.LicenseNumber == d.LicenseNumber {
			return fmt.Errorf("save doctor: license %s: %w", d.LicenseNumber, repository.ErrDuplicateContact)
		}
	}

	if d.ID == "" {
		d.ID = model.NewID(model.DoctorIDPrefix)
	}
	s.byID[d.ID] = d.Clone()
	return nil
}

func (s *DoctorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *DoctorStore) FindByID(_ context.Context, id string) (*model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id].Clone(), nil
}

func (s *DoctorStore) FindByEmail(_ context.Context, email string) (*model.Doctor, error) {
	return s.find(func(d *model.Doctor) bool { return strings.EqualFold(d.Email, email) }), nil
}

func (s *DoctorStore) FindByLicense(_ context.Context, license string) (*model.Doctor, error) {
	return s.find(func(d *model.Doctor) bool { return d.LicenseNumber == license }), nil
}

func (s *DoctorStore) FindAll(ctx context.Context) ([]*model.Doctor, error) {
	return s.Search(ctx, "", "")
}

// Search ищет подстроку без учёта регистра; пустой фильтр не ограничивает
func (s *DoctorStore) Search(_ context.Context, name, specialization string) ([]*model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Doctor, 0, len(s.byID))
	for _, d := range s.byID {
		if !nameMatches(d.FirstName, d.LastName, name) || !containsFold(d.Specialization, specialization) {
			continue
		}
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return nameLess(out[i].LastName, out[i].FirstName, out[i].ID, out[j].LastName, out[j].FirstName, out[j].ID)
	})
	return out, nil
}

func (s *DoctorStore) find(match func(*model.Doctor) bool) *model.Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.byID {
		if match(d) {
			return d.Clone()
		}
	}
	return nil
}

// PatientStore хранит пациентов
type PatientStore struct {
	mu   sync.RWMutex
	byID map[string]*model.Patient
}

func NewPatientStore() *PatientStore {
	return &PatientStore{byID: make(map[string]*model.Patient)}
}

// Save: email и привязанный чат Telegram уникальны среди пациентов
func (s *PatientStore) Save(_ context.Context, p *model.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, other := range s.byID {
		if id == p.ID {
			continue
		}
		if p.Email != "" && strings.EqualFold(other.Email, p.Email) {
			return fmt.Errorf("save patient: email %s: %w", p.Email, repository.ErrDuplicateContact)
		}
		if p.TelegramChatID != 0 && other.TelegramChatID == p.TelegramChatID {
			return fmt.Errorf("save patient: telegram chat %d: %w", p.TelegramChatID, repository.ErrDuplicateContact)
		}
	}

	if p.ID == "" {
		p.ID = model.NewID(model.PatientIDPrefix)
	}
	s.byID[p.ID] = p.Clone()
	return nil
}

func (s *PatientStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	return nil
}

func (s *PatientStore) FindByID(_ context.Context, id string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id].Clone(), nil
}

func (s *PatientStore) FindByEmail(_ context.Context, email string) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.byID {
		if strings.EqualFold(p.Email, email) {
			return p.Clone(), nil
		}
	}
	return nil, nil
}

func (s *PatientStore) FindByTelegramChatID(_ context.Context, chatID int64) (*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *model.Patient
	for _, p := range s.byID {
		if chatID != 0 && p.TelegramChatID == chatID && (found == nil || p.ID < found.ID) {
			found = p
		}
	}
	return found.Clone(), nil
}

func (s *PatientStore) FindAll(ctx context.Context) ([]*model.Patient, error) {
	return s.SearchByName(ctx, "")
}

func (s *PatientStore) SearchByName(_ context.Context, name string) ([]*model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Patient, 0, len(s.byID))
	for _, p := range s.byID {
		if nameMatches(p.FirstName, p.LastName, name) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return nameLess(out[i].LastName, out[i].FirstName, out[i].ID, out[j].LastName, out[j].FirstName, out[j].ID)
	})
	return out, nil
}

// Тот же порядок, что и ORDER BY last_name, first_name, id
func nameLess(lastA, firstA, idA, lastB, firstB, idB string) bool {
	if lastA != lastB {
		return lastA < lastB
	}
	if firstA != firstB {
		return firstA < firstB
	}
	return idA < idB
}

func nameMatches(first, last, term string) bool {
	return containsFold(first, term) || containsFold(last, term)
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
