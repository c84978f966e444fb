package model

import (
	"sort"
	"time"
)

// DefaultSlots выдаются каждому новому врачу
var DefaultSlots = []string{
	"09:00-10:00", "10:00-11:00", "11:00-12:00",
	"14:00-15:00", "15:00-16:00", "16:00-17:00",
}

type Doctor struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Specialization  string    `json:"specialization"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	LicenseNumber   string    `json:"license_number"`
	ConsultationFee float64   `json:"consultation_fee"`
	Qualification   string    `json:"qualification"`
	ExperienceYears int       `json:"experience_years"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Открытые диапазоны врача. Меняется только через AddSlot/RemoveSlot.
	slots map[string]struct{}
}

// NewDoctor returns a doctor with the default slot pool.
func NewDoctor() *Doctor {
	d := &Doctor{}
	d.SetSlots(DefaultSlots)
	return d
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}

// AddSlot reports whether token was newly added.
func (d *Doctor) AddSlot(token string) bool {
	if d.slots == nil {
		d.slots = make(map[string]struct{})
	}
	if _, exists := d.slots[token]; exists {
		return false
	}
	d.slots[token] = struct{}{}
	return true
}

// RemoveSlot reports whether token was present.
func (d *Doctor) RemoveSlot(token string) bool {
	if _, exists := d.slots[token]; !exists {
		return false
	}
	delete(d.slots, token)
	return true
}

func (d *Doctor) HasSlot(token string) bool {
	_, exists := d.slots[token]
	return exists
}

// Slots возвращает отсортированную копию пула
func (d *Doctor) Slots() []string {
	out := make([]string, 0, len(d.slots))
	for token := range d.slots {
		out = append(out, token)
	}
	sort.Strings(out)
	return out
}

// SetSlots replaces the pool; used when loading a doctor from storage.
func (d *Doctor) SetSlots(tokens []string) {
	d.slots = make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		d.slots[token] = struct{}{}
	}
}

// Clone copies the doctor including its pool.
func (d *Doctor) Clone() *Doctor {
	if d == nil {
		return nil
	}
	cp := *d
	cp.SetSlots(d.Slots())
	return &cp
}
