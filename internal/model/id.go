package model

import (
	"strings"

	"github.com/google/uuid"
)

// Префиксы идентификаторов
const (
	AppointmentIDPrefix = "A"
	DoctorIDPrefix      = "D"
	PatientIDPrefix     = "P"
)

// NewID returns prefix followed by eight upper-case hex characters.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(raw[:8])
}
