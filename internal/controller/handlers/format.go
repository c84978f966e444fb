package handlers

import (
	"fmt"
	"strings"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
)

const displayLayout = "Mon, 02 Jan 2006 15:04"

// StatusDisplay содержит emoji и текст для отображения статуса
type StatusDisplay struct {
	Emoji string
	Text  string
}

func GetStatusDisplay(status model.AppointmentStatus) StatusDisplay {
	displays := map[model.AppointmentStatus]string{
		model.StatusScheduled:   "🗓",
		model.StatusConfirmed:   "✅",
		model.StatusRescheduled: "🔁",
		model.StatusCompleted:   "✔️",
		model.StatusCancelled:   "❌",
		model.StatusNoShow:      "🚷",
	}

	if emoji, ok := displays[status]; ok {
		return StatusDisplay{Emoji: emoji, Text: status.DisplayName()}
	}
	return StatusDisplay{"❓", "Unknown"}
}

// FormatAppointment форматирует запись для отображения
func FormatAppointment(a *model.Appointment) string {
	display := GetStatusDisplay(a.Status)

	var b strings.Builder
	fmt.Fprintf(&b, "%s Appointment %s\n\n", display.Emoji, a.ID)
	fmt.Fprintf(&b, "👨‍⚕️ Doctor: %s\n", a.DoctorID)
	fmt.Fprintf(&b, "🧑 Patient: %s\n", a.PatientID)
	fmt.Fprintf(&b, "📅 When: %s\n", a.ScheduledAt.Format(displayLayout))
	fmt.Fprintf(&b, "⏰ Slot: %s\n", a.TimeSlot)
	fmt.Fprintf(&b, "📊 Status: %s", display.Text)
	if a.Notes != "" {
		fmt.Fprintf(&b, "\n📝 Notes: %s", a.Notes)
	}
	return b.String()
}

// FormatAppointmentList одна строка на запись
func FormatAppointmentList(list []*model.Appointment) string {
	if len(list) == 0 {
		return "📭 You have no appointments yet."
	}

	var b strings.Builder
	b.WriteString("📋 Your appointments:\n")
	for _, a := range list {
		display := GetStatusDisplay(a.Status)
		fmt.Fprintf(&b, "\n%s %s  %s  %s (%s)", display.Emoji, a.ID, a.ScheduledAt.Format(displayLayout), a.DoctorID, display.Text)
	}
	return b.String()
}

func FormatSlots(doctorID string, slots []string) string {
	if len(slots) == 0 {
		return fmt.Sprintf("😔 Doctor %s has no open time slots.", doctorID)
	}
	return fmt.Sprintf("🟢 Open time slots for doctor %s:\n%s", doctorID, strings.Join(slots, "\n"))
}

// withWarnings дописывает мягкие предупреждения операции
func withWarnings(text string, warnings []string) string {
	if len(warnings) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n")
	for _, w := range warnings {
		b.WriteString("\n⚠️ ")
		b.WriteString(w)
	}
	return b.String()
}
