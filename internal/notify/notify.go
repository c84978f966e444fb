// Package notify delivers appointment notifications to patients.
package notify

import (
	"fmt"
	"strings"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
)

const dateTimeLayout = "2006-01-02 15:04"

// Event is the kind of notification being sent.
type Event string

const (
	EventBooked      Event = "booked"
	EventCancelled   Event = "cancelled"
	EventRescheduled Event = "rescheduled"
	EventReminder    Event = "reminder"
)

// Message is a rendered notification.
type Message struct {
	Event   Event
	Subject string
	Body    string
}

// Compose renders the message for event.
func Compose(event Event, p *model.Patient, d *model.Doctor, a *model.Appointment) Message {
	var b strings.Builder
	when := a.ScheduledAt.Format(dateTimeLayout)

	fmt.Fprintf(&b, "Dear %s,\n\n", p.FirstName)

	msg := Message{Event: event}
	switch event {
	case EventBooked:
		msg.Subject = "Appointment Confirmation - " + a.ID
		b.WriteString("Your appointment has been successfully scheduled:\n\n")
		fmt.Fprintf(&b, "Date & Time: %s\n", when)
		fmt.Fprintf(&b, "Doctor: %s\n", d.FullName())
		fmt.Fprintf(&b, "Specialization: %s\n", d.Specialization)
		fmt.Fprintf(&b, "Consultation Fee: %.2f\n", d.ConsultationFee)
		fmt.Fprintf(&b, "Contact: %s\n\n", d.Phone)
		b.WriteString("Please arrive 15 minutes before your scheduled time.\n")
		b.WriteString("Bring a valid ID and any relevant medical records.")
	case EventCancelled:
		msg.Subject = "Appointment Cancelled - " + a.ID
		b.WriteString("Your appointment has been cancelled:\n\n")
		fmt.Fprintf(&b, "Original Date & Time: %s\n", when)
		fmt.Fprintf(&b, "Doctor: %s\n\n", d.FullName())
		b.WriteString("If you need to reschedule, please contact us.")
	case EventRescheduled:
		msg.Subject = "Appointment Rescheduled - " + a.ID
		b.WriteString("Your appointment has been rescheduled:\n\n")
		fmt.Fprintf(&b, "New Date & Time: %s\n", when)
		fmt.Fprintf(&b, "Doctor: %s\n", d.FullName())
		fmt.Fprintf(&b, "Specialization: %s\n", d.Specialization)
		fmt.Fprintf(&b, "Consultation Fee: %.2f\n\n", d.ConsultationFee)
		b.WriteString("Please arrive 15 minutes before your new scheduled time.")
	case EventReminder:
		msg.Subject = "Appointment Reminder - Tomorrow"
		b.WriteString("This is a reminder of your upcoming appointment:\n\n")
		fmt.Fprintf(&b, "Date & Time: %s\n", when)
		fmt.Fprintf(&b, "Doctor: %s\n", d.FullName())
		fmt.Fprintf(&b, "Specialization: %s\n\n", d.Specialization)
		b.WriteString("Please arrive 15 minutes early with valid ID.")
	}

	msg.Body = b.String()
	return msg
}
