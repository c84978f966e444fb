package handlers

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/lock"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/repository/memory"
	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	chatID    = int64(555)
	staffChat = int64(777)
	otherChat = int64(999)
)

var appointmentID = regexp.MustCompile(`A[0-9A-F]{8}`)

func newHandlers(t *testing.T) *Handlers {
	t.Helper()
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
	locker := lock.NewLocal()
	clock := time.Date(2024, 12, 31, 12, 0, 0, 0, time.Local)

	scheduling := service.NewSchedulingService(appointments, doctors, patients, logger,
		service.WithLocker(locker),
		service.WithClock(func() time.Time { return clock }),
	)
	directory, err := service.NewDirectoryService(appointments, doctors, patients, locker, validator.New(), logger)
	require.NoError(t, err)

	return NewHandlers(scheduling, directory, []int64{staffChat}, logger)
}

// linked возвращает обработчики, где chatID уже привязан к P1
func linked(t *testing.T) *Handlers {
	t.Helper()
	h := newHandlers(t)
	require.Contains(t, h.Execute(context.Background(), chatID, "/link P1 nimal@mail.lk"), "linked to Nimal Perera (P1)")
	return h
}

func TestParseCommand(t *testing.T) {
	cmd, ok := ParseCommand("/Book@ChannelBot  P1 D1 2025-01-01 9:30 AM")
	require.True(t, ok)
	assert.Equal(t, "book", cmd.Name)
	assert.Equal(t, []string{"P1", "D1", "2025-01-01", "9:30", "AM"}, cmd.Args)
	assert.Equal(t, "9:30 AM", cmd.rest(3))
	assert.Equal(t, "", cmd.rest(9))

	_, ok = ParseCommand("hello")
	assert.False(t, ok)
	_, ok = ParseCommand("   ")
	assert.False(t, ok)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "🔍 Doctor not found with ID: D9", ErrorMessage(model.NotFound("Doctor", "D9")))
	assert.Equal(t, "⛔ full", ErrorMessage(model.NewError(model.KindSlotUnavailable, "full")))
	assert.Equal(t, "🚫 nope", ErrorMessage(model.NewError(model.KindInvalidTransition, "nope")))
	assert.Equal(t, "❌ bad", ErrorMessage(model.InvalidInput("bad")))
	assert.Equal(t, genericError, ErrorMessage(errors.New("pool closed")))
}

func TestBookingFlow(t *testing.T) {
	h := linked(t)
	ctx := context.Background()

	reply := h.Execute(ctx, chatID, "/book P1 D1 2025-01-01 9:30 AM")
	assert.Contains(t, reply, "Appointment booked")
	assert.Contains(t, reply, "09:00-10:00")
	id := appointmentID.FindString(reply)
	require.NotEmpty(t, id)

	reply = h.Execute(ctx, chatID, "/slots D1")
	assert.Contains(t, reply, "14:00-15:00")
	assert.NotContains(t, reply, "09:00-10:00")

	reply = h.Execute(ctx, chatID, "/reschedule "+id+" 2025-01-01 14:45")
	assert.Contains(t, reply, "Appointment rescheduled")
	assert.Contains(t, reply, "Rescheduled")

	reply = h.Execute(ctx, chatID, "/complete "+id+" all good")
	assert.Equal(t, staffOnlyText, reply)

	reply = h.Execute(ctx, staffChat, "/complete "+id+" all good")
	assert.Contains(t, reply, "Notes: all good")

	reply = h.Execute(ctx, chatID, "/cancel "+id)
	assert.Equal(t, "🚫 Cannot cancel appointment with status: Completed", reply)

	reply = h.Execute(ctx, chatID, "/appointment "+id)
	assert.Contains(t, reply, "Completed")
}

func TestBookingErrors(t *testing.T) {
	h := linked(t)
	ctx := context.Background()

	assert.Contains(t, h.Execute(ctx, chatID, "/book P1 D1"), "Usage: /book")
	assert.Contains(t, h.Execute(ctx, chatID, "/book P1 D1 tomorrow 10:00"), "Invalid date tomorrow")
	assert.Contains(t, h.Execute(ctx, chatID, "/book P1 D1 2025-01-01 25:00"), "Invalid time slot format: 25:00")
	assert.Contains(t, h.Execute(ctx, chatID, "/book P1 D2 2025-01-01 10:00"), "Doctor not found with ID: D2")
	assert.Contains(t, h.Execute(ctx, chatID, "/book P1 D1 2025-01-01 12:00"), "⛔ Time slot 12:00 is not available")
	assert.Contains(t, h.Execute(ctx, staffChat, "/noshow A00000000"), "Appointment not found")
	assert.Contains(t, h.Execute(ctx, chatID, "/cancel A00000000"), "Appointment not found")
}

func TestLinkAndMyAppointments(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()

	assert.Equal(t, linkFirstText, h.Execute(ctx, chatID, "/myappointments"))

	assert.Contains(t, h.Execute(ctx, chatID, "/link P1"), "Usage: /link <patientID> <email>")
	assert.Contains(t, h.Execute(ctx, chatID, "/link P1 wrong@mail.lk"), "do not match")
	assert.Contains(t, h.Execute(ctx, chatID, "/link P1 NIMAL@mail.lk"), "linked to Nimal Perera (P1)")
	assert.Contains(t, h.Execute(ctx, chatID, "/myappointments"), "no appointments")

	h.Execute(ctx, chatID, "/book P1 D1 2025-01-01 14:00")
	reply := h.Execute(ctx, chatID, "/myappointments")
	assert.Contains(t, reply, "Your appointments")
	assert.Contains(t, reply, "D1")
}

func TestForeignChatCannotTakeOverAppointments(t *testing.T) {
	h := linked(t)
	ctx := context.Background()

	reply := h.Execute(ctx, chatID, "/book P1 D1 2025-01-01 9:30 AM")
	id := appointmentID.FindString(reply)
	require.NotEmpty(t, id)

	// без привязки чужой чат ничего не видит и не меняет
	assert.Equal(t, linkFirstText, h.Execute(ctx, otherChat, "/appointment "+id))
	assert.Equal(t, linkFirstText, h.Execute(ctx, otherChat, "/cancel "+id))

	// перехватить привязку без email нельзя, а с email нельзя перезаписать существующую
	assert.Contains(t, h.Execute(ctx, otherChat, "/link P1"), "Usage")
	assert.Contains(t, h.Execute(ctx, otherChat, "/link P1 nimal@mail.lk"), "already linked to another Telegram chat")

	// привязка к своему пациенту не открывает чужие записи
	assert.Contains(t, h.Execute(ctx, otherChat, "/link P2 kamal@mail.lk"), "linked to Kamal Silva (P2)")
	notFound := "🔍 Appointment not found with ID: " + id
	assert.Equal(t, notFound, h.Execute(ctx, otherChat, "/appointment "+id))
	assert.Equal(t, notFound, h.Execute(ctx, otherChat, "/cancel "+id))
	assert.Equal(t, notFound, h.Execute(ctx, otherChat, "/reschedule "+id+" 2025-01-01 14:00"))
	assert.Contains(t, h.Execute(ctx, otherChat, "/book P1 D1 2025-01-01 14:00"), "only act for your own patient record (P2)")
	assert.Equal(t, staffOnlyText, h.Execute(ctx, otherChat, "/noshow "+id))

	// владелец по-прежнему привязан, запись не тронута
	reply = h.Execute(ctx, chatID, "/myappointments")
	assert.Contains(t, reply, id)
	assert.Contains(t, h.Execute(ctx, chatID, "/appointment "+id), "Scheduled")

	// персонал видит любую запись
	assert.Contains(t, h.Execute(ctx, staffChat, "/appointment "+id), id)
	assert.Contains(t, h.Execute(ctx, staffChat, "/book P2 D1 2025-01-01 14:00"), "Appointment booked")
}

func TestUnlink(t *testing.T) {
	h := linked(t)
	ctx := context.Background()

	assert.Contains(t, h.Execute(ctx, otherChat, "/unlink"), "Patient not found")
	assert.Contains(t, h.Execute(ctx, chatID, "/unlink"), "no longer linked to Nimal Perera (P1)")
	assert.Equal(t, linkFirstText, h.Execute(ctx, chatID, "/myappointments"))

	// после отвязки пациент может перейти в другой чат
	assert.Contains(t, h.Execute(ctx, otherChat, "/link P1 nimal@mail.lk"), "linked to Nimal Perera (P1)")
}

func TestMiscCommands(t *testing.T) {
	h := newHandlers(t)
	ctx := context.Background()

	assert.Contains(t, h.Execute(ctx, chatID, "/start"), "555")
	assert.Equal(t, helpText, h.Execute(ctx, chatID, "/help"))
	assert.Contains(t, h.Execute(ctx, chatID, "/unknown"), "Unknown command")
	assert.Empty(t, h.Execute(ctx, chatID, "just chatting"))
}

func TestWithWarnings(t *testing.T) {
	assert.Equal(t, "ok", withWarnings("ok", nil))
	assert.Equal(t, "ok\n\n⚠️ a\n⚠️ b", withWarnings("ok", []string{"a", "b"}))
}
