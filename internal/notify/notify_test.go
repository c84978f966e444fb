package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fixtures() (*model.Patient, *model.Doctor, *model.Appointment) {
	p := &model.Patient{ID: "P1", FirstName: "Nimal", LastName: "Perera", Email: "nimal@mail.lk", TelegramChatID: 42}
	d := model.NewDoctor()
	d.ID, d.FirstName, d.LastName, d.Specialization, d.ConsultationFee = "D1", "Asha", "Fernando", "Cardiology", 2500
	a := model.NewAppointment(p.ID, d.ID, time.Date(2030, 5, 6, 9, 30, 0, 0, time.Local), "09:00-10:00", time.Now())
	a.ID = "A1"
	return p, d, a
}

type fakeSender struct {
	mu    sync.Mutex
	sent  []*bot.SendMessageParams
	err   error
	calls int
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &models.Message{ID: len(f.sent)}, nil
}

func TestComposeBooked(t *testing.T) {
	p, d, a := fixtures()
	msg := Compose(EventBooked, p, d, a)

	assert.Equal(t, "Appointment Confirmation - A1", msg.Subject)
	assert.Contains(t, msg.Body, "Dear Nimal,")
	assert.Contains(t, msg.Body, "Date & Time: 2030-05-06 09:30")
	assert.Contains(t, msg.Body, "Doctor: Asha Fernando")
	assert.Contains(t, msg.Body, "Consultation Fee: 2500.00")
}

func TestComposeSubjects(t *testing.T) {
	p, d, a := fixtures()
	assert.Equal(t, "Appointment Cancelled - A1", Compose(EventCancelled, p, d, a).Subject)
	assert.Equal(t, "Appointment Rescheduled - A1", Compose(EventRescheduled, p, d, a).Subject)
	assert.Equal(t, "Appointment Reminder - Tomorrow", Compose(EventReminder, p, d, a).Subject)
}

func TestLogWritesStructuredEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	p, d, a := fixtures()

	require.NoError(t, NewLog(zap.New(core)).NotifyCancelled(context.Background(), p, d, a))

	entries := logs.FilterMessage("Notification").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "cancelled", fields["event"])
	assert.Equal(t, "nimal@mail.lk", fields["to"])
	assert.Equal(t, "A1", fields["appointment_id"])
}

func TestTelegramSendsToLinkedChat(t *testing.T) {
	sender := &fakeSender{}
	p, d, a := fixtures()

	n := NewTelegram(sender, time.Minute, zap.NewNop())
	require.NoError(t, n.NotifyReminder(context.Background(), p, d, a))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(42), sender.sent[0].ChatID)
	assert.Contains(t, sender.sent[0].Text, "Appointment Reminder - Tomorrow")
}

func TestTelegramSkipsUnlinkedPatient(t *testing.T) {
	sender := &fakeSender{}
	p, d, a := fixtures()
	p.TelegramChatID = 0

	require.NoError(t, NewTelegram(sender, time.Minute, zap.NewNop()).NotifyBooked(context.Background(), p, d, a))
	assert.Zero(t, sender.calls)
}

func TestTelegramBreakerOpensAfterFailures(t *testing.T) {
	sender := &fakeSender{err: errors.New("telegram down")}
	p, d, a := fixtures()
	n := NewTelegram(sender, time.Minute, zap.NewNop())

	for i := 0; i < 5; i++ {
		assert.Error(t, n.NotifyBooked(context.Background(), p, d, a))
	}
	assert.Equal(t, 5, sender.calls)

	err := n.NotifyBooked(context.Background(), p, d, a)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, sender.calls, "open breaker must not reach telegram")
}

type failing struct{ *Log }

func (failing) NotifyBooked(context.Context, *model.Patient, *model.Doctor, *model.Appointment) error {
	return errors.New("smtp down")
}

func TestMultiDeliversToAllAndJoinsErrors(t *testing.T) {
	sender := &fakeSender{}
	p, d, a := fixtures()

	m := Multi{failing{NewLog(zap.NewNop())}, NewTelegram(sender, time.Minute, zap.NewNop()), NewLog(zap.NewNop())}
	err := m.NotifyBooked(context.Background(), p, d, a)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Len(t, sender.sent, 1)

	assert.NoError(t, m.NotifyCancelled(context.Background(), p, d, a))
}
