package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// MessageSender is the part of *bot.Bot used for delivery.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Telegram delivers notifications to patients who linked a chat.
// Patients without a chat are skipped silently.
type Telegram struct {
	sender  MessageSender
	breaker *gobreaker.CircuitBreaker[*models.Message]
	logger  *zap.Logger
}

// NewTelegram wraps delivery in a circuit breaker that opens after five
// consecutive failures and retries after openTimeout.
func NewTelegram(sender MessageSender, openTimeout time.Duration, logger *zap.Logger) *Telegram {
	settings := gobreaker.Settings{
		Name:        "telegram-notify",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Telegram{
		sender:  sender,
		breaker: gobreaker.NewCircuitBreaker[*models.Message](settings),
		logger:  logger,
	}
}

func (t *Telegram) NotifyBooked(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return t.send(ctx, p, Compose(EventBooked, p, d, a))
}

func (t *Telegram) NotifyCancelled(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return t.send(ctx, p, Compose(EventCancelled, p, d, a))
}

func (t *Telegram) NotifyRescheduled(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return t.send(ctx, p, Compose(EventRescheduled, p, d, a))
}

func (t *Telegram) NotifyReminder(ctx context.Context, p *model.Patient, d *model.Doctor, a *model.Appointment) error {
	return t.send(ctx, p, Compose(EventReminder, p, d, a))
}

func (t *Telegram) send(ctx context.Context, p *model.Patient, msg Message) error {
	if !p.HasTelegram() {
		return nil
	}

	_, err := t.breaker.Execute(func() (*models.Message, error) {
		return t.sender.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: p.TelegramChatID,
			Text:   msg.Subject + "\n\n" + msg.Body,
		})
	})
	if err != nil {
		return fmt.Errorf("send telegram %s notification to %s: %w", msg.Event, p.ID, err)
	}

	t.logger.Debug("Telegram notification sent",
		zap.String("event", string(msg.Event)),
		zap.String("patient_id", p.ID),
	)
	return nil
}
