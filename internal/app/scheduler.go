package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ReminderSender рассылает напоминания о записях на заданный день
type ReminderSender interface {
	SendReminders(ctx context.Context, day time.Time) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reminders ReminderSender
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler создаёт новый планировщик
func NewScheduler(reminders ReminderSender, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{
		reminders: reminders,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
		stopChan:  make(chan struct{}),
	}
}

// Run блокируется до отмены ctx или вызова Stop
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))

	// Первый запуск сразу при старте
	s.sendReminders(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sendReminders(ctx)
		case <-s.stopChan:
			s.logger.Info("Reminder task stopped")
			return nil
		case <-ctx.Done():
			s.logger.Info("Reminder task cancelled")
			return nil
		}
	}
}

// Stop останавливает фоновые задачи; повторный вызов безопасен
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
}

// sendReminders напоминает о записях на завтра
func (s *Scheduler) sendReminders(ctx context.Context) {
	tomorrow := s.now().AddDate(0, 0, 1)

	sent, err := s.reminders.SendReminders(ctx, tomorrow)
	if err != nil {
		s.logger.Error("Failed to send reminders", zap.Error(err))
		return
	}

	s.logger.Info("Reminders sent",
		zap.String("day", tomorrow.Format("2006-01-02")),
		zap.Int("count", sent),
	)
}
