package handlers

import (
	"context"
	"fmt"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 Commands:\n\n" +
	"/link <patientID> <email> - Link this chat to your patient record\n" +
	"/unlink - Unlink this chat\n" +
	"/book <patientID> <doctorID> <YYYY-MM-DD> <time> - Book an appointment\n" +
	"/reschedule <appointmentID> <YYYY-MM-DD> <time> - Move your appointment\n" +
	"/cancel <appointmentID> - Cancel your appointment\n" +
	"/appointment <appointmentID> - Show your appointment\n" +
	"/myappointments - Appointments of the linked patient\n" +
	"/slots <doctorID> - Open time slots of a doctor\n\n" +
	"Staff (any patient):\n" +
	"/complete <appointmentID> [notes] - Mark as completed\n" +
	"/noshow <appointmentID> - Mark as no-show\n\n" +
	"Time accepts HH:MM or HH:MM AM/PM."

type commandFunc func(h *Handlers, ctx context.Context, chatID int64, cmd Command) string

var commands = map[string]commandFunc{
	"start":          (*Handlers).start,
	"help":           (*Handlers).help,
	"link":           (*Handlers).link,
	"unlink":         (*Handlers).unlink,
	"book":           (*Handlers).book,
	"cancel":         (*Handlers).cancel,
	"reschedule":     (*Handlers).reschedule,
	"complete":       (*Handlers).complete,
	"noshow":         (*Handlers).noShow,
	"appointment":    (*Handlers).appointment,
	"myappointments": (*Handlers).myAppointments,
	"slots":          (*Handlers).slots,
}

// HandleMessage обрабатывает все текстовые команды
func (h *Handlers) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	reply := h.Execute(ctx, chatID, update.Message.Text)
	if reply == "" {
		return
	}

	h.sendMessage(ctx, b, chatID, reply)
}

// Execute выполняет команду и возвращает текст ответа.
// Пустая строка означает, что отвечать не нужно.
func (h *Handlers) Execute(ctx context.Context, chatID int64, text string) string {
	cmd, ok := ParseCommand(text)
	if !ok {
		return ""
	}

	fn, ok := commands[cmd.Name]
	if !ok {
		return "🤷 Unknown command. Use /help"
	}

	h.logger.Debug("Bot command",
		zap.Int64("chat_id", chatID),
		zap.String("command", cmd.Name),
		zap.Int("args", len(cmd.Args)),
	)
	return fn(h, ctx, chatID, cmd)
}

func (h *Handlers) start(_ context.Context, chatID int64, _ Command) string {
	return fmt.Sprintf("👋 Welcome to Doctor Channeling!\n\n"+
		"Your chat ID is %d.\n"+
		"Link it to your patient record with /link <patientID> <email> to get booking updates and reminders here.\n\n"+
		"See /help for all commands.", chatID)
}

func (h *Handlers) help(context.Context, int64, Command) string {
	return helpText
}

// link требует email из карточки пациента как подтверждение
func (h *Handlers) link(ctx context.Context, chatID int64, cmd Command) string {
	if len(cmd.Args) != 2 {
		return usage("/link <patientID> <email>")
	}

	patient, err := h.directory.LinkTelegram(ctx, cmd.Args[0], cmd.Args[1], chatID)
	if err != nil {
		return h.fail("link", err)
	}
	return fmt.Sprintf("✅ This chat is now linked to %s (%s).", patient.FullName(), patient.ID)
}

func (h *Handlers) unlink(ctx context.Context, chatID int64, _ Command) string {
	patient, err := h.directory.UnlinkTelegram(ctx, chatID)
	if err != nil {
		return h.fail("unlink", err)
	}
	return fmt.Sprintf("✅ This chat is no longer linked to %s (%s).", patient.FullName(), patient.ID)
}

func (h *Handlers) book(ctx context.Context, chatID int64, cmd Command) string {
	if len(cmd.Args) < 4 {
		return usage("/book <patientID> <doctorID> <YYYY-MM-DD> <time>")
	}
	if reply, ok := h.requirePatientID(ctx, chatID, cmd.Args[0]); !ok {
		return reply
	}

	timeText := cmd.rest(3)
	at, err := service.ScheduleAt(cmd.Args[2], timeText)
	if err != nil {
		return ErrorMessage(err)
	}

	res, err := h.scheduling.Book(ctx, service.BookRequest{
		PatientID:   cmd.Args[0],
		DoctorID:    cmd.Args[1],
		ScheduledAt: at,
		Time:        timeText,
	})
	if err != nil {
		return h.fail("book", err)
	}
	return withWarnings("🎉 Appointment booked!\n\n"+FormatAppointment(res.Appointment), res.Warnings)
}

func (h *Handlers) cancel(ctx context.Context, chatID int64, cmd Command) string {
	if len(cmd.Args) != 1 {
		return usage("/cancel <appointmentID>")
	}
	if _, reply, ok := h.requireAppointment(ctx, chatID, cmd.Args[0]); !ok {
		return reply
	}
	return h.resultText("cancel", "Appointment cancelled.")(h.scheduling.Cancel(ctx, cmd.Args[0]))
}

func (h *Handlers) reschedule(ctx context.Context, chatID int64, cmd Command) string {
	if len(cmd.Args) < 3 {
		return usage("/reschedule <appointmentID> <YYYY-MM-DD> <time>")
	}
	if _, reply, ok := h.requireAppointment(ctx, chatID, cmd.Args[0]); !ok {
		return reply
	}

	timeText := cmd.rest(2)
	at, err := service.ScheduleAt(cmd.Args[1], timeText)
	if err != nil {
		return ErrorMessage(err)
	}

	return h.resultText("reschedule", "Appointment rescheduled.")(h.scheduling.Reschedule(ctx, cmd.Args[0], service.RescheduleRequest{
		ScheduledAt: at,
		Time:        timeText,
	}))
}

func (h *Handlers) complete(ctx context.Context, chatID int64, cmd Command) string {
	if reply, ok := h.requireStaff(chatID, cmd.Name); !ok {
		return reply
	}
	if len(cmd.Args) < 1 {
		return usage("/complete <appointmentID> [notes]")
	}
	return h.resultText("complete", "Appointment completed.")(h.scheduling.Complete(ctx, cmd.Args[0], cmd.rest(1)))
}

func (h *Handlers) noShow(ctx context.Context, chatID int64, cmd Command) string {
	if reply, ok := h.requireStaff(chatID, cmd.Name); !ok {
		return reply
	}
	if len(cmd.Args) != 1 {
		return usage("/noshow <appointmentID>")
	}
	return h.resultText("no-show", "Appointment marked as no-show.")(h.scheduling.MarkNoShow(ctx, cmd.Args[0]))
}

func (h *Handlers) appointment(ctx context.Context, chatID int64, cmd Command) string {
	if len(cmd.Args) != 1 {
		return usage("/appointment <appointmentID>")
	}

	a, reply, ok := h.requireAppointment(ctx, chatID, cmd.Args[0])
	if !ok {
		return reply
	}
	return FormatAppointment(a)
}

func (h *Handlers) myAppointments(ctx context.Context, chatID int64, _ Command) string {
	patient, reply, ok := h.requirePatient(ctx, chatID)
	if !ok {
		return reply
	}

	list, err := h.scheduling.ListByPatient(ctx, patient.ID)
	if err != nil {
		return h.fail("my appointments", err)
	}
	return FormatAppointmentList(list)
}

func (h *Handlers) slots(ctx context.Context, _ int64, cmd Command) string {
	if len(cmd.Args) != 1 {
		return usage("/slots <doctorID>")
	}

	slots, err := h.scheduling.AvailableSlots(ctx, cmd.Args[0])
	if err != nil {
		return h.fail("slots", err)
	}
	return FormatSlots(cmd.Args[0], slots)
}

func (h *Handlers) resultText(op, title string) func(*service.Result, error) string {
	return func(res *service.Result, err error) string {
		if err != nil {
			return h.fail(op, err)
		}
		return withWarnings("✅ "+title+"\n\n"+FormatAppointment(res.Appointment), res.Warnings)
	}
}

// fail логирует ошибку и переводит её в текст для пользователя
func (h *Handlers) fail(op string, err error) string {
	msg := ErrorMessage(err)
	if msg == genericError {
		h.logger.Error("Bot command failed", zap.String("op", op), zap.Error(err))
	}
	return msg
}

func usage(text string) string {
	return "ℹ️ Usage: " + text
}

// sendMessage отправляет сообщение и логирует если не удалось
func (h *Handlers) sendMessage(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
