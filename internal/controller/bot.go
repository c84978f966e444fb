package controller

import (
	"context"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	scheduling handlers.Scheduling,
	directory handlers.Directory,
	staffChatIDs []int64,
	logger *zap.Logger,
) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: handlers.NewHandlers(scheduling, directory, staffChatIDs, logger),
		logger:   logger,
	}
}

// RegisterHandlers регистрирует обработчик команд и меню бота
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	// Все команды принимают аргументы, поэтому разбор делает сам обработчик
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, c.handlers.HandleMessage)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Start"},
		{Command: "help", Description: "❓ Command reference"},
		{Command: "link", Description: "🔗 Link chat to a patient record"},
		{Command: "unlink", Description: "✂️ Unlink this chat"},
		{Command: "book", Description: "🗓 Book an appointment"},
		{Command: "reschedule", Description: "🔁 Reschedule an appointment"},
		{Command: "cancel", Description: "❌ Cancel an appointment"},
		{Command: "appointment", Description: "🔎 Show an appointment"},
		{Command: "myappointments", Description: "📋 My appointments"},
		{Command: "slots", Description: "🟢 Doctor's open time slots"},
		{Command: "complete", Description: "✔️ Mark as completed (staff)"},
		{Command: "noshow", Description: "🚷 Mark as no-show (staff)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
