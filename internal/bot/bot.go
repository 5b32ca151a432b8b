// Package bot is the Telegram front end: a thin command dispatcher over
// the device checker. It consumes the core client; it adds no device logic
// of its own.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"device_monitor/internal/logger"
)

const updateTimeoutSec = 30

// Bot serves the /start, /status and /info commands.
type Bot struct {
	api     *tgbotapi.BotAPI
	checker *Checker
	log     *logger.Logger
}

// New authorizes against the Telegram API with the given token.
func New(token string, checker *Checker, log *logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("bot: authorize: %w", err)
	}
	log.Infow("bot authorized", "username", api.Self.UserName)
	return &Bot{api: api, checker: checker, log: log}, nil
}

// Run dispatches incoming commands until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSec

	updates := b.api.GetUpdatesChan(u)
	b.log.Infow("bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Infow("bot stopped")
			return nil
		case update := <-updates:
			b.handleUpdate(update)
		}
	}
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	msg := update.Message
	b.log.Infow("command received",
		"command", msg.Command(),
		"from", msg.From.UserName,
		"chat_id", msg.Chat.ID,
	)

	switch msg.Command() {
	case "start", "help":
		b.reply(msg.Chat.ID, greeting(msg.From.FirstName))
	case "status":
		b.reply(msg.Chat.ID, "🔍 Checking device...")
		_, report := b.checker.Check()
		b.reply(msg.Chat.ID, report)
	case "info":
		b.reply(msg.Chat.ID, b.checker.Info())
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /status or /info.")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Errorw("reply failed", "chat_id", chatID, "err", err)
	}
}

// greeting is the /start and /help response.
func greeting(firstName string) string {
	if firstName == "" {
		firstName = "there"
	}
	return fmt.Sprintf(
		"👋 Hi, %s!\n\nI check on the LNS instrument.\nSend /status to probe the device or /info for its configuration.",
		firstName,
	)
}
