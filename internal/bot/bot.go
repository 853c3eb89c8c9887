// Package bot is the Telegram transport adapter. It receives updates over
// long polling and renders dispatcher replies back to the user.
package bot

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taxsaathi/taxsaathi/internal/config"
	"github.com/taxsaathi/taxsaathi/internal/dispatcher"
	"github.com/taxsaathi/taxsaathi/internal/ratelimit"
)

type requestHandler interface {
	Handle(ctx context.Context, req dispatcher.Request) (string, error)
}

type usageReporter interface {
	Remaining(userID int64, cat ratelimit.Category) int
	ResetAt(userID int64, cat ratelimit.Category) time.Time
}

type uploadValidator interface {
	Validate(filename string, size int64) error
}

// Bot wires the Telegram Bot API to the dispatcher.
type Bot struct {
	api        *tgbotapi.BotAPI
	handler    requestHandler
	usage      usageReporter
	validator  uploadValidator
	cfg        config.TelegramConfig
	fileClient *http.Client
}

// New authenticates against the Bot API and builds the adapter.
func New(cfg config.TelegramConfig, handler requestHandler, usage usageReporter, validator uploadValidator) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug

	slog.Info("authorized on Telegram", "username", api.Self.UserName)

	return &Bot{
		api:        api,
		handler:    handler,
		usage:      usage,
		validator:  validator,
		cfg:        cfg,
		fileClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Run polls for updates until ctx is cancelled. Each update is handled in its
// own goroutine; the dispatcher's rate limiter serializes per-user quota
// checks, so concurrent updates from the same user stay within quota.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.cfg.PollTimeout.Seconds())

	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	slog.Info("bot is running", "poll_timeout", b.cfg.PollTimeout)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		go b.handleUpdate(ctx, update)
	}

	return ctx.Err()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic while handling update", "panic", r, "update_id", update.UpdateID)
		}
	}()

	msg := update.Message
	switch {
	case msg.IsCommand():
		b.handleCommand(msg)
	case msg.Document != nil:
		b.handleDocument(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

// reply sends plain text back to the chat.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("failed to send message", "chat_id", chatID, "error", err)
	}
}

// sendTyping shows the typing indicator while the AI call runs.
func (b *Bot) sendTyping(chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	if _, err := b.api.Request(action); err != nil {
		slog.Debug("failed to send chat action", "chat_id", chatID, "error", err)
	}
}
