package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/taxsaathi/taxsaathi/internal/dispatcher"
	"github.com/taxsaathi/taxsaathi/internal/format"
	"github.com/taxsaathi/taxsaathi/internal/ratelimit"
)

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		firstName := ""
		if msg.From != nil {
			firstName = msg.From.FirstName
		}
		b.reply(msg.Chat.ID, format.Welcome(firstName))
	case "help":
		b.reply(msg.Chat.ID, format.Help())
	case "about":
		b.reply(msg.Chat.ID, format.About())
	case "usage":
		b.handleUsage(msg)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (b *Bot) handleUsage(msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	userID := msg.From.ID
	now := time.Now()
	b.reply(msg.Chat.ID, format.UsageReport(
		b.usage.Remaining(userID, ratelimit.TextQuery),
		b.usage.Remaining(userID, ratelimit.DocumentAnalysis),
		b.usage.ResetAt(userID, ratelimit.TextQuery),
		b.usage.ResetAt(userID, ratelimit.DocumentAnalysis),
		now,
	))
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	b.sendTyping(msg.Chat.ID)

	reply, err := b.handler.Handle(ctx, dispatcher.TextQuery{
		User: msg.From.ID,
		Body: msg.Text,
	})
	if err != nil {
		slog.Warn("text query did not complete cleanly", "user_id", msg.From.ID, "error", err)
	}
	b.reply(msg.Chat.ID, reply)
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	doc := msg.Document

	// Validate name and declared size before downloading anything.
	if err := b.validator.Validate(doc.FileName, int64(doc.FileSize)); err != nil {
		b.reply(msg.Chat.ID, format.UnsupportedAttachment(err))
		return
	}

	b.reply(msg.Chat.ID, "📄 Processing your document... This may take a moment.")
	b.sendTyping(msg.Chat.ID)

	data, err := b.downloadFile(ctx, doc.FileID)
	if err != nil {
		slog.Error("failed to download document", "user_id", msg.From.ID, "file_id", doc.FileID, "error", err)
		b.reply(msg.Chat.ID, format.DocumentError())
		return
	}

	reply, err := b.handler.Handle(ctx, dispatcher.DocumentUpload{
		User:     msg.From.ID,
		Data:     data,
		FileName: doc.FileName,
	})
	if err != nil {
		slog.Warn("document upload did not complete cleanly", "user_id", msg.From.ID, "error", err)
	}
	b.reply(msg.Chat.ID, reply)
}

// downloadFile fetches the uploaded file's bytes through the Bot API file
// endpoint.
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, err
	}

	resp, err := b.fileClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
