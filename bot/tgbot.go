package bot

import (
	"Concierge/internal/lib/sl"
	"fmt"
	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"log/slog"
	"strings"
)

// maxMessageLength is Telegram's limit for one text message.
const maxMessageLength = 4096

// TgBot delivers operational alerts to the admin chat.
type TgBot struct {
	log         *slog.Logger
	api         *tgbotapi.Bot
	botUsername string
	adminId     int64
}

func NewTgBot(botName, apiKey string, adminId int64, log *slog.Logger) (*TgBot, error) {
	tgBot := &TgBot{
		log:         log.With(sl.Module("tgbot")),
		adminId:     adminId,
		botUsername: botName,
	}

	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}
	tgBot.api = api

	return tgBot, nil
}

func (t *TgBot) SendMessage(msg string) {
	t.plainResponse(t.adminId, msg)
}

func (t *TgBot) plainResponse(chatId int64, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		t.log.With(
			slog.Int64("id", chatId),
		).Debug("empty message")
		return
	}

	_, err := t.api.SendMessage(chatId, escapeMarkdown(text), &tgbotapi.SendMessageOpts{
		ParseMode: "MarkdownV2",
	})
	if err == nil {
		return
	}
	t.log.With(
		slog.Int64("id", chatId),
	).Warn("sending message", sl.Err(err))

	_, err = t.api.SendMessage(chatId, truncate(text, maxMessageLength), &tgbotapi.SendMessageOpts{})
	if err != nil {
		t.log.With(
			slog.Int64("id", chatId),
		).Error("sending safe message", sl.Err(err))
	}
}

// markdownReserved lists every character MarkdownV2 requires to be escaped.
const markdownReserved = "\\_*[]()~`>#+-=|{}.!"

// escapeMarkdown truncates text so that its escaped form fits one message,
// then escapes it.
func escapeMarkdown(text string) string {
	limit := maxMessageLength
	for {
		escaped := sanitize(truncate(text, limit))
		if len([]rune(escaped)) <= maxMessageLength || limit <= 1 {
			return escaped
		}
		limit /= 2
	}
}

// sanitize escapes MarkdownV2 reserved characters.
func sanitize(input string) string {
	var sanitized strings.Builder
	sanitized.Grow(len(input))
	for _, char := range input {
		if strings.ContainsRune(markdownReserved, char) {
			sanitized.WriteRune('\\')
		}
		sanitized.WriteRune(char)
	}
	return sanitized.String()
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
