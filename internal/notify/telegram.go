package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
)

const telegramMessageMaxLength = 4096

// TelegramNotifier delivers generated posts to a configured chat. A nil
// notifier is valid and delivers nothing.
type TelegramNotifier struct {
	bot    *bot.Bot
	chatID int64
	log    *slog.Logger
}

func NewTelegramNotifier(token string, chatID int64, log *slog.Logger) (*TelegramNotifier, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("token is empty")
	}
	if chatID == 0 {
		return nil, errors.New("chat ID is empty")
	}

	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    b,
		chatID: chatID,
		log:    log,
	}, nil
}

// SendPost delivers the generated post, split to the Telegram message limit.
func (n *TelegramNotifier) SendPost(ctx context.Context, query string, text string) error {
	if n == nil {
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("post text is empty")
	}

	header := fmt.Sprintf("📝 %s\n\n", query)
	var errs []error

	for i, message := range splitMessage(header+text, telegramMessageMaxLength) {
		if _, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: n.chatID,
			Text:   message,
		}); err != nil {
			errs = append(errs, fmt.Errorf("send message %d: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var messages []string
	for start := 0; start < len(runes); start += limit {
		end := min(start+limit, len(runes))
		messages = append(messages, string(runes[start:end]))
	}

	return messages
}
