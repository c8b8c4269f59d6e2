package sender

import (
	"context"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
)

// Sink renders screens and messages into Telegram chats. Every call reports
// its own failure so callers can isolate recipients.
type Sink interface {
	// SendScreen posts a new photo message with caption and inline keyboard.
	SendScreen(ctx context.Context, chatID int64, screen *domain.Screen) error

	// EditScreen replaces the photo, caption and keyboard of an existing message.
	EditScreen(ctx context.Context, chatID int64, messageID int, screen *domain.Screen) error

	// SendSnapshot posts the screen's image and caption without a keyboard.
	SendSnapshot(ctx context.Context, chatID int64, screen *domain.Screen) error

	// SendText posts an HTML formatted text message.
	SendText(ctx context.Context, chatID int64, text string) error

	// ReplyText posts a plain text reply to a message.
	ReplyText(ctx context.Context, chatID int64, replyTo int, text string) error

	// AnswerCallback acknowledges a button press, optionally with a toast.
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
