package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
)

var apiCallsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "telegram_api_calls_total",
		Help: "Total number of Bot API calls made by the render sink",
	},
	[]string{"method", "status"},
)

// BotAPI is the part of *tgbotapi.BotAPI used by the sink.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sink implements sender.Sink on the Telegram Bot API. Calls are paced by a
// shared token bucket to stay under Telegram's global send limit.
type Sink struct {
	bot         BotAPI
	limiter     *rate.Limiter
	placeholder string
	logger      *slog.Logger
}

// NewSink creates a sink sending at most perSecond calls per second. Screens
// without an image use placeholder instead.
func NewSink(bot BotAPI, perSecond float64, placeholder string, logger *slog.Logger) *Sink {
	burst := max(int(perSecond), 1)
	return &Sink{
		bot:         bot,
		limiter:     rate.NewLimiter(rate.Limit(perSecond), burst),
		placeholder: placeholder,
		logger:      logger,
	}
}

// file turns an image reference into upload data: http(s) references are
// fetched by Telegram, anything else is a file id already on its servers.
func (s *Sink) file(ref string) tgbotapi.RequestFileData {
	if ref == "" {
		ref = s.placeholder
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return tgbotapi.FileURL(ref)
	}
	return tgbotapi.FileID(ref)
}

// markup converts a keyboard descriptor. It returns nil for an empty keyboard.
func markup(k domain.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if k.IsEmpty() {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(k.Rows))
	for _, row := range k.Rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}

func (s *Sink) send(ctx context.Context, method string, c tgbotapi.Chattable) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: wait for rate limiter: %w", method, err)
	}
	_, err := s.bot.Send(c)
	return s.observe(method, err)
}

func (s *Sink) request(ctx context.Context, method string, c tgbotapi.Chattable) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: wait for rate limiter: %w", method, err)
	}
	_, err := s.bot.Request(c)
	return s.observe(method, err)
}

func (s *Sink) observe(method string, err error) error {
	if err != nil {
		apiCallsTotal.WithLabelValues(method, "error").Inc()
		return fmt.Errorf("%s: %w", method, err)
	}
	apiCallsTotal.WithLabelValues(method, "ok").Inc()
	return nil
}

// SendScreen posts a photo with caption and keyboard.
func (s *Sink) SendScreen(ctx context.Context, chatID int64, screen *domain.Screen) error {
	photo := tgbotapi.NewPhoto(chatID, s.file(screen.Image))
	photo.Caption = screen.Caption
	if m := markup(screen.Keyboard); m != nil {
		photo.ReplyMarkup = m
	}
	return s.send(ctx, "sendPhoto", photo)
}

// EditScreen swaps the media and keyboard of a message in place. Telegram
// rejects edits that change nothing; those are treated as success.
func (s *Sink) EditScreen(ctx context.Context, chatID int64, messageID int, screen *domain.Screen) error {
	media := tgbotapi.NewInputMediaPhoto(s.file(screen.Image))
	media.Caption = screen.Caption

	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:      chatID,
			MessageID:   messageID,
			ReplyMarkup: markup(screen.Keyboard),
		},
		Media: media,
	}

	err := s.send(ctx, "editMessageMedia", edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		s.logger.DebugContext(ctx, "edit skipped, message not modified",
			slog.Int64("chat_id", chatID),
			slog.Int("message_id", messageID),
		)
		return nil
	}
	return err
}

// SendSnapshot posts the screen without its keyboard. sendMediaGroup needs
// at least two items, so a single snapshot goes out as a plain photo.
func (s *Sink) SendSnapshot(ctx context.Context, chatID int64, screen *domain.Screen) error {
	photo := tgbotapi.NewPhoto(chatID, s.file(screen.Image))
	photo.Caption = screen.Caption
	return s.send(ctx, "sendPhoto", photo)
}

// SendText posts an HTML message.
func (s *Sink) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	return s.send(ctx, "sendMessage", msg)
}

// ReplyText posts a plain text reply.
func (s *Sink) ReplyText(ctx context.Context, chatID int64, replyTo int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = replyTo
	return s.send(ctx, "sendMessage", msg)
}

// AnswerCallback stops the button spinner, showing text as a toast if set.
func (s *Sink) AnswerCallback(ctx context.Context, callbackID, text string) error {
	return s.request(ctx, "answerCallbackQuery", tgbotapi.NewCallback(callbackID, text))
}
