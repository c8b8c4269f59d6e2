package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
)

// fakeBot records every Chattable passed to it.
type fakeBot struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	err       error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if b.err != nil {
		return tgbotapi.Message{}, b.err
	}
	b.sent = append(b.sent, c)
	return tgbotapi.Message{MessageID: len(b.sent)}, nil
}

func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.requested = append(b.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func newTestSink(bot BotAPI) *Sink {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSink(bot, 1000, "placeholder-file-id", logger)
}

func testScreen() *domain.Screen {
	return &domain.Screen{
		Image:   "https://cdn.example.com/pizza.jpg",
		Caption: "Пицца",
		Keyboard: domain.Keyboard{Rows: [][]domain.Button{
			{{Text: "Назад", Data: "menu:1:catalog:0:1:0"}, {Text: "Корзина 🛒", Data: "menu:3:cart:0:1:0"}},
		}},
	}
}

func TestSendScreen_PhotoWithKeyboard(t *testing.T) {
	bot := &fakeBot{}
	s := newTestSink(bot)

	require.NoError(t, s.SendScreen(context.Background(), 42, testScreen()))
	require.Len(t, bot.sent, 1)

	photo, ok := bot.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), photo.ChatID)
	assert.Equal(t, "Пицца", photo.Caption)
	assert.Equal(t, tgbotapi.FileURL("https://cdn.example.com/pizza.jpg"), photo.File)

	kb, ok := photo.ReplyMarkup.(*tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	assert.Equal(t, "Назад", kb.InlineKeyboard[0][0].Text)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "menu:1:catalog:0:1:0", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestSendScreen_EmptyImageUsesPlaceholder(t *testing.T) {
	bot := &fakeBot{}
	s := newTestSink(bot)

	screen := testScreen()
	screen.Image = ""
	screen.Keyboard = domain.Keyboard{}
	require.NoError(t, s.SendScreen(context.Background(), 1, screen))

	photo := bot.sent[0].(tgbotapi.PhotoConfig)
	assert.Equal(t, tgbotapi.FileID("placeholder-file-id"), photo.File)
	assert.Nil(t, photo.ReplyMarkup)
}

func TestEditScreen_ReplacesMedia(t *testing.T) {
	bot := &fakeBot{}
	s := newTestSink(bot)

	screen := testScreen()
	screen.Image = "AgACAgIAAxkBAAIB"
	require.NoError(t, s.EditScreen(context.Background(), 7, 99, screen))

	edit, ok := bot.sent[0].(tgbotapi.EditMessageMediaConfig)
	require.True(t, ok)
	assert.Equal(t, int64(7), edit.ChatID)
	assert.Equal(t, 99, edit.MessageID)
	require.NotNil(t, edit.ReplyMarkup)

	media, ok := edit.Media.(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Equal(t, "Пицца", media.Caption)
	assert.Equal(t, tgbotapi.FileID("AgACAgIAAxkBAAIB"), media.Media)
}

func TestEditScreen_NotModifiedIsSuccess(t *testing.T) {
	bot := &fakeBot{err: &tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified"}}
	s := newTestSink(bot)

	assert.NoError(t, s.EditScreen(context.Background(), 7, 99, testScreen()))
}

func TestSendSnapshot_NoKeyboard(t *testing.T) {
	bot := &fakeBot{}
	s := newTestSink(bot)

	require.NoError(t, s.SendSnapshot(context.Background(), 5, testScreen()))

	photo := bot.sent[0].(tgbotapi.PhotoConfig)
	assert.Equal(t, "Пицца", photo.Caption)
	assert.Nil(t, photo.ReplyMarkup)
}

func TestSendText_HTML(t *testing.T) {
	bot := &fakeBot{}
	s := newTestSink(bot)

	require.NoError(t, s.SendText(context.Background(), 5, "<b>hi</b>"))

	msg := bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Equal(t, "<b>hi</b>", msg.Text)
}

func TestReplyText_PlainReply(t *testing.T) {
	bot := &fakeBot{}
	s := newTestSink(bot)

	require.NoError(t, s.ReplyText(context.Background(), 5, 31, "ok"))

	msg := bot.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, 31, msg.ReplyToMessageID)
	assert.Empty(t, msg.ParseMode)
}

func TestAnswerCallback(t *testing.T) {
	bot := &fakeBot{}
	s := newTestSink(bot)

	require.NoError(t, s.AnswerCallback(context.Background(), "cb-1", "Товар добавлен в корзину."))
	require.Len(t, bot.requested, 1)

	cb := bot.requested[0].(tgbotapi.CallbackConfig)
	assert.Equal(t, "cb-1", cb.CallbackQueryID)
	assert.Equal(t, "Товар добавлен в корзину.", cb.Text)
}

func TestSend_ErrorWrapped(t *testing.T) {
	bot := &fakeBot{err: errors.New("Forbidden: bot was blocked by the user")}
	s := newTestSink(bot)

	err := s.SendText(context.Background(), 5, "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sendMessage")
	assert.Contains(t, err.Error(), "blocked")
}

func TestSend_CancelledContext(t *testing.T) {
	bot := &fakeBot{}
	s := NewSink(bot, 1, "", slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Drain the single token so the next call must wait.
	require.NoError(t, s.SendText(context.Background(), 1, "first"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.SendText(ctx, 1, "second")
	require.Error(t, err)
	assert.Len(t, bot.sent, 1)
}
