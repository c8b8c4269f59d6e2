package mock

import (
	"context"
	"sync"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
)

// Kinds of recorded sends.
const (
	KindScreen   = "screen"
	KindEdit     = "edit"
	KindSnapshot = "snapshot"
	KindText     = "text"
	KindReply    = "reply"
	KindCallback = "callback"
)

// Message is one recorded call on the sink.
type Message struct {
	Kind       string
	ChatID     int64
	MessageID  int
	Screen     *domain.Screen
	Text       string
	CallbackID string
}

// Sink is an in-memory sender.Sink that records every successful call.
// Chats listed in FailChats fail with the mapped error and are not recorded.
type Sink struct {
	mu        sync.Mutex
	messages  []Message
	failChats map[int64]error
}

// NewSink creates an empty recording sink.
func NewSink() *Sink {
	return &Sink{failChats: make(map[int64]error)}
}

// FailChat makes every send to chatID return err.
func (s *Sink) FailChat(chatID int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failChats[chatID] = err
}

// Messages returns a copy of the recorded calls in order.
func (s *Sink) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// To returns the recorded calls addressed to chatID.
func (s *Sink) To(chatID int64) []Message {
	var out []Message
	for _, m := range s.Messages() {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (s *Sink) record(m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failChats[m.ChatID]; ok && m.Kind != KindCallback {
		return err
	}
	s.messages = append(s.messages, m)
	return nil
}

func copyScreen(screen *domain.Screen) *domain.Screen {
	c := *screen
	return &c
}

func (s *Sink) SendScreen(_ context.Context, chatID int64, screen *domain.Screen) error {
	return s.record(Message{Kind: KindScreen, ChatID: chatID, Screen: copyScreen(screen)})
}

func (s *Sink) EditScreen(_ context.Context, chatID int64, messageID int, screen *domain.Screen) error {
	return s.record(Message{Kind: KindEdit, ChatID: chatID, MessageID: messageID, Screen: copyScreen(screen)})
}

func (s *Sink) SendSnapshot(_ context.Context, chatID int64, screen *domain.Screen) error {
	return s.record(Message{Kind: KindSnapshot, ChatID: chatID, Screen: copyScreen(screen)})
}

func (s *Sink) SendText(_ context.Context, chatID int64, text string) error {
	return s.record(Message{Kind: KindText, ChatID: chatID, Text: text})
}

func (s *Sink) ReplyText(_ context.Context, chatID int64, replyTo int, text string) error {
	return s.record(Message{Kind: KindReply, ChatID: chatID, MessageID: replyTo, Text: text})
}

func (s *Sink) AnswerCallback(_ context.Context, callbackID, text string) error {
	return s.record(Message{Kind: KindCallback, CallbackID: callbackID, Text: text})
}
