package bot

import (
	"context"
	"errors"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrQueueClosed is returned by Push after the queue was closed.
var ErrQueueClosed = errors.New("update queue closed")

// AllowedUpdates are the update types the bot subscribes to.
var AllowedUpdates = []string{"message", "callback_query"}

// UpdatesAPI is the long polling part of *tgbotapi.BotAPI.
type UpdatesAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Poll starts long polling and returns the update stream. Polling stops when
// ctx is cancelled and the stream is closed after the pending request ends.
func Poll(ctx context.Context, api UpdatesAPI, timeoutSecs int) tgbotapi.UpdatesChannel {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeoutSecs
	cfg.AllowedUpdates = AllowedUpdates

	updates := api.GetUpdatesChan(cfg)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	return updates
}

// WebhookQueue hands updates received over HTTP to the dispatcher.
type WebhookQueue struct {
	mu     sync.RWMutex
	ch     chan tgbotapi.Update
	closed bool
}

// NewWebhookQueue creates a queue buffering up to size updates.
func NewWebhookQueue(size int) *WebhookQueue {
	return &WebhookQueue{ch: make(chan tgbotapi.Update, size)}
}

// Push enqueues an update, blocking while the buffer is full.
func (q *WebhookQueue) Push(ctx context.Context, update tgbotapi.Update) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- update:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Updates returns the stream consumed by Dispatcher.Run.
func (q *WebhookQueue) Updates() <-chan tgbotapi.Update {
	return q.ch
}

// Close stops accepting updates and closes the stream. It waits for
// in-progress pushes.
func (q *WebhookQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
