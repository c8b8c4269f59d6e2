package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/httputil"
)

// maxUpdateBytes bounds the size of a webhook request body.
const maxUpdateBytes = 1 << 20

// secretTokenHeader is set by Telegram when the webhook was registered with a
// secret token.
const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateQueue accepts updates for asynchronous processing.
type UpdateQueue interface {
	Push(ctx context.Context, update tgbotapi.Update) error
}

// WebhookHandler receives Telegram updates pushed over HTTPS.
type WebhookHandler struct {
	queue  UpdateQueue
	secret string
	logger *slog.Logger
}

// NewWebhookHandler creates a new webhook handler. Requests must carry secret
// in the URL path.
func NewWebhookHandler(queue UpdateQueue, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		queue:  queue,
		secret: secret,
		logger: logger,
	}
}

func (h *WebhookHandler) authorized(r *http.Request) bool {
	if subtle.ConstantTimeCompare([]byte(chi.URLParam(r, "secret")), []byte(h.secret)) != 1 {
		return false
	}
	if token := r.Header.Get(secretTokenHeader); token != "" {
		return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
	}
	return true
}

// ReceiveUpdate handles POST /telegram/webhook/{secret}.
func (h *WebhookHandler) ReceiveUpdate(w http.ResponseWriter, r *http.Request) {
	if h.secret == "" || !h.authorized(r) {
		httputil.WriteError(w, r, apperrors.NotFound("webhook", "path"), h.logger)
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid update body"), h.logger)
		return
	}

	if err := h.queue.Push(r.Context(), update); err != nil {
		h.logger.WarnContext(r.Context(), "failed to enqueue update",
			slog.Int("update_id", update.UpdateID),
			slog.String("error", err.Error()),
		)
		httputil.WriteError(w, r, apperrors.Unavailable("update queue unavailable"), h.logger)
		return
	}

	w.WriteHeader(http.StatusOK)
}
