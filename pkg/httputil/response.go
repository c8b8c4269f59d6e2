package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/logger"
)

// Response is the JSON envelope returned by the bot's HTTP endpoints.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse represents an error in the standard response format.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// RoutePath returns the matched chi route pattern, or the raw path when no
// route matched. Path parameters such as the webhook secret never appear in
// the pattern.
func RoutePath(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// classify turns any error into an AppError. Bare sentinels get a generic
// message so internal detail is not echoed to callers.
func classify(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		e := apperrors.NotFound("resource", "")
		e.Message = "resource not found"
		return e
	case errors.Is(err, apperrors.ErrUnauthorized):
		return apperrors.Unauthorized("unauthorized")
	case errors.Is(err, apperrors.ErrInvalidInput):
		return apperrors.InvalidInput(err.Error())
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return apperrors.Unavailable("service unavailable")
	}
	return apperrors.Internal(err)
}

// WriteError writes a standardized error response and logs server-side
// failures with the request-scoped logger when one is present.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	appErr := classify(err)
	if appErr.Status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", RoutePath(r)),
		)
	}

	WriteJSON(w, appErr.Status, Response{
		Error: &ErrorResponse{
			Code:      appErr.Code,
			Message:   appErr.Message,
			RequestID: logger.CorrelationIDFromContext(r.Context()),
		},
	})
}
