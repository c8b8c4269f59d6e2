package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/health"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/middleware"
)

// ServiceName labels HTTP metrics and spans.
const ServiceName = "storefront-bot"

// NewRouter creates a chi router with health, metrics and, when webhook is
// not nil, the Telegram webhook route.
func NewRouter(webhook *WebhookHandler, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	if webhook != nil {
		r.Post("/telegram/webhook/{secret}", webhook.ReceiveUpdate)
	}

	return r
}
