package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
	return exporter
}

// serveTraced routes one request through a chi router using Tracing and
// returns the recorded response and the single finished span.
func serveTraced(t *testing.T, pattern string, status int, req *http.Request) (*httptest.ResponseRecorder, sdktrace.ReadOnlySpan) {
	t.Helper()
	exporter := recordSpans(t)

	r := chi.NewRouter()
	r.Use(Tracing("storefront-bot"))
	r.Method(req.Method, pattern, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	spans := exporter.GetSpans().Snapshots()
	require.Len(t, spans, 1)
	return rec, spans[0]
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (any, bool) {
	for _, a := range span.Attributes() {
		if string(a.Key) == key {
			return a.Value.AsInterface(), true
		}
	}
	return nil, false
}

func TestTracing_NamesSpanByRoutePattern(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/s3cr3t", nil)
	_, span := serveTraced(t, "/telegram/webhook/{secret}", http.StatusOK, req)

	assert.Equal(t, "POST /telegram/webhook/{secret}", span.Name())
	route, ok := spanAttr(span, "http.route")
	require.True(t, ok)
	assert.Equal(t, "/telegram/webhook/{secret}", route)
	assert.NotContains(t, span.Name(), "s3cr3t")
}

func TestTracing_Status(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   codes.Code
	}{
		{"ok", http.StatusOK, codes.Unset},
		{"client error", http.StatusNotFound, codes.Unset},
		{"server error", http.StatusServiceUnavailable, codes.Error},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			_, span := serveTraced(t, "/health/ready", tt.status, req)

			code, ok := spanAttr(span, "http.status_code")
			require.True(t, ok)
			assert.Equal(t, int64(tt.status), code)
			assert.Equal(t, tt.want, span.Status().Code)
		})
	}
}

func TestTracing_ContinuesIncomingTrace(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	rec, span := serveTraced(t, "/health/live", http.StatusOK, req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", span.SpanContext().TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", span.Parent().SpanID().String())
	assert.NotEmpty(t, rec.Header().Get("traceparent"))
}

func TestTracing_InjectsTraceparentOnFreshTrace(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec, span := serveTraced(t, "/metrics", http.StatusOK, req)

	assert.False(t, span.Parent().IsValid())
	assert.Contains(t, rec.Header().Get("traceparent"), span.SpanContext().TraceID().String())
}

func TestScheme(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "http", scheme(plain))

	proxied := httptest.NewRequest(http.MethodGet, "/", nil)
	proxied.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https", scheme(proxied))
}
