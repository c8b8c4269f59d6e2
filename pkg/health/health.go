package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/httputil"
)

// checkTimeout bounds a whole readiness check.
const checkTimeout = 5 * time.Second

// Checker is a function that checks the health of a dependency.
type Checker func(ctx context.Context) error

// Status represents the health status of a component.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

// Response is the JSON response returned by the health endpoint.
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status    Status `json:"status"`
	Critical  bool   `json:"critical"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type registration struct {
	check    Checker
	critical bool
}

// Handler provides HTTP health check endpoints. A failing critical check
// makes the bot unready (503); a failing non-critical check only degrades it.
type Handler struct {
	mu       sync.RWMutex
	checkers map[string]registration
}

// NewHandler creates a new health check handler.
func NewHandler() *Handler {
	return &Handler{
		checkers: make(map[string]registration),
	}
}

// Register adds a named critical health checker.
func (h *Handler) Register(name string, checker Checker) {
	h.RegisterCritical(name, checker)
}

// RegisterCritical adds a checker whose failure marks the bot as down.
func (h *Handler) RegisterCritical(name string, checker Checker) {
	h.register(name, checker, true)
}

// RegisterNonCritical adds a checker whose failure marks the bot as degraded.
// The update deduplicator and the event producer fail open, so they belong here.
func (h *Handler) RegisterNonCritical(name string, checker Checker) {
	h.register(name, checker, false)
}

func (h *Handler) register(name string, checker Checker, critical bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = registration{check: checker, critical: critical}
}

// LivenessHandler returns a simple liveness check (always 200 if the process is running).
func (h *Handler) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, Response{
			Status:    StatusUp,
			Timestamp: time.Now().UTC(),
		})
	}
}

// ReadinessHandler runs every registered check concurrently and returns 200
// when all critical checks pass, 503 otherwise.
func (h *Handler) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		defer cancel()

		h.mu.RLock()
		names := make([]string, 0, len(h.checkers))
		regs := make([]registration, 0, len(h.checkers))
		for name, reg := range h.checkers {
			names = append(names, name)
			regs = append(regs, reg)
		}
		h.mu.RUnlock()

		results := make([]CheckResult, len(regs))
		var g errgroup.Group
		for i, reg := range regs {
			g.Go(func() error {
				start := time.Now()
				err := reg.check(ctx)
				results[i] = CheckResult{
					Status:    StatusUp,
					Critical:  reg.critical,
					LatencyMs: time.Since(start).Milliseconds(),
				}
				if err != nil {
					results[i].Status = StatusDown
					results[i].Error = err.Error()
				}
				return nil
			})
		}
		_ = g.Wait()

		checks := make(map[string]CheckResult, len(results))
		overall := StatusUp
		for i, res := range results {
			checks[names[i]] = res
			if res.Status == StatusUp {
				continue
			}
			switch {
			case res.Critical:
				overall = StatusDown
			case overall == StatusUp:
				overall = StatusDegraded
			}
		}

		code := http.StatusOK
		if overall == StatusDown {
			code = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, Response{
			Status:    overall,
			Timestamp: time.Now().UTC(),
			Checks:    checks,
		})
	}
}
