package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	checks    map[string]HealthChecker
	responder responder
	logger    *slog.Logger
}

func NewHealthHandler(checks map[string]HealthChecker, logger *slog.Logger) *HealthHandler {
	base := defaultLogger(logger)
	return &HealthHandler{checks: checks, responder: newResponder(base), logger: base}
}

type healthDTO struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	body := healthDTO{Status: "ok"}
	status := http.StatusOK
	if len(h.checks) > 0 {
		body.Dependencies = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check.Ping(ctx); err != nil {
			handlerLogger(r.Context(), h.logger, "HealthHandler", "ServeHTTP", "dependency", name).
				WarnContext(r.Context(), "dependency unhealthy", "error", err)
			body.Dependencies[name] = "unavailable"
			body.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		body.Dependencies[name] = "ok"
	}

	h.responder.writeJSON(r.Context(), w, status, successResponse{Success: status == http.StatusOK, Data: body})
}
