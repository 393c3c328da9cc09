package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/example/event-portal/internal/application"
)

const (
	msgBadRequestBody   = "Invalid request body"
	msgAuthRequired     = "Authentication required"
	msgForbidden        = "You do not have permission to perform this action"
	msgInvalidSession   = "Invalid session or token"
	msgConflict         = "Resource already exists"
	msgInternal         = "Internal server error"
	msgMissingEmail     = "Missing email"
	msgInvalidTokenPage = "This link is not valid for the session"
	msgMissingTokenPage = "Missing token"
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

type successResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type errorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	r.writeJSON(ctx, w, status, successResponse{Success: true, Data: data})
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	if message == "" {
		message = http.StatusText(status)
	}
	r.writeJSON(ctx, w, status, errorResponse{Error: message})
}

// handleServiceError is the single place where service errors become HTTP envelopes.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	status, body := r.classify(ctx, err)

	var rateErr *application.RateLimitError
	if errors.As(err, &rateErr) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rateErr)))
	}
	r.writeJSON(ctx, w, status, body)
}

func (r responder) classify(ctx context.Context, err error) (int, errorResponse) {
	if err == nil {
		err = errors.New("unknown error")
	}

	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, errorResponse{Error: vErr.Message(), Errors: vErr.FieldErrors}
	case errors.Is(err, application.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: msgAuthRequired}
	case errors.Is(err, application.ErrUnauthorized):
		return http.StatusForbidden, errorResponse{Error: msgForbidden}
	case errors.Is(err, application.ErrInvalidToken), errors.Is(err, application.ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: msgInvalidSession}
	case errors.Is(err, application.ErrAlreadyExists):
		return http.StatusConflict, errorResponse{Error: msgConflict}
	case errors.Is(err, application.ErrRateLimited):
		return http.StatusTooManyRequests, errorResponse{Error: err.Error()}
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "error", err, "error_kind", application.ErrorKind(err))
		return http.StatusInternalServerError, errorResponse{Error: msgInternal}
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func retryAfterSeconds(err *application.RateLimitError) int {
	secs := int(err.RetryAfter.Seconds() + 0.5)
	if secs < 1 {
		secs = 1
	}
	return secs
}
