package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/event-portal/internal/application"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantRetry  string
	}{
		{name: "validation", err: application.NewValidationError("email", "Missing email"), wantStatus: http.StatusBadRequest, wantError: "Missing email"},
		{name: "unauthenticated", err: application.ErrUnauthenticated, wantStatus: http.StatusUnauthorized, wantError: msgAuthRequired},
		{name: "unauthorized", err: application.ErrUnauthorized, wantStatus: http.StatusForbidden, wantError: msgForbidden},
		{name: "not found", err: fmt.Errorf("lookup: %w", application.ErrNotFound), wantStatus: http.StatusNotFound, wantError: msgInvalidSession},
		{name: "invalid token", err: application.ErrInvalidToken, wantStatus: http.StatusNotFound, wantError: msgInvalidSession},
		{name: "conflict", err: application.ErrAlreadyExists, wantStatus: http.StatusConflict, wantError: msgConflict},
		{name: "rate limited", err: &application.RateLimitError{RetryAfter: 1500 * time.Millisecond}, wantStatus: http.StatusTooManyRequests, wantError: "Too many requests, retry after 2s", wantRetry: "2"},
		{name: "unexpected", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError, wantError: msgInternal},
	}

	r := newResponder(discardLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.handleServiceError(context.Background(), rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			body := decodeBody[errorResponse](t, rec)
			if body.Success || body.Error != tt.wantError {
				t.Fatalf("unexpected body %+v", body)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.wantRetry {
				t.Fatalf("expected Retry-After %q, got %q", tt.wantRetry, got)
			}
		})
	}
}

func TestHandleServiceErrorIncludesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &application.ValidationError{FieldErrors: map[string]string{
		"suggestedTimeEnd":   "suggestedTimeEnd is required",
		"suggestedTimeStart": "suggestedTimeStart is required",
	}}

	newResponder(nil).handleServiceError(context.Background(), rec, err)

	body := decodeBody[errorResponse](t, rec)
	if body.Error != "suggestedTimeEnd is required" {
		t.Fatalf("expected first field message, got %q", body.Error)
	}
	if len(body.Errors) != 2 {
		t.Fatalf("expected both field errors, got %v", body.Errors)
	}
}

func TestWriteJSONNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	newResponder(nil).writeJSON(context.Background(), rec, http.StatusNoContent, nil)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 204, got %d %q", rec.Code, rec.Body.String())
	}
}
