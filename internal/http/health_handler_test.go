package http

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthChecker
		wantStatus int
		wantBody   healthDTO
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
			wantBody:   healthDTO{Status: "ok"},
		},
		{
			name:       "redis down",
			checks:     map[string]HealthChecker{"sqlite": pingFunc(func(context.Context) error { return nil }), "redis": pingFunc(func(context.Context) error { return errors.New("dial tcp: refused") })},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   healthDTO{Status: "degraded", Dependencies: map[string]string{"sqlite": "ok", "redis": "unavailable"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewRouter(RouterConfig{Health: NewHealthHandler(tt.checks, discardLogger()), Logger: discardLogger()})
			rec := get(t, handler, "/health")

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			body := decodeBody[struct {
				Success bool      `json:"success"`
				Data    healthDTO `json:"data"`
			}](t, rec)
			if body.Data.Status != tt.wantBody.Status || len(body.Data.Dependencies) != len(tt.wantBody.Dependencies) {
				t.Fatalf("unexpected body %+v", body)
			}
			for name, state := range tt.wantBody.Dependencies {
				if body.Data.Dependencies[name] != state {
					t.Fatalf("expected %s %s, got %s", name, state, body.Data.Dependencies[name])
				}
			}
		})
	}
}

func TestRouterUnknownRouteUsesEnvelope(t *testing.T) {
	handler := NewRouter(RouterConfig{Logger: discardLogger()})
	rec := get(t, handler, "/nope")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if body := decodeBody[errorResponse](t, rec); body.Error != "Not Found" {
		t.Fatalf("unexpected body %+v", body)
	}
}
