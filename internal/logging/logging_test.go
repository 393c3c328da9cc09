package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestScopedPrefersRequestLogger(t *testing.T) {
	var requestBuf, fallbackBuf bytes.Buffer
	request := slog.New(slog.NewJSONHandler(&requestBuf, nil)).With("request_id", "req-1")
	fallback := slog.New(slog.NewJSONHandler(&fallbackBuf, nil))

	ctx := ContextWithLogger(context.Background(), request)
	Scoped(ctx, fallback, "handler", "EmailLinkHandler", "SubmitSuggestTopic", "invitation_id", "s1").Info("done")

	if fallbackBuf.Len() != 0 {
		t.Fatalf("expected fallback logger to stay silent, got %s", fallbackBuf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal(requestBuf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	want := map[string]string{
		"request_id":    "req-1",
		"handler":       "EmailLinkHandler",
		"operation":     "SubmitSuggestTopic",
		"invitation_id": "s1",
	}
	for key, value := range want {
		if entry[key] != value {
			t.Fatalf("expected %s=%q, got %v", key, value, entry[key])
		}
	}
}

func TestScopedFallsBack(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewTextHandler(&buf, nil))

	Scoped(context.Background(), fallback, "service", "ReportService", "").Info("built")

	out := buf.String()
	if !strings.Contains(out, "service=ReportService") || strings.Contains(out, "operation=") {
		t.Fatalf("unexpected log line %q", out)
	}
}

func TestTokenPresenceNeverCarriesToken(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logger.Info("link opened", TokenPresence("secret-token"))
	logger.Info("link opened", TokenPresence(""))

	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Fatalf("token leaked into logs: %q", out)
	}
	if !strings.Contains(out, "token_present=true") || !strings.Contains(out, "token_present=false") {
		t.Fatalf("expected both presence flags, got %q", out)
	}
}

func TestContextWithLoggerIgnoresNil(t *testing.T) {
	ctx := context.Background()
	if got := ContextWithLogger(ctx, nil); got != ctx {
		t.Fatal("expected context to be returned unchanged")
	}
	if FromContext(ctx) != nil {
		t.Fatal("expected no logger on a bare context")
	}
}
