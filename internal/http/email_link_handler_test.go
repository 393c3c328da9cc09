package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/testfixtures"
)

func postForm(t *testing.T, handler http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSubmitSuggestTopicDeclinesAndClearsTimeSuggestion(t *testing.T) {
	fixture := testfixtures.NewInvitationFixture(
		testfixtures.WithInvitationID("s1"),
		testfixtures.WithInvitationToken("tok123"),
		testfixtures.WithInvitationDecline("TimeConflict", "", "2024-02-01T10:00:00Z", "2024-02-01T11:00:00Z", "mornings only"),
	)
	srv := newTestServer(t, fixture.Application())

	rec := postForm(t, srv.handler, "/sessions/s1/respond/suggest-topic", url.Values{
		"token":          {"tok123"},
		"suggestedTopic": {"New AI trends"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html response, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "New AI trends") {
		t.Fatalf("confirmation page does not echo the topic: %s", rec.Body.String())
	}

	got := srv.store.get(t, "s1")
	if got.InviteStatus != application.InviteStatusDeclined {
		t.Fatalf("expected Declined, got %q", got.InviteStatus)
	}
	if got.RejectionReason == nil || *got.RejectionReason != application.RejectionSuggestedTopic {
		t.Fatalf("expected SuggestedTopic reason, got %v", got.RejectionReason)
	}
	if got.SuggestedTopic == nil || *got.SuggestedTopic != "New AI trends" {
		t.Fatalf("unexpected suggested topic %v", got.SuggestedTopic)
	}
	if got.SuggestedTimeStart != nil || got.SuggestedTimeEnd != nil || got.OptionalQuery != nil {
		t.Fatalf("expected time suggestion cleared, got %v %v %v", got.SuggestedTimeStart, got.SuggestedTimeEnd, got.OptionalQuery)
	}
	if len(srv.limiter.calls) != 1 || srv.limiter.calls[0] != "203.0.113.7|/sessions/s1/respond/suggest-topic" {
		t.Fatalf("unexpected rate limit keys %v", srv.limiter.calls)
	}
}

func TestSubmitSuggestTimeWithWrongTokenLeavesRecordUnchanged(t *testing.T) {
	fixture := testfixtures.NewInvitationFixture(
		testfixtures.WithInvitationID("s1"),
		testfixtures.WithInvitationToken("tok123"),
	)
	before := fixture.Application()
	srv := newTestServer(t, before)

	rec := postForm(t, srv.handler, "/sessions/s1/respond/suggest-time", url.Values{
		"token":              {"bad"},
		"suggestedTimeStart": {"2024-02-01T10:00"},
		"suggestedTimeEnd":   {"2024-02-01T11:00"},
	})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), msgInvalidSession) {
		t.Fatalf("expected generic invalid message, got %s", rec.Body.String())
	}
	if srv.store.updates != 0 {
		t.Fatalf("expected no updates, got %d", srv.store.updates)
	}
	if got := srv.store.get(t, "s1"); got.InviteStatus != before.InviteStatus || got.RejectionReason != nil {
		t.Fatalf("record changed: %+v", got)
	}
}

func TestSubmitSuggestTime(t *testing.T) {
	fixture := testfixtures.NewInvitationFixture(
		testfixtures.WithInvitationID("s1"),
		testfixtures.WithInvitationToken("tok123"),
		testfixtures.WithInvitationDecline("SuggestedTopic", "Robotics", "", "", ""),
	)

	tests := []struct {
		name       string
		id         string
		form       url.Values
		wantStatus int
		wantBody   string
	}{
		{
			name:       "records suggested window",
			id:         "s1",
			form:       url.Values{"token": {"tok123"}, "suggestedTimeStart": {"2024-02-01T10:00"}, "suggestedTimeEnd": {"2024-02-01T11:30"}, "optionalQuery": {"Afternoons work better"}},
			wantStatus: http.StatusOK,
			wantBody:   "10:00 AM - 11:30 AM",
		},
		{
			name:       "missing token",
			id:         "s1",
			form:       url.Values{"suggestedTimeStart": {"2024-02-01T10:00"}, "suggestedTimeEnd": {"2024-02-01T11:30"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing token",
		},
		{
			name:       "missing end",
			id:         "s1",
			form:       url.Values{"token": {"tok123"}, "suggestedTimeStart": {"2024-02-01T10:00"}},
			wantStatus: http.StatusBadRequest,
			wantBody:   "suggestedTimeEnd is required",
		},
		{
			name:       "unknown session",
			id:         "missing",
			form:       url.Values{"token": {"tok123"}, "suggestedTimeStart": {"2024-02-01T10:00"}, "suggestedTimeEnd": {"2024-02-01T11:30"}},
			wantStatus: http.StatusNotFound,
			wantBody:   msgInvalidSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, fixture.Application())
			rec := postForm(t, srv.handler, "/sessions/"+tt.id+"/respond/suggest-time", tt.form)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			got := srv.store.get(t, "s1")
			if got.RejectionReason == nil || *got.RejectionReason != application.RejectionTimeConflict {
				t.Fatalf("expected TimeConflict, got %v", got.RejectionReason)
			}
			if got.SuggestedTopic != nil {
				t.Fatalf("expected topic cleared, got %q", *got.SuggestedTopic)
			}
			if got.OptionalQuery == nil || *got.OptionalQuery != "Afternoons work better" {
				t.Fatalf("unexpected comment %v", got.OptionalQuery)
			}
		})
	}
}

func TestSuggestTimeFormValidation(t *testing.T) {
	fixture := testfixtures.NewInvitationFixture(
		testfixtures.WithInvitationID("s1"),
		testfixtures.WithInvitationToken("tok123"),
		testfixtures.WithInvitationTitle("Keynote"),
	)
	srv := newTestServer(t, fixture.Application())

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "renders form", target: "/sessions/s1/respond/suggest-time?token=tok123", wantStatus: http.StatusOK, wantBody: `name="token" value="tok123"`},
		{name: "missing token", target: "/sessions/s1/respond/suggest-time", wantStatus: http.StatusBadRequest, wantBody: msgMissingTokenPage},
		{name: "unknown session", target: "/sessions/nope/respond/suggest-time?token=tok123", wantStatus: http.StatusNotFound, wantBody: msgInvalidSession},
		{name: "token mismatch", target: "/sessions/s1/respond/suggest-time?token=other", wantStatus: http.StatusForbidden, wantBody: msgInvalidTokenPage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv.handler, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}

	rec := get(t, srv.handler, "/sessions/s1/respond/suggest-time?token=tok123")
	start, _ := application.ParseTimestamp(fixture.StartTime)
	if want := start.Format(datetimeLocalLayout); !strings.Contains(rec.Body.String(), want) {
		t.Fatalf("expected form pre-filled with %q", want)
	}
	if !strings.Contains(rec.Body.String(), "Keynote") {
		t.Fatal("expected session title on form")
	}
}

func TestSuggestTopicOneShotLink(t *testing.T) {
	fixture := testfixtures.NewInvitationFixture(
		testfixtures.WithInvitationID("s1"),
		testfixtures.WithInvitationToken("tok123"),
	)
	srv := newTestServer(t, fixture.Application())

	rec := get(t, srv.handler, "/sessions/s1/respond/suggest-topic?token=tok123&topic="+url.QueryEscape("Quantum <networks>"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Quantum &lt;networks&gt;") {
		t.Fatalf("expected escaped topic on confirmation page, got %s", rec.Body.String())
	}
	got := srv.store.get(t, "s1")
	if got.SuggestedTopic == nil || *got.SuggestedTopic != "Quantum <networks>" {
		t.Fatalf("unexpected topic %v", got.SuggestedTopic)
	}

	form := get(t, srv.handler, "/sessions/s1/respond/suggest-topic?token=tok123")
	if form.Code != http.StatusOK || !strings.Contains(form.Body.String(), `name="suggestedTopic"`) {
		t.Fatalf("expected topic form, got %d: %s", form.Code, form.Body.String())
	}

	wrong := get(t, srv.handler, "/sessions/s1/respond/suggest-topic?token=bad&topic=x")
	if wrong.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for one-shot with wrong token, got %d", wrong.Code)
	}
}

func TestSubmitSuggestTopicAcceptsJSON(t *testing.T) {
	fixture := testfixtures.NewInvitationFixture(
		testfixtures.WithInvitationID("s1"),
		testfixtures.WithInvitationToken("tok123"),
	)
	srv := newTestServer(t, fixture.Application())

	req := httptest.NewRequest(http.MethodPost, "/sessions/s1/respond/suggest-topic", strings.NewReader(`{"token":"tok123","suggestedTopic":"Edge AI"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := srv.store.get(t, "s1"); got.SuggestedTopic == nil || *got.SuggestedTopic != "Edge AI" {
		t.Fatalf("unexpected topic %v", got.SuggestedTopic)
	}
}

func TestSubmitSuggestionRateLimited(t *testing.T) {
	fixture := testfixtures.NewInvitationFixture(
		testfixtures.WithInvitationID("s1"),
		testfixtures.WithInvitationToken("tok123"),
	)
	srv := newTestServer(t, fixture.Application())
	srv.limiter.err = &application.RateLimitError{RetryAfter: 30 * time.Second}

	rec := postForm(t, srv.handler, "/sessions/s1/respond/suggest-topic", url.Values{"token": {"tok123"}, "suggestedTopic": {"x"}})

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Too many requests, retry after 30s") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if srv.store.updates != 0 {
		t.Fatal("rate limited request must not reach the store")
	}
}

func TestDisplayWindowDegrades(t *testing.T) {
	tests := []struct {
		start, end string
		want       string
	}{
		{"", "", application.DisplayMissing},
		{"garbage", "2024-01-01T10:00:00Z", application.DisplayInvalid},
		{"2024-01-02T15:00:00Z", "2024-01-02T16:30:00Z", "Tue, Jan 2, 2024, 3:00 PM - 4:30 PM"},
	}
	for _, tt := range tests {
		if got := displayWindow(tt.start, tt.end); got != tt.want {
			t.Errorf("displayWindow(%q, %q) = %q, want %q", tt.start, tt.end, got, tt.want)
		}
	}
}
