package http

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/example/event-portal/internal/analytics"
	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/testfixtures"
)

// staticSource serves fixed raw rows to the report service.
type staticSource struct {
	data analytics.Dataset
}

func (s staticSource) ListAttendance(ctx context.Context) ([]analytics.RawAttendanceData, error) {
	return s.data.Attendance, nil
}

func (s staticSource) ListSessionSummaries(ctx context.Context) ([]analytics.RawSessionData, error) {
	return s.data.Sessions, nil
}

func (s staticSource) ListFeedback(ctx context.Context) ([]analytics.RawFeedbackData, error) {
	return s.data.Feedback, nil
}

func newReportServer(t *testing.T) (http.Handler, *application.SessionTokenService) {
	t.Helper()

	factory := testfixtures.NewServiceFactory()
	checkIn := testfixtures.ReferenceTime()
	source := staticSource{data: analytics.Dataset{
		Attendance: []analytics.RawAttendanceData{{
			ID: "a1", UserID: "u1", SessionID: "s1", SessionName: "Keynote",
			SessionStartTime: checkIn.Add(-5 * time.Minute), SessionEndTime: checkIn.Add(55 * time.Minute),
			HallName: "Hall A", HallCapacity: 10, CheckInTime: &checkIn, CheckInMethod: "qr",
		}},
		Sessions: []analytics.RawSessionData{{
			ID: "s1", Title: "Keynote", FacultyID: "f1", FacultyName: "Dr. Lee",
			StartTime: checkIn, EndTime: checkIn.Add(time.Hour),
			AttendanceCount: 8, Capacity: 10, AverageRating: 4.5,
		}},
	}}
	logger := discardLogger()
	service := factory.NewReportService(testfixtures.ReportServiceDeps{Source: source, Logger: logger})
	tokens := application.NewSessionTokenService(testJWTSecret, 0, factory.Clock.NowFunc())

	return NewRouter(RouterConfig{
		Reports:  NewReportHandler(service, logger),
		Sessions: tokens,
		Logger:   logger,
	}), tokens
}

func TestReportHandler(t *testing.T) {
	handler, tokens := newReportServer(t)
	organizer, _, err := tokens.Issue(testfixtures.OrganizerPrincipal())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	faculty, _, err := tokens.Issue(application.Principal{UserID: "f1", Email: "f1@example.com"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	tests := []struct {
		name            string
		target          string
		token           string
		wantStatus      int
		wantContentType string
		wantDisposition string
		wantBody        string
	}{
		{name: "json envelope", target: "/reports/analytics", token: organizer, wantStatus: http.StatusOK, wantContentType: "application/json", wantBody: `"totalCheckIns":1`},
		{name: "section", target: "/reports/faculty", token: organizer, wantStatus: http.StatusOK, wantContentType: "application/json", wantBody: `"name":"Dr. Lee"`},
		{name: "csv export", target: "/reports/attendance?format=csv", token: organizer, wantStatus: http.StatusOK, wantContentType: "text/csv", wantDisposition: `attachment; filename=attendance.csv`, wantBody: "metric,value\ntotalSessions,1\n"},
		{name: "json export", target: "/reports/sessions?format=json", token: organizer, wantStatus: http.StatusOK, wantContentType: "application/json", wantDisposition: `attachment; filename=sessions.json`},
		{name: "excel worksheet", target: "/reports/analytics?format=excel", token: organizer, wantStatus: http.StatusOK, wantContentType: "application/json", wantBody: `"headers":["metric","value"]`},
		{name: "unknown format", target: "/reports/analytics?format=pdf", token: organizer, wantStatus: http.StatusBadRequest, wantBody: "format must be json, csv or excel"},
		{name: "unknown section", target: "/reports/weather", token: organizer, wantStatus: http.StatusBadRequest, wantBody: "unknown report section"},
		{name: "faculty forbidden", target: "/reports/analytics", token: faculty, wantStatus: http.StatusForbidden},
		{name: "anonymous", target: "/reports/analytics", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := ""
			if tt.token != "" {
				auth = "Bearer " + tt.token
			}
			rec := doJSON(t, handler, http.MethodGet, tt.target, auth, "")

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			if tt.wantContentType != "" && !strings.HasPrefix(rec.Header().Get("Content-Type"), tt.wantContentType) {
				t.Fatalf("expected content type %q, got %q", tt.wantContentType, rec.Header().Get("Content-Type"))
			}
			if got := rec.Header().Get("Content-Disposition"); got != tt.wantDisposition {
				t.Fatalf("expected disposition %q, got %q", tt.wantDisposition, got)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("expected body to contain %q, got %s", tt.wantBody, rec.Body.String())
			}
		})
	}
}
