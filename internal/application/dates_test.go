package application

import (
	"testing"
	"time"
)

func TestDisplayFormatting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		start     string
		end       string
		wantDate  string
		wantRange string
	}{
		{name: "rfc3339", start: "2024-03-05T14:00:00Z", end: "2024-03-05T15:30:00Z", wantDate: "Tue, Mar 5, 2024", wantRange: "2:00 PM - 3:30 PM"},
		{name: "datetime-local", start: "2024-03-05T14:00", end: "2024-03-05T15:00", wantDate: "Tue, Mar 5, 2024", wantRange: "2:00 PM - 3:00 PM"},
		{name: "missing", start: "", end: "", wantDate: "TBD", wantRange: "TBD"},
		{name: "malformed", start: "not-a-date", end: "2024-03-05T15:00:00Z", wantDate: "Invalid Date", wantRange: "Invalid Date"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatDisplayDate(tc.start); got != tc.wantDate {
				t.Fatalf("FormatDisplayDate(%q) = %q, want %q", tc.start, got, tc.wantDate)
			}
			if got := FormatTimeRange(tc.start, tc.end); got != tc.wantRange {
				t.Fatalf("FormatTimeRange = %q, want %q", got, tc.wantRange)
			}
		})
	}
}

func TestDaysUntilAndPhase(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)

	if d := DaysUntil("2024-03-07T08:00:00Z", now); d == nil || *d != 2 {
		t.Fatalf("expected 2 days, got %v", d)
	}
	if d := DaysUntil("2024-03-04T08:00:00Z", now); d == nil || *d != -1 {
		t.Fatalf("expected -1 days, got %v", d)
	}
	if d := DaysUntil("9999-01-01T00:00:00Z", now); d == nil || *d != 2912745 {
		t.Fatalf("expected 2912745 days to 9999-01-01, got %v", d)
	}
	if d := DaysUntil("0001-01-01T00:00:00Z", now); d == nil || *d != -738949 {
		t.Fatalf("expected -738949 days to 0001-01-01, got %v", d)
	}
	if d := DaysUntil("garbage", now); d != nil {
		t.Fatalf("expected nil for malformed date, got %v", *d)
	}

	cases := []struct {
		start, end string
		want       SessionPhase
	}{
		{start: "2024-03-05T15:00:00Z", end: "2024-03-05T16:00:00Z", want: SessionPhaseUpcoming},
		{start: "2024-03-05T14:00:00Z", end: "2024-03-05T15:00:00Z", want: SessionPhaseOngoing},
		{start: "2024-03-05T13:00:00Z", end: "2024-03-05T14:00:00Z", want: SessionPhaseCompleted},
		{start: "2024-03-05T13:00:00Z", end: "", want: SessionPhaseOngoing},
		{start: "", end: "", want: SessionPhaseUnknown},
	}
	for _, tc := range cases {
		if got := PhaseOf(tc.start, tc.end, now); got != tc.want {
			t.Fatalf("PhaseOf(%q, %q) = %s, want %s", tc.start, tc.end, got, tc.want)
		}
	}
}
