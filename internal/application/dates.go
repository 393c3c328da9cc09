package application

import (
	"strings"
	"time"
)

const (
	// DisplayMissing is shown for absent dates.
	DisplayMissing = "TBD"
	// DisplayInvalid is shown for dates that cannot be parsed.
	DisplayInvalid = "Invalid Date"

	displayDateLayout = "Mon, Jan 2, 2006"
	displayTimeLayout = "3:04 PM"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.DateOnly,
}

// ParseTimestamp accepts ISO-8601 variants including the HTML datetime-local
// layout. Values without a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp is the storage encoding of instants.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func displayOrFallback(value string, format func(time.Time) string) string {
	if strings.TrimSpace(value) == "" {
		return DisplayMissing
	}
	t, ok := ParseTimestamp(value)
	if !ok {
		return DisplayInvalid
	}
	return format(t)
}

// FormatDisplayDate renders a stored timestamp as a calendar date.
func FormatDisplayDate(value string) string {
	return displayOrFallback(value, func(t time.Time) string { return t.Format(displayDateLayout) })
}

// FormatDisplayTime renders a stored timestamp as a wall clock time.
func FormatDisplayTime(value string) string {
	return displayOrFallback(value, func(t time.Time) string { return t.Format(displayTimeLayout) })
}

// FormatDisplayDateTime renders a stored timestamp with date and time.
func FormatDisplayDateTime(value string) string {
	return displayOrFallback(value, func(t time.Time) string {
		return t.Format(displayDateLayout + " " + displayTimeLayout)
	})
}

// FormatTimeRange renders "3:00 PM - 4:30 PM". Either bound missing yields TBD
// and either bound unparseable yields Invalid Date.
func FormatTimeRange(start, end string) string {
	if strings.TrimSpace(start) == "" || strings.TrimSpace(end) == "" {
		return DisplayMissing
	}
	s, okStart := ParseTimestamp(start)
	e, okEnd := ParseTimestamp(end)
	if !okStart || !okEnd {
		return DisplayInvalid
	}
	return s.Format(displayTimeLayout) + " - " + e.Format(displayTimeLayout)
}

// DaysUntil returns the number of calendar days from now to start, negative for
// past sessions, or nil when start is missing or invalid.
func DaysUntil(start string, now time.Time) *int {
	t, ok := ParseTimestamp(start)
	if !ok {
		return nil
	}
	days := int(dayNumber(t) - dayNumber(now))
	return &days
}

// dayNumber counts UTC calendar days since the Unix epoch. Working in Unix
// seconds keeps far-apart dates clear of the time.Duration range.
func dayNumber(t time.Time) int64 {
	u := t.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Unix() / secondsPerDay
}

const secondsPerDay = 24 * 60 * 60

// PhaseOf classifies a session relative to now.
func PhaseOf(start, end string, now time.Time) SessionPhase {
	s, okStart := ParseTimestamp(start)
	if !okStart {
		return SessionPhaseUnknown
	}
	if now.Before(s) {
		return SessionPhaseUpcoming
	}
	e, okEnd := ParseTimestamp(end)
	if !okEnd || now.Before(e) {
		return SessionPhaseOngoing
	}
	return SessionPhaseCompleted
}
