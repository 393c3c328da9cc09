package sqlite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/event-portal/internal/persistence"
)

// SeedData groups the raw rows loaded at bootstrap.
type SeedData struct {
	Attendance []persistence.AttendanceRow
	Sessions   []persistence.SessionSummaryRow
	Feedback   []persistence.FeedbackRow
}

// Empty reports whether there is nothing to insert.
func (d SeedData) Empty() bool {
	return len(d.Attendance) == 0 && len(d.Sessions) == 0 && len(d.Feedback) == 0
}

// Seed inserts rows, assigning uuids to rows without an id. Tables that
// already hold data are left alone so repeated startups do not duplicate rows.
func (s *Storage) Seed(ctx context.Context, data SeedData) error {
	if data.Empty() {
		return nil
	}

	counts := map[string]int{}
	for _, table := range []string{"attendance", "session_summaries", "feedback"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return fmt.Errorf("sqlite: count %s: %w", table, err)
		}
		counts[table] = n
	}

	if counts["session_summaries"] == 0 && len(data.Sessions) > 0 {
		rows := make([]persistence.SessionSummaryRow, len(data.Sessions))
		copy(rows, data.Sessions)
		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}
		if err := s.InsertSessionSummaries(ctx, rows); err != nil {
			return err
		}
	}
	if counts["attendance"] == 0 && len(data.Attendance) > 0 {
		rows := make([]persistence.AttendanceRow, len(data.Attendance))
		copy(rows, data.Attendance)
		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}
		if err := s.InsertAttendance(ctx, rows); err != nil {
			return err
		}
	}
	if counts["feedback"] == 0 && len(data.Feedback) > 0 {
		rows := make([]persistence.FeedbackRow, len(data.Feedback))
		copy(rows, data.Feedback)
		for i := range rows {
			if rows[i].ID == "" {
				rows[i].ID = uuid.NewString()
			}
		}
		if err := s.InsertFeedback(ctx, rows); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "analytics rows seeded",
		slog.Int("attendance", len(data.Attendance)),
		slog.Int("sessions", len(data.Sessions)),
		slog.Int("feedback", len(data.Feedback)),
	)
	return nil
}
