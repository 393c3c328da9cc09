package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/event-portal/internal/persistence"
)

// ListAttendance returns every attendance row ordered by id.
func (s *Storage) ListAttendance(ctx context.Context) ([]persistence.AttendanceRow, error) {
	const query = `
		SELECT id, user_id, session_id, session_name, session_start, session_end,
		       hall_name, hall_capacity, check_in_time, check_in_method
		FROM attendance
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list attendance: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]persistence.AttendanceRow, 0)
	for rows.Next() {
		var (
			row        persistence.AttendanceRow
			start, end string
			checkIn    sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.UserID, &row.SessionID, &row.SessionName, &start, &end,
			&row.HallName, &row.HallCapacity, &checkIn, &row.CheckInMethod); err != nil {
			return nil, fmt.Errorf("sqlite: scan attendance: %w", err)
		}
		if row.SessionStart, err = parseTime(start); err != nil {
			return nil, err
		}
		if row.SessionEnd, err = parseTime(end); err != nil {
			return nil, err
		}
		if row.CheckInTime, err = parseOptionalTime(checkIn); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate attendance: %w", err)
	}
	return out, nil
}

// ListSessionSummaries returns every session summary ordered by id.
func (s *Storage) ListSessionSummaries(ctx context.Context) ([]persistence.SessionSummaryRow, error) {
	const query = `
		SELECT id, title, faculty_id, faculty_name, hall_name, start_time, end_time,
		       capacity, attendance_count, average_rating, tags
		FROM session_summaries
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list session summaries: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]persistence.SessionSummaryRow, 0)
	for rows.Next() {
		var (
			row        persistence.SessionSummaryRow
			start, end string
			tags       string
		)
		if err := rows.Scan(&row.ID, &row.Title, &row.FacultyID, &row.FacultyName, &row.HallName,
			&start, &end, &row.Capacity, &row.AttendanceCount, &row.AverageRating, &tags); err != nil {
			return nil, fmt.Errorf("sqlite: scan session summary: %w", err)
		}
		if row.StartTime, err = parseTime(start); err != nil {
			return nil, err
		}
		if row.EndTime, err = parseTime(end); err != nil {
			return nil, err
		}
		if tags != "" {
			if err := json.Unmarshal([]byte(tags), &row.Tags); err != nil {
				return nil, fmt.Errorf("sqlite: decode tags for session %s: %w", row.ID, err)
			}
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate session summaries: %w", err)
	}
	return out, nil
}

// ListFeedback returns every feedback row ordered by creation time.
func (s *Storage) ListFeedback(ctx context.Context) ([]persistence.FeedbackRow, error) {
	const query = `
		SELECT id, session_id, user_id, rating, comment, created_at
		FROM feedback
		ORDER BY created_at, id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list feedback: %w", mapError(err))
	}
	defer rows.Close()

	out := make([]persistence.FeedbackRow, 0)
	for rows.Next() {
		var (
			row       persistence.FeedbackRow
			createdAt string
		)
		if err := rows.Scan(&row.ID, &row.SessionID, &row.UserID, &row.Rating, &row.Comment, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scan feedback: %w", err)
		}
		if row.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate feedback: %w", err)
	}
	return out, nil
}

// InsertAttendance stores rows in one transaction.
func (s *Storage) InsertAttendance(ctx context.Context, rows []persistence.AttendanceRow) error {
	const query = `
		INSERT INTO attendance (id, user_id, session_id, session_name, session_start, session_end,
		                        hall_name, hall_capacity, check_in_time, check_in_method)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("sqlite: prepare attendance insert: %w", err)
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row.ID, row.UserID, row.SessionID, row.SessionName,
				formatTime(row.SessionStart), formatTime(row.SessionEnd), row.HallName, row.HallCapacity,
				formatOptionalTime(row.CheckInTime), row.CheckInMethod); err != nil {
				return fmt.Errorf("sqlite: insert attendance %s: %w", row.ID, mapError(err))
			}
		}
		return nil
	})
}

// InsertSessionSummaries stores rows in one transaction.
func (s *Storage) InsertSessionSummaries(ctx context.Context, rows []persistence.SessionSummaryRow) error {
	const query = `
		INSERT INTO session_summaries (id, title, faculty_id, faculty_name, hall_name, start_time, end_time,
		                               capacity, attendance_count, average_rating, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("sqlite: prepare session summary insert: %w", err)
		}
		defer stmt.Close()
		for _, row := range rows {
			tags := row.Tags
			if tags == nil {
				tags = []string{}
			}
			encoded, err := json.Marshal(tags)
			if err != nil {
				return fmt.Errorf("sqlite: encode tags for session %s: %w", row.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, row.ID, row.Title, row.FacultyID, row.FacultyName, row.HallName,
				formatTime(row.StartTime), formatTime(row.EndTime), row.Capacity, row.AttendanceCount,
				row.AverageRating, string(encoded)); err != nil {
				return fmt.Errorf("sqlite: insert session summary %s: %w", row.ID, mapError(err))
			}
		}
		return nil
	})
}

// InsertFeedback stores rows in one transaction.
func (s *Storage) InsertFeedback(ctx context.Context, rows []persistence.FeedbackRow) error {
	const query = `
		INSERT INTO feedback (id, session_id, user_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("sqlite: prepare feedback insert: %w", err)
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row.ID, row.SessionID, row.UserID, row.Rating, row.Comment,
				formatTime(row.CreatedAt)); err != nil {
				return fmt.Errorf("sqlite: insert feedback %s: %w", row.ID, mapError(err))
			}
		}
		return nil
	})
}
