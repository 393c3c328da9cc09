package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/persistence"
	"github.com/example/event-portal/internal/persistence/sqlite"
)

type demoSession struct {
	title    string
	faculty  string
	name     string
	hall     string
	capacity int
	attended int
	rating   float64
	tags     []string
}

var demoSessions = []demoSession{
	{title: "Opening Keynote", faculty: "faculty-lee", name: "Dr. Lee", hall: "Hall A", capacity: 300, attended: 268, rating: 4.7, tags: []string{"Keynote", "AI"}},
	{title: "Clinical Data Pipelines", faculty: "faculty-osei", name: "Dr. Osei", hall: "Hall B", capacity: 120, attended: 84, rating: 4.1, tags: []string{"Data"}},
	{title: "Robotics in Surgery", faculty: "faculty-lee", name: "Dr. Lee", hall: "Hall B", capacity: 120, attended: 97, rating: 3.8, tags: []string{"Robotics"}},
	{title: "Ethics Roundtable", faculty: "faculty-ng", name: "Dr. Ng", hall: "Room 3", capacity: 40, attended: 19, rating: 2.9, tags: []string{"Ethics", "Panel"}},
}

var demoComments = []string{
	"Excellent speaker, very clear and engaging",
	"Good content but the slides were hard to read",
	"Too long and a bit boring",
	"Helpful examples, would attend again",
}

// seedDemoData fills empty analytics tables and replaces the invitation store
// with a small conference programme centred on start.
func seedDemoData(ctx context.Context, storage *sqlite.Storage, invitations persistence.InvitationRepository, start time.Time, logger *slog.Logger) error {
	day := start.UTC().Truncate(24 * time.Hour).Add(-24 * time.Hour)

	var data sqlite.SeedData
	for i, s := range demoSessions {
		sessionID := uuid.NewString()
		begin := day.Add(time.Duration(9+2*i) * time.Hour)
		end := begin.Add(time.Hour)
		data.Sessions = append(data.Sessions, persistence.SessionSummaryRow{
			ID: sessionID, Title: s.title, FacultyID: s.faculty, FacultyName: s.name, HallName: s.hall,
			StartTime: begin, EndTime: end, Capacity: s.capacity, AttendanceCount: s.attended,
			AverageRating: s.rating, Tags: s.tags,
		})

		for attendee := 0; attendee < 6; attendee++ {
			row := persistence.AttendanceRow{
				UserID: fmt.Sprintf("attendee-%02d", attendee), SessionID: sessionID, SessionName: s.title,
				SessionStart: begin, SessionEnd: end, HallName: s.hall, HallCapacity: s.capacity,
				CheckInMethod: "qr",
			}
			if attendee%3 == 2 {
				row.CheckInMethod = "manual"
			}
			if attendee != 5 {
				at := begin.Add(time.Duration(attendee*4-8) * time.Minute)
				row.CheckInTime = &at
			}
			data.Attendance = append(data.Attendance, row)
		}

		for j, comment := range demoComments {
			data.Feedback = append(data.Feedback, persistence.FeedbackRow{
				SessionID: sessionID, UserID: fmt.Sprintf("attendee-%02d", j),
				Rating: 5 - (i+j)%4, Comment: comment, CreatedAt: end.Add(time.Duration(j) * time.Minute),
			})
		}
	}

	if err := storage.Seed(ctx, data); err != nil {
		return err
	}

	upcoming := day.Add(7 * 24 * time.Hour)
	models := make([]persistence.Invitation, 0, len(demoSessions))
	for i, s := range demoSessions {
		begin := upcoming.Add(time.Duration(9+2*i) * time.Hour)
		models = append(models, persistence.Invitation{
			ID:           uuid.NewString(),
			Title:        s.title,
			FacultyID:    s.faculty,
			Email:        s.faculty + "@example.com",
			Place:        "Convention Centre",
			RoomName:     s.hall,
			StartTime:    application.FormatTimestamp(begin),
			EndTime:      application.FormatTimestamp(begin.Add(time.Hour)),
			Status:       string(application.SessionStatusConfirmed),
			InviteStatus: string(application.InviteStatusPending),
			InviteToken:  application.NewInviteToken(),
			CreatedAt:    start,
			UpdatedAt:    start,
		})
	}
	if err := invitations.ReplaceInvitations(ctx, models); err != nil {
		return err
	}

	logger.Info("demo data seeded", "sessions", len(data.Sessions), "invitations", len(models))
	return nil
}
