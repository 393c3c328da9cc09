package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/persistence"
)

var (
	invitationCounter uint64
	attendanceCounter uint64
	sessionCounter    uint64
	feedbackCounter   uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// -------------------------- Invitation fixtures --------------------------

// InvitationFixture represents a deterministic invitation record that can be
// materialised for application or persistence tests.
type InvitationFixture struct {
	ID                 string
	Title              string
	FacultyID          string
	Email              string
	Place              string
	RoomID             string
	RoomName           string
	Description        string
	StartTime          string
	EndTime            string
	Status             string
	InviteStatus       string
	RejectionReason    string
	SuggestedTopic     string
	SuggestedTimeStart string
	SuggestedTimeEnd   string
	OptionalQuery      string
	TravelStatus       string
	InviteToken        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InvitationOption configures the generated invitation fixture.
type InvitationOption func(*InvitationFixture)

// NewInvitationFixture returns a pending invitation one week after ReferenceTime.
func NewInvitationFixture(opts ...InvitationOption) InvitationFixture {
	idx := atomic.AddUint64(&invitationCounter, 1)
	id := fmt.Sprintf("session-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	start := referenceTime.AddDate(0, 0, 7).Truncate(time.Hour)
	fixture := InvitationFixture{
		ID:           id,
		Title:        fmt.Sprintf("Session %03d", idx),
		FacultyID:    fmt.Sprintf("faculty-%03d", idx),
		Email:        fmt.Sprintf("faculty-%03d@example.com", idx),
		Place:        "Main Campus",
		RoomID:       "room-a",
		RoomName:     "Hall A",
		StartTime:    application.FormatTimestamp(start),
		EndTime:      application.FormatTimestamp(start.Add(90 * time.Minute)),
		Status:       string(application.SessionStatusDraft),
		InviteStatus: string(application.InviteStatusPending),
		InviteToken:  fmt.Sprintf("token-%03d", idx),
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithInvitationID overrides the generated invitation ID.
func WithInvitationID(id string) InvitationOption {
	return func(f *InvitationFixture) {
		f.ID = id
	}
}

// WithInvitationEmail overrides the faculty email address.
func WithInvitationEmail(email string) InvitationOption {
	return func(f *InvitationFixture) {
		f.Email = email
	}
}

// WithInvitationTitle overrides the session title.
func WithInvitationTitle(title string) InvitationOption {
	return func(f *InvitationFixture) {
		f.Title = title
	}
}

// WithInvitationStatus sets the invite status.
func WithInvitationStatus(status string) InvitationOption {
	return func(f *InvitationFixture) {
		f.InviteStatus = status
	}
}

// WithInvitationToken overrides the invite token.
func WithInvitationToken(token string) InvitationOption {
	return func(f *InvitationFixture) {
		f.InviteToken = token
	}
}

// WithInvitationWindow sets the raw start and end strings.
func WithInvitationWindow(start, end string) InvitationOption {
	return func(f *InvitationFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithInvitationDecline sets the decline fields. Empty strings stay unset.
func WithInvitationDecline(reason, topic, start, end, query string) InvitationOption {
	return func(f *InvitationFixture) {
		f.RejectionReason = reason
		f.SuggestedTopic = topic
		f.SuggestedTimeStart = start
		f.SuggestedTimeEnd = end
		f.OptionalQuery = query
	}
}

// WithInvitationTimestamps sets both created and updated timestamps.
func WithInvitationTimestamps(created, updated time.Time) InvitationOption {
	return func(f *InvitationFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Persistence returns the fixture as a persistence.Invitation value.
func (f InvitationFixture) Persistence() persistence.Invitation {
	return persistence.Invitation{
		ID:                 f.ID,
		Title:              f.Title,
		FacultyID:          f.FacultyID,
		Email:              f.Email,
		Place:              f.Place,
		RoomID:             f.RoomID,
		RoomName:           f.RoomName,
		Description:        optional(f.Description),
		StartTime:          f.StartTime,
		EndTime:            f.EndTime,
		Status:             f.Status,
		InviteStatus:       f.InviteStatus,
		RejectionReason:    optional(f.RejectionReason),
		SuggestedTopic:     optional(f.SuggestedTopic),
		SuggestedTimeStart: optional(f.SuggestedTimeStart),
		SuggestedTimeEnd:   optional(f.SuggestedTimeEnd),
		OptionalQuery:      optional(f.OptionalQuery),
		TravelStatus:       optional(f.TravelStatus),
		InviteToken:        f.InviteToken,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
}

// Application returns the fixture as an application.Invitation value.
func (f InvitationFixture) Application() application.Invitation {
	inv := application.Invitation{
		ID:                 f.ID,
		Title:              f.Title,
		FacultyID:          f.FacultyID,
		Email:              f.Email,
		Place:              f.Place,
		RoomID:             f.RoomID,
		RoomName:           f.RoomName,
		Description:        optional(f.Description),
		StartTime:          f.StartTime,
		EndTime:            f.EndTime,
		Status:             application.SessionStatus(f.Status),
		InviteStatus:       application.InviteStatus(f.InviteStatus),
		SuggestedTopic:     optional(f.SuggestedTopic),
		SuggestedTimeStart: optional(f.SuggestedTimeStart),
		SuggestedTimeEnd:   optional(f.SuggestedTimeEnd),
		OptionalQuery:      optional(f.OptionalQuery),
		TravelStatus:       optional(f.TravelStatus),
		InviteToken:        f.InviteToken,
		CreatedAt:          f.CreatedAt,
		UpdatedAt:          f.UpdatedAt,
	}
	if f.RejectionReason != "" {
		reason := application.RejectionReason(f.RejectionReason)
		inv.RejectionReason = &reason
	}
	return inv
}

// Input returns the fixture as an application.InvitationInput. Unparseable
// window strings become zero times.
func (f InvitationFixture) Input() application.InvitationInput {
	start, _ := application.ParseTimestamp(f.StartTime)
	end, _ := application.ParseTimestamp(f.EndTime)
	return application.InvitationInput{
		Title:       f.Title,
		FacultyID:   f.FacultyID,
		Email:       f.Email,
		Place:       f.Place,
		RoomID:      f.RoomID,
		RoomName:    f.RoomName,
		Description: optional(f.Description),
		StartTime:   start,
		EndTime:     end,
		Status:      application.SessionStatus(f.Status),
	}
}

// Principal returns the faculty principal owning the invitation.
func (f InvitationFixture) Principal() application.Principal {
	return application.Principal{UserID: f.FacultyID, Email: f.Email}
}

// OrganizerPrincipal returns a principal with the organizer role.
func OrganizerPrincipal() application.Principal {
	return application.Principal{UserID: "organizer-1", Email: "organizer@example.com", IsOrganizer: true}
}

// --------------------------- Raw row fixtures ----------------------------

// AttendanceOption configures a generated attendance row.
type AttendanceOption func(*persistence.AttendanceRow)

// NewAttendanceRow returns a QR check-in five minutes before a one hour session.
func NewAttendanceRow(opts ...AttendanceOption) persistence.AttendanceRow {
	idx := atomic.AddUint64(&attendanceCounter, 1)
	start := referenceTime.Truncate(time.Hour)
	checkIn := start.Add(-5 * time.Minute)
	row := persistence.AttendanceRow{
		ID:            fmt.Sprintf("attendance-%03d", idx),
		UserID:        fmt.Sprintf("attendee-%03d", idx),
		SessionID:     "session-001",
		SessionName:   "Session 001",
		SessionStart:  start,
		SessionEnd:    start.Add(time.Hour),
		HallName:      "Hall A",
		HallCapacity:  100,
		CheckInTime:   &checkIn,
		CheckInMethod: "qr",
	}
	for _, opt := range opts {
		opt(&row)
	}
	return row
}

// WithAttendanceSession places the row in another session.
func WithAttendanceSession(id, hall string, capacity int) AttendanceOption {
	return func(r *persistence.AttendanceRow) {
		r.SessionID = id
		r.SessionName = "Session " + id
		r.HallName = hall
		r.HallCapacity = capacity
	}
}

// WithAttendanceCheckIn sets the check-in time and method. A nil time marks a no-show.
func WithAttendanceCheckIn(at *time.Time, method string) AttendanceOption {
	return func(r *persistence.AttendanceRow) {
		r.CheckInTime = at
		r.CheckInMethod = method
	}
}

// SessionSummaryOption configures a generated session summary row.
type SessionSummaryOption func(*persistence.SessionSummaryRow)

// NewSessionSummaryRow returns a completed 60 minute session rated 4.0.
func NewSessionSummaryRow(opts ...SessionSummaryOption) persistence.SessionSummaryRow {
	idx := atomic.AddUint64(&sessionCounter, 1)
	start := referenceTime.Truncate(time.Hour)
	row := persistence.SessionSummaryRow{
		ID:              fmt.Sprintf("summary-%03d", idx),
		Title:           fmt.Sprintf("Summary %03d", idx),
		FacultyID:       "faculty-001",
		FacultyName:     "Faculty 001",
		HallName:        "Hall A",
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		Capacity:        100,
		AttendanceCount: 75,
		AverageRating:   4.0,
		Tags:            []string{"General"},
	}
	for _, opt := range opts {
		opt(&row)
	}
	return row
}

// WithSessionFaculty assigns the row to a faculty member.
func WithSessionFaculty(id, name string) SessionSummaryOption {
	return func(r *persistence.SessionSummaryRow) {
		r.FacultyID = id
		r.FacultyName = name
	}
}

// WithSessionRating sets attendance and rating.
func WithSessionRating(attendance, capacity int, rating float64) SessionSummaryOption {
	return func(r *persistence.SessionSummaryRow) {
		r.AttendanceCount = attendance
		r.Capacity = capacity
		r.AverageRating = rating
	}
}

// NewFeedbackRow returns a feedback row for sessionID.
func NewFeedbackRow(sessionID string, rating int, comment string) persistence.FeedbackRow {
	idx := atomic.AddUint64(&feedbackCounter, 1)
	return persistence.FeedbackRow{
		ID:        fmt.Sprintf("feedback-%03d", idx),
		SessionID: sessionID,
		UserID:    fmt.Sprintf("attendee-%03d", idx),
		Rating:    rating,
		Comment:   comment,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}
