package persistence

import "time"

// Invitation is the stored form of a faculty member's assignment to a session slot.
type Invitation struct {
	ID                 string
	Title              string
	FacultyID          string
	Email              string
	Place              string
	RoomID             string
	RoomName           string
	Description        *string
	StartTime          string
	EndTime            string
	Status             string
	InviteStatus       string
	RejectionReason    *string
	SuggestedTopic     *string
	SuggestedTimeStart *string
	SuggestedTimeEnd   *string
	OptionalQuery      *string
	TravelStatus       *string
	PosterCID          *string
	PosterFilename     *string
	PosterContentType  *string
	PosterDataBase64   *string
	InviteToken        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// AttendanceRow is one person-per-session check-in attempt.
type AttendanceRow struct {
	ID            string
	UserID        string
	SessionID     string
	SessionName   string
	SessionStart  time.Time
	SessionEnd    time.Time
	HallName      string
	HallCapacity  int
	CheckInTime   *time.Time
	CheckInMethod string
}

// SessionSummaryRow is one session with its pre-aggregated attendance and rating.
type SessionSummaryRow struct {
	ID              string
	Title           string
	FacultyID       string
	FacultyName     string
	HallName        string
	StartTime       time.Time
	EndTime         time.Time
	Capacity        int
	AttendanceCount int
	AverageRating   float64
	Tags            []string
}

// FeedbackRow is a single rating with an optional comment.
type FeedbackRow struct {
	ID        string
	SessionID string
	UserID    string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
