package application

import (
	"time"

	"github.com/example/event-portal/internal/persistence"
)

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID      string
	Email       string
	IsOrganizer bool
}

// InviteStatus is the faculty response state of an invitation.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "Pending"
	InviteStatusAccepted InviteStatus = "Accepted"
	InviteStatusDeclined InviteStatus = "Declined"
)

// Valid reports whether s is one of the known states.
func (s InviteStatus) Valid() bool {
	switch s {
	case InviteStatusPending, InviteStatusAccepted, InviteStatusDeclined:
		return true
	}
	return false
}

// SessionStatus is the publication state of the session slot, independent of the invite.
type SessionStatus string

const (
	SessionStatusDraft     SessionStatus = "Draft"
	SessionStatusConfirmed SessionStatus = "Confirmed"
)

// Valid reports whether s is one of the known states.
func (s SessionStatus) Valid() bool {
	return s == SessionStatusDraft || s == SessionStatusConfirmed
}

// RejectionReason explains a decline.
type RejectionReason string

const (
	RejectionNotInterested  RejectionReason = "NotInterested"
	RejectionSuggestedTopic RejectionReason = "SuggestedTopic"
	RejectionTimeConflict   RejectionReason = "TimeConflict"
)

// Valid reports whether r is one of the known reasons.
func (r RejectionReason) Valid() bool {
	switch r {
	case RejectionNotInterested, RejectionSuggestedTopic, RejectionTimeConflict:
		return true
	}
	return false
}

// Poster is the optional binary attachment shown with a session.
type Poster struct {
	CID         string
	Filename    string
	ContentType string
	DataBase64  string
}

// Invitation is one faculty member's assignment to one session slot.
// StartTime and EndTime are kept as received so malformed values can be displayed degraded.
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
	Status             SessionStatus
	InviteStatus       InviteStatus
	RejectionReason    *RejectionReason
	SuggestedTopic     *string
	SuggestedTimeStart *string
	SuggestedTimeEnd   *string
	OptionalQuery      *string
	TravelStatus       *string
	Poster             *Poster
	InviteToken        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InvitationChanges is a partial update. Fields left at their zero value are kept.
type InvitationChanges struct {
	Status             persistence.Field[SessionStatus]
	InviteStatus       persistence.Field[InviteStatus]
	RejectionReason    persistence.Field[RejectionReason]
	SuggestedTopic     persistence.Field[string]
	SuggestedTimeStart persistence.Field[string]
	SuggestedTimeEnd   persistence.Field[string]
	OptionalQuery      persistence.Field[string]
	TravelStatus       persistence.Field[string]
}

// InvitationInput captures organizer supplied fields for a new invitation.
type InvitationInput struct {
	Title       string
	FacultyID   string
	Email       string
	Place       string
	RoomID      string
	RoomName    string
	Description *string
	StartTime   time.Time
	EndTime     time.Time
	Status      SessionStatus
	Poster      *Poster
}

// CreateInvitationParams wraps the data required to create an invitation.
type CreateInvitationParams struct {
	Principal Principal
	Input     InvitationInput
}

// InvitationLinks are the deep links mailed to the invited faculty member.
type InvitationLinks struct {
	SuggestTime  string
	SuggestTopic string
	Dashboard    string
}

// CreatedInvitation is the result of CreateInvitation.
type CreatedInvitation struct {
	Invitation Invitation
	Links      InvitationLinks
	Warnings   []ConflictWarning
}

// ConflictType classifies a double-booking warning.
type ConflictType string

const (
	ConflictTypeFaculty ConflictType = "faculty"
	ConflictTypeRoom    ConflictType = "room"
)

// ConflictWarning flags an existing invitation whose slot overlaps a new one.
// Warnings never block creation.
type ConflictWarning struct {
	InvitationID string
	Type         ConflictType
	Email        string
	RoomID       string
}

// RespondParams carries a dashboard response for one invitation.
type RespondParams struct {
	Principal    Principal
	InvitationID string
	Decision     Decision
}

// SuggestTimeParams carries an email-link time suggestion.
type SuggestTimeParams struct {
	InvitationID       string
	Token              string
	SuggestedTimeStart string
	SuggestedTimeEnd   string
	OptionalQuery      *string
}

// SuggestTopicParams carries an email-link topic suggestion.
type SuggestTopicParams struct {
	InvitationID   string
	Token          string
	SuggestedTopic string
}

// SessionPhase is the time-relative state shown on the dashboard.
type SessionPhase string

const (
	SessionPhaseUpcoming  SessionPhase = "upcoming"
	SessionPhaseOngoing   SessionPhase = "ongoing"
	SessionPhaseCompleted SessionPhase = "completed"
	SessionPhaseUnknown   SessionPhase = "unknown"
)

// DashboardSession is an invitation enriched with display fields.
type DashboardSession struct {
	Invitation
	DaysUntilSession   *int
	FormattedDate      string
	FormattedStartTime string
	FormattedTimeRange string
	SessionStatus      SessionPhase
}

// DashboardStats counts invitations per state.
type DashboardStats struct {
	Total    int
	Pending  int
	Accepted int
	Declined int
	Upcoming int
}

// FacultyDashboard is the faculty member's view of their invitations.
type FacultyDashboard struct {
	Sessions []DashboardSession
	Stats    DashboardStats
}
