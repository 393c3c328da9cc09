package http

import (
	"time"

	"github.com/example/event-portal/internal/application"
)

// invitationDTO is the JSON shape of an invitation. The invite token is never serialised.
type invitationDTO struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	FacultyID          string     `json:"facultyId,omitempty"`
	Email              string     `json:"email"`
	Place              string     `json:"place,omitempty"`
	RoomID             string     `json:"roomId,omitempty"`
	RoomName           string     `json:"roomName,omitempty"`
	Description        *string    `json:"description,omitempty"`
	StartTime          string     `json:"startTime"`
	EndTime            string     `json:"endTime"`
	Status             string     `json:"status"`
	InviteStatus       string     `json:"inviteStatus"`
	RejectionReason    *string    `json:"rejectionReason,omitempty"`
	SuggestedTopic     *string    `json:"suggestedTopic,omitempty"`
	SuggestedTimeStart *string    `json:"suggestedTimeStart,omitempty"`
	SuggestedTimeEnd   *string    `json:"suggestedTimeEnd,omitempty"`
	OptionalQuery      *string    `json:"optionalQuery,omitempty"`
	TravelStatus       *string    `json:"travelStatus,omitempty"`
	Poster             *posterDTO `json:"poster,omitempty"`
	CreatedAt          string     `json:"createdAt"`
	UpdatedAt          string     `json:"updatedAt"`
}

type posterDTO struct {
	CID         string `json:"cid,omitempty"`
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"contentType" validate:"required"`
	DataBase64  string `json:"dataBase64,omitempty" validate:"omitempty,base64"`
}

type dashboardSessionDTO struct {
	invitationDTO
	DaysUntilSession   *int   `json:"daysUntilSession"`
	FormattedDate      string `json:"formattedDate"`
	FormattedStartTime string `json:"formattedStartTime"`
	FormattedTimeRange string `json:"formattedTimeRange"`
	SessionStatus      string `json:"sessionStatus"`
}

type dashboardStatsDTO struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Declined int `json:"declined"`
	Upcoming int `json:"upcoming"`
}

type facultyDashboardDTO struct {
	Sessions []dashboardSessionDTO `json:"sessions"`
	Stats    dashboardStatsDTO     `json:"stats"`
}

type invitationLinksDTO struct {
	SuggestTime  string `json:"suggestTime"`
	SuggestTopic string `json:"suggestTopic"`
	Dashboard    string `json:"dashboard"`
}

type createdInvitationDTO struct {
	Invitation invitationDTO        `json:"invitation"`
	Links      invitationLinksDTO   `json:"links"`
	Warnings   []conflictWarningDTO `json:"warnings,omitempty"`
}

type conflictWarningDTO struct {
	InvitationID string `json:"invitationId"`
	Type         string `json:"type"`
	Email        string `json:"email,omitempty"`
	RoomID       string `json:"roomId,omitempty"`
}

// sessionsByEmailResponse keeps the flat envelope existing email clients read.
type sessionsByEmailResponse struct {
	Success  bool            `json:"success"`
	Sessions []invitationDTO `json:"sessions"`
}

type createInvitationRequest struct {
	Title       string     `json:"title" validate:"required"`
	FacultyID   string     `json:"facultyId"`
	Email       string     `json:"email" validate:"required,email"`
	Place       string     `json:"place"`
	RoomID      string     `json:"roomId"`
	RoomName    string     `json:"roomName"`
	Description *string    `json:"description"`
	StartTime   string     `json:"startTime" validate:"required"`
	EndTime     string     `json:"endTime" validate:"required"`
	Status      string     `json:"status" validate:"omitempty,oneof=Draft Confirmed"`
	Poster      *posterDTO `json:"poster"`
}

type respondRequest struct {
	ID                 string  `json:"id" validate:"required"`
	InviteStatus       string  `json:"inviteStatus" validate:"required,oneof=Accepted Declined"`
	RejectionReason    string  `json:"rejectionReason" validate:"omitempty,oneof=NotInterested SuggestedTopic TimeConflict"`
	SuggestedTopic     string  `json:"suggestedTopic"`
	SuggestedTimeStart string  `json:"suggestedTimeStart"`
	SuggestedTimeEnd   string  `json:"suggestedTimeEnd"`
	OptionalQuery      *string `json:"optionalQuery"`
}

func (r createInvitationRequest) toInput() (application.InvitationInput, error) {
	invalid := &application.ValidationError{}
	start, ok := application.ParseTimestamp(r.StartTime)
	if !ok {
		invalid.FieldErrors = map[string]string{"startTime": "startTime must be a valid timestamp"}
	}
	end, ok := application.ParseTimestamp(r.EndTime)
	if !ok {
		if invalid.FieldErrors == nil {
			invalid.FieldErrors = map[string]string{}
		}
		invalid.FieldErrors["endTime"] = "endTime must be a valid timestamp"
	}
	if invalid.HasErrors() {
		return application.InvitationInput{}, invalid
	}

	input := application.InvitationInput{
		Title:       r.Title,
		FacultyID:   r.FacultyID,
		Email:       r.Email,
		Place:       r.Place,
		RoomID:      r.RoomID,
		RoomName:    r.RoomName,
		Description: r.Description,
		StartTime:   start,
		EndTime:     end,
		Status:      application.SessionStatus(r.Status),
	}
	if r.Poster != nil {
		input.Poster = &application.Poster{
			CID:         r.Poster.CID,
			Filename:    r.Poster.Filename,
			ContentType: r.Poster.ContentType,
			DataBase64:  r.Poster.DataBase64,
		}
	}
	return input, nil
}

func (r respondRequest) toInput() application.ResponseInput {
	return application.ResponseInput{
		InviteStatus:       r.InviteStatus,
		RejectionReason:    r.RejectionReason,
		SuggestedTopic:     r.SuggestedTopic,
		SuggestedTimeStart: r.SuggestedTimeStart,
		SuggestedTimeEnd:   r.SuggestedTimeEnd,
		OptionalQuery:      r.OptionalQuery,
	}
}

func toInvitationDTO(inv application.Invitation) invitationDTO {
	dto := invitationDTO{
		ID:                 inv.ID,
		Title:              inv.Title,
		FacultyID:          inv.FacultyID,
		Email:              inv.Email,
		Place:              inv.Place,
		RoomID:             inv.RoomID,
		RoomName:           inv.RoomName,
		Description:        inv.Description,
		StartTime:          inv.StartTime,
		EndTime:            inv.EndTime,
		Status:             string(inv.Status),
		InviteStatus:       string(inv.InviteStatus),
		SuggestedTopic:     inv.SuggestedTopic,
		SuggestedTimeStart: inv.SuggestedTimeStart,
		SuggestedTimeEnd:   inv.SuggestedTimeEnd,
		OptionalQuery:      inv.OptionalQuery,
		TravelStatus:       inv.TravelStatus,
		CreatedAt:          formatInstant(inv.CreatedAt),
		UpdatedAt:          formatInstant(inv.UpdatedAt),
	}
	if inv.RejectionReason != nil {
		reason := string(*inv.RejectionReason)
		dto.RejectionReason = &reason
	}
	if inv.Poster != nil {
		dto.Poster = &posterDTO{
			CID:         inv.Poster.CID,
			Filename:    inv.Poster.Filename,
			ContentType: inv.Poster.ContentType,
			DataBase64:  inv.Poster.DataBase64,
		}
	}
	return dto
}

func toInvitationDTOs(invitations []application.Invitation) []invitationDTO {
	out := make([]invitationDTO, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationDTO(inv))
	}
	return out
}

func toFacultyDashboardDTO(dashboard application.FacultyDashboard) facultyDashboardDTO {
	sessions := make([]dashboardSessionDTO, 0, len(dashboard.Sessions))
	for _, s := range dashboard.Sessions {
		sessions = append(sessions, dashboardSessionDTO{
			invitationDTO:      toInvitationDTO(s.Invitation),
			DaysUntilSession:   s.DaysUntilSession,
			FormattedDate:      s.FormattedDate,
			FormattedStartTime: s.FormattedStartTime,
			FormattedTimeRange: s.FormattedTimeRange,
			SessionStatus:      string(s.SessionStatus),
		})
	}
	return facultyDashboardDTO{
		Sessions: sessions,
		Stats: dashboardStatsDTO{
			Total:    dashboard.Stats.Total,
			Pending:  dashboard.Stats.Pending,
			Accepted: dashboard.Stats.Accepted,
			Declined: dashboard.Stats.Declined,
			Upcoming: dashboard.Stats.Upcoming,
		},
	}
}

func toCreatedInvitationDTO(created application.CreatedInvitation) createdInvitationDTO {
	var warnings []conflictWarningDTO
	for _, w := range created.Warnings {
		warnings = append(warnings, conflictWarningDTO{
			InvitationID: w.InvitationID,
			Type:         string(w.Type),
			Email:        w.Email,
			RoomID:       w.RoomID,
		})
	}
	return createdInvitationDTO{
		Warnings:   warnings,
		Invitation: toInvitationDTO(created.Invitation),
		Links: invitationLinksDTO{
			SuggestTime:  created.Links.SuggestTime,
			SuggestTopic: created.Links.SuggestTopic,
			Dashboard:    created.Links.Dashboard,
		},
	}
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
