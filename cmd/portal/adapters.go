package main

import (
	"context"
	"time"

	"github.com/example/event-portal/internal/analytics"
	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/persistence"
)

type invitationRepositoryAdapter struct {
	repo persistence.InvitationRepository
}

func newInvitationRepositoryAdapter(repo persistence.InvitationRepository) *invitationRepositoryAdapter {
	return &invitationRepositoryAdapter{repo: repo}
}

func (a *invitationRepositoryAdapter) ListInvitations(ctx context.Context) ([]application.Invitation, error) {
	models, err := a.repo.ListInvitations(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationInvitations(models), nil
}

func (a *invitationRepositoryAdapter) CreateInvitation(ctx context.Context, invitation application.Invitation) error {
	return a.repo.CreateInvitation(ctx, toPersistenceInvitation(invitation))
}

func (a *invitationRepositoryAdapter) GetInvitation(ctx context.Context, id string) (application.Invitation, error) {
	stored, err := a.repo.GetInvitation(ctx, id)
	if err != nil {
		return application.Invitation{}, err
	}
	return toApplicationInvitation(stored), nil
}

func (a *invitationRepositoryAdapter) ListInvitationsByEmail(ctx context.Context, email string) ([]application.Invitation, error) {
	models, err := a.repo.ListInvitationsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toApplicationInvitations(models), nil
}

func (a *invitationRepositoryAdapter) UpdateInvitation(ctx context.Context, id string, changes application.InvitationChanges, updatedAt time.Time) (application.Invitation, error) {
	stored, err := a.repo.UpdateInvitation(ctx, id, toPersistencePatch(changes), updatedAt)
	if err != nil {
		return application.Invitation{}, err
	}
	return toApplicationInvitation(stored), nil
}

func (a *invitationRepositoryAdapter) DeleteInvitation(ctx context.Context, id string) error {
	return a.repo.DeleteInvitation(ctx, id)
}

func toPersistencePatch(changes application.InvitationChanges) persistence.InvitationPatch {
	return persistence.InvitationPatch{
		Status:             persistence.MapField(changes.Status, func(s application.SessionStatus) string { return string(s) }),
		InviteStatus:       persistence.MapField(changes.InviteStatus, func(s application.InviteStatus) string { return string(s) }),
		RejectionReason:    persistence.MapField(changes.RejectionReason, func(r application.RejectionReason) string { return string(r) }),
		SuggestedTopic:     changes.SuggestedTopic,
		SuggestedTimeStart: changes.SuggestedTimeStart,
		SuggestedTimeEnd:   changes.SuggestedTimeEnd,
		OptionalQuery:      changes.OptionalQuery,
		TravelStatus:       changes.TravelStatus,
	}
}

func toApplicationInvitations(models []persistence.Invitation) []application.Invitation {
	out := make([]application.Invitation, 0, len(models))
	for _, model := range models {
		out = append(out, toApplicationInvitation(model))
	}
	return out
}

func toApplicationInvitation(model persistence.Invitation) application.Invitation {
	inv := application.Invitation{
		ID:                 model.ID,
		Title:              model.Title,
		FacultyID:          model.FacultyID,
		Email:              model.Email,
		Place:              model.Place,
		RoomID:             model.RoomID,
		RoomName:           model.RoomName,
		Description:        cloneString(model.Description),
		StartTime:          model.StartTime,
		EndTime:            model.EndTime,
		Status:             application.SessionStatus(model.Status),
		InviteStatus:       application.InviteStatus(model.InviteStatus),
		SuggestedTopic:     cloneString(model.SuggestedTopic),
		SuggestedTimeStart: cloneString(model.SuggestedTimeStart),
		SuggestedTimeEnd:   cloneString(model.SuggestedTimeEnd),
		OptionalQuery:      cloneString(model.OptionalQuery),
		TravelStatus:       cloneString(model.TravelStatus),
		InviteToken:        model.InviteToken,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
	if model.RejectionReason != nil {
		reason := application.RejectionReason(*model.RejectionReason)
		inv.RejectionReason = &reason
	}
	if model.PosterFilename != nil || model.PosterCID != nil {
		inv.Poster = &application.Poster{
			CID:         deref(model.PosterCID),
			Filename:    deref(model.PosterFilename),
			ContentType: deref(model.PosterContentType),
			DataBase64:  deref(model.PosterDataBase64),
		}
	}
	return inv
}

func toPersistenceInvitation(inv application.Invitation) persistence.Invitation {
	model := persistence.Invitation{
		ID:                 inv.ID,
		Title:              inv.Title,
		FacultyID:          inv.FacultyID,
		Email:              inv.Email,
		Place:              inv.Place,
		RoomID:             inv.RoomID,
		RoomName:           inv.RoomName,
		Description:        cloneString(inv.Description),
		StartTime:          inv.StartTime,
		EndTime:            inv.EndTime,
		Status:             string(inv.Status),
		InviteStatus:       string(inv.InviteStatus),
		SuggestedTopic:     cloneString(inv.SuggestedTopic),
		SuggestedTimeStart: cloneString(inv.SuggestedTimeStart),
		SuggestedTimeEnd:   cloneString(inv.SuggestedTimeEnd),
		OptionalQuery:      cloneString(inv.OptionalQuery),
		TravelStatus:       cloneString(inv.TravelStatus),
		InviteToken:        inv.InviteToken,
		CreatedAt:          inv.CreatedAt,
		UpdatedAt:          inv.UpdatedAt,
	}
	if inv.RejectionReason != nil {
		reason := string(*inv.RejectionReason)
		model.RejectionReason = &reason
	}
	if inv.Poster != nil {
		model.PosterCID = optional(inv.Poster.CID)
		model.PosterFilename = optional(inv.Poster.Filename)
		model.PosterContentType = optional(inv.Poster.ContentType)
		model.PosterDataBase64 = optional(inv.Poster.DataBase64)
	}
	return model
}

type reportSourceAdapter struct {
	repo persistence.ReportRepository
}

func newReportSourceAdapter(repo persistence.ReportRepository) *reportSourceAdapter {
	return &reportSourceAdapter{repo: repo}
}

func (a *reportSourceAdapter) ListAttendance(ctx context.Context) ([]analytics.RawAttendanceData, error) {
	rows, err := a.repo.ListAttendance(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.RawAttendanceData, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.RawAttendanceData{
			ID:               row.ID,
			UserID:           row.UserID,
			SessionID:        row.SessionID,
			SessionName:      row.SessionName,
			SessionStartTime: row.SessionStart,
			SessionEndTime:   row.SessionEnd,
			HallName:         row.HallName,
			HallCapacity:     row.HallCapacity,
			CheckInTime:      cloneTime(row.CheckInTime),
			CheckInMethod:    row.CheckInMethod,
		})
	}
	return out, nil
}

func (a *reportSourceAdapter) ListSessionSummaries(ctx context.Context) ([]analytics.RawSessionData, error) {
	rows, err := a.repo.ListSessionSummaries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.RawSessionData, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.RawSessionData{
			ID:              row.ID,
			Title:           row.Title,
			FacultyID:       row.FacultyID,
			FacultyName:     row.FacultyName,
			HallName:        row.HallName,
			StartTime:       row.StartTime,
			EndTime:         row.EndTime,
			Capacity:        row.Capacity,
			AttendanceCount: row.AttendanceCount,
			AverageRating:   row.AverageRating,
			Tags:            append([]string(nil), row.Tags...),
		})
	}
	return out, nil
}

func (a *reportSourceAdapter) ListFeedback(ctx context.Context) ([]analytics.RawFeedbackData, error) {
	rows, err := a.repo.ListFeedback(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]analytics.RawFeedbackData, 0, len(rows))
	for _, row := range rows {
		out = append(out, analytics.RawFeedbackData{
			ID:        row.ID,
			SessionID: row.SessionID,
			UserID:    row.UserID,
			Rating:    row.Rating,
			Comment:   row.Comment,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
