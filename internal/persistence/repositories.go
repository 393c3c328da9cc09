package persistence

import (
	"context"
	"time"
)

// InvitationRepository is the single source of truth for invitation records.
type InvitationRepository interface {
	ListInvitations(ctx context.Context) ([]Invitation, error)
	ReplaceInvitations(ctx context.Context, invitations []Invitation) error
	CreateInvitation(ctx context.Context, invitation Invitation) error
	GetInvitation(ctx context.Context, id string) (Invitation, error)
	ListInvitationsByEmail(ctx context.Context, email string) ([]Invitation, error)
	UpdateInvitation(ctx context.Context, id string, patch InvitationPatch, updatedAt time.Time) (Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error
}

// ReportRepository reads and seeds the raw rows consumed by analytics.
type ReportRepository interface {
	ListAttendance(ctx context.Context) ([]AttendanceRow, error)
	ListSessionSummaries(ctx context.Context) ([]SessionSummaryRow, error)
	ListFeedback(ctx context.Context) ([]FeedbackRow, error)
	InsertAttendance(ctx context.Context, rows []AttendanceRow) error
	InsertSessionSummaries(ctx context.Context, rows []SessionSummaryRow) error
	InsertFeedback(ctx context.Context, rows []FeedbackRow) error
}
