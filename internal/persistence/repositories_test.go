package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/event-portal/internal/persistence"
	"github.com/example/event-portal/internal/persistence/memory"
	"github.com/example/event-portal/internal/persistence/sqlite"
	"github.com/example/event-portal/internal/testfixtures"
)

func newPersistenceInvitation(opts ...testfixtures.InvitationOption) persistence.Invitation {
	return testfixtures.NewInvitationFixture(opts...).Persistence()
}

func TestFieldOperations(t *testing.T) {
	t.Parallel()

	stored := "stored"
	tests := []struct {
		name     string
		field    persistence.Field[string]
		optional *string
		value    string
	}{
		{name: "keep", field: persistence.Field[string]{}, optional: &stored, value: "stored"},
		{name: "set", field: persistence.Set("next"), optional: ptr("next"), value: "next"},
		{name: "clear", field: persistence.Clear[string](), optional: nil, value: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.field.ApplyOptional(&stored)
			switch {
			case tt.optional == nil && got != nil:
				t.Fatalf("expected nil, got %q", *got)
			case tt.optional != nil && (got == nil || *got != *tt.optional):
				t.Fatalf("expected %q, got %v", *tt.optional, got)
			}
			if v := tt.field.ApplyValue(stored); v != tt.value {
				t.Fatalf("expected %q, got %q", tt.value, v)
			}
		})
	}
}

func TestMapFieldPreservesOperation(t *testing.T) {
	t.Parallel()

	type reason string
	mapped := persistence.MapField(persistence.Set(reason("TimeConflict")), func(r reason) string { return string(r) })
	if v, ok := mapped.Value(); !ok || v != "TimeConflict" {
		t.Fatalf("unexpected mapped value %q (set=%v)", v, ok)
	}

	cleared := persistence.MapField(persistence.Clear[reason](), func(r reason) string { return string(r) })
	if cleared.Op() != persistence.OpClear {
		t.Fatalf("expected clear to survive mapping, got %v", cleared.Op())
	}
}

func TestInvitationPatchApply(t *testing.T) {
	t.Parallel()

	current := newPersistenceInvitation(
		testfixtures.WithInvitationStatus("Declined"),
		testfixtures.WithInvitationDecline("SuggestedTopic", "Edge AI", "", "", "note"),
	)

	next := persistence.InvitationPatch{
		InviteStatus:       persistence.Set("Declined"),
		RejectionReason:    persistence.Set("TimeConflict"),
		SuggestedTopic:     persistence.Clear[string](),
		SuggestedTimeStart: persistence.Set("2024-03-04T10:00:00Z"),
		SuggestedTimeEnd:   persistence.Set("2024-03-04T11:00:00Z"),
	}.Apply(current)

	if next.SuggestedTopic != nil {
		t.Fatalf("expected topic cleared, got %q", *next.SuggestedTopic)
	}
	if next.RejectionReason == nil || *next.RejectionReason != "TimeConflict" {
		t.Fatalf("unexpected reason %v", next.RejectionReason)
	}
	if next.OptionalQuery == nil || *next.OptionalQuery != "note" {
		t.Fatalf("expected untouched optional query, got %v", next.OptionalQuery)
	}
	if current.SuggestedTopic == nil || *current.SuggestedTopic != "Edge AI" {
		t.Fatal("Apply must not mutate the input record")
	}
	if next.ID != current.ID || next.InviteToken != current.InviteToken {
		t.Fatal("identity fields must be preserved")
	}
}

func TestInvitationRepositoryContract(t *testing.T) {
	t.Parallel()

	var repo persistence.InvitationRepository = memory.NewInvitationStore()
	ctx := context.Background()

	inv := newPersistenceInvitation(testfixtures.WithInvitationID("contract-1"))
	if err := repo.CreateInvitation(ctx, inv); err != nil {
		t.Fatalf("CreateInvitation failed: %v", err)
	}
	if err := repo.CreateInvitation(ctx, inv); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	updatedAt := testfixtures.ReferenceTime().Add(time.Hour)
	updated, err := repo.UpdateInvitation(ctx, inv.ID, persistence.InvitationPatch{
		InviteStatus: persistence.Set("Accepted"),
	}, updatedAt)
	if err != nil {
		t.Fatalf("UpdateInvitation failed: %v", err)
	}
	if updated.InviteStatus != "Accepted" || !updated.UpdatedAt.Equal(updatedAt) {
		t.Fatalf("unexpected update result %#v", updated)
	}

	if _, err := repo.UpdateInvitation(ctx, "missing", persistence.InvitationPatch{}, updatedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReportRepositoryContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	harness := testfixtures.NewSQLiteHarness(t, sqlite.SeedData{
		Attendance: []persistence.AttendanceRow{testfixtures.NewAttendanceRow()},
		Sessions:   []persistence.SessionSummaryRow{testfixtures.NewSessionSummaryRow()},
		Feedback:   []persistence.FeedbackRow{testfixtures.NewFeedbackRow("summary-x", 5, "great")},
	})
	defer harness.Close()

	var repo persistence.ReportRepository = harness.Storage

	attendance, err := repo.ListAttendance(ctx)
	if err != nil || len(attendance) != 1 {
		t.Fatalf("ListAttendance: %d rows, err=%v", len(attendance), err)
	}
	sessions, err := repo.ListSessionSummaries(ctx)
	if err != nil || len(sessions) != 1 || sessions[0].Tags[0] != "General" {
		t.Fatalf("ListSessionSummaries: %#v, err=%v", sessions, err)
	}
	feedback, err := repo.ListFeedback(ctx)
	if err != nil || len(feedback) != 1 || feedback[0].Comment != "great" {
		t.Fatalf("ListFeedback: %#v, err=%v", feedback, err)
	}

	if err := repo.InsertAttendance(ctx, attendance); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on re-insert, got %v", err)
	}
}

func ptr(v string) *string {
	return &v
}
