package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/persistence"
	"github.com/example/event-portal/internal/testfixtures"
)

const testJWTSecret = "test-secret"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type invitationStore struct {
	mu      sync.Mutex
	records map[string]application.Invitation
	order   []string
	updates int
}

func newInvitationStore(invitations ...application.Invitation) *invitationStore {
	s := &invitationStore{records: make(map[string]application.Invitation)}
	for _, inv := range invitations {
		s.records[inv.ID] = inv
		s.order = append(s.order, inv.ID)
	}
	return s
}

func (s *invitationStore) ListInvitations(ctx context.Context) ([]application.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]application.Invitation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out, nil
}

func (s *invitationStore) CreateInvitation(ctx context.Context, inv application.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[inv.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.records[inv.ID] = inv
	s.order = append(s.order, inv.ID)
	return nil
}

func (s *invitationStore) GetInvitation(ctx context.Context, id string) (application.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.records[id]
	if !ok {
		return application.Invitation{}, persistence.ErrNotFound
	}
	return inv, nil
}

func (s *invitationStore) ListInvitationsByEmail(ctx context.Context, email string) ([]application.Invitation, error) {
	all, _ := s.ListInvitations(ctx)
	var out []application.Invitation
	for _, inv := range all {
		if strings.EqualFold(inv.Email, email) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *invitationStore) UpdateInvitation(ctx context.Context, id string, changes application.InvitationChanges, updatedAt time.Time) (application.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.records[id]
	if !ok {
		return application.Invitation{}, persistence.ErrNotFound
	}
	inv.Status = changes.Status.ApplyValue(inv.Status)
	inv.InviteStatus = changes.InviteStatus.ApplyValue(inv.InviteStatus)
	inv.RejectionReason = changes.RejectionReason.ApplyOptional(inv.RejectionReason)
	inv.SuggestedTopic = changes.SuggestedTopic.ApplyOptional(inv.SuggestedTopic)
	inv.SuggestedTimeStart = changes.SuggestedTimeStart.ApplyOptional(inv.SuggestedTimeStart)
	inv.SuggestedTimeEnd = changes.SuggestedTimeEnd.ApplyOptional(inv.SuggestedTimeEnd)
	inv.OptionalQuery = changes.OptionalQuery.ApplyOptional(inv.OptionalQuery)
	inv.TravelStatus = changes.TravelStatus.ApplyOptional(inv.TravelStatus)
	inv.UpdatedAt = updatedAt
	s.records[id] = inv
	s.updates++
	return inv, nil
}

func (s *invitationStore) DeleteInvitation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *invitationStore) get(t *testing.T, id string) application.Invitation {
	t.Helper()
	inv, err := s.GetInvitation(context.Background(), id)
	if err != nil {
		t.Fatalf("invitation %s not stored: %v", id, err)
	}
	return inv
}

type limiterStub struct {
	err   error
	calls []string
}

func (l *limiterStub) Allow(ctx context.Context, key string) error {
	l.calls = append(l.calls, key)
	return l.err
}

// testServer wires the router to a real invitation service over an in-memory store.
type testServer struct {
	handler http.Handler
	store   *invitationStore
	tokens  *application.SessionTokenService
	limiter *limiterStub
	clock   *testfixtures.Clock
}

func newTestServer(t *testing.T, invitations ...application.Invitation) *testServer {
	t.Helper()

	factory := testfixtures.NewServiceFactory()
	store := newInvitationStore(invitations...)
	tokens := application.NewSessionTokenService(testJWTSecret, time.Hour, factory.Clock.NowFunc())
	limiter := &limiterStub{}
	logger := discardLogger()

	service := factory.NewInvitationService(testfixtures.InvitationServiceDeps{
		Invitations:   store,
		PublicBaseURL: "https://portal.example.com",
		Logger:        logger,
	})

	handler := NewRouter(RouterConfig{
		Invitations: NewInvitationHandler(service, logger),
		EmailLinks:  NewEmailLinkHandler(service, logger),
		Health:      NewHealthHandler(nil, logger),
		Sessions:    tokens,
		Limiter:     limiter,
		Logger:      logger,
	})

	return &testServer{handler: handler, store: store, tokens: tokens, limiter: limiter, clock: factory.Clock}
}

func (s *testServer) bearer(t *testing.T, principal application.Principal) string {
	t.Helper()
	token, _, err := s.tokens.Issue(principal)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}
