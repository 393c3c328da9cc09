// Package memory holds the process-lifetime invitation store.
//
// A single Store is created at startup and handed to every consumer. All
// operations are serialised by one RWMutex, so a read never observes a
// half-applied update and concurrent writers to the same record apply in turn.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/example/event-portal/internal/persistence"
)

// InvitationStore implements persistence.InvitationRepository in memory.
type InvitationStore struct {
	mu      sync.RWMutex
	order   []string
	records map[string]persistence.Invitation
	retired map[string]struct{}
}

var _ persistence.InvitationRepository = (*InvitationStore)(nil)

// NewInvitationStore returns an empty store.
func NewInvitationStore() *InvitationStore {
	return &InvitationStore{
		records: make(map[string]persistence.Invitation),
		retired: make(map[string]struct{}),
	}
}

// ListInvitations returns every record in insertion order.
func (s *InvitationStore) ListInvitations(ctx context.Context) ([]persistence.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Invitation, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneInvitation(s.records[id]))
	}
	return out, nil
}

// ReplaceInvitations overwrites the whole collection. Later duplicates of an id win.
func (s *InvitationStore) ReplaceInvitations(ctx context.Context, invitations []persistence.Invitation) error {
	records := make(map[string]persistence.Invitation, len(invitations))
	order := make([]string, 0, len(invitations))
	for _, inv := range invitations {
		if strings.TrimSpace(inv.ID) == "" {
			return fmt.Errorf("memory: invitation without id")
		}
		if _, seen := records[inv.ID]; !seen {
			order = append(order, inv.ID)
		}
		records[inv.ID] = cloneInvitation(inv)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.order = order
	return nil
}

// CreateInvitation appends a record. Ids that exist or were deleted are rejected.
func (s *InvitationStore) CreateInvitation(ctx context.Context, invitation persistence.Invitation) error {
	if strings.TrimSpace(invitation.ID) == "" {
		return fmt.Errorf("memory: invitation without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[invitation.ID]; ok {
		return fmt.Errorf("memory: invitation %s: %w", invitation.ID, persistence.ErrDuplicate)
	}
	if _, ok := s.retired[invitation.ID]; ok {
		return fmt.Errorf("memory: invitation %s was deleted: %w", invitation.ID, persistence.ErrDuplicate)
	}

	s.records[invitation.ID] = cloneInvitation(invitation)
	s.order = append(s.order, invitation.ID)
	return nil
}

// GetInvitation retrieves a record by id.
func (s *InvitationStore) GetInvitation(ctx context.Context, id string) (persistence.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.records[id]
	if !ok {
		return persistence.Invitation{}, persistence.ErrNotFound
	}
	return cloneInvitation(inv), nil
}

// ListInvitationsByEmail returns records whose email matches case-insensitively.
func (s *InvitationStore) ListInvitationsByEmail(ctx context.Context, email string) ([]persistence.Invitation, error) {
	needle := strings.TrimSpace(email)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Invitation, 0)
	for _, id := range s.order {
		inv := s.records[id]
		if strings.EqualFold(strings.TrimSpace(inv.Email), needle) {
			out = append(out, cloneInvitation(inv))
		}
	}
	return out, nil
}

// UpdateInvitation resolves patch against the stored record under the write lock
// and returns the stored result.
func (s *InvitationStore) UpdateInvitation(ctx context.Context, id string, patch persistence.InvitationPatch, updatedAt time.Time) (persistence.Invitation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[id]
	if !ok {
		return persistence.Invitation{}, persistence.ErrNotFound
	}

	next := patch.Apply(current)
	if !updatedAt.IsZero() {
		next.UpdatedAt = updatedAt
	}
	s.records[id] = cloneInvitation(next)
	return cloneInvitation(next), nil
}

// DeleteInvitation removes a record and retires its id.
func (s *InvitationStore) DeleteInvitation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.records, id)
	s.retired[id] = struct{}{}
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneInvitation(inv persistence.Invitation) persistence.Invitation {
	clone := inv
	clone.Description = cloneString(inv.Description)
	clone.RejectionReason = cloneString(inv.RejectionReason)
	clone.SuggestedTopic = cloneString(inv.SuggestedTopic)
	clone.SuggestedTimeStart = cloneString(inv.SuggestedTimeStart)
	clone.SuggestedTimeEnd = cloneString(inv.SuggestedTimeEnd)
	clone.OptionalQuery = cloneString(inv.OptionalQuery)
	clone.TravelStatus = cloneString(inv.TravelStatus)
	clone.PosterCID = cloneString(inv.PosterCID)
	clone.PosterFilename = cloneString(inv.PosterFilename)
	clone.PosterContentType = cloneString(inv.PosterContentType)
	clone.PosterDataBase64 = cloneString(inv.PosterDataBase64)
	return clone
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
