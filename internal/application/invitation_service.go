package application

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/example/event-portal/internal/logging"
	"github.com/example/event-portal/internal/persistence"
	"github.com/example/event-portal/internal/scheduler"
)

const inviteTokenBytes = 32

// InvitationRepository captures the persistence operations needed by the service.
type InvitationRepository interface {
	ListInvitations(ctx context.Context) ([]Invitation, error)
	CreateInvitation(ctx context.Context, invitation Invitation) error
	GetInvitation(ctx context.Context, id string) (Invitation, error)
	ListInvitationsByEmail(ctx context.Context, email string) ([]Invitation, error)
	UpdateInvitation(ctx context.Context, id string, changes InvitationChanges, updatedAt time.Time) (Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error
}

// InvitationService runs the invitation response workflow for organizers,
// signed-in faculty and email-link holders.
type InvitationService struct {
	invitations    InvitationRepository
	idGenerator    func() string
	tokenGenerator func() string
	now            func() time.Time
	baseURL        string
	logger         *slog.Logger
}

// InvitationServiceOption customises an InvitationService.
type InvitationServiceOption func(*InvitationService)

// WithTokenGenerator replaces the random invite token source.
func WithTokenGenerator(generator func() string) InvitationServiceOption {
	return func(s *InvitationService) {
		if generator != nil {
			s.tokenGenerator = generator
		}
	}
}

// WithPublicBaseURL sets the origin used for mailed deep links.
func WithPublicBaseURL(baseURL string) InvitationServiceOption {
	return func(s *InvitationService) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// NewInvitationService constructs an invitation service with the provided dependencies.
func NewInvitationService(invitations InvitationRepository, idGenerator func() string, now func() time.Time, opts ...InvitationServiceOption) *InvitationService {
	return NewInvitationServiceWithLogger(invitations, idGenerator, now, nil, opts...)
}

// NewInvitationServiceWithLogger constructs an invitation service with a specified logger.
func NewInvitationServiceWithLogger(invitations InvitationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger, opts ...InvitationServiceOption) *InvitationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	s := &InvitationService{
		invitations:    invitations,
		idGenerator:    idGenerator,
		tokenGenerator: NewInviteToken,
		now:            now,
		logger:         defaultLogger(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InvitationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InvitationService", operation, attrs...)
}

// NewInviteToken returns 32 random bytes encoded as unpadded URL-safe base64.
func NewInviteToken() string {
	buf := make([]byte, inviteTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("generate invite token: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// CreateInvitation issues a Pending invitation with a fresh invite token. Organizers only.
func (s *InvitationService) CreateInvitation(ctx context.Context, params CreateInvitationParams) (created CreatedInvitation, err error) {
	if s == nil {
		err = fmt.Errorf("InvitationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateInvitation",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create invitation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("invitation_id", created.Invitation.ID, "warning_count", len(created.Warnings)).InfoContext(ctx, "invitation created")
	}()

	if err = requireOrganizer(params.Principal); err != nil {
		return
	}
	if s.invitations == nil {
		err = fmt.Errorf("invitation repository not configured")
		return
	}

	vErr := validateInvitationInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	input := params.Input
	status := input.Status
	if status == "" {
		status = SessionStatusDraft
	}
	now := s.now()
	invitation := Invitation{
		ID:           s.idGenerator(),
		Title:        strings.TrimSpace(input.Title),
		FacultyID:    strings.TrimSpace(input.FacultyID),
		Email:        strings.TrimSpace(input.Email),
		Place:        strings.TrimSpace(input.Place),
		RoomID:       strings.TrimSpace(input.RoomID),
		RoomName:     strings.TrimSpace(input.RoomName),
		Description:  normalizeOptionalString(input.Description),
		StartTime:    FormatTimestamp(input.StartTime),
		EndTime:      FormatTimestamp(input.EndTime),
		Status:       status,
		InviteStatus: InviteStatusPending,
		Poster:       input.Poster,
		InviteToken:  s.tokenGenerator(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	warnings, conflictErr := s.detectConflicts(ctx, invitation)
	if conflictErr != nil {
		logger.WarnContext(ctx, "conflict detection skipped", "error", conflictErr)
	}

	if err = s.invitations.CreateInvitation(ctx, invitation); err != nil {
		err = mapInvitationRepoError(err)
		return
	}

	created = CreatedInvitation{Invitation: invitation, Links: s.Links(invitation), Warnings: warnings}
	return
}

// detectConflicts compares the candidate against every live invitation. Declined
// invitations and slots with unparseable times are ignored.
func (s *InvitationService) detectConflicts(ctx context.Context, candidate Invitation) ([]ConflictWarning, error) {
	target, ok := toSchedulerSlot(candidate)
	if !ok {
		return nil, nil
	}

	existing, err := s.invitations.ListInvitations(ctx)
	if err != nil {
		return nil, err
	}

	slots := make([]scheduler.Slot, 0, len(existing))
	for _, inv := range existing {
		if inv.InviteStatus == InviteStatusDeclined {
			continue
		}
		if slot, ok := toSchedulerSlot(inv); ok {
			slots = append(slots, slot)
		}
	}

	return toConflictWarnings(scheduler.DetectConflicts(slots, target)), nil
}

func toSchedulerSlot(inv Invitation) (scheduler.Slot, bool) {
	start, okStart := ParseTimestamp(inv.StartTime)
	end, okEnd := ParseTimestamp(inv.EndTime)
	if !okStart || !okEnd {
		return scheduler.Slot{}, false
	}
	slot := scheduler.Slot{ID: inv.ID, RoomID: inv.RoomID, Start: start, End: end}
	if email := strings.TrimSpace(inv.Email); email != "" {
		slot.Participants = []string{email}
	}
	return slot, true
}

func toConflictWarnings(conflicts []scheduler.Conflict) []ConflictWarning {
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, c := range conflicts {
		warning := ConflictWarning{InvitationID: c.WithSlotID, Email: c.Participant, RoomID: c.RoomID}
		switch c.Type {
		case scheduler.ConflictTypeParticipant:
			warning.Type = ConflictTypeFaculty
		case scheduler.ConflictTypeRoom:
			warning.Type = ConflictTypeRoom
		}
		warnings = append(warnings, warning)
	}
	return warnings
}

// Links builds the deep links mailed to the invited faculty member.
func (s *InvitationService) Links(invitation Invitation) InvitationLinks {
	base := s.baseURL
	id := url.PathEscape(invitation.ID)
	query := url.Values{"token": {invitation.InviteToken}}.Encode()
	return InvitationLinks{
		SuggestTime:  fmt.Sprintf("%s/sessions/%s/respond/suggest-time?%s", base, id, query),
		SuggestTopic: fmt.Sprintf("%s/sessions/%s/respond/suggest-topic?%s", base, id, query),
		Dashboard:    fmt.Sprintf("%s/faculty/sessions?%s", base, url.Values{"email": {invitation.Email}}.Encode()),
	}
}

// GetInvitation returns one invitation to an organizer or to the invited faculty member.
func (s *InvitationService) GetInvitation(ctx context.Context, principal Principal, id string) (Invitation, error) {
	if s == nil {
		return Invitation{}, fmt.Errorf("InvitationService is nil")
	}
	if s.invitations == nil {
		return Invitation{}, fmt.Errorf("invitation repository not configured")
	}
	if err := requirePrincipal(principal); err != nil {
		return Invitation{}, err
	}

	invitation, err := s.invitations.GetInvitation(ctx, id)
	if err != nil {
		return Invitation{}, mapInvitationRepoError(err)
	}
	if !canAccess(principal, invitation) {
		return Invitation{}, ErrUnauthorized
	}
	return invitation, nil
}

// ListInvitations returns every invitation. Organizers only.
func (s *InvitationService) ListInvitations(ctx context.Context, principal Principal) (invitations []Invitation, err error) {
	if s == nil {
		err = fmt.Errorf("InvitationService is nil")
		return
	}
	if err = requireOrganizer(principal); err != nil {
		return
	}
	if s.invitations == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListInvitations", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list invitations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(invitations)).InfoContext(ctx, "invitations listed")
	}()

	invitations, err = s.invitations.ListInvitations(ctx)
	err = mapInvitationRepoError(err)
	return
}

// DeleteInvitation removes an invitation. Organizers only.
func (s *InvitationService) DeleteInvitation(ctx context.Context, principal Principal, id string) error {
	if s == nil {
		return fmt.Errorf("InvitationService is nil")
	}
	if err := requireOrganizer(principal); err != nil {
		return err
	}
	if s.invitations == nil {
		return fmt.Errorf("invitation repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteInvitation",
		"principal_id", principal.UserID,
		"invitation_id", id,
	)

	if err := s.invitations.DeleteInvitation(ctx, id); err != nil {
		err = mapInvitationRepoError(err)
		logger.ErrorContext(ctx, "failed to delete invitation", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "invitation deleted")
	return nil
}

// ListSessionsByEmail returns the invitations addressed to email, matched case-insensitively.
func (s *InvitationService) ListSessionsByEmail(ctx context.Context, email string) (invitations []Invitation, err error) {
	if s == nil {
		err = fmt.Errorf("InvitationService is nil")
		return
	}

	email = strings.TrimSpace(email)
	if email == "" {
		err = NewValidationError("email", "Missing email")
		return
	}
	if s.invitations == nil {
		return []Invitation{}, nil
	}

	logger := s.loggerWith(ctx, "ListSessionsByEmail")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list sessions by email", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(invitations)).InfoContext(ctx, "sessions listed by email")
	}()

	invitations, err = s.invitations.ListInvitationsByEmail(ctx, email)
	if err != nil {
		err = mapInvitationRepoError(err)
		return
	}
	if invitations == nil {
		invitations = []Invitation{}
	}
	return
}

// FacultyDashboard returns the caller's invitations with display fields and counts.
// Organizers may look up any email; faculty only their own.
func (s *InvitationService) FacultyDashboard(ctx context.Context, principal Principal, email string) (dashboard FacultyDashboard, err error) {
	if s == nil {
		err = fmt.Errorf("InvitationService is nil")
		return
	}
	if err = requirePrincipal(principal); err != nil {
		return
	}

	email = strings.TrimSpace(email)
	if email == "" {
		email = principal.Email
	}
	if email == "" {
		err = NewValidationError("email", "Missing email")
		return
	}
	if !principal.IsOrganizer && !strings.EqualFold(email, principal.Email) {
		err = ErrUnauthorized
		return
	}

	var invitations []Invitation
	invitations, err = s.ListSessionsByEmail(ctx, email)
	if err != nil {
		return
	}

	now := s.now()
	dashboard.Sessions = make([]DashboardSession, 0, len(invitations))
	for _, inv := range invitations {
		view := BuildDashboardSession(inv, now)
		dashboard.Sessions = append(dashboard.Sessions, view)

		dashboard.Stats.Total++
		switch inv.InviteStatus {
		case InviteStatusAccepted:
			dashboard.Stats.Accepted++
		case InviteStatusDeclined:
			dashboard.Stats.Declined++
		default:
			dashboard.Stats.Pending++
		}
		if view.SessionStatus == SessionPhaseUpcoming {
			dashboard.Stats.Upcoming++
		}
	}
	return
}

// BuildDashboardSession derives display fields. Missing or malformed dates degrade to placeholders.
func BuildDashboardSession(inv Invitation, now time.Time) DashboardSession {
	return DashboardSession{
		Invitation:         inv,
		DaysUntilSession:   DaysUntil(inv.StartTime, now),
		FormattedDate:      FormatDisplayDate(inv.StartTime),
		FormattedStartTime: FormatDisplayTime(inv.StartTime),
		FormattedTimeRange: FormatTimeRange(inv.StartTime, inv.EndTime),
		SessionStatus:      PhaseOf(inv.StartTime, inv.EndTime, now),
	}
}

// Respond applies a dashboard decision. The caller must be the invited faculty member or an organizer.
func (s *InvitationService) Respond(ctx context.Context, params RespondParams) (invitation Invitation, err error) {
	if s == nil {
		err = fmt.Errorf("InvitationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Respond",
		"principal_id", params.Principal.UserID,
		"invitation_id", params.InvitationID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to record response", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("invite_status", invitation.InviteStatus).InfoContext(ctx, "response recorded")
	}()

	if err = requirePrincipal(params.Principal); err != nil {
		return
	}
	if strings.TrimSpace(params.InvitationID) == "" {
		err = NewValidationError("id", "id is required")
		return
	}
	if params.Decision == nil {
		err = NewValidationError("inviteStatus", "inviteStatus is required")
		return
	}
	if s.invitations == nil {
		err = fmt.Errorf("invitation repository not configured")
		return
	}

	changes, vErr := params.Decision.changes()
	if vErr.HasErrors() {
		err = vErr
		return
	}
	logger = logger.With("decision", params.Decision.kind())

	var current Invitation
	current, err = s.invitations.GetInvitation(ctx, params.InvitationID)
	if err != nil {
		err = mapInvitationRepoError(err)
		return
	}
	if !canAccess(params.Principal, current) {
		err = ErrUnauthorized
		return
	}

	invitation, err = s.invitations.UpdateInvitation(ctx, current.ID, changes, s.now())
	err = mapInvitationRepoError(err)
	return
}

// VerifyInviteToken returns the invitation when token matches it. An unknown
// id yields ErrNotFound and a mismatching token yields ErrInvalidToken.
func (s *InvitationService) VerifyInviteToken(ctx context.Context, id, token string) (Invitation, error) {
	if s == nil {
		return Invitation{}, fmt.Errorf("InvitationService is nil")
	}
	if strings.TrimSpace(token) == "" {
		return Invitation{}, NewValidationError("token", "Missing token")
	}
	if s.invitations == nil {
		return Invitation{}, fmt.Errorf("invitation repository not configured")
	}

	invitation, err := s.invitations.GetInvitation(ctx, id)
	if err != nil {
		return Invitation{}, mapInvitationRepoError(err)
	}
	if subtle.ConstantTimeCompare([]byte(invitation.InviteToken), []byte(token)) != 1 {
		return Invitation{}, ErrInvalidToken
	}
	return invitation, nil
}

// SuggestTime declines with a proposed time window on behalf of an email-link holder.
// Unknown ids and mismatching tokens both yield ErrNotFound.
func (s *InvitationService) SuggestTime(ctx context.Context, params SuggestTimeParams) (invitation Invitation, err error) {
	if s == nil {
		err = fmt.Errorf("InvitationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SuggestTime",
		"invitation_id", params.InvitationID,
		logging.TokenPresence(params.Token),
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "time suggestion rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "time suggestion recorded")
	}()

	decision := DeclineTimeConflict{
		Start:         params.SuggestedTimeStart,
		End:           params.SuggestedTimeEnd,
		OptionalQuery: params.OptionalQuery,
	}
	invitation, err = s.applyTokenDecision(ctx, params.InvitationID, params.Token, decision, func(v *ValidationError) {
		if strings.TrimSpace(params.SuggestedTimeStart) == "" {
			v.add("suggestedTimeStart", "suggestedTimeStart is required")
		}
		if strings.TrimSpace(params.SuggestedTimeEnd) == "" {
			v.add("suggestedTimeEnd", "suggestedTimeEnd is required")
		}
	})
	return
}

// SuggestTopic declines with a proposed topic on behalf of an email-link holder.
// Any comment left with an earlier decline is cleared.
func (s *InvitationService) SuggestTopic(ctx context.Context, params SuggestTopicParams) (invitation Invitation, err error) {
	if s == nil {
		err = fmt.Errorf("InvitationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SuggestTopic",
		"invitation_id", params.InvitationID,
		logging.TokenPresence(params.Token),
	)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "topic suggestion rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "topic suggestion recorded")
	}()

	decision := DeclineSuggestedTopic{Topic: params.SuggestedTopic}
	invitation, err = s.applyTokenDecision(ctx, params.InvitationID, params.Token, decision, func(v *ValidationError) {
		if strings.TrimSpace(params.SuggestedTopic) == "" {
			v.add("suggestedTopic", "suggestedTopic is required")
		}
	})
	return
}

func (s *InvitationService) applyTokenDecision(ctx context.Context, id, token string, decision Decision, required func(*ValidationError)) (Invitation, error) {
	if strings.TrimSpace(token) == "" {
		return Invitation{}, NewValidationError("token", "Missing token")
	}

	current, err := s.VerifyInviteToken(ctx, id, token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return Invitation{}, ErrNotFound
		}
		return Invitation{}, err
	}

	missing := &ValidationError{}
	required(missing)
	if missing.HasErrors() {
		return Invitation{}, missing
	}

	changes, vErr := decision.changes()
	if vErr.HasErrors() {
		return Invitation{}, vErr
	}

	updated, err := s.invitations.UpdateInvitation(ctx, current.ID, changes, s.now())
	if err != nil {
		return Invitation{}, mapInvitationRepoError(err)
	}
	return updated, nil
}

func requirePrincipal(principal Principal) error {
	if principal.UserID == "" && principal.Email == "" {
		return ErrUnauthenticated
	}
	return nil
}

func requireOrganizer(principal Principal) error {
	if err := requirePrincipal(principal); err != nil {
		return err
	}
	if !principal.IsOrganizer {
		return ErrUnauthorized
	}
	return nil
}

func canAccess(principal Principal, invitation Invitation) bool {
	if principal.IsOrganizer {
		return true
	}
	if principal.Email != "" && strings.EqualFold(strings.TrimSpace(principal.Email), strings.TrimSpace(invitation.Email)) {
		return true
	}
	return principal.UserID != "" && principal.UserID == invitation.FacultyID
}

func validateInvitationInput(input InvitationInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email must be a valid address")
	}
	if input.StartTime.IsZero() {
		vErr.add("startTime", "startTime is required")
	}
	if input.EndTime.IsZero() {
		vErr.add("endTime", "endTime is required")
	}
	if !input.StartTime.IsZero() && !input.EndTime.IsZero() && input.EndTime.Before(input.StartTime) {
		vErr.add("endTime", "endTime must not be before startTime")
	}
	if input.Status != "" && !input.Status.Valid() {
		vErr.add("status", "status must be Draft or Confirmed")
	}

	return vErr
}

func mapInvitationRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	return err
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
