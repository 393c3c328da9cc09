package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/event-portal/internal/application"
)

type invitationService interface {
	CreateInvitation(ctx context.Context, params application.CreateInvitationParams) (application.CreatedInvitation, error)
	GetInvitation(ctx context.Context, principal application.Principal, id string) (application.Invitation, error)
	ListInvitations(ctx context.Context, principal application.Principal) ([]application.Invitation, error)
	DeleteInvitation(ctx context.Context, principal application.Principal, id string) error
	ListSessionsByEmail(ctx context.Context, email string) ([]application.Invitation, error)
	FacultyDashboard(ctx context.Context, principal application.Principal, email string) (application.FacultyDashboard, error)
	Respond(ctx context.Context, params application.RespondParams) (application.Invitation, error)
}

// InvitationHandler serves the JSON invitation endpoints used by the dashboard and organizers.
type InvitationHandler struct {
	service   invitationService
	validator *requestValidator
	responder responder
	logger    *slog.Logger
}

func NewInvitationHandler(service invitationService, logger *slog.Logger) *InvitationHandler {
	base := defaultLogger(logger)
	return &InvitationHandler{
		service:   service,
		validator: newRequestValidator(),
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *InvitationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InvitationHandler", operation, attrs...)
}

// ListByEmail serves GET /sessions/by-email?email=.
func (h *InvitationHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	email := strings.TrimSpace(r.URL.Query().Get("email"))
	if email == "" {
		h.log(r.Context(), "ListByEmail", "error_kind", "validation").WarnContext(r.Context(), "missing email query parameter")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgMissingEmail)
		return
	}

	invitations, err := h.service.ListSessionsByEmail(r.Context(), email)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionsByEmailResponse{
		Success:  true,
		Sessions: toInvitationDTOs(invitations),
	})
}

// FacultySessions serves GET /faculty/sessions for the signed-in faculty member.
func (h *InvitationHandler) FacultySessions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	dashboard, err := h.service.FacultyDashboard(r.Context(), principal, r.URL.Query().Get("email"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeSuccess(r.Context(), w, http.StatusOK, toFacultyDashboardDTO(dashboard))
}

// Respond serves POST /sessions/respond.
func (h *InvitationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Respond", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode respond request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
		return
	}
	if err := h.validator.check(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	decision, err := application.DecisionFromInput(req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	invitation, err := h.service.Respond(r.Context(), application.RespondParams{
		Principal:    principal,
		InvitationID: strings.TrimSpace(req.ID),
		Decision:     decision,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeSuccess(r.Context(), w, http.StatusOK, toInvitationDTO(invitation))
}

// Create serves POST /sessions for organizers.
func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req createInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode invitation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
		return
	}
	if err := h.validator.check(req); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	created, err := h.service.CreateInvitation(r.Context(), application.CreateInvitationParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeSuccess(r.Context(), w, http.StatusCreated, toCreatedInvitationDTO(created))
}

// List serves GET /sessions for organizers.
func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	invitations, err := h.service.ListInvitations(r.Context(), principal)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeSuccess(r.Context(), w, http.StatusOK, toInvitationDTOs(invitations))
}

// Get serves GET /sessions/{id}.
func (h *InvitationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	invitation, err := h.service.GetInvitation(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeSuccess(r.Context(), w, http.StatusOK, toInvitationDTO(invitation))
}

// Delete serves DELETE /sessions/{id} for organizers.
func (h *InvitationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	if err := h.service.DeleteInvitation(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}
