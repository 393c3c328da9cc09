package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/event-portal/internal/application"
	"github.com/example/event-portal/internal/logging"
)

const maxFormBytes = 64 << 10

type emailLinkService interface {
	VerifyInviteToken(ctx context.Context, id, token string) (application.Invitation, error)
	SuggestTime(ctx context.Context, params application.SuggestTimeParams) (application.Invitation, error)
	SuggestTopic(ctx context.Context, params application.SuggestTopicParams) (application.Invitation, error)
}

// EmailLinkHandler serves the token-authenticated pages linked from invitation emails.
type EmailLinkHandler struct {
	service emailLinkService
	pages   *pageRenderer
	logger  *slog.Logger
}

func NewEmailLinkHandler(service emailLinkService, logger *slog.Logger) *EmailLinkHandler {
	base := defaultLogger(logger)
	return &EmailLinkHandler{
		service: service,
		pages:   mustPageRenderer(base),
		logger:  base,
	}
}

func (h *EmailLinkHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "EmailLinkHandler", operation, attrs...)
}

type suggestionForm struct {
	Token              string  `json:"token"`
	SuggestedTimeStart string  `json:"suggestedTimeStart"`
	SuggestedTimeEnd   string  `json:"suggestedTimeEnd"`
	OptionalQuery      *string `json:"optionalQuery"`
	SuggestedTopic     string  `json:"suggestedTopic"`
}

// SuggestTimeForm serves GET /sessions/{id}/respond/suggest-time?token=.
func (h *EmailLinkHandler) SuggestTimeForm(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.verify(w, r, "SuggestTimeForm")
	if !ok {
		return
	}
	h.pages.render(r.Context(), w, http.StatusOK, pageSuggestTimeForm, pageData{
		Heading: "Suggest a different time",
		Action:  r.URL.Path,
		Token:   r.URL.Query().Get("token"),
		Session: newSessionView(inv),
	})
}

// SuggestTopicForm serves GET /sessions/{id}/respond/suggest-topic?token=&topic=.
// A non-empty topic is applied immediately.
func (h *EmailLinkHandler) SuggestTopicForm(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if topic := strings.TrimSpace(query.Get("topic")); topic != "" && strings.TrimSpace(query.Get("token")) != "" {
		h.applyTopic(w, r, query.Get("token"), topic)
		return
	}

	inv, ok := h.verify(w, r, "SuggestTopicForm")
	if !ok {
		return
	}
	h.pages.render(r.Context(), w, http.StatusOK, pageSuggestTopicForm, pageData{
		Heading: "Suggest a different topic",
		Action:  r.URL.Path,
		Token:   query.Get("token"),
		Session: newSessionView(inv),
	})
}

// SubmitSuggestTime serves POST /sessions/{id}/respond/suggest-time.
func (h *EmailLinkHandler) SubmitSuggestTime(w http.ResponseWriter, r *http.Request) {
	form, ok := h.readForm(w, r, "SubmitSuggestTime")
	if !ok {
		return
	}

	inv, err := h.service.SuggestTime(r.Context(), application.SuggestTimeParams{
		InvitationID:       chi.URLParam(r, "id"),
		Token:              form.Token,
		SuggestedTimeStart: form.SuggestedTimeStart,
		SuggestedTimeEnd:   form.SuggestedTimeEnd,
		OptionalQuery:      form.OptionalQuery,
	})
	if err != nil {
		h.renderServiceError(w, r, err, false)
		return
	}

	data := pageData{
		Heading:       "Time suggestion received",
		Session:       newSessionView(inv),
		SuggestedTime: displayWindow(derefString(inv.SuggestedTimeStart), derefString(inv.SuggestedTimeEnd)),
	}
	if inv.OptionalQuery != nil {
		data.Comment = *inv.OptionalQuery
	}
	h.pages.render(r.Context(), w, http.StatusOK, pageConfirmation, data)
}

// SubmitSuggestTopic serves POST /sessions/{id}/respond/suggest-topic.
func (h *EmailLinkHandler) SubmitSuggestTopic(w http.ResponseWriter, r *http.Request) {
	form, ok := h.readForm(w, r, "SubmitSuggestTopic")
	if !ok {
		return
	}
	h.applyTopic(w, r, form.Token, form.SuggestedTopic)
}

func (h *EmailLinkHandler) applyTopic(w http.ResponseWriter, r *http.Request, token, topic string) {
	inv, err := h.service.SuggestTopic(r.Context(), application.SuggestTopicParams{
		InvitationID:   chi.URLParam(r, "id"),
		Token:          token,
		SuggestedTopic: topic,
	})
	if err != nil {
		h.renderServiceError(w, r, err, false)
		return
	}

	h.pages.render(r.Context(), w, http.StatusOK, pageConfirmation, pageData{
		Heading:        "Topic suggestion received",
		Session:        newSessionView(inv),
		SuggestedTopic: derefString(inv.SuggestedTopic),
	})
}

// verify checks the query token for the form pages. A mismatching token is
// reported as 403 here since nothing is written.
func (h *EmailLinkHandler) verify(w http.ResponseWriter, r *http.Request, operation string) (application.Invitation, bool) {
	id := chi.URLParam(r, "id")
	token := r.URL.Query().Get("token")
	logger := h.log(r.Context(), operation, "invitation_id", id, logging.TokenPresence(token))

	if strings.TrimSpace(token) == "" {
		logger.WarnContext(r.Context(), "email link opened without token")
		h.pages.renderError(r.Context(), w, http.StatusBadRequest, msgMissingTokenPage)
		return application.Invitation{}, false
	}

	inv, err := h.service.VerifyInviteToken(r.Context(), id, token)
	if err != nil {
		logger.WarnContext(r.Context(), "email link rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.renderServiceError(w, r, err, true)
		return application.Invitation{}, false
	}
	return inv, true
}

func (h *EmailLinkHandler) readForm(w http.ResponseWriter, r *http.Request, operation string) (suggestionForm, bool) {
	var form suggestionForm
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode suggestion", "error", err)
			h.pages.renderError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
			return suggestionForm{}, false
		}
		return form, true
	}

	if err := r.ParseForm(); err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to parse suggestion form", "error", err)
		h.pages.renderError(r.Context(), w, http.StatusBadRequest, msgBadRequestBody)
		return suggestionForm{}, false
	}
	form.Token = r.PostForm.Get("token")
	form.SuggestedTimeStart = r.PostForm.Get("suggestedTimeStart")
	form.SuggestedTimeEnd = r.PostForm.Get("suggestedTimeEnd")
	form.SuggestedTopic = r.PostForm.Get("suggestedTopic")
	if comment := strings.TrimSpace(r.PostForm.Get("optionalQuery")); comment != "" {
		form.OptionalQuery = &comment
	}
	return form, true
}

func (h *EmailLinkHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error, distinguishToken bool) {
	ctx := r.Context()
	var vErr *application.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.pages.renderError(ctx, w, http.StatusBadRequest, vErr.Message())
	case distinguishToken && errors.Is(err, application.ErrInvalidToken):
		h.pages.renderError(ctx, w, http.StatusForbidden, msgInvalidTokenPage)
	case errors.Is(err, application.ErrNotFound), errors.Is(err, application.ErrInvalidToken):
		h.pages.renderError(ctx, w, http.StatusNotFound, msgInvalidSession)
	default:
		h.log(ctx, "renderServiceError").ErrorContext(ctx, "email link request failed", "error", err, "error_kind", application.ErrorKind(err))
		h.pages.renderError(ctx, w, http.StatusInternalServerError, msgInternal)
	}
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
