package http

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/event-portal/internal/analytics"
	"github.com/example/event-portal/internal/application"
)

type reportService interface {
	Section(ctx context.Context, principal application.Principal, section application.ReportSection) (any, error)
	Export(ctx context.Context, principal application.Principal, section application.ReportSection, format string) (analytics.Export, error)
}

// ReportHandler serves analytics reports to organizers.
type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

// Analytics serves GET /reports/analytics?format=.
func (h *ReportHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, application.ReportSectionAll)
}

// Section serves GET /reports/{section}.
func (h *ReportHandler) Section(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, application.ReportSection(chi.URLParam(r, "section")))
}

func (h *ReportHandler) serve(w http.ResponseWriter, r *http.Request, section application.ReportSection) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	principal, _ := PrincipalFromContext(ctx)
	format := strings.TrimSpace(r.URL.Query().Get("format"))

	if format == "" {
		data, err := h.service.Section(ctx, principal, section)
		if err != nil {
			h.responder.handleServiceError(ctx, w, err)
			return
		}
		h.responder.writeSuccess(ctx, w, http.StatusOK, data)
		return
	}

	export, err := h.service.Export(ctx, principal, section, format)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	handlerLogger(ctx, h.logger, "ReportHandler", "Export",
		"section", section, "format", export.Format).InfoContext(ctx, "report exported")

	if export.Sheet != nil {
		h.responder.writeSuccess(ctx, w, http.StatusOK, export.Sheet)
		return
	}

	w.Header().Set("Content-Type", export.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Body); err != nil {
		h.responder.loggerFor(ctx).WarnContext(ctx, "failed to write export", "error", err)
	}
}
