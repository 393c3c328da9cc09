package http

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/event-portal/internal/application"
)

//go:embed templates/*.html
var templateFiles embed.FS

const (
	pageSuggestTimeForm  = "suggest_time_form.html"
	pageSuggestTopicForm = "suggest_topic_form.html"
	pageConfirmation     = "confirmation.html"
	pageError            = "error.html"

	datetimeLocalLayout = "2006-01-02T15:04"
)

// sessionView is the invitation as shown on the email-link pages.
type sessionView struct {
	Title      string
	Place      string
	TimeRange  string
	StartInput string
	EndInput   string
}

type pageData struct {
	Heading        string
	Action         string
	Token          string
	Session        sessionView
	SuggestedTopic string
	SuggestedTime  string
	Comment        string
	Message        string
}

// pageRenderer renders the self-contained pages served to email-link holders.
type pageRenderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

func newPageRenderer(logger *slog.Logger) (*pageRenderer, error) {
	names := []string{pageSuggestTimeForm, pageSuggestTopicForm, pageConfirmation, pageError}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &pageRenderer{pages: pages, logger: defaultLogger(logger)}, nil
}

func mustPageRenderer(logger *slog.Logger) *pageRenderer {
	renderer, err := newPageRenderer(logger)
	if err != nil {
		panic(err)
	}
	return renderer
}

func (p *pageRenderer) render(ctx context.Context, w http.ResponseWriter, status int, name string, data pageData) {
	tmpl, ok := p.pages[name]
	if !ok {
		p.loggerFor(ctx).ErrorContext(ctx, "unknown page", "page", name)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		p.loggerFor(ctx).ErrorContext(ctx, "failed to render page", "page", name, "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		p.loggerFor(ctx).WarnContext(ctx, "failed to write page", "page", name, "error", err)
	}
}

func (p *pageRenderer) renderError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	p.render(ctx, w, status, pageError, pageData{Heading: http.StatusText(status), Message: message})
}

func (p *pageRenderer) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return p.logger
}

func newSessionView(inv application.Invitation) sessionView {
	return sessionView{
		Title:      inv.Title,
		Place:      firstNonEmpty(inv.Place, inv.RoomName),
		TimeRange:  displayWindow(inv.StartTime, inv.EndTime),
		StartInput: datetimeLocal(inv.StartTime),
		EndInput:   datetimeLocal(inv.EndTime),
	}
}

// displayWindow renders "Mon, Jan 2, 2006, 3:00 PM - 4:30 PM", degrading to TBD or Invalid Date.
func displayWindow(start, end string) string {
	timeRange := application.FormatTimeRange(start, end)
	date := application.FormatDisplayDate(start)
	if date == application.DisplayMissing || date == application.DisplayInvalid {
		return timeRange
	}
	return date + ", " + timeRange
}

func datetimeLocal(value string) string {
	t, ok := application.ParseTimestamp(value)
	if !ok {
		return ""
	}
	return t.Format(datetimeLocalLayout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
