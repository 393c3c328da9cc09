package http

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Invitations    *InvitationHandler
	EmailLinks     *EmailLinkHandler
	Reports        *ReportHandler
	Health         http.Handler
	Sessions       SessionValidator
	Limiter        RateLimiter
	CORSOrigins    []string
	// TrustedProxies may set the client address through X-Forwarded-For or X-Real-IP.
	TrustedProxies []netip.Prefix
	Logger         *slog.Logger
	Middleware     []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)
	responder := newResponder(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(TrustedRealIP(cfg.TrustedProxies))
	r.Use(RequestLogger(logger))
	r.Use(Recover(logger))
	r.Use(CORS(cfg.CORSOrigins))
	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responder.writeError(req.Context(), w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responder.writeError(req.Context(), w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	if cfg.Health != nil {
		r.Method(http.MethodGet, "/health", cfg.Health)
	}

	if cfg.Invitations != nil {
		r.Get("/sessions/by-email", cfg.Invitations.ListByEmail)
	}

	if cfg.EmailLinks != nil {
		r.Route("/sessions/{id}/respond", func(r chi.Router) {
			r.Get("/suggest-time", cfg.EmailLinks.SuggestTimeForm)
			r.Get("/suggest-topic", cfg.EmailLinks.SuggestTopicForm)
			r.Group(func(r chi.Router) {
				r.Use(RateLimit(cfg.Limiter, logger))
				r.Post("/suggest-time", cfg.EmailLinks.SubmitSuggestTime)
				r.Post("/suggest-topic", cfg.EmailLinks.SubmitSuggestTopic)
			})
		})
	}

	if cfg.Sessions != nil {
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(cfg.Sessions, logger))

			if cfg.Invitations != nil {
				r.Post("/sessions/respond", cfg.Invitations.Respond)
				r.Get("/faculty/sessions", cfg.Invitations.FacultySessions)
				r.Get("/sessions", cfg.Invitations.List)
				r.Post("/sessions", cfg.Invitations.Create)
				r.Get("/sessions/{id}", cfg.Invitations.Get)
				r.Delete("/sessions/{id}", cfg.Invitations.Delete)
			}
			if cfg.Reports != nil {
				r.Get("/reports/analytics", cfg.Reports.Analytics)
				r.Get("/reports/{section}", cfg.Reports.Section)
			}
		})
	}

	return r
}
