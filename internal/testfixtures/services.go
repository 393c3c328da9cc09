package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/event-portal/internal/analytics"
	"github.com/example/event-portal/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// InvitationServiceDeps captures dependencies for constructing an invitation service.
type InvitationServiceDeps struct {
	Invitations    application.InvitationRepository
	IDGenerator    func() string
	TokenGenerator func() string
	Now            func() time.Time
	PublicBaseURL  string
	Logger         *slog.Logger
}

// NewInvitationService builds an invitation service using the supplied
// dependencies combined with the factory defaults. Tokens default to
// "token-<n>" from a dedicated generator.
func (f *ServiceFactory) NewInvitationService(deps InvitationServiceDeps) *application.InvitationService {
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	token := deps.TokenGenerator
	if token == nil {
		token = NewIDGenerator("token").NextFunc()
	}
	opts := []application.InvitationServiceOption{application.WithTokenGenerator(token)}
	if deps.PublicBaseURL != "" {
		opts = append(opts, application.WithPublicBaseURL(deps.PublicBaseURL))
	}
	return application.NewInvitationServiceWithLogger(
		deps.Invitations,
		idGen,
		now,
		deps.Logger,
		opts...,
	)
}

// ReportServiceDeps captures dependencies for constructing a report service.
type ReportServiceDeps struct {
	Source   application.RawDataSource
	Cache    application.ReportCache
	CacheTTL time.Duration
	Now      func() time.Time
	Logger   *slog.Logger
}

// NewReportService builds a report service whose processor reads the factory clock.
func (f *ServiceFactory) NewReportService(deps ReportServiceDeps) *application.ReportService {
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	processor := analytics.NewProcessor(analytics.WithClock(now))
	return application.NewReportServiceWithLogger(
		deps.Source,
		deps.Cache,
		deps.CacheTTL,
		processor,
		deps.Logger,
	)
}
