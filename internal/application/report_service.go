package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/event-portal/internal/analytics"
)

// AnalyticsReportKey is the cache key of the full analytics report.
const AnalyticsReportKey = "report:analytics"

// RawDataSource loads the immutable raw rows fed to the analytics processor.
type RawDataSource interface {
	ListAttendance(ctx context.Context) ([]analytics.RawAttendanceData, error)
	ListSessionSummaries(ctx context.Context) ([]analytics.RawSessionData, error)
	ListFeedback(ctx context.Context) ([]analytics.RawFeedbackData, error)
}

// ReportCache stores encoded reports. A miss is reported as found == false with a nil error.
type ReportCache interface {
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
}

// ReportSection selects part of the analytics report.
type ReportSection string

const (
	ReportSectionAll        ReportSection = "analytics"
	ReportSectionAttendance ReportSection = "attendance"
	ReportSectionSessions   ReportSection = "sessions"
	ReportSectionFaculty    ReportSection = "faculty"
	ReportSectionEngagement ReportSection = "engagement"
)

// ReportService serves analytics reports to organizers.
type ReportService struct {
	source    RawDataSource
	cache     ReportCache
	cacheTTL  time.Duration
	processor *analytics.Processor
	logger    *slog.Logger
}

// NewReportService constructs a report service. cache may be nil.
func NewReportService(source RawDataSource, cache ReportCache, cacheTTL time.Duration, processor *analytics.Processor) *ReportService {
	return NewReportServiceWithLogger(source, cache, cacheTTL, processor, nil)
}

// NewReportServiceWithLogger constructs a report service with a specified logger.
func NewReportServiceWithLogger(source RawDataSource, cache ReportCache, cacheTTL time.Duration, processor *analytics.Processor, logger *slog.Logger) *ReportService {
	if processor == nil {
		processor = analytics.NewProcessor()
	}
	return &ReportService{source: source, cache: cache, cacheTTL: cacheTTL, processor: processor, logger: defaultLogger(logger)}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// BuildReport returns the full analytics report, served from the cache when present.
// Cache failures are logged and bypassed.
func (s *ReportService) BuildReport(ctx context.Context, principal Principal) (report analytics.Report, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}
	if err = requireOrganizer(principal); err != nil {
		return
	}

	logger := s.loggerWith(ctx, "BuildReport", "principal_id", principal.UserID)
	cached := false
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("cache_hit", cached).InfoContext(ctx, "report built")
	}()

	if report, cached = s.cachedReport(ctx, logger); cached {
		return
	}

	if s.source == nil {
		err = fmt.Errorf("report data source not configured")
		return
	}

	var data analytics.Dataset
	if data.Attendance, err = s.source.ListAttendance(ctx); err != nil {
		err = fmt.Errorf("load attendance: %w", err)
		return
	}
	if data.Sessions, err = s.source.ListSessionSummaries(ctx); err != nil {
		err = fmt.Errorf("load sessions: %w", err)
		return
	}
	if data.Feedback, err = s.source.ListFeedback(ctx); err != nil {
		err = fmt.Errorf("load feedback: %w", err)
		return
	}

	report = s.processor.BuildReport(data)
	s.storeReport(ctx, logger, report)
	return
}

// Section returns one block of the report.
func (s *ReportService) Section(ctx context.Context, principal Principal, section ReportSection) (any, error) {
	report, err := s.BuildReport(ctx, principal)
	if err != nil {
		return nil, err
	}
	switch section {
	case ReportSectionAll, "":
		return report, nil
	case ReportSectionAttendance:
		return report.Attendance, nil
	case ReportSectionSessions:
		return report.Sessions, nil
	case ReportSectionFaculty:
		return report.Faculty, nil
	case ReportSectionEngagement:
		return report.Engagement, nil
	default:
		return nil, NewValidationError("section", "unknown report section")
	}
}

// Export encodes one block of the report in the named format.
func (s *ReportService) Export(ctx context.Context, principal Principal, section ReportSection, format string) (analytics.Export, error) {
	parsed, err := analytics.ParseFormat(format)
	if err != nil {
		return analytics.Export{}, NewValidationError("format", "format must be json, csv or excel")
	}
	if section == "" {
		section = ReportSectionAll
	}
	data, err := s.Section(ctx, principal, section)
	if err != nil {
		return analytics.Export{}, err
	}
	out, err := analytics.ExportData(string(section), data, parsed)
	if err != nil {
		if errors.Is(err, analytics.ErrUnsupportedFormat) {
			return analytics.Export{}, NewValidationError("format", "format must be json, csv or excel")
		}
		return analytics.Export{}, err
	}
	return out, nil
}

func (s *ReportService) cachedReport(ctx context.Context, logger *slog.Logger) (analytics.Report, bool) {
	if s.cache == nil {
		return analytics.Report{}, false
	}
	payload, found, err := s.cache.Get(ctx, AnalyticsReportKey)
	if err != nil {
		logger.WarnContext(ctx, "report cache read failed", "error", err)
		return analytics.Report{}, false
	}
	if !found {
		return analytics.Report{}, false
	}
	var report analytics.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		logger.WarnContext(ctx, "discarding undecodable cached report", "error", err)
		return analytics.Report{}, false
	}
	return report, true
}

func (s *ReportService) storeReport(ctx context.Context, logger *slog.Logger, report analytics.Report) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		logger.WarnContext(ctx, "report encode for cache failed", "error", err)
		return
	}
	if err := s.cache.Set(ctx, AnalyticsReportKey, payload, s.cacheTTL); err != nil {
		logger.WarnContext(ctx, "report cache write failed", "error", err)
	}
}
