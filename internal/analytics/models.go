// Package analytics turns raw attendance, session and feedback rows into the
// derived metrics shown on reporting dashboards and exports.
//
// Everything here is a pure function of its inputs: rows are never mutated,
// every call allocates fresh outputs, and divisions by zero yield 0.
package analytics

import "time"

// RawAttendanceData is one person-per-session check-in attempt. A nil
// CheckInTime means the person was registered but did not check in.
type RawAttendanceData struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	SessionID        string     `json:"sessionId"`
	SessionName      string     `json:"sessionName"`
	SessionStartTime time.Time  `json:"sessionStartTime"`
	SessionEndTime   time.Time  `json:"sessionEndTime"`
	HallName         string     `json:"hallName"`
	HallCapacity     int        `json:"hallCapacity"`
	CheckInTime      *time.Time `json:"checkInTime,omitempty"`
	CheckInMethod    string     `json:"checkInMethod"`
}

// RawSessionData is one session with its pre-aggregated attendance count and rating.
type RawSessionData struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	FacultyID       string    `json:"facultyId"`
	FacultyName     string    `json:"facultyName"`
	HallName        string    `json:"hallName"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	Capacity        int       `json:"capacity"`
	AttendanceCount int       `json:"attendanceCount"`
	AverageRating   float64   `json:"averageRating"`
	Tags            []string  `json:"tags,omitempty"`
}

// RawFeedbackData is a single rating with an optional free-text comment.
type RawFeedbackData struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// Dataset bundles the raw rows for one aggregation run.
type Dataset struct {
	Attendance []RawAttendanceData
	Sessions   []RawSessionData
	Feedback   []RawFeedbackData
}

// AttendanceMetrics summarises check-in behaviour.
type AttendanceMetrics struct {
	TotalSessions      int               `json:"totalSessions"`
	TotalAttendees     int               `json:"totalAttendees"`
	TotalCheckIns      int               `json:"totalCheckIns"`
	AvgAttendanceRate  float64           `json:"avgAttendanceRate"`
	CheckInMethods     CheckInMethods    `json:"checkInMethods"`
	Punctuality        Punctuality       `json:"punctuality"`
	HallUtilization    []HallUtilization `json:"hallUtilization"`
	DailyTrends        []DailyTrend      `json:"dailyTrends"`
	HourlyDistribution []HourlyCount     `json:"hourlyDistribution"`
	PeakAttendanceHour string            `json:"peakAttendanceHour"`
}

// CheckInMethods splits check-ins between QR scans and manual entry.
type CheckInMethods struct {
	QR         int              `json:"qr"`
	Manual     int              `json:"manual"`
	Percentage MethodPercentage `json:"percentage"`
}

// MethodPercentage holds the QR/manual shares in percent.
type MethodPercentage struct {
	QR     float64 `json:"qr"`
	Manual float64 `json:"manual"`
}

// Punctuality counts check-ins at or before session start against later ones.
type Punctuality struct {
	OnTime           int     `json:"onTime"`
	Late             int     `json:"late"`
	OnTimePercentage float64 `json:"onTimePercentage"`
}

// HallUtilization describes how full one hall was on average.
type HallUtilization struct {
	HallName          string  `json:"hallName"`
	Capacity          int     `json:"capacity"`
	Sessions          int     `json:"sessions"`
	TotalAttendance   int     `json:"totalAttendance"`
	AverageAttendance float64 `json:"averageAttendance"`
	UtilizationRate   float64 `json:"utilizationRate"`
	PeakSession       string  `json:"peakSession"`
	PeakAttendance    int     `json:"peakAttendance"`
}

// DailyTrend is the attendance of one calendar day.
type DailyTrend struct {
	Date       string  `json:"date"`
	Sessions   int     `json:"sessions"`
	Attendance int     `json:"attendance"`
	Rate       float64 `json:"rate"`
}

// HourlyCount is the number of check-ins within one hour of the day.
type HourlyCount struct {
	Hour     string `json:"hour"`
	Count    int    `json:"count"`
	Sessions int    `json:"sessions"`
}

// SessionMetrics summarises session quality and popularity.
type SessionMetrics struct {
	TotalSessions         int              `json:"totalSessions"`
	AverageRating         float64          `json:"averageRating"`
	AverageAttendanceRate float64          `json:"averageAttendanceRate"`
	CompletionRate        float64          `json:"completionRate"`
	PopularSessions       []PopularSession `json:"popularSessions"`
	Categories            map[string]int   `json:"categories"`
	DurationAnalysis      DurationAnalysis `json:"durationAnalysis"`
	Feedback              FeedbackSummary  `json:"feedback"`
}

// PopularSession ranks a session by fill rate.
type PopularSession struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	AttendanceCount int     `json:"attendanceCount"`
	AttendanceRate  float64 `json:"attendanceRate"`
	Rating          float64 `json:"rating"`
}

// DurationAnalysis relates session length to satisfaction.
type DurationAnalysis struct {
	AverageDuration float64                `json:"averageDuration"`
	OptimalDuration []DurationSatisfaction `json:"optimalDuration"`
}

// DurationSatisfaction pairs a session length in minutes with its rating.
type DurationSatisfaction struct {
	Duration     float64 `json:"duration"`
	Satisfaction float64 `json:"satisfaction"`
}

// FeedbackSummary rolls up ratings and comments.
type FeedbackSummary struct {
	TotalComments int            `json:"totalComments"`
	Sentiment     Sentiment      `json:"sentiment"`
	TopKeywords   []KeywordCount `json:"topKeywords"`
}

// Sentiment is a three-bucket rating histogram.
type Sentiment struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// KeywordCount is a word frequency taken from comments.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// FacultyMetrics rolls session rows up per faculty member.
type FacultyMetrics struct {
	TotalFaculty            int                     `json:"totalFaculty"`
	TopPerformers           []FacultyPerformance    `json:"topPerformers"`
	PerformanceDistribution PerformanceDistribution `json:"performanceDistribution"`
}

// FacultyPerformance is the aggregate of one faculty member's sessions.
type FacultyPerformance struct {
	FacultyID       string  `json:"facultyId"`
	Name            string  `json:"name"`
	TotalSessions   int     `json:"totalSessions"`
	AvgRating       float64 `json:"avgRating"`
	AvgAttendance   float64 `json:"avgAttendance"`
	EngagementScore float64 `json:"engagementScore"`
}

// PerformanceDistribution buckets faculty by average rating.
type PerformanceDistribution struct {
	Excellent        int `json:"excellent"`
	Good             int `json:"good"`
	Average          int `json:"average"`
	NeedsImprovement int `json:"needsImprovement"`
}

// EngagementMetrics is the weighted engagement composite.
type EngagementMetrics struct {
	FeedbackRate      float64 `json:"feedbackRate"`
	InteractionLevel  float64 `json:"interactionLevel"`
	RetentionRate     float64 `json:"retentionRate"`
	SatisfactionIndex float64 `json:"satisfactionIndex"`
	OverallScore      float64 `json:"overallScore"`
}

// TrendMetrics carries growth, seasonality, prediction and correlation figures
// produced by a TrendEstimator.
type TrendMetrics struct {
	Estimator    string          `json:"estimator"`
	GrowthRate   float64         `json:"growthRate"`
	Seasonality  []SeasonalPoint `json:"seasonality"`
	Predictions  Predictions     `json:"predictions"`
	Correlations []Correlation   `json:"correlations"`
}

// SeasonalPoint is the relative activity of one period.
type SeasonalPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// Predictions forecasts the next period.
type Predictions struct {
	NextPeriodAttendance int     `json:"nextPeriodAttendance"`
	NextPeriodSessions   int     `json:"nextPeriodSessions"`
	Confidence           float64 `json:"confidence"`
}

// Correlation relates two metrics.
type Correlation struct {
	Metric      string  `json:"metric"`
	Against     string  `json:"against"`
	Coefficient float64 `json:"coefficient"`
}

// Report is the full set of metrics for one dataset.
type Report struct {
	GeneratedAt time.Time         `json:"generatedAt"`
	Attendance  AttendanceMetrics `json:"attendance"`
	Sessions    SessionMetrics    `json:"sessions"`
	Faculty     FacultyMetrics    `json:"faculty"`
	Engagement  EngagementMetrics `json:"engagement"`
	Trends      TrendMetrics      `json:"trends"`
}
