package analytics

import (
	"sort"
	"strings"
	"time"
)

const (
	defaultPeakHour     = "09:00"
	defaultCategory     = "General"
	popularSessionLimit = 10
	topPerformerLimit   = 10
	keywordLimit        = 10
	optimalRatingFloor  = 4.0
)

// Processor derives metrics from raw rows. The zero value is not usable; use NewProcessor.
type Processor struct {
	now      func() time.Time
	location *time.Location
	trends   TrendEstimator
}

// Option configures a Processor.
type Option func(*Processor)

// WithClock sets the reference clock used for completion rates.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLocation sets the zone used to bucket check-ins by day and hour.
func WithLocation(loc *time.Location) Option {
	return func(p *Processor) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithTrendEstimator replaces the default StaticTrendEstimator.
func WithTrendEstimator(estimator TrendEstimator) Option {
	return func(p *Processor) {
		if estimator != nil {
			p.trends = estimator
		}
	}
}

// NewProcessor constructs a processor. Defaults are time.Now, UTC and StaticTrendEstimator.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{now: time.Now, location: time.UTC, trends: StaticTrendEstimator{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildReport runs every aggregation over one dataset.
func (p *Processor) BuildReport(data Dataset) Report {
	attendance := p.ProcessAttendanceData(data.Attendance)
	sessions := p.ProcessSessionData(data.Sessions, data.Feedback)
	faculty := p.ProcessFacultyData(data.Sessions)
	return Report{
		GeneratedAt: p.now().UTC(),
		Attendance:  attendance,
		Sessions:    sessions,
		Faculty:     faculty,
		Engagement:  p.CalculateEngagementMetrics(data.Attendance, data.Sessions, data.Feedback),
		Trends:      p.GenerateTrendMetrics(TrendInput{Attendance: attendance, Sessions: sessions, Faculty: faculty}),
	}
}

type checkIn struct {
	row RawAttendanceData
	at  time.Time
}

type sessionSlot struct {
	id       string
	name     string
	hall     string
	capacity int
}

// ProcessAttendanceData aggregates check-in rows. Repeated attempts by the same
// person for the same session count once, at their earliest check-in.
func (p *Processor) ProcessAttendanceData(rows []RawAttendanceData) AttendanceMetrics {
	metrics := AttendanceMetrics{
		HallUtilization:    make([]HallUtilization, 0),
		DailyTrends:        make([]DailyTrend, 0),
		HourlyDistribution: make([]HourlyCount, 0),
		PeakAttendanceHour: defaultPeakHour,
	}

	slots := make(map[string]sessionSlot)
	for _, row := range rows {
		if _, ok := slots[row.SessionID]; ok {
			continue
		}
		slots[row.SessionID] = sessionSlot{id: row.SessionID, name: row.SessionName, hall: row.HallName, capacity: row.HallCapacity}
	}
	metrics.TotalSessions = len(slots)

	checkIns := dedupeCheckIns(rows)
	metrics.TotalCheckIns = len(checkIns)

	attendees := make(map[string]struct{})
	for _, c := range checkIns {
		attendees[attendeeKey(c.row)] = struct{}{}
	}
	metrics.TotalAttendees = len(attendees)

	totalCapacity := 0
	for _, slot := range slots {
		totalCapacity += slot.capacity
	}
	metrics.AvgAttendanceRate = percent(len(checkIns), totalCapacity)

	for _, c := range checkIns {
		if strings.EqualFold(strings.TrimSpace(c.row.CheckInMethod), "qr") {
			metrics.CheckInMethods.QR++
		} else {
			metrics.CheckInMethods.Manual++
		}
		if !c.at.After(c.row.SessionStartTime) {
			metrics.Punctuality.OnTime++
		} else {
			metrics.Punctuality.Late++
		}
	}
	metrics.CheckInMethods.Percentage = MethodPercentage{
		QR:     percent(metrics.CheckInMethods.QR, len(checkIns)),
		Manual: percent(metrics.CheckInMethods.Manual, len(checkIns)),
	}
	metrics.Punctuality.OnTimePercentage = percent(metrics.Punctuality.OnTime, len(checkIns))

	metrics.HallUtilization = hallUtilization(slots, checkIns)
	// Trends count every checked-in row, repeated scans included.
	scans := checkedInRows(rows)
	metrics.DailyTrends = p.dailyTrends(slots, scans)
	metrics.HourlyDistribution, metrics.PeakAttendanceHour = p.hourlyDistribution(scans)

	return metrics
}

func dedupeCheckIns(rows []RawAttendanceData) []checkIn {
	earliest := make(map[string]int)
	out := make([]checkIn, 0)
	for _, row := range rows {
		if row.CheckInTime == nil || row.CheckInTime.IsZero() {
			continue
		}
		key := attendeeKey(row) + "\x00" + row.SessionID
		if idx, ok := earliest[key]; ok {
			if row.CheckInTime.Before(out[idx].at) {
				out[idx] = checkIn{row: row, at: *row.CheckInTime}
			}
			continue
		}
		earliest[key] = len(out)
		out = append(out, checkIn{row: row, at: *row.CheckInTime})
	}
	return out
}

func checkedInRows(rows []RawAttendanceData) []checkIn {
	out := make([]checkIn, 0, len(rows))
	for _, row := range rows {
		if row.CheckInTime == nil || row.CheckInTime.IsZero() {
			continue
		}
		out = append(out, checkIn{row: row, at: *row.CheckInTime})
	}
	return out
}

func attendeeKey(row RawAttendanceData) string {
	if strings.TrimSpace(row.UserID) != "" {
		return row.UserID
	}
	return "row:" + row.ID
}

func hallUtilization(slots map[string]sessionSlot, checkIns []checkIn) []HallUtilization {
	type hallAgg struct {
		capacity   int
		sessions   int
		attendance int
		perSession map[string]int
	}
	halls := make(map[string]*hallAgg)
	hallFor := func(name string) *hallAgg {
		agg, ok := halls[name]
		if !ok {
			agg = &hallAgg{perSession: make(map[string]int)}
			halls[name] = agg
		}
		return agg
	}

	for _, slot := range slots {
		agg := hallFor(slot.hall)
		agg.sessions++
		if slot.capacity > agg.capacity {
			agg.capacity = slot.capacity
		}
	}
	for _, c := range checkIns {
		agg := hallFor(c.row.HallName)
		agg.attendance++
		agg.perSession[c.row.SessionName]++
	}

	out := make([]HallUtilization, 0, len(halls))
	for name, agg := range halls {
		avg := ratio(agg.attendance, agg.sessions)
		peakName, peakCount := maxCount(agg.perSession)
		out = append(out, HallUtilization{
			HallName:          name,
			Capacity:          agg.capacity,
			Sessions:          agg.sessions,
			TotalAttendance:   agg.attendance,
			AverageAttendance: round1(avg),
			UtilizationRate:   round1(safeDivide(avg, float64(agg.capacity)) * 100),
			PeakSession:       peakName,
			PeakAttendance:    peakCount,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HallName < out[j].HallName })
	return out
}

func (p *Processor) dailyTrends(slots map[string]sessionSlot, checkIns []checkIn) []DailyTrend {
	type dayAgg struct {
		sessions   map[string]struct{}
		attendance int
	}
	days := make(map[string]*dayAgg)
	for _, c := range checkIns {
		date := c.at.In(p.location).Format("2006-01-02")
		agg, ok := days[date]
		if !ok {
			agg = &dayAgg{sessions: make(map[string]struct{})}
			days[date] = agg
		}
		agg.sessions[c.row.SessionID] = struct{}{}
		agg.attendance++
	}

	out := make([]DailyTrend, 0, len(days))
	for date, agg := range days {
		capacity := 0
		for id := range agg.sessions {
			capacity += slots[id].capacity
		}
		out = append(out, DailyTrend{
			Date:       date,
			Sessions:   len(agg.sessions),
			Attendance: agg.attendance,
			Rate:       percent(agg.attendance, capacity),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (p *Processor) hourlyDistribution(checkIns []checkIn) ([]HourlyCount, string) {
	type hourAgg struct {
		count    int
		sessions map[string]struct{}
	}
	hours := make(map[string]*hourAgg)
	for _, c := range checkIns {
		hour := c.at.In(p.location).Format("15") + ":00"
		agg, ok := hours[hour]
		if !ok {
			agg = &hourAgg{sessions: make(map[string]struct{})}
			hours[hour] = agg
		}
		agg.count++
		agg.sessions[c.row.SessionID] = struct{}{}
	}

	out := make([]HourlyCount, 0, len(hours))
	for hour, agg := range hours {
		out = append(out, HourlyCount{Hour: hour, Count: agg.count, Sessions: len(agg.sessions)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })

	peak := defaultPeakHour
	best := 0
	for _, h := range out {
		if h.Count > best {
			best = h.Count
			peak = h.Hour
		}
	}
	return out, peak
}

// ProcessSessionData aggregates session rows and their feedback.
func (p *Processor) ProcessSessionData(sessions []RawSessionData, feedback []RawFeedbackData) SessionMetrics {
	metrics := SessionMetrics{
		TotalSessions:   len(sessions),
		PopularSessions: make([]PopularSession, 0),
		Categories:      make(map[string]int),
		DurationAnalysis: DurationAnalysis{
			OptimalDuration: make([]DurationSatisfaction, 0),
		},
	}

	now := p.now()
	var ratingSum, rateSum, durationSum float64
	completed, timed := 0, 0
	for _, s := range sessions {
		ratingSum += s.AverageRating
		rate := safeDivide(float64(s.AttendanceCount), float64(s.Capacity)) * 100
		rateSum += rate

		if !s.EndTime.IsZero() && s.EndTime.Before(now) {
			completed++
		}

		metrics.PopularSessions = append(metrics.PopularSessions, PopularSession{
			ID:              s.ID,
			Title:           s.Title,
			AttendanceCount: s.AttendanceCount,
			AttendanceRate:  round1(rate),
			Rating:          round1(s.AverageRating),
		})

		tagged := false
		for _, tag := range s.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			metrics.Categories[tag]++
			tagged = true
		}
		if !tagged {
			metrics.Categories[defaultCategory]++
		}

		if minutes, ok := durationMinutes(s); ok {
			durationSum += minutes
			timed++
			if s.AverageRating >= optimalRatingFloor {
				metrics.DurationAnalysis.OptimalDuration = append(metrics.DurationAnalysis.OptimalDuration, DurationSatisfaction{
					Duration:     round1(minutes),
					Satisfaction: round1(s.AverageRating),
				})
			}
		}
	}

	n := float64(len(sessions))
	metrics.AverageRating = round1(safeDivide(ratingSum, n))
	metrics.AverageAttendanceRate = round1(safeDivide(rateSum, n))
	metrics.CompletionRate = percent(completed, len(sessions))
	metrics.DurationAnalysis.AverageDuration = round1(safeDivide(durationSum, float64(timed)))

	sort.SliceStable(metrics.PopularSessions, func(i, j int) bool {
		a, b := metrics.PopularSessions[i], metrics.PopularSessions[j]
		if a.AttendanceRate != b.AttendanceRate {
			return a.AttendanceRate > b.AttendanceRate
		}
		if a.AttendanceCount != b.AttendanceCount {
			return a.AttendanceCount > b.AttendanceCount
		}
		return a.ID < b.ID
	})
	if len(metrics.PopularSessions) > popularSessionLimit {
		metrics.PopularSessions = metrics.PopularSessions[:popularSessionLimit]
	}

	sort.SliceStable(metrics.DurationAnalysis.OptimalDuration, func(i, j int) bool {
		a, b := metrics.DurationAnalysis.OptimalDuration[i], metrics.DurationAnalysis.OptimalDuration[j]
		if a.Satisfaction != b.Satisfaction {
			return a.Satisfaction > b.Satisfaction
		}
		return a.Duration < b.Duration
	})

	metrics.Feedback = summarizeFeedback(feedback)
	return metrics
}

func durationMinutes(s RawSessionData) (float64, bool) {
	if s.StartTime.IsZero() || s.EndTime.IsZero() || s.EndTime.Before(s.StartTime) {
		return 0, false
	}
	return s.EndTime.Sub(s.StartTime).Minutes(), true
}

func summarizeFeedback(feedback []RawFeedbackData) FeedbackSummary {
	summary := FeedbackSummary{TopKeywords: make([]KeywordCount, 0)}
	words := make(map[string]int)
	for _, f := range feedback {
		switch {
		case f.Rating >= 4:
			summary.Sentiment.Positive++
		case f.Rating == 3:
			summary.Sentiment.Neutral++
		default:
			summary.Sentiment.Negative++
		}

		comment := strings.TrimSpace(f.Comment)
		if comment == "" {
			continue
		}
		summary.TotalComments++
		for _, token := range strings.Fields(strings.ToLower(comment)) {
			token = trimPunctuation(token)
			if len([]rune(token)) <= 3 {
				continue
			}
			words[token]++
		}
	}

	for word, count := range words {
		summary.TopKeywords = append(summary.TopKeywords, KeywordCount{Word: word, Count: count})
	}
	sort.Slice(summary.TopKeywords, func(i, j int) bool {
		a, b := summary.TopKeywords[i], summary.TopKeywords[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Word < b.Word
	})
	if len(summary.TopKeywords) > keywordLimit {
		summary.TopKeywords = summary.TopKeywords[:keywordLimit]
	}
	return summary
}

// ProcessFacultyData groups session rows by faculty and ranks them by engagement score.
// Rows without a faculty id are ignored.
func (p *Processor) ProcessFacultyData(sessions []RawSessionData) FacultyMetrics {
	type facultyAgg struct {
		name       string
		sessions   int
		ratingSum  float64
		attendance int
		capacity   int
	}
	groups := make(map[string]*facultyAgg)
	for _, s := range sessions {
		id := strings.TrimSpace(s.FacultyID)
		if id == "" {
			continue
		}
		agg, ok := groups[id]
		if !ok {
			agg = &facultyAgg{name: s.FacultyName}
			groups[id] = agg
		}
		if agg.name == "" {
			agg.name = s.FacultyName
		}
		agg.sessions++
		agg.ratingSum += s.AverageRating
		agg.attendance += s.AttendanceCount
		agg.capacity += s.Capacity
	}

	metrics := FacultyMetrics{TotalFaculty: len(groups), TopPerformers: make([]FacultyPerformance, 0, len(groups))}
	for id, agg := range groups {
		avgRating := safeDivide(agg.ratingSum, float64(agg.sessions))
		avgAttendance := safeDivide(float64(agg.attendance), float64(agg.capacity)) * 100

		switch {
		case avgRating >= 4.5:
			metrics.PerformanceDistribution.Excellent++
		case avgRating >= 3.5:
			metrics.PerformanceDistribution.Good++
		case avgRating >= 2.5:
			metrics.PerformanceDistribution.Average++
		default:
			metrics.PerformanceDistribution.NeedsImprovement++
		}

		metrics.TopPerformers = append(metrics.TopPerformers, FacultyPerformance{
			FacultyID:       id,
			Name:            agg.name,
			TotalSessions:   agg.sessions,
			AvgRating:       round1(avgRating),
			AvgAttendance:   round1(avgAttendance),
			EngagementScore: round1(EngagementScore(avgRating, avgAttendance)),
		})
	}

	sort.Slice(metrics.TopPerformers, func(i, j int) bool {
		a, b := metrics.TopPerformers[i], metrics.TopPerformers[j]
		if a.EngagementScore != b.EngagementScore {
			return a.EngagementScore > b.EngagementScore
		}
		return a.FacultyID < b.FacultyID
	})
	if len(metrics.TopPerformers) > topPerformerLimit {
		metrics.TopPerformers = metrics.TopPerformers[:topPerformerLimit]
	}
	return metrics
}

// EngagementScore weighs a 0-5 rating and a 0-100 attendance rate equally onto a 0-100 scale.
func EngagementScore(avgRating, avgAttendanceRate float64) float64 {
	return (avgRating/5)*50 + (avgAttendanceRate/100)*50
}

// CalculateEngagementMetrics computes the weighted engagement composite.
// Satisfaction falls back to session ratings when no feedback was collected.
func (p *Processor) CalculateEngagementMetrics(attendance []RawAttendanceData, sessions []RawSessionData, feedback []RawFeedbackData) EngagementMetrics {
	checkIns := dedupeCheckIns(attendance)
	perAttendee := make(map[string]map[string]struct{})
	for _, c := range checkIns {
		key := attendeeKey(c.row)
		if perAttendee[key] == nil {
			perAttendee[key] = make(map[string]struct{})
		}
		perAttendee[key][c.row.SessionID] = struct{}{}
	}
	returning := 0
	for _, attended := range perAttendee {
		if len(attended) > 1 {
			returning++
		}
	}

	responses := make(map[string]struct{})
	commented := 0
	ratingSum := 0
	for _, f := range feedback {
		key := f.UserID + "\x00" + f.SessionID
		if strings.TrimSpace(f.UserID) == "" {
			key = "row:" + f.ID
		}
		responses[key] = struct{}{}
		if strings.TrimSpace(f.Comment) != "" {
			commented++
		}
		ratingSum += f.Rating
	}

	var satisfaction float64
	if len(feedback) > 0 {
		satisfaction = safeDivide(float64(ratingSum), float64(len(feedback))) / 5 * 100
	} else {
		var sum float64
		rated := 0
		for _, s := range sessions {
			if s.AverageRating > 0 {
				sum += s.AverageRating
				rated++
			}
		}
		satisfaction = safeDivide(sum, float64(rated)) / 5 * 100
	}

	feedbackRate := ratio(len(responses), len(checkIns)) * 100
	if feedbackRate > 100 {
		feedbackRate = 100
	}
	interaction := ratio(commented, len(feedback)) * 100
	retention := ratio(returning, len(perAttendee)) * 100

	return EngagementMetrics{
		FeedbackRate:      round1(feedbackRate),
		InteractionLevel:  round1(interaction),
		RetentionRate:     round1(retention),
		SatisfactionIndex: round1(satisfaction),
		OverallScore:      round1(feedbackRate*0.3 + interaction*0.2 + retention*0.3 + satisfaction*0.2),
	}
}

// GenerateTrendMetrics delegates to the configured TrendEstimator.
func (p *Processor) GenerateTrendMetrics(input TrendInput) TrendMetrics {
	return p.trends.Estimate(input)
}

func maxCount(counts map[string]int) (string, int) {
	name, best := "", 0
	for candidate, count := range counts {
		if count > best || (count == best && candidate < name) {
			name, best = candidate, count
		}
	}
	return name, best
}
