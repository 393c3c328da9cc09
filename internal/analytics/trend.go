package analytics

import "math"

// TrendInput is what a TrendEstimator sees: the already aggregated metrics of
// the current dataset.
type TrendInput struct {
	Attendance AttendanceMetrics
	Sessions   SessionMetrics
	Faculty    FacultyMetrics
}

// TrendEstimator produces forward-looking figures from aggregated metrics.
type TrendEstimator interface {
	Estimate(input TrendInput) TrendMetrics
}

// StaticTrendEstimator reports fixed placeholder trends. Predictions are
// derived from the current totals scaled by the fixed growth rate.
type StaticTrendEstimator struct{}

const (
	staticGrowthRate = 12.5
	staticConfidence = 0.75
)

var staticSeasonality = []SeasonalPoint{
	{Period: "Q1", Value: 0.8},
	{Period: "Q2", Value: 1.1},
	{Period: "Q3", Value: 0.9},
	{Period: "Q4", Value: 1.2},
}

var staticCorrelations = []Correlation{
	{Metric: "attendance", Against: "rating", Coefficient: 0.65},
	{Metric: "duration", Against: "satisfaction", Coefficient: -0.2},
	{Metric: "checkInTime", Against: "rating", Coefficient: 0.3},
}

// Estimate implements TrendEstimator.
func (StaticTrendEstimator) Estimate(input TrendInput) TrendMetrics {
	grow := 1 + staticGrowthRate/100
	seasonality := make([]SeasonalPoint, len(staticSeasonality))
	copy(seasonality, staticSeasonality)
	correlations := make([]Correlation, len(staticCorrelations))
	copy(correlations, staticCorrelations)

	return TrendMetrics{
		Estimator:   "static",
		GrowthRate:  staticGrowthRate,
		Seasonality: seasonality,
		Predictions: Predictions{
			NextPeriodAttendance: int(math.Round(float64(input.Attendance.TotalCheckIns) * grow)),
			NextPeriodSessions:   int(math.Round(float64(input.Sessions.TotalSessions) * grow)),
			Confidence:           staticConfidence,
		},
		Correlations: correlations,
	}
}
