package models

import "time"

// TrendDirection captures period-over-period movement of the error rate.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// ErrorTrend compares a named period against the immediately preceding
// period of equal length. Recomputed per query, never stored.
type ErrorTrend struct {
	TimePeriod         string         `json:"time_period"`
	TotalErrors        int            `json:"total_errors"`
	ErrorRate          float64        `json:"error_rate"`
	Direction          TrendDirection `json:"trend_direction"`
	ChangePercentage   float64        `json:"change_percentage"`
	DominantErrorTypes []string       `json:"dominant_error_types"`
	PeakErrorTimes     []time.Time    `json:"peak_error_times"`
}
