package models

import "time"

// HealthTrend captures the direction of change for a component's error rate.
type HealthTrend string

const (
	HealthImproving HealthTrend = "improving"
	HealthDegrading HealthTrend = "degrading"
	HealthStable    HealthTrend = "stable"
)

// ComponentHealth is a per-component reliability assessment derived from the
// component's own event history. Recomputed per query, never stored.
type ComponentHealth struct {
	ComponentName    string      `json:"component_name"`
	ErrorCount       int         `json:"error_count"`
	ErrorRate        float64     `json:"error_rate"`
	ReliabilityScore float64     `json:"reliability_score"`
	MostCommonErrors []string    `json:"most_common_errors"`
	Trend            HealthTrend `json:"trend"`
	LastErrorTime    *time.Time  `json:"last_error_time,omitempty"`
}
