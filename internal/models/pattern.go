package models

import "time"

// PatternType enumerates the detection algorithms.
type PatternType string

const (
	PatternFrequencySpike         PatternType = "frequency_spike"
	PatternRecurringError         PatternType = "recurring_error"
	PatternTemporalCluster        PatternType = "temporal_cluster"
	PatternComponentHotspot       PatternType = "component_hotspot"
	PatternCascadingFailure       PatternType = "cascading_failure"
	PatternPerformanceDegradation PatternType = "performance_degradation"
)

// ErrorPattern is a detector finding, keyed by a deterministic PatternID so
// that repeat detections replace rather than accumulate.
type ErrorPattern struct {
	PatternID          string         `json:"pattern_id"`
	Type               PatternType    `json:"pattern_type"`
	Description        string         `json:"description"`
	ConfidenceScore    float64        `json:"confidence_score"`
	FirstDetected      time.Time      `json:"first_detected"`
	LastUpdated        time.Time      `json:"last_updated"`
	Occurrences        int            `json:"occurrences"`
	AffectedComponents []string       `json:"affected_components"`
	ErrorCodes         []string       `json:"error_codes"`
	Metadata           map[string]any `json:"metadata,omitempty"`
	Recommendations    []string       `json:"recommendations,omitempty"`
}
