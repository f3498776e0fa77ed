package models

import "time"

// ErrorEvent is the atomic unit of input: one fault reported by an
// instrumented system. Events are never mutated after ingestion.
type ErrorEvent struct {
	ErrorCode      string         `json:"error_code"`
	Component      string         `json:"component"`
	Severity       string         `json:"severity,omitempty"`
	Timestamp      time.Time      `json:"timestamp"`
	Context        map[string]any `json:"context,omitempty"`
	ResponseTimeMs *float64       `json:"response_time_ms,omitempty"`
}

// HasResponseTime reports whether the event carries a latency sample.
func (e ErrorEvent) HasResponseTime() bool {
	return e.ResponseTimeMs != nil
}
