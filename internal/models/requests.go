package models

import (
	"math"
	"time"
)

// IngestEvent is the wire form of an ErrorEvent as producers submit it:
// timestamps travel as float64 epoch seconds and default to ingestion time
// when absent.
type IngestEvent struct {
	ErrorCode      string         `json:"error_code"`
	Component      string         `json:"component"`
	Severity       string         `json:"severity,omitempty"`
	Timestamp      float64        `json:"timestamp,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
	ResponseTimeMs *float64       `json:"response_time_ms,omitempty"`
}

// ToEvent converts the wire form into the internal event representation. A
// zero or negative timestamp is left unset for the engine to stamp.
func (i IngestEvent) ToEvent() ErrorEvent {
	event := ErrorEvent{
		ErrorCode: i.ErrorCode,
		Component: i.Component,
		Severity:  i.Severity,
		Context:   i.Context,
	}
	if i.Timestamp > 0 {
		sec, frac := math.Modf(i.Timestamp)
		event.Timestamp = time.Unix(int64(sec), int64(frac*float64(time.Second)))
	}
	if i.ResponseTimeMs != nil {
		rt := *i.ResponseTimeMs
		event.ResponseTimeMs = &rt
	}
	return event
}

// ExportRequest asks the service to write the current summary to a file.
type ExportRequest struct {
	Path string `json:"path"`
}
