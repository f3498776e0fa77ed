package models

import "time"

// Advisory is an immediate burst signal from the fast-path monitor. It is
// broadcast to subscribers and archived, but never enters the pattern
// registry.
type Advisory struct {
	ID            string    `json:"id"`
	Message       string    `json:"message"`
	EventCount    int       `json:"event_count"`
	Threshold     int       `json:"threshold"`
	WindowSeconds int       `json:"window_seconds"`
	TriggeredBy   string    `json:"triggered_by"`
	Timestamp     time.Time `json:"timestamp"`
}
