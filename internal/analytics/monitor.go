package analytics

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/faultlinehq/faultline/internal/models"
)

// burstWindow is the lookback for the inline spike check, independent of the
// analysis window and the sweep timer.
const burstWindow = 300 * time.Second

// BurstMonitor is the fast path run synchronously on every ingest. It only
// raises advisories; it never writes to the pattern registry.
type BurstMonitor struct {
	threshold int
	enabled   bool
}

func NewBurstMonitor(threshold int, enabled bool) *BurstMonitor {
	if threshold <= 0 {
		threshold = 10
	}
	return &BurstMonitor{threshold: threshold, enabled: enabled}
}

func (m *BurstMonitor) Window() time.Duration { return burstWindow }

func (m *BurstMonitor) Enabled() bool { return m.enabled }

// Check turns a recent-event count into an advisory when it exceeds the
// threshold. The count bound is strict, exactly threshold events stay quiet.
func (m *BurstMonitor) Check(event models.ErrorEvent, recentCount int, now time.Time) *models.Advisory {
	if !m.enabled || recentCount <= m.threshold {
		return nil
	}
	return &models.Advisory{
		ID:            uuid.NewString(),
		Message:       fmt.Sprintf("Error spike: %d errors in the last %.0f seconds", recentCount, burstWindow.Seconds()),
		EventCount:    recentCount,
		Threshold:     m.threshold,
		WindowSeconds: int(burstWindow.Seconds()),
		TriggeredBy:   event.ErrorCode,
		Timestamp:     now,
	}
}
