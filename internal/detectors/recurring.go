package detectors

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/faultlinehq/faultline/internal/models"
)

// RecurringError flags error codes that repeat at or above the configured
// occurrence threshold within the window.
type RecurringError struct {
	threshold int
}

func NewRecurringError(threshold int) *RecurringError {
	if threshold <= 0 {
		threshold = 5
	}
	return &RecurringError{threshold: threshold}
}

func (d *RecurringError) Name() string { return "recurring_error" }

func (d *RecurringError) Detect(events []models.ErrorEvent, now time.Time) []models.ErrorPattern {
	if len(events) == 0 {
		return nil
	}

	byCode := make(map[string][]models.ErrorEvent)
	for _, event := range events {
		byCode[event.ErrorCode] = append(byCode[event.ErrorCode], event)
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var patterns []models.ErrorPattern
	for _, code := range codes {
		group := byCode[code]
		if len(group) < d.threshold {
			continue
		}
		sorted := sortedByTime(group)
		first := sorted[0].Timestamp
		last := sorted[len(sorted)-1].Timestamp

		intervals := make([]float64, 0, len(sorted)-1)
		for i := 1; i < len(sorted); i++ {
			intervals = append(intervals, sorted[i].Timestamp.Sub(sorted[i-1].Timestamp).Seconds())
		}
		avgInterval := 0.0
		if len(intervals) > 0 {
			avgInterval = stat.Mean(intervals, nil)
		}

		patterns = append(patterns, models.ErrorPattern{
			PatternID:          "recurring_" + code,
			Type:               models.PatternRecurringError,
			Description:        fmt.Sprintf("Error %s recurred %d times within the window", code, len(group)),
			ConfidenceScore:    clampScore(float64(len(group)) / 10),
			FirstDetected:      first,
			LastUpdated:        now,
			Occurrences:        len(group),
			AffectedComponents: componentSet(group),
			ErrorCodes:         []string{code},
			Metadata: map[string]any{
				"avg_interval_seconds":   avgInterval,
				"total_timespan_seconds": last.Sub(first).Seconds(),
			},
			Recommendations: []string{
				fmt.Sprintf("Track error %s in the issue tracker and fix the underlying condition", code),
			},
		})
	}
	return patterns
}
