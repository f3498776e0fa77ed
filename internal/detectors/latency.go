package detectors

import (
	"fmt"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

const (
	degradationMinSamples = 10
	degradationMinFlagged = 5
)

// PerformanceDegradation compares response times against a baseline taken
// from the chronologically first half of the timed events. Only events that
// carry a response time participate; everything else is ignored.
type PerformanceDegradation struct {
	multiplier float64
}

func NewPerformanceDegradation(multiplier float64) *PerformanceDegradation {
	if multiplier <= 0 {
		multiplier = 2.0
	}
	return &PerformanceDegradation{multiplier: multiplier}
}

func (d *PerformanceDegradation) Name() string { return "performance_degradation" }

func (d *PerformanceDegradation) Detect(events []models.ErrorEvent, now time.Time) []models.ErrorPattern {
	timed := make([]models.ErrorEvent, 0, len(events))
	for _, event := range events {
		if event.HasResponseTime() {
			timed = append(timed, event)
		}
	}
	if len(timed) < degradationMinSamples {
		return nil
	}

	timed = sortedByTime(timed)
	firstHalf := timed[:len(timed)/2]
	baselineValues := make([]float64, len(firstHalf))
	for i, event := range firstHalf {
		baselineValues[i] = *event.ResponseTimeMs
	}
	baseline := median(baselineValues)

	bound := baseline * d.multiplier
	flagged := make([]models.ErrorEvent, 0, len(timed))
	for _, event := range timed {
		if *event.ResponseTimeMs > bound {
			flagged = append(flagged, event)
		}
	}
	if len(flagged) < degradationMinFlagged {
		return nil
	}

	return []models.ErrorPattern{{
		PatternID:          fmt.Sprintf("performance_degradation_%d", now.Unix()),
		Type:               models.PatternPerformanceDegradation,
		Description:        fmt.Sprintf("Response times degraded: %d of %d timed events exceed %.1fx the %.0fms baseline", len(flagged), len(timed), d.multiplier, baseline),
		ConfidenceScore:    clampScore(float64(len(flagged)) / float64(len(timed))),
		FirstDetected:      flagged[0].Timestamp,
		LastUpdated:        now,
		Occurrences:        len(flagged),
		AffectedComponents: componentSet(flagged),
		ErrorCodes:         codeSet(flagged),
		Metadata: map[string]any{
			"baseline_ms":   baseline,
			"timed_events":  len(timed),
			"flagged_count": len(flagged),
		},
		Recommendations: []string{
			"Profile the slow code paths and check saturation on shared dependencies",
		},
	}}
}
