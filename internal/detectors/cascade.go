package detectors

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

const cascadeMinSequence = 3

// CascadingFailure looks for errors hopping across components inside fixed
// wall-clock windows. Windows are keyed by floor(unix/windowSeconds), so a
// burst straddling a window edge lands in two windows; consecutive repeats
// of the same component collapse to one hop before the sequence is measured.
type CascadingFailure struct {
	window time.Duration
}

func NewCascadingFailure(window time.Duration) *CascadingFailure {
	if window <= 0 {
		window = time.Minute
	}
	return &CascadingFailure{window: window}
}

func (d *CascadingFailure) Name() string { return "cascading_failure" }

func (d *CascadingFailure) Detect(events []models.ErrorEvent, now time.Time) []models.ErrorPattern {
	if len(events) == 0 {
		return nil
	}

	windowSeconds := int64(d.window.Seconds())
	byWindow := make(map[int64][]models.ErrorEvent)
	for _, event := range events {
		key := event.Timestamp.Unix() / windowSeconds
		byWindow[key] = append(byWindow[key], event)
	}

	keys := make([]int64, 0, len(byWindow))
	for key := range byWindow {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var patterns []models.ErrorPattern
	for _, key := range keys {
		group := byWindow[key]
		if len(group) < cascadeMinSequence {
			continue
		}
		sorted := sortedByTime(group)
		sequence := collapseComponents(sorted)
		if len(sequence) < cascadeMinSequence {
			continue
		}
		patterns = append(patterns, models.ErrorPattern{
			PatternID:          fmt.Sprintf("cascade_%d", key),
			Type:               models.PatternCascadingFailure,
			Description:        "Cascading failure across components: " + strings.Join(sequence, " -> "),
			ConfidenceScore:    clampScore(float64(len(sequence)) / 5),
			FirstDetected:      sorted[0].Timestamp,
			LastUpdated:        now,
			Occurrences:        len(group),
			AffectedComponents: uniqueSorted(sequence),
			ErrorCodes:         codeSet(group),
			Metadata: map[string]any{
				"component_sequence": sequence,
				"window_start":       utils.BucketStart(key, d.window).Format(time.RFC3339),
			},
			Recommendations: []string{
				"Check the first component in the chain, downstream failures are likely collateral",
			},
		})
	}
	return patterns
}

func collapseComponents(events []models.ErrorEvent) []string {
	sequence := make([]string, 0, len(events))
	for _, event := range events {
		if len(sequence) > 0 && sequence[len(sequence)-1] == event.Component {
			continue
		}
		sequence = append(sequence, event.Component)
	}
	return sequence
}
