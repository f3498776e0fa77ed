package detectors

import (
	"sort"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

// Detector is a stateless detection algorithm. Detect consumes an immutable
// snapshot of the event window and returns zero or more pattern candidates;
// it never returns an error, undersized input simply yields no patterns.
type Detector interface {
	Name() string
	Detect(events []models.ErrorEvent, now time.Time) []models.ErrorPattern
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func sortedByTime(events []models.ErrorEvent) []models.ErrorEvent {
	sorted := append([]models.ErrorEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

func uniqueSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	sort.Strings(result)
	return result
}

func componentSet(events []models.ErrorEvent) []string {
	components := make([]string, 0, len(events))
	for _, event := range events {
		components = append(components, event.Component)
	}
	return uniqueSorted(components)
}

func codeSet(events []models.ErrorEvent) []string {
	codes := make([]string, 0, len(events))
	for _, event := range events {
		codes = append(codes, event.ErrorCode)
	}
	return uniqueSorted(codes)
}

func earliestTime(events []models.ErrorEvent) time.Time {
	if len(events) == 0 {
		return time.Time{}
	}
	earliest := events[0].Timestamp
	for _, event := range events[1:] {
		if event.Timestamp.Before(earliest) {
			earliest = event.Timestamp
		}
	}
	return earliest
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
