package analytics

import (
	"github.com/faultlinehq/faultline/internal/models"
)

const breakdownLimit = 10

func severityCounts(events []models.ErrorEvent) map[string]int {
	counts := make(map[string]int)
	for _, event := range events {
		severity := event.Severity
		if severity == "" {
			severity = "unknown"
		}
		counts[severity]++
	}
	return counts
}

func componentCounts(events []models.ErrorEvent) map[string]int {
	counts := make(map[string]int)
	for _, event := range events {
		counts[event.Component]++
	}
	return counts
}

func codeCounts(events []models.ErrorEvent) map[string]int {
	counts := make(map[string]int)
	for _, event := range events {
		counts[event.ErrorCode]++
	}
	return counts
}

// trimCounts keeps only the top-limit entries of a count map, ranked by count
// then key.
func trimCounts(counts map[string]int, limit int) map[string]int {
	if len(counts) <= limit {
		return counts
	}
	trimmed := make(map[string]int, limit)
	for _, key := range rankKeys(counts, limit) {
		trimmed[key] = counts[key]
	}
	return trimmed
}
