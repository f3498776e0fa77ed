package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

const healthTrendMinSamples = 4

// HealthScorer derives a reliability score and direction of change per
// component from the events in the snapshot.
type HealthScorer struct {
	maxErrorRate float64
}

func NewHealthScorer(maxErrorRate float64) *HealthScorer {
	if maxErrorRate <= 0 {
		maxErrorRate = 10.0
	}
	return &HealthScorer{maxErrorRate: maxErrorRate}
}

// Score returns one entry per component seen in the snapshot, worst
// reliability first. The returned slice is never nil.
func (h *HealthScorer) Score(events []models.ErrorEvent) []models.ComponentHealth {
	byComponent := make(map[string][]models.ErrorEvent)
	for _, event := range events {
		byComponent[event.Component] = append(byComponent[event.Component], event)
	}

	healths := make([]models.ComponentHealth, 0, len(byComponent))
	for component, group := range byComponent {
		group = sortEventsByTime(group)
		timestamps := make([]time.Time, len(group))
		codes := make(map[string]int, len(group))
		for i, event := range group {
			timestamps[i] = event.Timestamp
			codes[event.ErrorCode]++
		}

		rate := eventRate(timestamps)
		lastError := timestamps[len(timestamps)-1]
		healths = append(healths, models.ComponentHealth{
			ComponentName:    component,
			ErrorCount:       len(group),
			ErrorRate:        rate,
			ReliabilityScore: math.Max(0, 1-rate/h.maxErrorRate),
			MostCommonErrors: rankKeys(codes, 5),
			Trend:            healthTrend(timestamps),
			LastErrorTime:    &lastError,
		})
	}

	sort.Slice(healths, func(i, j int) bool {
		if healths[i].ReliabilityScore != healths[j].ReliabilityScore {
			return healths[i].ReliabilityScore < healths[j].ReliabilityScore
		}
		return healths[i].ComponentName < healths[j].ComponentName
	})
	return healths
}

// eventRate is errors per hour over the span the timestamps cover. Spans
// under an hour are treated as one hour so the count itself becomes the rate.
func eventRate(timestamps []time.Time) float64 {
	if len(timestamps) == 0 {
		return 0
	}
	span := utils.SpanHours(timestamps[0], timestamps[len(timestamps)-1])
	return float64(len(timestamps)) / math.Max(1, span)
}

// healthTrend splits the timestamps chronologically in half and compares the
// implied rates. Fewer than four samples is too little signal to call.
func healthTrend(timestamps []time.Time) models.HealthTrend {
	if len(timestamps) < healthTrendMinSamples {
		return models.HealthStable
	}
	half := len(timestamps) / 2
	firstRate := eventRate(timestamps[:half])
	secondRate := eventRate(timestamps[half:])
	switch {
	case secondRate > firstRate*1.5:
		return models.HealthDegrading
	case secondRate < firstRate*0.5:
		return models.HealthImproving
	default:
		return models.HealthStable
	}
}

func sortEventsByTime(events []models.ErrorEvent) []models.ErrorEvent {
	sorted := append([]models.ErrorEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}
