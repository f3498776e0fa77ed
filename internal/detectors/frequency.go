package detectors

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

// FrequencySpike flags hour buckets whose error count stands out against the
// mean of all buckets in the window. A bucket is a spike only when it clears
// both the statistical bound (mean + 2 stdev) and the configured multiplier.
type FrequencySpike struct {
	multiplier float64
}

func NewFrequencySpike(multiplier float64) *FrequencySpike {
	if multiplier <= 0 {
		multiplier = 3.0
	}
	return &FrequencySpike{multiplier: multiplier}
}

func (d *FrequencySpike) Name() string { return "frequency_spike" }

func (d *FrequencySpike) Detect(events []models.ErrorEvent, now time.Time) []models.ErrorPattern {
	if len(events) == 0 {
		return nil
	}

	buckets := make(map[int64][]models.ErrorEvent)
	for _, event := range events {
		hour := utils.HourBucket(event.Timestamp)
		buckets[hour] = append(buckets[hour], event)
	}
	if len(buckets) < 2 {
		return nil
	}

	hours := make([]int64, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })

	counts := make([]float64, len(hours))
	for i, hour := range hours {
		counts[i] = float64(len(buckets[hour]))
	}
	baseline := stat.Mean(counts, nil)
	stdev := stat.PopStdDev(counts, nil)

	var patterns []models.ErrorPattern
	for i, hour := range hours {
		count := counts[i]
		if count <= baseline+2*stdev || count <= baseline*d.multiplier {
			continue
		}
		bucket := buckets[hour]
		patterns = append(patterns, models.ErrorPattern{
			PatternID:          fmt.Sprintf("freq_spike_%d", hour),
			Type:               models.PatternFrequencySpike,
			Description:        fmt.Sprintf("Error frequency spike: %d errors in one hour against a baseline of %.1f/hour", int(count), baseline),
			ConfidenceScore:    clampScore((count - baseline) / math.Max(baseline, 1)),
			FirstDetected:      earliestTime(bucket),
			LastUpdated:        now,
			Occurrences:        len(bucket),
			AffectedComponents: componentSet(bucket),
			ErrorCodes:         codeSet(bucket),
			Metadata: map[string]any{
				"hour_bucket":     hour,
				"bucket_start":    utils.BucketStart(hour, time.Hour).Format(time.RFC3339),
				"baseline_mean":   baseline,
				"baseline_stdev":  stdev,
				"spike_threshold": baseline * d.multiplier,
			},
			Recommendations: []string{
				"Correlate the spike hour with deploys, config changes and upstream incidents",
			},
		})
	}
	return patterns
}
