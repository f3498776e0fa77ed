package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

// periodSeconds maps the supported trend period labels to their length.
// Unknown labels yield no trend rather than an error.
var periodSeconds = map[string]int64{
	"1h":  3600,
	"6h":  21600,
	"24h": 86400,
	"7d":  604800,
}

var defaultTrendPeriods = []string{"1h", "6h", "24h"}

const (
	dominantCodeLimit = 5
	peakBucketLimit   = 3
)

// TrendAnalyzer compares a period against the immediately preceding period of
// equal length. It works on whatever snapshot it is handed, so a period
// longer than the retention window simply sees an empty previous period.
type TrendAnalyzer struct{}

func NewTrendAnalyzer() *TrendAnalyzer { return &TrendAnalyzer{} }

// Analyze computes the trend for one period label. The second return value
// is false for unsupported labels.
func (a *TrendAnalyzer) Analyze(events []models.ErrorEvent, period string, now time.Time) (models.ErrorTrend, bool) {
	seconds, ok := periodSeconds[period]
	if !ok {
		return models.ErrorTrend{}, false
	}
	length := time.Duration(seconds) * time.Second
	currentStart := now.Add(-length)
	previousStart := now.Add(-2 * length)

	var current []models.ErrorEvent
	previousCount := 0
	for _, event := range events {
		switch {
		case event.Timestamp.After(currentStart):
			current = append(current, event)
		case event.Timestamp.After(previousStart):
			previousCount++
		}
	}
	currentCount := len(current)

	direction := models.TrendStable
	changePercentage := 0.0
	if previousCount > 0 {
		changePercentage = math.Abs(float64(currentCount-previousCount)) / float64(previousCount) * 100
		switch {
		case float64(currentCount) > float64(previousCount)*1.2:
			direction = models.TrendIncreasing
		case float64(currentCount) < float64(previousCount)*0.8:
			direction = models.TrendDecreasing
		}
	}

	codes := make(map[string]int, len(current))
	hourly := make(map[int64]int)
	for _, event := range current {
		codes[event.ErrorCode]++
		hourly[utils.HourBucket(event.Timestamp)]++
	}

	return models.ErrorTrend{
		TimePeriod:         period,
		TotalErrors:        currentCount,
		ErrorRate:          float64(currentCount) / (float64(seconds) / 3600),
		Direction:          direction,
		ChangePercentage:   changePercentage,
		DominantErrorTypes: rankKeys(codes, dominantCodeLimit),
		PeakErrorTimes:     peakTimes(hourly, peakBucketLimit),
	}, true
}

// AnalyzeAll runs Analyze for each label, silently skipping unknown ones.
// The returned slice is never nil.
func (a *TrendAnalyzer) AnalyzeAll(events []models.ErrorEvent, periods []string, now time.Time) []models.ErrorTrend {
	if len(periods) == 0 {
		periods = defaultTrendPeriods
	}
	trends := make([]models.ErrorTrend, 0, len(periods))
	for _, period := range periods {
		if trend, ok := a.Analyze(events, period, now); ok {
			trends = append(trends, trend)
		}
	}
	return trends
}

// rankKeys orders keys by descending count, ties broken by key, truncated to
// limit.
func rankKeys(counts map[string]int, limit int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return keys
}

func peakTimes(hourly map[int64]int, limit int) []time.Time {
	buckets := make([]int64, 0, len(hourly))
	for bucket := range hourly {
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		if hourly[buckets[i]] != hourly[buckets[j]] {
			return hourly[buckets[i]] > hourly[buckets[j]]
		}
		return buckets[i] < buckets[j]
	})
	if len(buckets) > limit {
		buckets = buckets[:limit]
	}
	times := make([]time.Time, len(buckets))
	for i, bucket := range buckets {
		times[i] = utils.BucketStart(bucket, time.Hour)
	}
	return times
}
