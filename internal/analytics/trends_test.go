package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

func TestTrendIncreasing(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	now := storeBase

	var events []models.ErrorEvent
	// 50 errors in the previous hour, 70 in the current one.
	for i := 0; i < 50; i++ {
		events = append(events, evt("E1", "api", now.Add(-90*time.Minute)))
	}
	for i := 0; i < 70; i++ {
		events = append(events, evt("E1", "api", now.Add(-30*time.Minute)))
	}

	trend, ok := analyzer.Analyze(events, "1h", now)
	if !ok {
		t.Fatal("1h should be a supported period")
	}
	if trend.Direction != models.TrendIncreasing {
		t.Fatalf("direction = %q, want increasing", trend.Direction)
	}
	if math.Abs(trend.ChangePercentage-40.0) > 1e-9 {
		t.Fatalf("change = %v, want 40.0", trend.ChangePercentage)
	}
	if trend.TotalErrors != 70 {
		t.Fatalf("total = %d, want 70", trend.TotalErrors)
	}
	if math.Abs(trend.ErrorRate-70.0) > 1e-9 {
		t.Fatalf("rate = %v, want 70/hour", trend.ErrorRate)
	}
}

func TestTrendDecreasing(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	now := storeBase

	var events []models.ErrorEvent
	for i := 0; i < 50; i++ {
		events = append(events, evt("E1", "api", now.Add(-90*time.Minute)))
	}
	for i := 0; i < 30; i++ {
		events = append(events, evt("E1", "api", now.Add(-30*time.Minute)))
	}

	trend, _ := analyzer.Analyze(events, "1h", now)
	if trend.Direction != models.TrendDecreasing {
		t.Fatalf("direction = %q, want decreasing", trend.Direction)
	}
	if math.Abs(trend.ChangePercentage-40.0) > 1e-9 {
		t.Fatalf("change = %v, want 40.0", trend.ChangePercentage)
	}
}

func TestTrendStableBand(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	now := storeBase

	var events []models.ErrorEvent
	for i := 0; i < 50; i++ {
		events = append(events, evt("E1", "api", now.Add(-90*time.Minute)))
	}
	// 55 is inside the +-20% band around 50.
	for i := 0; i < 55; i++ {
		events = append(events, evt("E1", "api", now.Add(-30*time.Minute)))
	}

	trend, _ := analyzer.Analyze(events, "1h", now)
	if trend.Direction != models.TrendStable {
		t.Fatalf("direction = %q, want stable", trend.Direction)
	}
	if math.Abs(trend.ChangePercentage-10.0) > 1e-9 {
		t.Fatalf("change = %v, want 10.0", trend.ChangePercentage)
	}
}

func TestTrendEmptyPreviousPeriodIsStable(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	now := storeBase

	var events []models.ErrorEvent
	for i := 0; i < 30; i++ {
		events = append(events, evt("E1", "api", now.Add(-10*time.Minute)))
	}

	trend, _ := analyzer.Analyze(events, "1h", now)
	if trend.Direction != models.TrendStable {
		t.Fatalf("direction = %q, want stable with no previous data", trend.Direction)
	}
	if trend.ChangePercentage != 0 {
		t.Fatalf("change = %v, want 0 with no previous data", trend.ChangePercentage)
	}
}

func TestTrendUnknownPeriod(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	if _, ok := analyzer.Analyze(nil, "90m", storeBase); ok {
		t.Fatal("unknown period label must yield no trend")
	}
}

func TestTrendDominantCodesAndPeaks(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	now := storeBase

	var events []models.ErrorEvent
	hourAgo := now.Add(-50 * time.Minute)
	for i := 0; i < 9; i++ {
		events = append(events, evt("E_TOP", "api", hourAgo.Add(time.Duration(i)*time.Second)))
	}
	for i := 0; i < 4; i++ {
		events = append(events, evt("E_MID", "api", now.Add(-20*time.Minute)))
	}
	events = append(events, evt("E_ONE", "api", now.Add(-time.Minute)))

	trend, _ := analyzer.Analyze(events, "1h", now)
	if len(trend.DominantErrorTypes) != 3 || trend.DominantErrorTypes[0] != "E_TOP" {
		t.Fatalf("dominant = %v, want E_TOP first", trend.DominantErrorTypes)
	}
	if len(trend.PeakErrorTimes) == 0 {
		t.Fatal("expected at least one peak bucket")
	}
	wantPeak := hourAgo.Truncate(time.Hour)
	if !trend.PeakErrorTimes[0].Equal(wantPeak) {
		t.Fatalf("peak = %v, want %v", trend.PeakErrorTimes[0], wantPeak)
	}
}

func TestTrendAnalyzeAllSkipsUnknown(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	trends := analyzer.AnalyzeAll(nil, []string{"1h", "bogus", "24h"}, storeBase)
	if len(trends) != 2 {
		t.Fatalf("len = %d, want 2", len(trends))
	}
	if trends[0].TimePeriod != "1h" || trends[1].TimePeriod != "24h" {
		t.Fatalf("periods = %q %q", trends[0].TimePeriod, trends[1].TimePeriod)
	}
}

func TestTrendDefaultPeriods(t *testing.T) {
	analyzer := NewTrendAnalyzer()
	trends := analyzer.AnalyzeAll(nil, nil, storeBase)
	if len(trends) != 3 {
		t.Fatalf("len = %d, want the three default periods", len(trends))
	}
}
