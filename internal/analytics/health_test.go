package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

func TestHealthReliabilityAtMaxRateIsZero(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	// Ten errors spanning exactly one hour: rate 10/hour, the max.
	var events []models.ErrorEvent
	for i := 0; i < 10; i++ {
		events = append(events, evt("E1", "db", storeBase.Add(time.Duration(i)*400*time.Second)))
	}
	events[9].Timestamp = storeBase.Add(time.Hour)

	healths := scorer.Score(events)
	if len(healths) != 1 {
		t.Fatalf("len = %d, want 1", len(healths))
	}
	health := healths[0]
	if health.ErrorRate != 10 {
		t.Fatalf("rate = %v, want 10/hour", health.ErrorRate)
	}
	if health.ReliabilityScore != 0 {
		t.Fatalf("reliability = %v, want 0 at max rate", health.ReliabilityScore)
	}
}

func TestHealthSubHourSpanUsesCountAsRate(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	var events []models.ErrorEvent
	for i := 0; i < 5; i++ {
		events = append(events, evt("E1", "cache", storeBase.Add(time.Duration(i)*time.Second)))
	}

	healths := scorer.Score(events)
	if len(healths) != 1 {
		t.Fatalf("len = %d, want 1", len(healths))
	}
	if healths[0].ErrorRate != 5 {
		t.Fatalf("rate = %v, want the raw count for sub-hour spans", healths[0].ErrorRate)
	}
	if healths[0].ReliabilityScore != 0.5 {
		t.Fatalf("reliability = %v, want 0.5", healths[0].ReliabilityScore)
	}
}

func TestHealthQuietComponentScoresNearOne(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	// Two errors ten hours apart: rate 0.2/hour against a max of 10.
	events := []models.ErrorEvent{
		evt("E1", "ledger", storeBase),
		evt("E1", "ledger", storeBase.Add(10*time.Hour)),
	}

	healths := scorer.Score(events)
	if len(healths) != 1 {
		t.Fatalf("len = %d, want 1", len(healths))
	}
	if math.Abs(healths[0].ReliabilityScore-0.98) > 1e-9 {
		t.Fatalf("reliability = %v, want 0.98", healths[0].ReliabilityScore)
	}
}

func TestHealthWorstComponentFirst(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	var events []models.ErrorEvent
	// "noisy" takes 8 errors in a tight burst, "quiet" takes 2.
	for i := 0; i < 8; i++ {
		events = append(events, evt("E1", "noisy", storeBase.Add(time.Duration(i)*time.Second)))
	}
	for i := 0; i < 2; i++ {
		events = append(events, evt("E2", "quiet", storeBase.Add(time.Duration(i)*time.Second)))
	}

	healths := scorer.Score(events)
	if len(healths) != 2 {
		t.Fatalf("len = %d, want 2", len(healths))
	}
	if healths[0].ComponentName != "noisy" {
		t.Fatalf("first = %q, want the least reliable component", healths[0].ComponentName)
	}
	if healths[0].ReliabilityScore > healths[1].ReliabilityScore {
		t.Fatalf("ordering broken: %v then %v", healths[0].ReliabilityScore, healths[1].ReliabilityScore)
	}
}

func TestHealthTrendDegrading(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	// First half spans two hours (rate 1/hour), second half is a one minute
	// burst (rate 2/hour floor-clamped to a one hour span => 2).
	events := []models.ErrorEvent{
		evt("E1", "api", storeBase),
		evt("E1", "api", storeBase.Add(2*time.Hour)),
		evt("E1", "api", storeBase.Add(5*time.Hour)),
		evt("E1", "api", storeBase.Add(5*time.Hour+time.Minute)),
	}

	healths := scorer.Score(events)
	if healths[0].Trend != models.HealthDegrading {
		t.Fatalf("trend = %q, want degrading", healths[0].Trend)
	}
}

func TestHealthTrendImproving(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	// A tight early burst, then two stragglers three hours apart.
	events := []models.ErrorEvent{
		evt("E1", "api", storeBase),
		evt("E1", "api", storeBase.Add(time.Minute)),
		evt("E1", "api", storeBase.Add(2*time.Hour)),
		evt("E1", "api", storeBase.Add(5*time.Hour)),
	}

	healths := scorer.Score(events)
	if healths[0].Trend != models.HealthImproving {
		t.Fatalf("trend = %q, want improving", healths[0].Trend)
	}
}

func TestHealthTrendNeedsFourSamples(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	events := []models.ErrorEvent{
		evt("E1", "api", storeBase),
		evt("E1", "api", storeBase.Add(time.Second)),
		evt("E1", "api", storeBase.Add(2*time.Second)),
	}

	healths := scorer.Score(events)
	if healths[0].Trend != models.HealthStable {
		t.Fatalf("trend = %q, want stable under four samples", healths[0].Trend)
	}
}

func TestHealthMostCommonErrorsRanked(t *testing.T) {
	scorer := NewHealthScorer(10.0)

	var events []models.ErrorEvent
	for i := 0; i < 3; i++ {
		events = append(events, evt("E_MAJOR", "api", storeBase.Add(time.Duration(i)*time.Second)))
	}
	events = append(events, evt("E_MINOR", "api", storeBase.Add(10*time.Second)))

	healths := scorer.Score(events)
	common := healths[0].MostCommonErrors
	if len(common) != 2 || common[0] != "E_MAJOR" || common[1] != "E_MINOR" {
		t.Fatalf("most common = %v", common)
	}
	if healths[0].LastErrorTime == nil || !healths[0].LastErrorTime.Equal(storeBase.Add(10*time.Second)) {
		t.Fatalf("last error time = %v", healths[0].LastErrorTime)
	}
}

func TestHealthEmptyInput(t *testing.T) {
	scorer := NewHealthScorer(10.0)
	if healths := scorer.Score(nil); healths == nil || len(healths) != 0 {
		t.Fatalf("Score(nil) = %v, want empty non-nil slice", healths)
	}
}
