package detectors

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

func TestPerformanceDegradationFlagsSlowSecondHalf(t *testing.T) {
	detector := NewPerformanceDegradation(2.0)
	now := testBase.Add(time.Hour)

	// First half establishes a 100ms median, second half runs at 250ms.
	baseline := []float64{100, 100, 100, 110, 120}
	var events []models.ErrorEvent
	for i, rt := range baseline {
		events = append(events, timedEvt("E_SLOW", "api", testBase.Add(time.Duration(i)*time.Minute), rt))
	}
	for i := 0; i < 5; i++ {
		events = append(events, timedEvt("E_SLOW", "api", testBase.Add(time.Duration(10+i)*time.Minute), 250))
	}

	patterns := detector.Detect(events, now)
	if len(patterns) != 1 {
		t.Fatalf("expected 1 degradation, got %d", len(patterns))
	}
	pattern := patterns[0]
	if !strings.HasPrefix(pattern.PatternID, "performance_degradation_") {
		t.Fatalf("pattern id = %q", pattern.PatternID)
	}
	if pattern.Occurrences != 5 {
		t.Fatalf("occurrences = %d, want 5", pattern.Occurrences)
	}
	if math.Abs(pattern.ConfidenceScore-0.5) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.5", pattern.ConfidenceScore)
	}
	base, ok := pattern.Metadata["baseline_ms"].(float64)
	if !ok || base != 100 {
		t.Fatalf("baseline_ms = %v, want 100", pattern.Metadata["baseline_ms"])
	}
}

func TestPerformanceDegradationExactDoubleNotFlagged(t *testing.T) {
	detector := NewPerformanceDegradation(2.0)
	var events []models.ErrorEvent
	for i := 0; i < 5; i++ {
		events = append(events, timedEvt("E1", "api", testBase.Add(time.Duration(i)*time.Minute), 100))
	}
	// Exactly 2x the baseline sits on the bound and must not count.
	for i := 0; i < 5; i++ {
		events = append(events, timedEvt("E1", "api", testBase.Add(time.Duration(10+i)*time.Minute), 200))
	}
	if got := detector.Detect(events, testBase.Add(time.Hour)); len(got) != 0 {
		t.Fatalf("events at exactly 2x baseline must not flag, got %d", len(got))
	}
}

func TestPerformanceDegradationNeedsTenTimedEvents(t *testing.T) {
	detector := NewPerformanceDegradation(2.0)
	var events []models.ErrorEvent
	for i := 0; i < 9; i++ {
		events = append(events, timedEvt("E1", "api", testBase.Add(time.Duration(i)*time.Minute), 500))
	}
	// Plenty of untimed noise must not count toward the sample minimum.
	for i := 0; i < 20; i++ {
		events = append(events, evt("E2", "api", testBase.Add(time.Duration(i)*time.Second)))
	}
	if got := detector.Detect(events, testBase.Add(time.Hour)); len(got) != 0 {
		t.Fatalf("nine timed events are under the sample minimum, got %d", len(got))
	}
}

func TestPerformanceDegradationNeedsFiveFlagged(t *testing.T) {
	detector := NewPerformanceDegradation(2.0)
	var events []models.ErrorEvent
	for i := 0; i < 8; i++ {
		events = append(events, timedEvt("E1", "api", testBase.Add(time.Duration(i)*time.Minute), 100))
	}
	for i := 0; i < 4; i++ {
		events = append(events, timedEvt("E1", "api", testBase.Add(time.Duration(20+i)*time.Minute), 900))
	}
	if got := detector.Detect(events, testBase.Add(time.Hour)); len(got) != 0 {
		t.Fatalf("four flagged events are under the flag minimum, got %d", len(got))
	}
}
