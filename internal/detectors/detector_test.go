package detectors

import (
	"testing"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

var testBase = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func evt(code, component string, ts time.Time) models.ErrorEvent {
	return models.ErrorEvent{
		ErrorCode: code,
		Component: component,
		Severity:  "error",
		Timestamp: ts,
	}
}

func timedEvt(code, component string, ts time.Time, responseMs float64) models.ErrorEvent {
	event := evt(code, component, ts)
	event.ResponseTimeMs = &responseMs
	return event
}

func TestMedian(t *testing.T) {
	if got := median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("odd median = %v, want 2", got)
	}
	if got := median([]float64{4, 1, 3, 2}); got != 2.5 {
		t.Fatalf("even median = %v, want 2.5", got)
	}
	if got := median(nil); got != 0 {
		t.Fatalf("empty median = %v, want 0", got)
	}
}

func TestClampScore(t *testing.T) {
	if got := clampScore(1.7); got != 1 {
		t.Fatalf("clampScore(1.7) = %v, want 1", got)
	}
	if got := clampScore(-0.2); got != 0 {
		t.Fatalf("clampScore(-0.2) = %v, want 0", got)
	}
	if got := clampScore(0.45); got != 0.45 {
		t.Fatalf("clampScore(0.45) = %v, want 0.45", got)
	}
}

func TestUniqueSortedDropsEmptyAndDuplicates(t *testing.T) {
	got := uniqueSorted([]string{"b", "", "a", "b", "a"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("uniqueSorted = %v, want [a b]", got)
	}
}
