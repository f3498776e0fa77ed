package analytics

import (
	"testing"
)

func TestBurstMonitorThresholdIsStrict(t *testing.T) {
	monitor := NewBurstMonitor(10, true)

	if advisory := monitor.Check(evt("E1", "api", storeBase), 10, storeBase); advisory != nil {
		t.Fatalf("count equal to threshold must not trigger, got %+v", advisory)
	}
	advisory := monitor.Check(evt("E1", "api", storeBase), 11, storeBase)
	if advisory == nil {
		t.Fatal("count above threshold must trigger")
	}
	if advisory.ID == "" {
		t.Fatal("advisory needs an id")
	}
	if advisory.EventCount != 11 || advisory.Threshold != 10 {
		t.Fatalf("advisory = %+v", advisory)
	}
	if advisory.WindowSeconds != 300 {
		t.Fatalf("window seconds = %d, want 300", advisory.WindowSeconds)
	}
	if advisory.TriggeredBy != "E1" {
		t.Fatalf("triggered by = %q", advisory.TriggeredBy)
	}
}

func TestBurstMonitorDisabled(t *testing.T) {
	monitor := NewBurstMonitor(1, false)
	if advisory := monitor.Check(evt("E1", "api", storeBase), 100, storeBase); advisory != nil {
		t.Fatalf("disabled monitor must stay quiet, got %+v", advisory)
	}
}

func TestBurstMonitorDefaultThreshold(t *testing.T) {
	monitor := NewBurstMonitor(0, true)
	if monitor.Check(evt("E1", "api", storeBase), 10, storeBase) != nil {
		t.Fatal("default threshold should be 10")
	}
	if monitor.Check(evt("E1", "api", storeBase), 11, storeBase) == nil {
		t.Fatal("11 events should clear the default threshold")
	}
}
