package analytics

import (
	"testing"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

var storeBase = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func evt(code, component string, ts time.Time) models.ErrorEvent {
	return models.ErrorEvent{
		ErrorCode: code,
		Component: component,
		Severity:  "error",
		Timestamp: ts,
	}
}

func TestEventStorePrunesOnAdd(t *testing.T) {
	store := NewEventStore(time.Hour)

	old := storeBase.Add(-2 * time.Hour)
	store.Add(evt("E_OLD", "api", old), old)
	if store.Len() != 1 {
		t.Fatalf("len = %d, want 1", store.Len())
	}

	store.Add(evt("E_NEW", "api", storeBase), storeBase)
	if store.Len() != 1 {
		t.Fatalf("len after prune = %d, want 1", store.Len())
	}
	snapshot := store.Snapshot(time.Hour, storeBase)
	if len(snapshot) != 1 || snapshot[0].ErrorCode != "E_NEW" {
		t.Fatalf("snapshot = %+v, want only E_NEW", snapshot)
	}
}

func TestEventStoreCutoffIsInclusive(t *testing.T) {
	store := NewEventStore(time.Hour)
	// An event exactly at now-retention sits on the cutoff and is evicted.
	store.Add(evt("E_EDGE", "api", storeBase.Add(-time.Hour)), storeBase)
	if store.Len() != 0 {
		t.Fatalf("len = %d, want 0 for event on the cutoff", store.Len())
	}
}

func TestEventStoreKeepsTimestampOrder(t *testing.T) {
	store := NewEventStore(24 * time.Hour)
	store.Add(evt("E3", "api", storeBase), storeBase)
	store.Add(evt("E1", "api", storeBase.Add(-10*time.Minute)), storeBase)
	store.Add(evt("E2", "api", storeBase.Add(-5*time.Minute)), storeBase)

	snapshot := store.Snapshot(24*time.Hour, storeBase)
	if len(snapshot) != 3 {
		t.Fatalf("len = %d, want 3", len(snapshot))
	}
	for i := 1; i < len(snapshot); i++ {
		if snapshot[i].Timestamp.Before(snapshot[i-1].Timestamp) {
			t.Fatalf("snapshot out of order at %d: %v before %v", i, snapshot[i].Timestamp, snapshot[i-1].Timestamp)
		}
	}
	if snapshot[0].ErrorCode != "E1" || snapshot[2].ErrorCode != "E3" {
		t.Fatalf("unexpected order: %q .. %q", snapshot[0].ErrorCode, snapshot[2].ErrorCode)
	}
}

func TestEventStoreSnapshotWindowFilter(t *testing.T) {
	store := NewEventStore(24 * time.Hour)
	store.Add(evt("E_FAR", "api", storeBase.Add(-3*time.Hour)), storeBase)
	store.Add(evt("E_NEAR", "api", storeBase.Add(-30*time.Minute)), storeBase)

	snapshot := store.Snapshot(time.Hour, storeBase)
	if len(snapshot) != 1 || snapshot[0].ErrorCode != "E_NEAR" {
		t.Fatalf("snapshot = %+v, want only E_NEAR", snapshot)
	}
}

func TestEventStoreSnapshotIsACopy(t *testing.T) {
	store := NewEventStore(24 * time.Hour)
	store.Add(evt("E1", "api", storeBase), storeBase)

	snapshot := store.Snapshot(24*time.Hour, storeBase)
	snapshot[0].ErrorCode = "mutated"

	again := store.Snapshot(24*time.Hour, storeBase)
	if again[0].ErrorCode != "E1" {
		t.Fatalf("store state leaked through snapshot: %q", again[0].ErrorCode)
	}
}

func TestEventStoreCountSince(t *testing.T) {
	store := NewEventStore(24 * time.Hour)
	store.Add(evt("E1", "api", storeBase.Add(-400*time.Second)), storeBase)
	store.Add(evt("E2", "api", storeBase.Add(-200*time.Second)), storeBase)
	store.Add(evt("E3", "api", storeBase.Add(-100*time.Second)), storeBase)

	if got := store.CountSince(storeBase.Add(-300 * time.Second)); got != 2 {
		t.Fatalf("CountSince = %d, want 2", got)
	}
	if got := store.CountSince(storeBase); got != 0 {
		t.Fatalf("CountSince(now) = %d, want 0", got)
	}
}
