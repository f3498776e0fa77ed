package analytics

import (
	"sort"
	"sync"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

// EventStore is the time-bounded buffer behind the engine. Events are kept in
// timestamp order so sequence-sensitive detectors can trust iteration order,
// and every write prunes anything that has aged out of the retention window.
// A single mutex guards the buffer; it is held for the insert+prune+copy
// operations only, never across a detector run.
type EventStore struct {
	mu        sync.RWMutex
	retention time.Duration
	events    []models.ErrorEvent
}

func NewEventStore(retention time.Duration) *EventStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &EventStore{retention: retention}
}

// Add inserts the event in timestamp order and evicts everything at or past
// the retention cutoff. Producers with skewed clocks may deliver out of
// order, hence the positional insert instead of a plain append.
func (s *EventStore) Add(event models.ErrorEvent, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Timestamp.After(event.Timestamp)
	})
	s.events = append(s.events, models.ErrorEvent{})
	copy(s.events[idx+1:], s.events[idx:])
	s.events[idx] = event

	s.pruneLocked(now)
}

func (s *EventStore) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.retention)
	idx := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Timestamp.After(cutoff)
	})
	if idx == 0 {
		return
	}
	remaining := copy(s.events, s.events[idx:])
	s.events = s.events[:remaining]
}

// Snapshot returns a copy of the retained events strictly newer than
// now-window, in timestamp order. Callers own the returned slice.
func (s *EventStore) Snapshot(window time.Duration, now time.Time) []models.ErrorEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := now.Add(-window)
	idx := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Timestamp.After(cutoff)
	})
	out := make([]models.ErrorEvent, len(s.events)-idx)
	copy(out, s.events[idx:])
	return out
}

// CountSince reports how many retained events are strictly newer than the
// cutoff. Binary search on the ordered buffer keeps this cheap enough to run
// inline on every ingest.
func (s *EventStore) CountSince(cutoff time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := sort.Search(len(s.events), func(i int) bool {
		return s.events[i].Timestamp.After(cutoff)
	})
	return len(s.events) - idx
}

func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
