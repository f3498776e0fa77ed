package analytics

import (
	"sort"
	"sync"

	"github.com/faultlinehq/faultline/internal/models"
)

// PatternRegistry owns pattern identity. Re-detecting a pattern replaces the
// stored entry (last detection wins) while the first-detected time survives
// and lastUpdated only ever moves forward.
type PatternRegistry struct {
	mu       sync.RWMutex
	patterns map[string]models.ErrorPattern
}

func NewPatternRegistry() *PatternRegistry {
	return &PatternRegistry{patterns: make(map[string]models.ErrorPattern)}
}

// Upsert stores the pattern keyed by its id and returns the stored version.
func (r *PatternRegistry) Upsert(pattern models.ErrorPattern) models.ErrorPattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertLocked(pattern)
}

// UpsertAll stores each pattern and returns the stored versions in input
// order. The returned slice is never nil.
func (r *PatternRegistry) UpsertAll(patterns []models.ErrorPattern) []models.ErrorPattern {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]models.ErrorPattern, 0, len(patterns))
	for _, pattern := range patterns {
		stored = append(stored, r.upsertLocked(pattern))
	}
	return stored
}

func (r *PatternRegistry) upsertLocked(pattern models.ErrorPattern) models.ErrorPattern {
	pattern.ConfidenceScore = clampScore(pattern.ConfidenceScore)
	if existing, ok := r.patterns[pattern.PatternID]; ok {
		if !existing.FirstDetected.IsZero() && (pattern.FirstDetected.IsZero() || existing.FirstDetected.Before(pattern.FirstDetected)) {
			pattern.FirstDetected = existing.FirstDetected
		}
		if pattern.LastUpdated.Before(existing.LastUpdated) {
			pattern.LastUpdated = existing.LastUpdated
		}
	}
	r.patterns[pattern.PatternID] = pattern
	return pattern
}

func (r *PatternRegistry) Get(id string) (models.ErrorPattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pattern, ok := r.patterns[id]
	return pattern, ok
}

// All returns every registered pattern ordered by confidence, highest first,
// with the pattern id as tie-break so output is stable.
func (r *PatternRegistry) All() []models.ErrorPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patterns := make([]models.ErrorPattern, 0, len(r.patterns))
	for _, pattern := range r.patterns {
		patterns = append(patterns, pattern)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].ConfidenceScore != patterns[j].ConfidenceScore {
			return patterns[i].ConfidenceScore > patterns[j].ConfidenceScore
		}
		return patterns[i].PatternID < patterns[j].PatternID
	})
	return patterns
}

func (r *PatternRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
