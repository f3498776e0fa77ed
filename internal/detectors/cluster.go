package detectors

import (
	"fmt"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

const (
	clusterMinSize       = 3
	clusterFlagSize      = 5
	defaultClusterWindow = 5 * time.Minute
)

// TemporalCluster groups chronologically adjacent events whose inter-event
// gap stays within the cluster window, then flags the dense groups. Groups
// smaller than clusterMinSize are discarded before indexing so cluster
// indices stay stable regardless of how much noise sits between bursts.
type TemporalCluster struct {
	window time.Duration
}

func NewTemporalCluster(window time.Duration) *TemporalCluster {
	if window <= 0 {
		window = defaultClusterWindow
	}
	return &TemporalCluster{window: window}
}

func (d *TemporalCluster) Name() string { return "temporal_cluster" }

func (d *TemporalCluster) Detect(events []models.ErrorEvent, now time.Time) []models.ErrorPattern {
	if len(events) == 0 {
		return nil
	}

	sorted := sortedByTime(events)
	var clusters [][]models.ErrorEvent
	current := []models.ErrorEvent{sorted[0]}
	for _, event := range sorted[1:] {
		if event.Timestamp.Sub(current[len(current)-1].Timestamp) <= d.window {
			current = append(current, event)
			continue
		}
		if len(current) >= clusterMinSize {
			clusters = append(clusters, current)
		}
		current = []models.ErrorEvent{event}
	}
	if len(current) >= clusterMinSize {
		clusters = append(clusters, current)
	}

	var patterns []models.ErrorPattern
	for index, cluster := range clusters {
		if len(cluster) < clusterFlagSize {
			continue
		}
		first := cluster[0].Timestamp
		span := cluster[len(cluster)-1].Timestamp.Sub(first).Seconds()
		patterns = append(patterns, models.ErrorPattern{
			PatternID:          fmt.Sprintf("temporal_cluster_%d_%d", index, first.Unix()),
			Type:               models.PatternTemporalCluster,
			Description:        fmt.Sprintf("%d errors clustered within %.0f seconds", len(cluster), span),
			ConfidenceScore:    clampScore(float64(len(cluster)) / 10),
			FirstDetected:      first,
			LastUpdated:        now,
			Occurrences:        len(cluster),
			AffectedComponents: componentSet(cluster),
			ErrorCodes:         codeSet(cluster),
			Metadata: map[string]any{
				"cluster_size":     len(cluster),
				"duration_seconds": span,
				"error_density":    float64(len(cluster)) / d.window.Seconds(),
			},
			Recommendations: []string{
				"Inspect logs around the cluster start for a shared trigger",
			},
		})
	}
	return patterns
}
