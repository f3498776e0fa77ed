package detectors

import (
	"fmt"
	"sort"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

const (
	hotspotShare    = 0.3
	hotspotMinCount = 5
)

// ComponentHotspot flags components that concentrate an outsized share of the
// window's errors. The share bound is strict, exactly 30% does not flag.
type ComponentHotspot struct{}

func NewComponentHotspot() *ComponentHotspot { return &ComponentHotspot{} }

func (d *ComponentHotspot) Name() string { return "component_hotspot" }

func (d *ComponentHotspot) Detect(events []models.ErrorEvent, now time.Time) []models.ErrorPattern {
	total := len(events)
	if total == 0 {
		return nil
	}

	byComponent := make(map[string][]models.ErrorEvent)
	for _, event := range events {
		byComponent[event.Component] = append(byComponent[event.Component], event)
	}

	components := make([]string, 0, len(byComponent))
	for component := range byComponent {
		components = append(components, component)
	}
	sort.Strings(components)

	var patterns []models.ErrorPattern
	for _, component := range components {
		group := byComponent[component]
		share := float64(len(group)) / float64(total)
		if share <= hotspotShare || len(group) < hotspotMinCount {
			continue
		}
		patterns = append(patterns, models.ErrorPattern{
			PatternID:          "hotspot_" + component,
			Type:               models.PatternComponentHotspot,
			Description:        fmt.Sprintf("Component %s accounts for %.0f%% of all errors in the window", component, share*100),
			ConfidenceScore:    clampScore(share * 2),
			FirstDetected:      earliestTime(group),
			LastUpdated:        now,
			Occurrences:        len(group),
			AffectedComponents: []string{component},
			ErrorCodes:         codeSet(group),
			Metadata: map[string]any{
				"error_share":  share,
				"total_events": total,
			},
			Recommendations: []string{
				fmt.Sprintf("Review recent changes and resource limits for %s", component),
			},
		})
	}
	return patterns
}
