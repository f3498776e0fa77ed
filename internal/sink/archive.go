package sink

import (
	"context"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

// Run records one completed analysis sweep.
type Run struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	DurationMs   int64     `json:"duration_ms"`
	WindowEvents int       `json:"window_events"`
	PatternCount int       `json:"pattern_count"`
}

// Archive persists analysis results outside the in-memory window. The engine
// itself never touches an Archive; the service decides what is worth keeping.
type Archive interface {
	SaveRun(ctx context.Context, run Run, patterns []models.ErrorPattern) error
	SaveAdvisory(ctx context.Context, advisory models.Advisory) error
	RecentRuns(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// NopArchive satisfies Archive without persisting anything. Used when
// archiving is disabled.
type NopArchive struct{}

var _ Archive = NopArchive{}

func (NopArchive) SaveRun(context.Context, Run, []models.ErrorPattern) error { return nil }

func (NopArchive) SaveAdvisory(context.Context, models.Advisory) error { return nil }

func (NopArchive) RecentRuns(context.Context, int) ([]Run, error) { return nil, nil }

func (NopArchive) Close() error { return nil }
