package sink

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/faultlinehq/faultline/internal/models"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faultline.db")
	archive, err := NewSQLiteArchive(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteArchive: %v", err)
	}
	t.Cleanup(func() { _ = archive.Close() })
	return archive
}

func TestArchiveSaveAndListRuns(t *testing.T) {
	archive := newTestArchive(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	patterns := []models.ErrorPattern{
		{PatternID: "recurring_E1", Type: models.PatternRecurringError, ConfidenceScore: 0.6, Occurrences: 6},
	}
	runs := []Run{
		{ID: "run-1", StartedAt: base, DurationMs: 12, WindowEvents: 100, PatternCount: 1},
		{ID: "run-2", StartedAt: base.Add(time.Minute), DurationMs: 15, WindowEvents: 120, PatternCount: 1},
		{ID: "run-3", StartedAt: base.Add(2 * time.Minute), DurationMs: 9, WindowEvents: 90, PatternCount: 1},
	}
	for _, run := range runs {
		if err := archive.SaveRun(ctx, run, patterns); err != nil {
			t.Fatalf("SaveRun(%s): %v", run.ID, err)
		}
	}

	got, err := archive.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "run-3" || got[1].ID != "run-2" {
		t.Fatalf("order = %q, %q, want newest first", got[0].ID, got[1].ID)
	}
	if !got[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("started_at = %v", got[0].StartedAt)
	}
	if got[0].WindowEvents != 90 || got[0].DurationMs != 9 {
		t.Fatalf("run fields = %+v", got[0])
	}
}

func TestArchiveRecentRunsDefaultLimit(t *testing.T) {
	archive := newTestArchive(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		run := Run{ID: string(rune('a' + i)), StartedAt: base.Add(time.Duration(i) * time.Second)}
		if err := archive.SaveRun(ctx, run, nil); err != nil {
			t.Fatalf("SaveRun: %v", err)
		}
	}
	got, err := archive.RecentRuns(ctx, 0)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(got) != defaultRunLimit {
		t.Fatalf("len = %d, want default limit %d", len(got), defaultRunLimit)
	}
}

func TestArchiveSaveAdvisory(t *testing.T) {
	archive := newTestArchive(t)
	ctx := context.Background()

	advisory := models.Advisory{
		ID:            "adv-1",
		Message:       "Error spike: 12 errors in the last 300 seconds",
		EventCount:    12,
		Threshold:     10,
		WindowSeconds: 300,
		TriggeredBy:   "E_TIMEOUT",
		Timestamp:     time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	if err := archive.SaveAdvisory(ctx, advisory); err != nil {
		t.Fatalf("SaveAdvisory: %v", err)
	}
	// Same id again must not error thanks to INSERT OR IGNORE.
	if err := archive.SaveAdvisory(ctx, advisory); err != nil {
		t.Fatalf("SaveAdvisory repeat: %v", err)
	}
}

func TestArchiveDuplicateRunFails(t *testing.T) {
	archive := newTestArchive(t)
	ctx := context.Background()

	run := Run{ID: "run-1", StartedAt: time.Now()}
	if err := archive.SaveRun(ctx, run, nil); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := archive.SaveRun(ctx, run, nil); err == nil {
		t.Fatal("duplicate run id should fail the primary key")
	}
}

func TestNopArchive(t *testing.T) {
	var archive Archive = NopArchive{}
	if err := archive.SaveRun(context.Background(), Run{}, nil); err != nil {
		t.Fatalf("NopArchive.SaveRun: %v", err)
	}
	runs, err := archive.RecentRuns(context.Background(), 10)
	if err != nil || runs != nil {
		t.Fatalf("NopArchive.RecentRuns = %v, %v", runs, err)
	}
}
