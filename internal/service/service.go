package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/faultlinehq/faultline/internal/analytics"
	"github.com/faultlinehq/faultline/internal/cache"
	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/sink"
	"github.com/faultlinehq/faultline/internal/utils"
)

const (
	summaryCacheKey = "faultline:summary"
	archiveTimeout  = 5 * time.Second
)

// AnalyticsService glues the engine to its collaborators: the summary cache,
// the archive and the scheduled sweep. The engine stays free of I/O; all of
// it happens here.
type AnalyticsService struct {
	engine   *analytics.Engine
	cache    cache.Provider
	archive  sink.Archive
	logger   *slog.Logger
	latency  *utils.LatencyTracker
	interval time.Duration
	cacheTTL time.Duration
}

func NewAnalyticsService(engine *analytics.Engine, provider cache.Provider, archive sink.Archive, logger *slog.Logger, interval, cacheTTL time.Duration) *AnalyticsService {
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	if archive == nil {
		archive = sink.NopArchive{}
	}
	if logger == nil {
		logger = utils.NewSilentLogger()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	s := &AnalyticsService{
		engine:   engine,
		cache:    provider,
		archive:  archive,
		logger:   logger,
		latency:  utils.NewLatencyTracker(512),
		interval: interval,
		cacheTTL: cacheTTL,
	}
	engine.OnAdvisory(s.archiveAdvisory)
	return s
}

// OnAdvisory registers an additional advisory handler, typically the
// websocket hub.
func (s *AnalyticsService) OnAdvisory(handler analytics.AdvisoryHandler) {
	s.engine.OnAdvisory(handler)
}

func (s *AnalyticsService) archiveAdvisory(advisory models.Advisory) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := s.archive.SaveAdvisory(ctx, advisory); err != nil {
		s.logger.Warn("advisory not archived", "advisory_id", advisory.ID, "error", err)
	}
}

// Ingest feeds one event into the engine and drops the cached summary, which
// is now stale.
func (s *AnalyticsService) Ingest(ctx context.Context, event models.ErrorEvent) {
	s.engine.AddEvent(event)
	s.invalidateSummary(ctx)
}

// IngestAll feeds a batch and returns the number of events accepted.
func (s *AnalyticsService) IngestAll(ctx context.Context, events []models.ErrorEvent) int {
	for _, event := range events {
		s.engine.AddEvent(event)
	}
	if len(events) > 0 {
		s.invalidateSummary(ctx)
	}
	return len(events)
}

// Analyze runs a full detector sweep, archives the run and returns the
// findings. Archive failures are logged, never surfaced; the sweep result
// stands on its own.
func (s *AnalyticsService) Analyze(ctx context.Context) []models.ErrorPattern {
	started := time.Now()
	patterns := s.engine.AnalyzePatterns()
	elapsed := time.Since(started)
	s.latency.Observe(elapsed)
	if count := s.latency.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("sweep latency", slog.Duration("p95", s.latency.Percentile(95)), slog.Int("samples", count))
	}

	run := sink.Run{
		ID:           uuid.NewString(),
		StartedAt:    started,
		DurationMs:   elapsed.Milliseconds(),
		WindowEvents: s.engine.EventCount(),
		PatternCount: len(patterns),
	}
	if err := s.archive.SaveRun(ctx, run, patterns); err != nil {
		s.logger.Warn("analysis run not archived", "run_id", run.ID, "error", err)
	}
	s.invalidateSummary(ctx)
	return patterns
}

func (s *AnalyticsService) Trends(periods []string) []models.ErrorTrend {
	return s.engine.GetErrorTrends(periods)
}

func (s *AnalyticsService) ComponentHealth() []models.ComponentHealth {
	return s.engine.GetComponentHealth()
}

func (s *AnalyticsService) Patterns() []models.ErrorPattern {
	return s.engine.Patterns()
}

// Summary returns the composed report, served from cache when a fresh copy
// exists. The cache is strictly best effort; any cache failure falls back to
// recomputing.
func (s *AnalyticsService) Summary(ctx context.Context) models.Summary {
	if data, err := s.cache.Get(ctx, summaryCacheKey); err == nil {
		var cached models.Summary
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached
		}
		s.logger.Warn("discarding undecodable cached summary")
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("summary cache read failed", "error", err)
	}

	summary := s.engine.GetAnalyticsSummary()
	if data, err := json.Marshal(summary); err == nil {
		if err := s.cache.Set(ctx, summaryCacheKey, data, s.cacheTTL); err != nil {
			s.logger.Warn("summary cache write failed", "error", err)
		}
	}
	return summary
}

func (s *AnalyticsService) invalidateSummary(ctx context.Context) {
	if err := s.cache.Del(ctx, summaryCacheKey); err != nil {
		s.logger.Warn("summary cache invalidation failed", "error", err)
	}
}

// Export writes the current summary to path as indented JSON.
func (s *AnalyticsService) Export(path string) error {
	return s.engine.ExportAnalytics(path)
}

// RecentRuns lists archived analysis runs, newest first.
func (s *AnalyticsService) RecentRuns(ctx context.Context, limit int) ([]sink.Run, error) {
	return s.archive.RecentRuns(ctx, limit)
}

// EventCount reports the engine's retained event count.
func (s *AnalyticsService) EventCount() int {
	return s.engine.EventCount()
}

// LatencyP95 reports the 95th percentile sweep duration.
func (s *AnalyticsService) LatencyP95() time.Duration {
	return s.latency.Percentile(95)
}

// Run drives scheduled analysis until the context is cancelled. One sweep
// runs immediately so a fresh process has patterns before the first tick.
func (s *AnalyticsService) Run(ctx context.Context) {
	s.logger.Info("scheduled analysis started", "interval", s.interval)
	s.Analyze(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduled analysis stopped")
			return
		case <-ticker.C:
			s.Analyze(ctx)
		}
	}
}
