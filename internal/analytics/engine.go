package analytics

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/faultlinehq/faultline/internal/detectors"
	"github.com/faultlinehq/faultline/internal/metrics"
	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

// Config carries the engine tunables. Zero fields fall back to the defaults
// below; negative values are rejected at construction.
type Config struct {
	WindowHours            int
	PatternThreshold       int
	SpikeMultiplier        float64
	ClusterWindow          time.Duration
	CascadeWindow          time.Duration
	DegradationMultiplier  float64
	RealtimeSpikeThreshold int
	MaxErrorRate           float64
	EnableRealtime         bool
}

func DefaultConfig() Config {
	return Config{
		WindowHours:            24,
		PatternThreshold:       5,
		SpikeMultiplier:        3.0,
		ClusterWindow:          5 * time.Minute,
		CascadeWindow:          time.Minute,
		DegradationMultiplier:  2.0,
		RealtimeSpikeThreshold: 10,
		MaxErrorRate:           10.0,
		EnableRealtime:         true,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.WindowHours == 0 {
		c.WindowHours = defaults.WindowHours
	}
	if c.PatternThreshold == 0 {
		c.PatternThreshold = defaults.PatternThreshold
	}
	if c.SpikeMultiplier == 0 {
		c.SpikeMultiplier = defaults.SpikeMultiplier
	}
	if c.ClusterWindow == 0 {
		c.ClusterWindow = defaults.ClusterWindow
	}
	if c.CascadeWindow == 0 {
		c.CascadeWindow = defaults.CascadeWindow
	}
	if c.DegradationMultiplier == 0 {
		c.DegradationMultiplier = defaults.DegradationMultiplier
	}
	if c.RealtimeSpikeThreshold == 0 {
		c.RealtimeSpikeThreshold = defaults.RealtimeSpikeThreshold
	}
	if c.MaxErrorRate == 0 {
		c.MaxErrorRate = defaults.MaxErrorRate
	}
	return c
}

func (c Config) validate() error {
	if c.WindowHours < 0 {
		return fmt.Errorf("analysis window hours must be positive, got %d", c.WindowHours)
	}
	if c.PatternThreshold < 0 {
		return fmt.Errorf("pattern threshold must be positive, got %d", c.PatternThreshold)
	}
	if c.SpikeMultiplier < 0 {
		return fmt.Errorf("spike multiplier must be positive, got %v", c.SpikeMultiplier)
	}
	if c.ClusterWindow < 0 {
		return fmt.Errorf("cluster window must be positive, got %v", c.ClusterWindow)
	}
	if c.CascadeWindow < 0 {
		return fmt.Errorf("cascade window must be positive, got %v", c.CascadeWindow)
	}
	if c.DegradationMultiplier < 0 {
		return fmt.Errorf("degradation multiplier must be positive, got %v", c.DegradationMultiplier)
	}
	if c.RealtimeSpikeThreshold < 0 {
		return fmt.Errorf("realtime spike threshold must be positive, got %d", c.RealtimeSpikeThreshold)
	}
	if c.MaxErrorRate < 0 {
		return fmt.Errorf("max error rate must be positive, got %v", c.MaxErrorRate)
	}
	return nil
}

// AdvisoryHandler receives fast-path advisories. Handlers run synchronously
// on the ingesting goroutine and must not block.
type AdvisoryHandler func(advisory models.Advisory)

// Engine is the analytics facade. One instance owns the event buffer, the
// pattern registry and the detector set; all methods are safe for concurrent
// use.
type Engine struct {
	cfg       Config
	logger    *slog.Logger
	store     *EventStore
	registry  *PatternRegistry
	monitor   *BurstMonitor
	detectors []detectors.Detector
	trends    *TrendAnalyzer
	health    *HealthScorer
	synth     *Synthesizer

	handlerMu sync.RWMutex
	handlers  []AdvisoryHandler
}

func New(cfg Config, logger *slog.Logger, rules *RuleEngine) (*Engine, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = utils.NewSilentLogger()
	}
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		store:    NewEventStore(time.Duration(cfg.WindowHours) * time.Hour),
		registry: NewPatternRegistry(),
		monitor:  NewBurstMonitor(cfg.RealtimeSpikeThreshold, cfg.EnableRealtime),
		detectors: []detectors.Detector{
			detectors.NewFrequencySpike(cfg.SpikeMultiplier),
			detectors.NewRecurringError(cfg.PatternThreshold),
			detectors.NewTemporalCluster(cfg.ClusterWindow),
			detectors.NewComponentHotspot(),
			detectors.NewCascadingFailure(cfg.CascadeWindow),
			detectors.NewPerformanceDegradation(cfg.DegradationMultiplier),
		},
		trends: NewTrendAnalyzer(),
		health: NewHealthScorer(cfg.MaxErrorRate),
		synth:  NewSynthesizer(rules),
	}, nil
}

// OnAdvisory registers a handler for fast-path advisories.
func (e *Engine) OnAdvisory(handler AdvisoryHandler) {
	if handler == nil {
		return
	}
	e.handlerMu.Lock()
	e.handlers = append(e.handlers, handler)
	e.handlerMu.Unlock()
}

// AddEvent ingests one event. Missing identity fields fall back to
// "unknown" and a zero timestamp becomes the ingestion time, so producers
// with partial data are never rejected here.
func (e *Engine) AddEvent(event models.ErrorEvent) {
	now := time.Now()
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	if event.ErrorCode == "" {
		event.ErrorCode = "unknown"
	}
	if event.Component == "" {
		event.Component = "unknown"
	}

	e.store.Add(event, now)
	metrics.ObserveIngest(event.Component)
	metrics.SetWindowEvents(e.store.Len())

	if !e.monitor.Enabled() {
		return
	}
	recent := e.store.CountSince(now.Add(-e.monitor.Window()))
	if advisory := e.monitor.Check(event, recent, now); advisory != nil {
		metrics.ObserveAdvisory()
		e.logger.Warn("realtime error spike",
			"event_count", advisory.EventCount,
			"threshold", advisory.Threshold,
			"error_code", event.ErrorCode,
			"component", event.Component)
		e.notify(*advisory)
	}
}

func (e *Engine) notify(advisory models.Advisory) {
	e.handlerMu.RLock()
	handlers := make([]AdvisoryHandler, len(e.handlers))
	copy(handlers, e.handlers)
	e.handlerMu.RUnlock()

	for _, handler := range handlers {
		handler(advisory)
	}
}

// AnalyzePatterns runs the full detector sweep over the current window and
// merges the findings into the registry. It returns the stored versions of
// this sweep's findings; the slice is never nil.
func (e *Engine) AnalyzePatterns() []models.ErrorPattern {
	started := time.Now()
	events := e.store.Snapshot(e.window(), started)

	var found []models.ErrorPattern
	for _, detector := range e.detectors {
		found = append(found, detector.Detect(events, started)...)
	}
	stored := e.registry.UpsertAll(found)

	byType := make(map[string]int, len(stored))
	for _, pattern := range stored {
		byType[string(pattern.Type)]++
	}
	metrics.ObserveAnalysis(time.Since(started), byType)
	e.logger.Debug("pattern sweep complete",
		"window_events", len(events),
		"patterns", len(stored),
		"elapsed", time.Since(started))
	return stored
}

// GetErrorTrends computes trends for the given period labels, defaulting to
// 1h, 6h and 24h. Unknown labels are skipped.
func (e *Engine) GetErrorTrends(periods []string) []models.ErrorTrend {
	now := time.Now()
	events := e.store.Snapshot(e.window(), now)
	return e.trends.AnalyzeAll(events, periods, now)
}

// GetComponentHealth scores every component seen in the window, worst first.
func (e *Engine) GetComponentHealth() []models.ComponentHealth {
	return e.health.Score(e.store.Snapshot(e.window(), time.Now()))
}

// Patterns returns the current registry contents without re-running
// detection.
func (e *Engine) Patterns() []models.ErrorPattern {
	return e.registry.All()
}

// EventCount reports the number of currently retained events.
func (e *Engine) EventCount() int {
	return e.store.Len()
}

// GetAnalyticsSummary composes the full report: window totals, breakdowns,
// registry contents, default trends, component health and recommendations.
func (e *Engine) GetAnalyticsSummary() models.Summary {
	now := time.Now()
	events := e.store.Snapshot(e.window(), now)

	codes := codeCounts(events)
	components := componentCounts(events)
	patterns := e.registry.All()
	trends := e.trends.AnalyzeAll(events, defaultTrendPeriods, now)
	healths := e.health.Score(events)

	return models.Summary{
		GeneratedAt:        now,
		WindowHours:        e.cfg.WindowHours,
		TotalErrors:        len(events),
		UniqueErrorCodes:   len(codes),
		AffectedComponents: len(components),
		SeverityBreakdown:  trimCounts(severityCounts(events), breakdownLimit),
		ComponentBreakdown: trimCounts(components, breakdownLimit),
		ErrorCodeBreakdown: trimCounts(codes, breakdownLimit),
		Patterns:           patterns,
		Trends:             trends,
		ComponentHealth:    healths,
		Recommendations:    e.synth.Synthesize(patterns, trends, healths),
	}
}

// ExportAnalytics writes the summary to path as indented JSON. Failures are
// logged and returned; engine state is never affected by a failed export.
func (e *Engine) ExportAnalytics(path string) error {
	summary := e.GetAnalyticsSummary()
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		metrics.ObserveExportFailure()
		e.logger.Error("analytics export failed", "path", path, "error", err)
		return utils.NewAppError("export", "encode analytics summary", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.ObserveExportFailure()
		e.logger.Error("analytics export failed", "path", path, "error", err)
		return utils.NewAppError("export", "write analytics summary", err)
	}
	e.logger.Info("analytics exported", "path", path, "bytes", len(data))
	return nil
}

func (e *Engine) window() time.Duration {
	return time.Duration(e.cfg.WindowHours) * time.Hour
}
