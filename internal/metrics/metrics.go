package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	eventsIngestedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faultline",
			Name:      "events_ingested_total",
			Help:      "Total number of error events ingested, partitioned by component.",
		},
		[]string{"component"},
	)

	patternsDetectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faultline",
			Name:      "patterns_detected_total",
			Help:      "Total number of patterns produced by analysis sweeps, partitioned by type.",
		},
		[]string{"type"},
	)

	analysisSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "faultline",
			Name:      "analysis_seconds",
			Help:      "Full detector sweep latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
	)

	advisoriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faultline",
			Name:      "realtime_advisories_total",
			Help:      "Total number of fast-path burst advisories emitted.",
		},
	)

	exportFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "faultline",
			Name:      "export_failures_total",
			Help:      "Total number of failed analytics exports.",
		},
	)

	windowEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "faultline",
			Name:      "window_events",
			Help:      "Number of events currently retained in the analysis window.",
		},
	)
)

// Register attaches faultline collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		eventsIngestedTotal,
		patternsDetectedTotal,
		analysisSeconds,
		advisoriesTotal,
		exportFailuresTotal,
		windowEvents,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveIngest records one ingested event for the component.
func ObserveIngest(component string) {
	if component == "" {
		component = "unknown"
	}
	eventsIngestedTotal.WithLabelValues(component).Inc()
}

// ObserveAnalysis records a sweep duration and the per-type pattern counts.
func ObserveAnalysis(duration time.Duration, patternsByType map[string]int) {
	if duration < 0 {
		duration = 0
	}
	analysisSeconds.Observe(duration.Seconds())
	for patternType, count := range patternsByType {
		if count <= 0 {
			continue
		}
		patternsDetectedTotal.WithLabelValues(patternType).Add(float64(count))
	}
}

// ObserveAdvisory records one fast-path advisory.
func ObserveAdvisory() {
	advisoriesTotal.Inc()
}

// ObserveExportFailure records one failed export attempt.
func ObserveExportFailure() {
	exportFailuresTotal.Inc()
}

// SetWindowEvents publishes the current retained event count.
func SetWindowEvents(count int) {
	windowEvents.Set(float64(count))
}
