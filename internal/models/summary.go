package models

import "time"

// Summary is the composed analytics report: window totals, distributions,
// the current pattern registry, trends, component health, and recommendations.
type Summary struct {
	GeneratedAt        time.Time         `json:"generated_at"`
	WindowHours        int               `json:"window_hours"`
	TotalErrors        int               `json:"total_errors"`
	UniqueErrorCodes   int               `json:"unique_error_codes"`
	AffectedComponents int               `json:"affected_components"`
	SeverityBreakdown  map[string]int    `json:"severity_breakdown"`
	ComponentBreakdown map[string]int    `json:"component_breakdown"`
	ErrorCodeBreakdown map[string]int    `json:"error_code_breakdown"`
	Patterns           []ErrorPattern    `json:"patterns"`
	Trends             []ErrorTrend      `json:"trends"`
	ComponentHealth    []ComponentHealth `json:"component_health"`
	Recommendations    []string          `json:"recommendations"`
}
