package analytics

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/faultlinehq/faultline/internal/models"
	"github.com/faultlinehq/faultline/internal/utils"
)

// Rule is one entry of an operator-supplied rule pack. A rule fires when all
// populated match fields hold for a pattern; its recommendations are appended
// after the built-in ones.
type Rule struct {
	ID              string    `yaml:"id"`
	Match           RuleMatch `yaml:"match"`
	Recommendations []string  `yaml:"recommendations"`
}

type RuleMatch struct {
	Component     string  `yaml:"component"`
	PatternType   string  `yaml:"pattern_type"`
	MinConfidence float64 `yaml:"min_confidence"`
}

type rulePack struct {
	Rules []Rule `yaml:"rules"`
}

// RuleEngine evaluates rule packs against detected patterns. A nil engine is
// valid and matches nothing.
type RuleEngine struct {
	rules []Rule
}

// LoadRules reads a YAML rule pack. A missing file is not an error, it just
// yields no engine; a malformed file is.
func LoadRules(path string) (*RuleEngine, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, utils.NewAppError("rules.load", "read rule pack", err)
	}
	var pack rulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, utils.NewAppError("rules.load", "parse rule pack", err)
	}
	return &RuleEngine{rules: pack.Rules}, nil
}

func (e *RuleEngine) Len() int {
	if e == nil {
		return 0
	}
	return len(e.rules)
}

// Matches returns the recommendations of every rule the pattern satisfies.
func (e *RuleEngine) Matches(pattern models.ErrorPattern) []string {
	if e == nil {
		return nil
	}
	var matched []string
	for _, rule := range e.rules {
		if rule.Match.Component != "" && !slices.Contains(pattern.AffectedComponents, rule.Match.Component) {
			continue
		}
		if rule.Match.PatternType != "" && rule.Match.PatternType != string(pattern.Type) {
			continue
		}
		if pattern.ConfidenceScore < rule.Match.MinConfidence {
			continue
		}
		matched = append(matched, rule.Recommendations...)
	}
	return matched
}

const criticalConfidence = 0.8

// Synthesizer turns patterns, trends and component health into a short list
// of action items. It never returns an empty list.
type Synthesizer struct {
	rules *RuleEngine
}

func NewSynthesizer(rules *RuleEngine) *Synthesizer {
	return &Synthesizer{rules: rules}
}

func (s *Synthesizer) Synthesize(patterns []models.ErrorPattern, trends []models.ErrorTrend, healths []models.ComponentHealth) []string {
	var recommendations []string

	critical := 0
	for _, pattern := range patterns {
		if pattern.ConfidenceScore > criticalConfidence {
			critical++
		}
	}
	if critical > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Address %d critical error patterns immediately", critical))
	}

	for _, trend := range trends {
		if trend.Direction == models.TrendIncreasing {
			recommendations = append(recommendations, "Error rates are increasing, investigate possible system degradation")
			break
		}
	}

	lowReliability := 0
	for _, health := range healths {
		if health.ReliabilityScore < 0.5 {
			lowReliability++
		}
	}
	if lowReliability > 0 {
		recommendations = append(recommendations, fmt.Sprintf("Focus on %d components with low reliability scores", lowReliability))
	}

	for _, pattern := range patterns {
		recommendations = appendUnique(recommendations, s.rules.Matches(pattern)...)
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Error levels appear normal, continue monitoring")
	}
	return recommendations
}

func appendUnique(dst []string, values ...string) []string {
	for _, value := range values {
		if value == "" || slices.Contains(dst, value) {
			continue
		}
		dst = append(dst, value)
	}
	return dst
}
