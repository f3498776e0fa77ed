package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the faultline daemon.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Cache     CacheConfig     `yaml:"cache"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Rules     RulesConfig     `yaml:"rules"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig controls the HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// AnalyticsConfig tunes the pattern analytics engine.
type AnalyticsConfig struct {
	WindowHours            int           `yaml:"windowHours"`
	PatternThreshold       int           `yaml:"patternThreshold"`
	SpikeMultiplier        float64       `yaml:"spikeMultiplier"`
	ClusterWindowSeconds   int           `yaml:"clusterWindowSeconds"`
	CascadeWindowSeconds   int           `yaml:"cascadeWindowSeconds"`
	DegradationMultiplier  float64       `yaml:"degradationMultiplier"`
	RealtimeSpikeThreshold int           `yaml:"realtimeSpikeThreshold"`
	MaxErrorRate           float64       `yaml:"maxErrorRate"`
	EnableRealtime         bool          `yaml:"enableRealtime"`
	AnalysisInterval       time.Duration `yaml:"analysisInterval"`
}

// CacheConfig controls summary caching between analysis sweeps.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	TTL       time.Duration `yaml:"ttl"`
	Shards    int           `yaml:"shards"`
	MaxSizeMB int           `yaml:"maxSizeMB"`
}

// ArchiveConfig controls SQLite persistence of analysis runs and advisories.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// RulesConfig controls rule-pack loading for the recommender.
type RulesConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("FAULTLINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address must not be empty")
	}
	a := c.Analytics
	if a.WindowHours <= 0 {
		return fmt.Errorf("analytics.windowHours must be positive, got %d", a.WindowHours)
	}
	if a.PatternThreshold <= 0 {
		return fmt.Errorf("analytics.patternThreshold must be positive, got %d", a.PatternThreshold)
	}
	if a.SpikeMultiplier <= 0 {
		return fmt.Errorf("analytics.spikeMultiplier must be positive, got %f", a.SpikeMultiplier)
	}
	if a.ClusterWindowSeconds <= 0 {
		return fmt.Errorf("analytics.clusterWindowSeconds must be positive, got %d", a.ClusterWindowSeconds)
	}
	if a.CascadeWindowSeconds <= 0 {
		return fmt.Errorf("analytics.cascadeWindowSeconds must be positive, got %d", a.CascadeWindowSeconds)
	}
	if a.DegradationMultiplier <= 0 {
		return fmt.Errorf("analytics.degradationMultiplier must be positive, got %f", a.DegradationMultiplier)
	}
	if a.MaxErrorRate <= 0 {
		return fmt.Errorf("analytics.maxErrorRate must be positive, got %f", a.MaxErrorRate)
	}
	if a.AnalysisInterval <= 0 {
		return fmt.Errorf("analytics.analysisInterval must be positive, got %s", a.AnalysisInterval)
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("archive.path must be set when the archive is enabled")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    15 * time.Second,
			GracefulTimeout: 10 * time.Second,
		},
		Analytics: AnalyticsConfig{
			WindowHours:            24,
			PatternThreshold:       5,
			SpikeMultiplier:        3.0,
			ClusterWindowSeconds:   300,
			CascadeWindowSeconds:   60,
			DegradationMultiplier:  2.0,
			RealtimeSpikeThreshold: 10,
			MaxErrorRate:           10.0,
			EnableRealtime:         true,
			AnalysisInterval:       5 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:   false,
			TTL:       time.Minute,
			Shards:    64,
			MaxSizeMB: 32,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Path:    "faultline.db",
		},
		Rules:   RulesConfig{Path: "configs/rules.yaml"},
		Logging: LoggingConfig{Level: "info", JSON: false},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FAULTLINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("FAULTLINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("FAULTLINE_WINDOW_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			cfg.Analytics.WindowHours = hours
		}
	}
	if v := os.Getenv("FAULTLINE_PATTERN_THRESHOLD"); v != "" {
		if threshold, err := strconv.Atoi(v); err == nil {
			cfg.Analytics.PatternThreshold = threshold
		}
	}
	if v := os.Getenv("FAULTLINE_SPIKE_MULTIPLIER"); v != "" {
		if m, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Analytics.SpikeMultiplier = m
		}
	}
	if v := os.Getenv("FAULTLINE_REALTIME_THRESHOLD"); v != "" {
		if threshold, err := strconv.Atoi(v); err == nil {
			cfg.Analytics.RealtimeSpikeThreshold = threshold
		}
	}
	if v := os.Getenv("FAULTLINE_REALTIME_ENABLED"); v != "" {
		cfg.Analytics.EnableRealtime = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("FAULTLINE_ANALYSIS_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Analytics.AnalysisInterval = d
		}
	}
	if v := os.Getenv("FAULTLINE_CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("FAULTLINE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("FAULTLINE_ARCHIVE_ENABLED"); v != "" {
		cfg.Archive.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("FAULTLINE_ARCHIVE_PATH"); v != "" {
		cfg.Archive.Path = v
	}
	if v := os.Getenv("FAULTLINE_RULES_PATH"); v != "" {
		cfg.Rules.Path = v
	}
	if v := os.Getenv("FAULTLINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FAULTLINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
}
