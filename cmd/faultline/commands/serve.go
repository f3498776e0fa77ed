package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/faultlinehq/faultline/internal/analytics"
	"github.com/faultlinehq/faultline/internal/api"
	"github.com/faultlinehq/faultline/internal/cache"
	"github.com/faultlinehq/faultline/internal/config"
	"github.com/faultlinehq/faultline/internal/metrics"
	"github.com/faultlinehq/faultline/internal/service"
	"github.com/faultlinehq/faultline/internal/sink"
	"github.com/faultlinehq/faultline/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the analytics daemon",
	Long: `Starts the HTTP API, the websocket advisory feed, the Prometheus
metrics listener and the periodic analysis loop. Configuration comes
from --config, $FAULTLINE_CONFIG or built-in defaults, with FAULTLINE_*
environment overrides applied on top.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting faultline", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cacheProvider cache.Provider = cache.NoopProvider{}
	if cfg.Cache.Enabled {
		provider, err := cache.NewBigCacheProvider(ctx, cache.BigCacheConfig{
			TTL:       cfg.Cache.TTL,
			Shards:    cfg.Cache.Shards,
			MaxSizeMB: cfg.Cache.MaxSizeMB,
		})
		if err != nil {
			logger.Warn("summary cache unavailable", slog.Any("error", err))
		} else {
			cacheProvider = provider
			defer provider.Close()
		}
	}

	var archive sink.Archive = sink.NopArchive{}
	if cfg.Archive.Enabled {
		sqlite, err := sink.NewSQLiteArchive(ctx, cfg.Archive.Path, logger)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		archive = sqlite
		defer sqlite.Close()
	}

	rules, err := analytics.LoadRules(cfg.Rules.Path)
	if err != nil {
		return fmt.Errorf("load rule pack: %w", err)
	}

	engine, err := analytics.New(engineConfig(cfg.Analytics), logger, rules)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	svc := service.NewAnalyticsService(engine, cacheProvider, archive, logger, cfg.Analytics.AnalysisInterval, cfg.Cache.TTL)

	hub := api.NewHub(logger)
	go hub.Run(ctx)
	svc.OnAdvisory(hub.Broadcast)

	handlers := api.NewHandlers(svc, hub, logger)
	server, err := api.NewServer(cfg.Server, handlers.Router())
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go svc.Run(ctx)

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.GracefulTimeout())
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("faultline stopped")
	return nil
}

func engineConfig(a config.AnalyticsConfig) analytics.Config {
	return analytics.Config{
		WindowHours:            a.WindowHours,
		PatternThreshold:       a.PatternThreshold,
		SpikeMultiplier:        a.SpikeMultiplier,
		ClusterWindow:          time.Duration(a.ClusterWindowSeconds) * time.Second,
		CascadeWindow:          time.Duration(a.CascadeWindowSeconds) * time.Second,
		DegradationMultiplier:  a.DegradationMultiplier,
		RealtimeSpikeThreshold: a.RealtimeSpikeThreshold,
		MaxErrorRate:           a.MaxErrorRate,
		EnableRealtime:         a.EnableRealtime,
	}
}
