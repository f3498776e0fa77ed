package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/faultlinehq/faultline/internal/analytics"
	"github.com/faultlinehq/faultline/internal/service"
	"github.com/faultlinehq/faultline/internal/source"
	"github.com/faultlinehq/faultline/internal/utils"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <events-file>",
	Short: "Run a one-shot analysis over an event dump",
	Long: `Reads error events from an NDJSON or JSON-array file, runs every
detector over them and prints the analytics summary as JSON.

Events older than the retention window (default 24h) are dropped before
analysis; widen the window with --window-hours when analysing older
dumps.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("out", "", "also write the summary JSON to this path")
	analyzeCmd.Flags().String("rules", "", "rule pack to apply to recommendations")
	analyzeCmd.Flags().Int("window-hours", 0, "retention window override in hours")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("out")
	rulesPath, _ := cmd.Flags().GetString("rules")
	windowHours, _ := cmd.Flags().GetInt("window-hours")

	events, skipped, err := source.ReadEvents(args[0])
	if err != nil {
		return fmt.Errorf("read events: %w", err)
	}
	if skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d malformed lines\n", skipped)
	}
	if len(events) == 0 {
		return fmt.Errorf("no events found in %s", args[0])
	}

	cfg := analytics.DefaultConfig()
	cfg.EnableRealtime = false
	if windowHours > 0 {
		cfg.WindowHours = windowHours
	}

	var rules *analytics.RuleEngine
	if rulesPath != "" {
		if rules, err = analytics.LoadRules(rulesPath); err != nil {
			return fmt.Errorf("load rule pack: %w", err)
		}
	}

	engine, err := analytics.New(cfg, utils.NewSilentLogger(), rules)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	svc := service.NewAnalyticsService(engine, nil, nil, utils.NewSilentLogger(), 0, 0)
	ingested := svc.IngestAll(cmd.Context(), events)
	fmt.Fprintf(cmd.ErrOrStderr(), "analysing %d of %d events\n", engine.EventCount(), ingested)

	svc.Analyze(cmd.Context())
	summary := svc.Summary(cmd.Context())

	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(payload))

	if outPath != "" {
		if err := svc.Export(outPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "summary written to %s\n", outPath)
	}
	return nil
}
