package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "faultline",
	Short: "Error pattern analytics engine",
	Long: `Faultline ingests error events from distributed services and mines them
for actionable patterns: frequency spikes, recurring errors, temporal
clusters, component hotspots, cascading failures and performance
degradation. Results are served over HTTP and realtime spike advisories
are pushed to websocket subscribers.`,
	Version: Version,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (falls back to $FAULTLINE_CONFIG, then built-in defaults)")
}
