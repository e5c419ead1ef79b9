package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trendrunner",
	Short: "Headless supervisor for the trend trading engine",
	Long: `Trendrunner runs the trend engine without a UI and keeps an audit trail.

It provides tools for:
  - Running the engine with graceful SIGINT/SIGTERM shutdown
  - Appending every trade-log entry to a daily log file exactly once
  - Writing periodic STATE summaries on a cron schedule
  - Mirroring the journal to SQLite and CSV
  - Querying the SQLite journal by day`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
