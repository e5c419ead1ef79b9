package cmd

import (
	"fmt"
	"strconv"

	"github.com/rustyeddy/trendrunner/format"
	"github.com/spf13/cobra"
)

var digitsCmd = &cobra.Command{
	Use:   "digits <tick>...",
	Short: "Show the display precision inferred from tick sizes",
	Long: `Print how many decimal places prices quoted in each tick size are shown with.

Example:
  trendrunner digits 0.1 0.0001 1e-8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDigits,
}

func init() {
	rootCmd.AddCommand(digitsCmd)
}

func runDigits(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		tick, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("tick %q: %w", arg, err)
		}
		d := format.InferDigits(tick)
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %d  %s\n", arg, d, format.Float(tick, d))
	}
	return nil
}
