package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the trendrunner CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trendrunner version %s\n", version)
		fmt.Println("Headless supervisor for the trend trading engine")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
