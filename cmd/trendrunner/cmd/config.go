package cmd

import (
	"fmt"

	"github.com/rustyeddy/trendrunner/config"
	"github.com/rustyeddy/trendrunner/format"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage trendrunner configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  trendrunner config init -o trendrunner.yaml
  trendrunner config validate -f trendrunner.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "trendrunner.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nSet ASTER_API_KEY and ASTER_API_SECRET (or put them in .env), then run:")
	fmt.Printf("  trendrunner run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Symbol: %s (tick %s, %d digits)\n", cfg.Exchange.Symbol,
		format.Plain(cfg.Exchange.PriceTick), format.InferDigits(cfg.Exchange.PriceTick))
	fmt.Printf("  Engine: %s (kline %s, MA %d)\n", cfg.Engine.Driver, cfg.Engine.KlineInterval, cfg.Engine.MAPeriod)
	fmt.Printf("  State schedule: %s\n", cfg.Supervisor.StateSchedule)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Dir)
	return nil
}
