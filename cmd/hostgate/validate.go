package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hostgate/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate loads the configuration file, applies defaults and
environment variable overrides, and reports any validation errors.

Exits non-zero if the configuration is invalid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return fmt.Errorf("configuration invalid: %w", err)
		}

		fmt.Printf("Configuration valid: %s\n", cfgFile)

		if verbose {
			printSummary(cfg)
		}
		return nil
	},
}

func printSummary(cfg *config.Config) {
	fmt.Println()
	fmt.Println("Rate limiting:")
	printCooldowns("  default", &cfg.RateLimit.Default)
	for name, cc := range cfg.RateLimit.Clients {
		cc := cc
		printCooldowns("  "+name, &cc)
	}

	fmt.Println("Temp files:")
	dir := cfg.TempFiles.Directory
	if dir == "" {
		dir = "(system temp)"
	}
	fmt.Printf("  directory: %s\n", dir)
	fmt.Printf("  sweep: enabled=%t schedule=%q max_age=%s\n",
		cfg.TempFiles.Sweep.Enabled, cfg.TempFiles.Sweep.Schedule, cfg.TempFiles.Sweep.MaxAge)

	fmt.Println("Journal:")
	fmt.Printf("  enabled=%t backend=%s\n", cfg.Journal.Enabled, cfg.Journal.Backend)

	fmt.Println("Telemetry:")
	fmt.Printf("  logging: level=%s format=%s\n", cfg.Telemetry.Logging.Level, cfg.Telemetry.Logging.Format)
	fmt.Printf("  metrics: enabled=%t\n", cfg.Telemetry.Metrics.Enabled)
}

func printCooldowns(label string, cc *config.CooldownConfig) {
	fmt.Printf("%s: cooldown=%s\n", label, formatCooldown(cc.Cooldown))
	for host, d := range cc.Hosts {
		fmt.Printf("%s   host %s: %s\n", label, host, formatCooldown(d))
	}
}

func formatCooldown(d *time.Duration) string {
	if d == nil {
		return "disabled"
	}
	return d.String()
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
