package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hostgate",
	Short: "Hostgate - per-host outbound rate limiting and temp file tooling",
	Long: `Hostgate is a utility toolkit for polite outbound HTTP clients.

It provides:
  - A per-host cool-down rate limiter for outbound requests
  - Reference-counted temporary file management
  - A usage journal for rate-limit observability

This command offers supporting tooling for the library: configuration
validation, orphaned temp file cleanup, and version information.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
