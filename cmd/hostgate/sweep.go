package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"hostgate/pkg/config"
	"hostgate/pkg/tempfile"
)

var (
	sweepDir       string
	sweepOlderThan time.Duration
	sweepDryRun    bool
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove orphaned temporary files",
	Long: `Sweep performs a one-shot cleanup of a managed temp directory,
removing files older than the age threshold. Orphans accumulate when a
process crashes before releasing its files.

The directory and threshold default to the configured values; both can
be overridden with flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := sweepDir
		maxAge := sweepOlderThan
		app := config.DefaultTempAppName

		// Flags win over config; config file is optional for this command.
		if dir == "" || maxAge == 0 {
			if cfg, err := config.LoadConfigWithEnvOverrides(cfgFile); err == nil {
				if dir == "" {
					dir = cfg.TempFiles.Directory
				}
				if maxAge == 0 {
					maxAge = cfg.TempFiles.Sweep.MaxAge
				}
				if cfg.TempFiles.AppName != "" {
					app = cfg.TempFiles.AppName
				}
			}
		}
		if maxAge == 0 {
			maxAge = config.DefaultSweepMaxAge
		}

		d, err := tempfile.NewDirectory(dir, app)
		if err != nil {
			return fmt.Errorf("open temp directory: %w", err)
		}

		if sweepDryRun {
			candidates, err := tempfile.SweepCandidates(d.Path(), maxAge)
			if err != nil {
				return err
			}
			for _, path := range candidates {
				fmt.Println(path)
			}
			fmt.Printf("Would remove %d file(s) from %s\n", len(candidates), d.Path())
			return nil
		}

		sweeper := tempfile.NewSweeper(d, tempfile.SweeperConfig{MaxAge: maxAge})
		removed, err := sweeper.Sweep(cmd.Context())
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}

		fmt.Printf("Removed %d file(s) from %s\n", removed, d.Path())
		return nil
	},
}

func init() {
	sweepCmd.Flags().StringVar(&sweepDir, "dir", "", "temp directory to sweep (default from config)")
	sweepCmd.Flags().DurationVar(&sweepOlderThan, "older-than", 0, "minimum file age (default from config)")
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "list files without removing them")
	rootCmd.AddCommand(sweepCmd)
}
