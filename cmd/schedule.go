package cmd

import (
	"fmt"

	"github.com/mselser95/sharpline/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run cycles on a cron schedule",
	Long: `Runs the analysis cycle on the SCHEDULE cron expression (seconds field first,
daily at 09:00 by default) and serves the HTTP API until interrupted.

Use --run-now to run one cycle immediately on startup.`,
	RunE: runSchedule,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().Bool("run-now", false, "Run one cycle immediately on startup")
	scheduleCmd.Flags().Bool("skip-side-data", false, "Skip loading scraped side data")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	runNow, _ := cmd.Flags().GetBool("run-now")
	skipSideData, _ := cmd.Flags().GetBool("skip-side-data")

	application, cleanup, err := newApp(&app.Options{SkipSideData: skipSideData})
	if err != nil {
		return err
	}
	defer cleanup()

	err = application.Schedule(runNow)
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	return nil
}
