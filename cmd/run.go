package cmd

import (
	"fmt"

	"github.com/mselser95/sharpline/internal/app"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one analysis cycle",
	Long: `Runs a single cycle, which will:
1. Fetch current odds for all upcoming games
2. Save a timestamped snapshot
3. Load betting percentages, injuries and team stats from the side data directory
4. Build a line movement report for every game
5. Evaluate betting alerts, export them and send high priority ones to Telegram

Use --skip-side-data to analyze odds alone.`,
	RunE: runCycle,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("skip-side-data", false, "Skip loading scraped side data")
	runCmd.Flags().IntP("week", "w", 0, "NFL week for the alert export (derived from the date when 0)")
}

func runCycle(cmd *cobra.Command, args []string) error {
	skipSideData, _ := cmd.Flags().GetBool("skip-side-data")
	week, _ := cmd.Flags().GetInt("week")

	application, cleanup, err := newApp(&app.Options{
		SkipSideData: skipSideData,
		Week:         week,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := application.RunCycle(cmd.Context())
	if err != nil {
		return fmt.Errorf("run cycle: %w", err)
	}

	fmt.Printf("Analyzed %d games for week %d: %d alerts\n", res.Games, res.Week, len(res.Alerts))
	if res.ExportPath != "" {
		fmt.Printf("Alerts written to %s\n", res.ExportPath)
	}

	return nil
}
