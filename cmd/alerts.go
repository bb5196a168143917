package cmd

import (
	"errors"
	"fmt"

	"github.com/mselser95/sharpline/internal/alerts"
	"github.com/mselser95/sharpline/internal/storage"
	"github.com/mselser95/sharpline/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show the latest alert export",
	Long: `Prints the most recent alert export grouped by priority.
Use --file to show a specific export and --priority to filter.`,
	RunE: runAlerts,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.Flags().StringP("file", "f", "", "Alert export to show (defaults to the latest in the alerts directory)")
	alertsCmd.Flags().StringP("priority", "p", "", "Only show alerts at or above this priority: HIGH, MEDIUM, LOW")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	path, _ := cmd.Flags().GetString("file")
	priority, _ := cmd.Flags().GetString("priority")

	if path == "" {
		path, err = alerts.LatestFile(cfg.AlertsDir())
		if errors.Is(err, alerts.ErrNoExports) {
			fmt.Printf("No alert exports in %s. Run a cycle first.\n", cfg.AlertsDir())
			return nil
		}
		if err != nil {
			return fmt.Errorf("find latest alerts: %w", err)
		}
	}

	exp, err := alerts.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read alerts: %w", err)
	}

	if priority != "" {
		exp, err = exp.AtOrAbove(priority)
		if err != nil {
			return fmt.Errorf("filter alerts: %w", err)
		}
	}

	fmt.Printf("Source: %s (generated %s)\n", path, exp.GeneratedAt)
	return storage.NewConsoleStorage(logger).StoreAlerts(cmd.Context(), exp)
}
