package cmd

import (
	"fmt"
	"os"

	"github.com/mselser95/sharpline/internal/app"
	"github.com/mselser95/sharpline/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "sharpline",
	Short: "NFL betting line tracker",
	Long: `Sharpline polls bookmaker odds for upcoming NFL games, stores timestamped
snapshots, and reports how spreads and totals move over time.

Each cycle computes consensus lines, detects steam moves and reverse line
movement, combines the odds with scraped betting percentages and team stats,
and exports prioritized betting alerts.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newApp loads config, builds the logger and wires an application.
// The returned cleanup closes the app and flushes the logger.
func newApp(opts *app.Options) (*app.App, func(), error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("create app: %w", err)
	}

	cleanup := func() {
		_ = application.Close()
		_ = logger.Sync()
	}

	return application, cleanup, nil
}
