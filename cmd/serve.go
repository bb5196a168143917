package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve reports and alerts over HTTP",
	Long: `Starts the HTTP server without polling odds. It exposes:
  /health, /ready              probes
  /metrics                     Prometheus metrics
  /api/games/{id}/report       line movement report for a game
  /api/alerts/latest           latest alert export`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	application, cleanup, err := newApp(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	err = application.Serve()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}
