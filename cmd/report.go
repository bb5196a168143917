package cmd

import (
	"fmt"
	"os"

	"github.com/mselser95/sharpline/internal/report"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var reportCmd = &cobra.Command{
	Use:   "report <game-id>",
	Short: "Print the line movement report for a game",
	Long: `Builds the line movement report for one game from its stored snapshots
and prints it as JSON. Games without snapshots produce a no_data report.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().BoolP("save", "s", false, "Also write the report to the reports directory")
}

func runReport(cmd *cobra.Command, args []string) error {
	save, _ := cmd.Flags().GetBool("save")

	application, cleanup, err := newApp(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	assembler, err := application.Reports()
	if err != nil {
		return fmt.Errorf("create report assembler: %w", err)
	}

	r, err := assembler.LineMovementReport(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	data, err := report.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = os.Stdout.Write(append(data, '\n'))
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if save {
		path, err := report.WriteFile(application.Config().ReportsDir(), r)
		if err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	return nil
}
