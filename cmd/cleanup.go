package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete old snapshots",
	Long: `Deletes snapshots older than the retention window. The window defaults to
RETENTION_DAYS and can be overridden with --days.`,
	RunE: runCleanup,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntP("days", "d", 0, "Delete snapshots older than this many days (0 uses the configured retention)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	days, _ := cmd.Flags().GetInt("days")
	if days < 0 {
		return errors.New("days must not be negative")
	}

	application, cleanup, err := newApp(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	window := application.Config().RetentionWindow
	if days > 0 {
		window = time.Duration(days) * 24 * time.Hour
	}

	cutoff := time.Now().UTC().Add(-window)
	deleted, err := application.Store().Cleanup(cmd.Context(), cutoff)
	if err != nil {
		return fmt.Errorf("cleanup snapshots: %w", err)
	}

	fmt.Printf("Deleted %d snapshots older than %s\n", deleted, cutoff.Format(time.RFC3339))
	return nil
}
