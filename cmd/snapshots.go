package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mselser95/sharpline/internal/consensus"
	"github.com/mselser95/sharpline/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots <game-id>",
	Short: "List stored snapshots for a game",
	Long:  `Lists every stored snapshot of one game in chronological order with its consensus spread and total.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshots,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(snapshotsCmd)
}

func runSnapshots(cmd *cobra.Command, args []string) error {
	application, cleanup, err := newApp(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := application.Store().ListSnapshots(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}

	if len(entries) == 0 {
		fmt.Printf("No snapshots found for game %s.\n", args[0])
		return nil
	}

	fmt.Printf("%s (%d snapshots)\n\n", entries[0].Game.AwayTeam+" @ "+entries[0].Game.HomeTeam, len(entries))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIMESTAMP\tBOOKS\tSPREAD\tTOTAL\n")
	fmt.Fprintf(w, "---------\t-----\t------\t-----\n")

	for i := range entries {
		e := &entries[i]
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			e.Timestamp.Format(time.RFC3339),
			len(e.Game.Bookmakers),
			formatLine(consensus.Line(&e.Game, types.MarketSpreads)),
			formatLine(consensus.Line(&e.Game, types.MarketTotals)))
	}

	return w.Flush()
}

func formatLine(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.1f", *v)
}
