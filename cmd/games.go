package cmd

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/mselser95/sharpline/internal/consensus"
	"github.com/mselser95/sharpline/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List games from the latest snapshot",
	Long:  `Displays every game in the most recent snapshot with its kickoff time and consensus lines.`,
	RunE:  runGames,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(gamesCmd)
	gamesCmd.Flags().BoolP("verbose", "v", false, "Show each bookmaker's spread")
}

func runGames(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	application, cleanup, err := newApp(nil)
	if err != nil {
		return err
	}
	defer cleanup()

	snap, err := application.Store().Latest(cmd.Context())
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}
	if snap == nil {
		fmt.Println("No snapshots stored yet. Run a cycle first.")
		return nil
	}

	fmt.Printf("Snapshot %s: %d games\n\n", snap.Timestamp, len(snap.Games))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tMATCHUP\tKICKOFF\tSPREAD\tTOTAL\n")
	fmt.Fprintf(w, "--\t-------\t-------\t------\t-----\n")

	for i := range snap.Games {
		g := &snap.Games[i]
		fmt.Fprintf(w, "%s\t%s @ %s\t%s\t%s\t%s\n",
			g.ID,
			g.AwayTeam, g.HomeTeam,
			g.CommenceTime.Format(time.RFC3339),
			formatLine(consensus.Line(g, types.MarketSpreads)),
			formatLine(consensus.Line(g, types.MarketTotals)))

		if verbose {
			spreads := consensus.HomeSpreads(g)
			for _, book := range slices.Sorted(maps.Keys(spreads)) {
				fmt.Fprintf(w, "\t%s\t\t%+.1f\t\n", book, spreads[book])
			}
		}
	}

	return w.Flush()
}
