package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// sectorStatsCmd represents the sectorstats command
var sectorStatsCmd = &cobra.Command{
	Use:   "sectorstats",
	Short: "Rebuild sector metric distributions",
	Long: `Recomputes the cross-sectional metric distributions for every
sector and persists them. The scoring run normalizes every factor against
these.

Example:
  go run ./cmd/icengine sectorstats
  go run ./cmd/icengine sectorstats --as-of 2026-06-30`,
	RunE: runSectorStats,
}

var sectorStatsAsOf string

func init() {
	rootCmd.AddCommand(sectorStatsCmd)
	sectorStatsCmd.Flags().StringVar(&sectorStatsAsOf, "as-of", "", "date YYYY-MM-DD (default today)")
}

func runSectorStats(cmd *cobra.Command, args []string) error {
	asOf := time.Now().UTC()
	if sectorStatsAsOf != "" {
		var err error
		if asOf, err = time.Parse("2006-01-02", sectorStatsAsOf); err != nil {
			return fmt.Errorf("invalid --as-of date: %w", err)
		}
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	set, err := rt.statsBuild.Build(ctx, asOf)
	if err != nil {
		return fmt.Errorf("build sector stats: %w", err)
	}
	if err := rt.stats.SaveStatSet(ctx, set); err != nil {
		return fmt.Errorf("save sector stats: %w", err)
	}

	fmt.Printf("Saved %d distributions for %s\n", len(set.Distributions), asOf.Format("2006-01-02"))
	return nil
}
