package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [tickers...]",
	Short: "Score tickers or the full universe",
	Long: `Runs the scoring pipeline and persists the results.

With ticker arguments, scores just those names. With --all, scores the
entire active universe. Sector distributions are built first when the
day's set does not exist yet.

Example:
  go run ./cmd/icengine score AAPL MSFT NVDA
  go run ./cmd/icengine score --all
  go run ./cmd/icengine score --all --as-of 2026-06-30`,
	RunE: runScore,
}

var (
	scoreAll  bool
	scoreAsOf string
)

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreAll, "all", false, "score the full active universe")
	scoreCmd.Flags().StringVar(&scoreAsOf, "as-of", "", "scoring date YYYY-MM-DD (default today)")
}

func runScore(cmd *cobra.Command, args []string) error {
	if !scoreAll && len(args) == 0 {
		return fmt.Errorf("pass tickers or --all")
	}

	asOf := time.Now().UTC()
	if scoreAsOf != "" {
		var err error
		if asOf, err = time.Parse("2006-01-02", scoreAsOf); err != nil {
			return fmt.Errorf("invalid --as-of date: %w", err)
		}
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	start := time.Now()

	var scored, failed int
	if scoreAll {
		res, err := rt.runner.RunFullScore(ctx, asOf)
		if err != nil {
			return fmt.Errorf("full scoring run: %w", err)
		}
		scored, failed = res.Scored, res.Failed
	} else {
		tickers := make([]string, len(args))
		for i, a := range args {
			tickers[i] = strings.ToUpper(a)
		}
		res, err := rt.runner.RunUniverse(ctx, tickers, asOf)
		if err != nil {
			return fmt.Errorf("scoring run: %w", err)
		}
		scored, failed = res.Scored, res.Failed
	}

	fmt.Printf("Scored %d tickers (%d failed) in %s\n", scored, failed, time.Since(start).Round(time.Millisecond))
	return nil
}
