package commands

import (
	"github.com/spf13/cobra"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "icengine",
	Short: "InvestorCenter composite scoring engine",
	Long: `InvestorCenter scoring engine CLI

Computes 0-100 composite scores for US equities from twelve weighted
factors, normalized against sector peers and smoothed over time.

Usage:
  go run ./cmd/icengine [command]

Examples:
  go run ./cmd/icengine api
  go run ./cmd/icengine score AAPL MSFT
  go run ./cmd/icengine score --all
  go run ./cmd/icengine sectorstats
  go run ./cmd/icengine backtest --start 2020-01-01 --end 2025-01-01
  go run ./cmd/icengine scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
