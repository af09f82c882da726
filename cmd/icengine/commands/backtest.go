package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/investorcenter/icengine/internal/backtest"
)

// backtestCmd represents the backtest command
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a decile backtest over score history",
	Long: `Forms decile portfolios from historical scores at each rebalance
date and reports the return ladder, spread, hit rate and information
ratio.

Example:
  go run ./cmd/icengine backtest --start 2020-01-01 --end 2025-01-01
  go run ./cmd/icengine backtest --start 2022-01-01 --end 2025-01-01 --rebalance weekly`,
	RunE: runBacktest,
}

var (
	btStart     string
	btEnd       string
	btRebalance string
	btBenchmark string
)

func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringVar(&btStart, "start", "", "start date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "", "end date YYYY-MM-DD (required)")
	backtestCmd.Flags().StringVar(&btRebalance, "rebalance", "monthly", "rebalance frequency (daily|weekly|monthly|quarterly)")
	backtestCmd.Flags().StringVar(&btBenchmark, "benchmark", "", "benchmark symbol (default from config)")
	_ = backtestCmd.MarkFlagRequired("start")
	_ = backtestCmd.MarkFlagRequired("end")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	start, err := time.Parse("2006-01-02", btStart)
	if err != nil {
		return fmt.Errorf("invalid --start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", btEnd)
	if err != nil {
		return fmt.Errorf("invalid --end date: %w", err)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	benchmark := rt.cfg.Backtest.Benchmark
	if btBenchmark != "" {
		benchmark = btBenchmark
	}

	cfg := backtest.Config{
		Start:              start,
		End:                end,
		Rebalance:          backtest.Frequency(btRebalance),
		TransactionCostBps: rt.cfg.Backtest.TransactionCostBps,
		SlippageBps:        rt.cfg.Backtest.SlippageBps,
		Benchmark:          benchmark,
		Workers:            rt.cfg.Backtest.Workers,
	}

	result, err := rt.backtester.Run(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}

	printBacktestResult(result)
	return nil
}

func printBacktestResult(r *backtest.Result) {
	fmt.Printf("Backtest %s to %s, %s rebalance, %d periods\n\n",
		r.Config.Start.Format("2006-01-02"), r.Config.End.Format("2006-01-02"),
		r.Config.Rebalance, r.Periods)

	fmt.Println("Decile  AnnRet     Vol     MaxDD   Turnover  Holdings")
	for _, d := range r.Deciles {
		fmt.Printf("%6d  %6.2f%%  %6.2f%%  %6.2f%%  %7.1f%%  %8.1f\n",
			d.Decile,
			d.AnnualizedReturn*100, d.Volatility*100, d.MaxDrawdown*100,
			d.AvgTurnover*100, d.AvgHoldings)
	}

	fmt.Printf("\nTop-minus-bottom spread : %6.2f%%\n", r.TopMinusBottom*100)
	fmt.Printf("Decile monotonicity     : %6.1f%%\n", r.Monotonicity*100)
	fmt.Printf("Hit rate                : %6.1f%%\n", r.HitRate*100)
	if r.Config.Benchmark != "" {
		fmt.Printf("Information ratio (%s): %6.2f\n", r.Config.Benchmark, r.InformationRatio)
	}
}
