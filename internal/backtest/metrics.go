package backtest

import (
	"math"
	"time"
)

// aggregate folds per-period outcomes into the final result. Costs are
// charged here: each period's net decile return is the gross return minus
// the round-trip cost scaled by that period's turnover.
func (e *Engine) aggregate(cfg Config, outcomes []*periodOutcome) *Result {
	perYear := cfg.Rebalance.PeriodsPerYear()
	costRate := (cfg.TransactionCostBps + cfg.SlippageBps) / 10_000

	res := &Result{
		Config:  cfg,
		Periods: len(outcomes),
		RunAt:   time.Now().UTC(),
		Deciles: make([]DecileStats, NumDeciles),
	}

	topExcess := make([]float64, 0, len(outcomes))
	hits, hitPeriods := 0, 0

	netReturns := make([][]float64, NumDeciles)

	for d := 0; d < NumDeciles; d++ {
		var prevHoldings []string
		var turnoverSum, holdingsSum float64
		var turnoverPeriods int

		for _, o := range outcomes {
			if !o.counted[d] {
				continue
			}
			to := 1.0 // full build on the first period
			if prevHoldings != nil {
				to = turnover(prevHoldings, o.holdings[d])
				turnoverSum += to
				turnoverPeriods++
			}
			net := o.returns[d] - costRate*to
			netReturns[d] = append(netReturns[d], net)
			holdingsSum += float64(len(o.holdings[d]))
			prevHoldings = o.holdings[d]
		}

		stats := DecileStats{Decile: d + 1}
		if n := len(netReturns[d]); n > 0 {
			stats.TotalReturn = compound(netReturns[d])
			stats.AnnualizedReturn = annualize(stats.TotalReturn, float64(n), perYear)
			stats.Volatility = stddev(netReturns[d]) * math.Sqrt(perYear)
			stats.MaxDrawdown = maxDrawdown(netReturns[d])
			stats.AvgHoldings = holdingsSum / float64(n)
		}
		if turnoverPeriods > 0 {
			stats.AvgTurnover = turnoverSum / float64(turnoverPeriods)
		}
		res.Deciles[d] = stats
	}

	// Hit rate: equal-weighted top half versus bottom half, per period.
	for _, o := range outcomes {
		topRet, topOK := halfReturn(o, NumDeciles/2, NumDeciles)
		botRet, botOK := halfReturn(o, 0, NumDeciles/2)
		if !topOK || !botOK {
			continue
		}
		hitPeriods++
		if topRet > botRet {
			hits++
		}
	}
	if hitPeriods > 0 {
		res.HitRate = float64(hits) / float64(hitPeriods)
	}

	res.TopMinusBottom = res.Deciles[NumDeciles-1].AnnualizedReturn - res.Deciles[0].AnnualizedReturn

	// Monotonicity over adjacent pairs.
	ordered := 0
	for d := 1; d < NumDeciles; d++ {
		if res.Deciles[d].AnnualizedReturn >= res.Deciles[d-1].AnnualizedReturn {
			ordered++
		}
	}
	res.Monotonicity = float64(ordered) / float64(NumDeciles-1)

	// Information ratio for the top decile against the benchmark.
	if cfg.Benchmark != "" {
		for _, o := range outcomes {
			if o.counted[NumDeciles-1] && o.hasBench {
				topExcess = append(topExcess, o.returns[NumDeciles-1]-o.benchmark)
			}
		}
		if len(topExcess) > 1 {
			te := stddev(topExcess)
			if te > 0 {
				res.InformationRatio = mean(topExcess) / te * math.Sqrt(perYear)
			}
		}
	}

	return res
}

// halfReturn averages the counted decile returns in [lo, hi).
func halfReturn(o *periodOutcome, lo, hi int) (float64, bool) {
	var sum float64
	var n int
	for d := lo; d < hi; d++ {
		if o.counted[d] {
			sum += o.returns[d]
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// turnover is the fraction of the new portfolio not carried over from the
// previous one.
func turnover(prev, cur []string) float64 {
	if len(cur) == 0 {
		return 0
	}
	held := make(map[string]bool, len(prev))
	for _, t := range prev {
		held[t] = true
	}
	kept := 0
	for _, t := range cur {
		if held[t] {
			kept++
		}
	}
	return 1 - float64(kept)/float64(len(cur))
}

func compound(returns []float64) float64 {
	v := 1.0
	for _, r := range returns {
		v *= 1 + r
	}
	return v - 1
}

// annualize converts a total return over n periods to a yearly rate.
func annualize(total, n, perYear float64) float64 {
	if n == 0 {
		return 0
	}
	base := 1 + total
	if base <= 0 {
		return -1
	}
	return math.Pow(base, perYear/n) - 1
}

func maxDrawdown(returns []float64) float64 {
	peak, value, maxDD := 1.0, 1.0, 0.0
	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		if dd := (peak - value) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
