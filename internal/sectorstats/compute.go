// Package sectorstats computes daily cross-sectional metric distributions
// per sector. The resulting stat sets are the normalization basis for every
// factor calculator.
package sectorstats

import (
	"math"
	"sort"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
)

// Options controls distribution computation.
type Options struct {
	// MinSampleSize is the observation count below which a distribution is
	// flagged Degraded. Distributions with fewer than 2 observations are
	// not produced at all.
	MinSampleSize int

	// WinsorizeSigma clips observations beyond this many standard
	// deviations from the mean before breakpoints are taken.
	WinsorizeSigma float64
}

// DefaultOptions matches production configuration.
func DefaultOptions() Options {
	return Options{MinSampleSize: 5, WinsorizeSigma: 3.0}
}

// ComputeDistribution summarizes one metric's observations for one sector.
// Returns nil when fewer than 2 observations exist; a distribution cannot
// be interpolated from a single point.
func ComputeDistribution(sector, metric string, asOf time.Time, values []float64, opts Options) *contracts.SectorDistribution {
	if len(values) < 2 {
		return nil
	}

	clipped := winsorize(values, opts.WinsorizeSigma)
	sorted := make([]float64, len(clipped))
	copy(sorted, clipped)
	sort.Float64s(sorted)

	mean, std := meanStd(sorted)

	return &contracts.SectorDistribution{
		Sector:      sector,
		Metric:      metric,
		AsOf:        asOf,
		Min:         sorted[0],
		P10:         quantile(sorted, 0.10),
		P25:         quantile(sorted, 0.25),
		P50:         quantile(sorted, 0.50),
		P75:         quantile(sorted, 0.75),
		P90:         quantile(sorted, 0.90),
		Max:         sorted[len(sorted)-1],
		Mean:        mean,
		StdDev:      std,
		SampleCount: len(values),
		Degraded:    len(values) < opts.MinSampleSize,
	}
}

// winsorize clips values beyond sigma standard deviations from the mean.
// Clipping keeps the observation in sample at the boundary rather than
// discarding it, so extreme tickers still count toward the distribution.
func winsorize(values []float64, sigma float64) []float64 {
	mean, std := meanStd(values)
	if std == 0 || sigma <= 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	lo := mean - sigma*std
	hi := mean + sigma*std
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Min(math.Max(v, lo), hi)
	}
	return out
}

// quantile returns the q-th quantile of sorted values by linear
// interpolation between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func meanStd(values []float64) (float64, float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / n)
}
