package contracts

import (
	"fmt"
	"time"
)

// SectorDistribution summarizes one metric's cross-sectional distribution
// within one sector on one date. Percentile breakpoints are computed after
// winsorization; SampleCount is the pre-winsorization count of non-nil
// observations.
type SectorDistribution struct {
	Sector string    `json:"sector"`
	Metric string    `json:"metric"`
	AsOf   time.Time `json:"as_of"`

	Min    float64 `json:"min"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	P50    float64 `json:"p50"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`

	SampleCount int `json:"sample_count"`

	// Degraded marks distributions built from fewer observations than the
	// configured minimum. Scores derived from them carry reduced confidence.
	Degraded bool `json:"degraded"`
}

// PercentileOf maps a raw metric value to its 0-100 percentile within the
// distribution by linear interpolation between the stored breakpoints.
// Values at or below Min map to 0, at or above Max to 100.
func (d *SectorDistribution) PercentileOf(value float64) float64 {
	type bp struct {
		value float64
		pct   float64
	}
	bps := []bp{
		{d.Min, 0},
		{d.P10, 10},
		{d.P25, 25},
		{d.P50, 50},
		{d.P75, 75},
		{d.P90, 90},
		{d.Max, 100},
	}

	if value <= bps[0].value {
		return 0
	}
	if value >= bps[len(bps)-1].value {
		return 100
	}
	for i := 1; i < len(bps); i++ {
		lo, hi := bps[i-1], bps[i]
		if value <= hi.value {
			if hi.value == lo.value {
				return hi.pct
			}
			frac := (value - lo.value) / (hi.value - lo.value)
			return lo.pct + frac*(hi.pct-lo.pct)
		}
	}
	return 100
}

// SectorStatSet is an immutable per-day lookup of sector distributions,
// keyed by sector and metric. It is the unit cached in Redis and passed to
// the factor calculators.
type SectorStatSet struct {
	AsOf          time.Time                      `json:"as_of"`
	Distributions map[string]*SectorDistribution `json:"distributions"`
}

// NewSectorStatSet builds a stat set from a flat slice of distributions.
func NewSectorStatSet(asOf time.Time, dists []*SectorDistribution) *SectorStatSet {
	set := &SectorStatSet{
		AsOf:          asOf,
		Distributions: make(map[string]*SectorDistribution, len(dists)),
	}
	for _, d := range dists {
		set.Distributions[statKey(d.Sector, d.Metric)] = d
	}
	return set
}

// Lookup returns the distribution for a sector and metric, or nil when the
// sector-stats job produced none (too few observations to summarize at all).
func (s *SectorStatSet) Lookup(sector, metric string) *SectorDistribution {
	if s == nil {
		return nil
	}
	return s.Distributions[statKey(sector, metric)]
}

// Percentile maps value to its sector percentile, inverting for metrics
// where lower raw values are better. The bool reports whether a
// distribution existed.
func (s *SectorStatSet) Percentile(sector, metric string, value float64) (float64, bool) {
	d := s.Lookup(sector, metric)
	if d == nil {
		return 0, false
	}
	p := d.PercentileOf(value)
	if LowerIsBetter[metric] {
		p = 100 - p
	}
	return p, true
}

func statKey(sector, metric string) string {
	return fmt.Sprintf("%s|%s", sector, metric)
}
