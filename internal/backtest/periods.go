package backtest

import (
	"fmt"
	"time"
)

// Frequency is the rebalance cadence.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// PeriodsPerYear returns the annualization factor for the frequency.
func (f Frequency) PeriodsPerYear() float64 {
	switch f {
	case Daily:
		return 252
	case Weekly:
		return 52
	case Monthly:
		return 12
	case Quarterly:
		return 4
	default:
		return 12
	}
}

func (f Frequency) step(t time.Time) time.Time {
	switch f {
	case Daily:
		return t.AddDate(0, 0, 1)
	case Weekly:
		return t.AddDate(0, 0, 7)
	case Monthly:
		return t.AddDate(0, 1, 0)
	case Quarterly:
		return t.AddDate(0, 3, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly:
		return true
	}
	return false
}

// Period is one holding window: portfolios form on ScoreDate using only
// data available then, and are held until EndDate.
type Period struct {
	ScoreDate time.Time
	EndDate   time.Time
}

// GeneratePeriods slices [start, end] into rebalance periods. The last
// period is dropped if it would extend past end; a backtest never holds an
// open period.
func GeneratePeriods(start, end time.Time, freq Frequency) ([]Period, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("invalid rebalance frequency %q", freq)
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s must precede end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	var periods []Period
	for t := start; ; {
		next := freq.step(t)
		if next.After(end) {
			break
		}
		periods = append(periods, Period{ScoreDate: t, EndDate: next})
		t = next
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("range %s to %s shorter than one %s period",
			start.Format("2006-01-02"), end.Format("2006-01-02"), freq)
	}
	return periods, nil
}
