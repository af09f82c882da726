// Package lifecycle classifies companies into growth-cycle stages and
// shifts the factor weights accordingly. A hypergrowth name is judged less
// on current valuation and more on growth; a value name the reverse.
package lifecycle

import "github.com/investorcenter/icengine/internal/contracts"

// Classification thresholds on revenue growth (percent, year over year).
const (
	hypergrowthThreshold = 50.0
	growthThreshold      = 20.0
	turnaroundThreshold  = -5.0

	valuePEThreshold     = 12.0
	valueMarginThreshold = 5.0
)

// Classification is a stage assignment plus how decisively the metrics
// landed there. Confidence is 0-1: a company just over a threshold sits
// near the stage's floor, deep inside the band it approaches 1.
type Classification struct {
	Stage      contracts.LifecycleStage
	Confidence float64
}

// Classify assigns a lifecycle stage from a metric snapshot. Rules are
// checked in priority order; missing revenue growth falls through to the
// Value and Mature checks.
func Classify(snapshot *contracts.MetricSnapshot) Classification {
	var growth, pe, margin *float64
	if f := snapshot.Fundamentals; f != nil {
		growth = f.RevenueGrowthYoY
		pe = f.PERatio
		margin = f.NetMargin
	}

	if growth != nil {
		switch {
		case *growth > hypergrowthThreshold:
			return Classification{
				Stage:      contracts.StageHypergrowth,
				Confidence: clamp01((*growth-hypergrowthThreshold)/50 + 0.7),
			}
		case *growth > growthThreshold:
			return Classification{
				Stage:      contracts.StageGrowth,
				Confidence: clamp01(0.6 + (*growth-growthThreshold)/60),
			}
		case *growth < turnaroundThreshold:
			return Classification{
				Stage:      contracts.StageTurnaround,
				Confidence: clamp01(-*growth/20 + 0.5),
			}
		}
	}

	// A missing PE (negative or no earnings) reads as expensive for the
	// value check, not cheap.
	peVal := 20.0
	if pe != nil {
		peVal = *pe
	}
	if peVal < valuePEThreshold && margin != nil && *margin > valueMarginThreshold {
		peScore := (valuePEThreshold - peVal) / valuePEThreshold
		marginScore := min(*margin/20, 0.5)
		return Classification{
			Stage:      contracts.StageValue,
			Confidence: clamp01(0.5 + peScore*0.3 + marginScore),
		}
	}

	// Mature is the default bucket; metrics squarely in the slow-and-
	// profitable band make it a firmer call than a fall-through.
	conf := 0.6
	if growth != nil && margin != nil && *growth > 0 && *growth < 15 && *margin > 0 {
		conf = 0.8
	}
	return Classification{Stage: contracts.StageMature, Confidence: conf}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
