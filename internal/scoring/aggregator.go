// Package scoring turns factor outputs into persisted composite scores:
// weighted aggregation, confidence gating, temporal smoothing and change
// explanation.
package scoring

import (
	"math"
	"time"

	"github.com/investorcenter/icengine/internal/contracts"
	"github.com/investorcenter/icengine/internal/factors"
	"github.com/investorcenter/icengine/internal/lifecycle"
)

// AggregatorOptions holds the confidence thresholds.
type AggregatorOptions struct {
	// Completeness thresholds (percent of expected factors available) for
	// the soft confidence tiers.
	HighCompleteness   float64
	MediumCompleteness float64
	LowCompleteness    float64

	// Hard floor: a score needs at least this many of the four quality
	// factors and at least this many of the two core valuation factors,
	// regardless of overall completeness.
	MinQualityFactors int
	MinCoreValuation  int
}

// DefaultAggregatorOptions matches production configuration.
func DefaultAggregatorOptions() AggregatorOptions {
	return AggregatorOptions{
		HighCompleteness:   90,
		MediumCompleteness: 70,
		LowCompleteness:    50,
		MinQualityFactors:  3,
		MinCoreValuation:   1,
	}
}

// coreValuationFactors are the factors counted toward the hard floor's
// valuation requirement. Historical value is a signal, not core valuation.
var coreValuationFactors = map[string]bool{
	contracts.FactorValue:          true,
	contracts.FactorIntrinsicValue: true,
}

// priceSensitiveFactors are the only factors recomputed on the intraday
// refresh path; everything else is carried from the day's full record.
var priceSensitiveFactors = map[string]bool{
	contracts.FactorMomentum:  true,
	contracts.FactorTechnical: true,
}

// Aggregator runs the calculators and combines their outputs.
type Aggregator struct {
	calcs []factors.Calculator
	opts  AggregatorOptions
}

func NewAggregator(calcs []factors.Calculator, opts AggregatorOptions) *Aggregator {
	return &Aggregator{calcs: calcs, opts: opts}
}

// Aggregate produces the raw, unsmoothed score record for one ticker.
// OverallScore is left nil; the stabilizer fills it for records that clear
// the confidence floor.
func (a *Aggregator) Aggregate(snapshot *contracts.MetricSnapshot, stats *contracts.SectorStatSet, asOf time.Time) *contracts.ScoreRecord {
	cls := lifecycle.Classify(snapshot)
	weights := lifecycle.Adjust(cls.Stage)

	results := make([]contracts.FactorResult, 0, len(a.calcs))
	for _, calc := range a.calcs {
		results = append(results, calc.Calculate(snapshot, stats))
	}
	return a.assemble(snapshot, cls, weights, results, asOf)
}

// Refresh recomputes the price-sensitive factors against a fresh snapshot
// and re-aggregates them with the remaining factor results carried from
// prev. The lifecycle stage and weights are carried unchanged; fundamentals
// do not move intraday.
func (a *Aggregator) Refresh(snapshot *contracts.MetricSnapshot, stats *contracts.SectorStatSet, prev *contracts.ScoreRecord, asOf time.Time) *contracts.ScoreRecord {
	carried := make(map[string]contracts.FactorResult, len(prev.Factors))
	for _, f := range prev.Factors {
		carried[f.Name] = f
	}

	results := make([]contracts.FactorResult, 0, len(a.calcs))
	for _, calc := range a.calcs {
		if priceSensitiveFactors[calc.Name()] {
			results = append(results, calc.Calculate(snapshot, stats))
			continue
		}
		if f, ok := carried[calc.Name()]; ok {
			results = append(results, f)
			continue
		}
		results = append(results, contracts.FactorResult{
			Name:     calc.Name(),
			Category: calc.Category(),
		})
	}

	cls := lifecycle.Classification{Stage: prev.Stage, Confidence: prev.StageConfidence}
	return a.assemble(snapshot, cls, prev.WeightsUsed, results, asOf)
}

func (a *Aggregator) assemble(
	snapshot *contracts.MetricSnapshot,
	cls lifecycle.Classification,
	weights map[string]float64,
	results []contracts.FactorResult,
	asOf time.Time,
) *contracts.ScoreRecord {
	record := &contracts.ScoreRecord{
		Ticker:          snapshot.Ticker,
		Sector:          snapshot.Sector,
		CalculatedAt:    asOf,
		Stage:           cls.Stage,
		StageConfidence: cls.Confidence,
		WeightsUsed:     weights,
		Factors:         results,
	}

	var availableWeight, weightedSum float64
	availableCount := 0
	qualityAvail, coreValAvail := 0, 0
	catWeighted := make(map[contracts.FactorCategory]float64)
	catWeight := make(map[contracts.FactorCategory]float64)

	for _, res := range record.Factors {
		if !res.Available {
			continue
		}
		w := weights[res.Name]
		availableCount++
		availableWeight += w
		weightedSum += res.Score * w
		catWeighted[res.Category] += res.Score * w
		catWeight[res.Category] += w

		if res.Category == contracts.CategoryQuality {
			qualityAvail++
		}
		if coreValuationFactors[res.Name] {
			coreValAvail++
		}
	}

	// Completeness counts factors, not weight: a missing low-weight factor
	// costs as much coverage as a missing heavyweight.
	record.Completeness = round1(float64(availableCount) / float64(len(record.Factors)) * 100)

	if availableWeight > 0 {
		record.RawScore = round1(weightedSum / availableWeight)

		// Renormalized weights actually used, recorded per factor.
		for i := range record.Factors {
			record.Factors[i].Weight = 0
			if record.Factors[i].Available {
				record.Factors[i].Weight = weights[record.Factors[i].Name] / availableWeight
			}
		}

		record.CategoryScores = make(map[contracts.FactorCategory]float64, len(catWeight))
		for cat, w := range catWeight {
			if w > 0 {
				record.CategoryScores[cat] = round1(catWeighted[cat] / w)
			}
		}
	}

	record.Confidence = a.confidence(record.Completeness, qualityAvail, coreValAvail)
	return record
}

// confidence applies the hard floor first, then completeness tiers. The
// floor is independent: 95% completeness with no valuation factor is still
// insufficient.
func (a *Aggregator) confidence(completeness float64, qualityAvail, coreValAvail int) contracts.Confidence {
	if qualityAvail < a.opts.MinQualityFactors || coreValAvail < a.opts.MinCoreValuation {
		return contracts.ConfidenceInsufficient
	}
	switch {
	case completeness >= a.opts.HighCompleteness:
		return contracts.ConfidenceHigh
	case completeness >= a.opts.MediumCompleteness:
		return contracts.ConfidenceMedium
	case completeness >= a.opts.LowCompleteness:
		return contracts.ConfidenceLow
	default:
		return contracts.ConfidenceInsufficient
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
