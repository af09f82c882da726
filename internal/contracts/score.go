package contracts

import "time"

// FactorCategory groups the twelve factors into the three reporting buckets.
type FactorCategory string

const (
	CategoryQuality   FactorCategory = "quality"
	CategoryValuation FactorCategory = "valuation"
	CategorySignals   FactorCategory = "signals"
)

// Factor names. Weights, lifecycle adjustments and score records all key on
// these.
const (
	FactorGrowth            = "growth"
	FactorProfitability     = "profitability"
	FactorFinancialHealth   = "financial_health"
	FactorDividendQuality   = "dividend_quality"
	FactorValue             = "value"
	FactorIntrinsicValue    = "intrinsic_value"
	FactorHistoricalValue   = "historical_value"
	FactorMomentum          = "momentum"
	FactorTechnical         = "technical"
	FactorSmartMoney        = "smart_money"
	FactorEarningsRevisions = "earnings_revisions"
	FactorSentiment         = "sentiment"
)

// FactorCategories maps every factor to its reporting category.
var FactorCategories = map[string]FactorCategory{
	FactorGrowth:            CategoryQuality,
	FactorProfitability:     CategoryQuality,
	FactorFinancialHealth:   CategoryQuality,
	FactorDividendQuality:   CategoryQuality,
	FactorValue:             CategoryValuation,
	FactorIntrinsicValue:    CategoryValuation,
	FactorHistoricalValue:   CategorySignals,
	FactorMomentum:          CategorySignals,
	FactorTechnical:         CategorySignals,
	FactorSmartMoney:        CategorySignals,
	FactorEarningsRevisions: CategorySignals,
	FactorSentiment:         CategorySignals,
}

// LifecycleStage classifies where a company sits in its growth cycle.
// Weights shift by stage before aggregation.
type LifecycleStage string

const (
	StageHypergrowth LifecycleStage = "hypergrowth"
	StageGrowth      LifecycleStage = "growth"
	StageMature      LifecycleStage = "mature"
	StageValue       LifecycleStage = "value"
	StageTurnaround  LifecycleStage = "turnaround"
)

// Confidence reflects how much of the factor set backed a score.
type Confidence string

const (
	ConfidenceHigh         Confidence = "high"
	ConfidenceMedium       Confidence = "medium"
	ConfidenceLow          Confidence = "low"
	ConfidenceInsufficient Confidence = "insufficient"
)

// Rating is the human-facing label derived from the overall score.
type Rating string

const (
	RatingStrongBuy    Rating = "Strong Buy"
	RatingBuy          Rating = "Buy"
	RatingHold         Rating = "Hold"
	RatingUnderperform Rating = "Underperform"
	RatingSell         Rating = "Sell"
)

// RatingFor maps a 0-100 score to its rating band.
func RatingFor(score float64) Rating {
	switch {
	case score >= 80:
		return RatingStrongBuy
	case score >= 65:
		return RatingBuy
	case score >= 50:
		return RatingHold
	case score >= 35:
		return RatingUnderperform
	default:
		return RatingSell
	}
}

// MetricDetail records one sub-metric's raw value and the sector percentile
// it resolved to, for score explainability.
type MetricDetail struct {
	Raw        float64 `json:"raw"`
	Percentile float64 `json:"percentile"`
}

// FactorResult is one calculator's output for one ticker.
type FactorResult struct {
	Name     string         `json:"name"`
	Category FactorCategory `json:"category"`

	// Score is 0-100. Meaningless when Available is false.
	Score float64 `json:"score"`

	// Weight is the lifecycle-adjusted, renormalized weight actually used
	// in aggregation. Zero when the factor was unavailable.
	Weight float64 `json:"weight"`

	// Available is false when the calculator had no usable inputs at all.
	Available bool `json:"available"`

	// Degraded is true when the score was computed but from a degraded
	// sector distribution or a partial sub-metric set.
	Degraded bool `json:"degraded"`

	Metrics map[string]MetricDetail `json:"metrics,omitempty"`
}

// ScoreRecord is the full scored output for one ticker on one date. It is
// what gets persisted, cached and served.
type ScoreRecord struct {
	Ticker       string    `json:"ticker"`
	Sector       string    `json:"sector"`
	CalculatedAt time.Time `json:"calculated_at"`

	// OverallScore is the smoothed, displayable score. Nil when the
	// confidence floor was not met; consumers must show "insufficient
	// data", never a number.
	OverallScore *float64 `json:"overall_score"`

	// RawScore is the weighted aggregate before temporal smoothing.
	RawScore float64 `json:"raw_score"`

	CategoryScores map[FactorCategory]float64 `json:"category_scores"`
	Factors        []FactorResult             `json:"factors"`

	Stage LifecycleStage `json:"stage"`

	// StageConfidence is how decisively the classifier placed the
	// company in Stage, 0-1.
	StageConfidence float64            `json:"stage_confidence"`
	WeightsUsed     map[string]float64 `json:"weights_used"`

	SectorRank       int     `json:"sector_rank,omitempty"`
	SectorTotal      int     `json:"sector_total,omitempty"`
	SectorPercentile float64 `json:"sector_percentile,omitempty"`

	// Completeness is the percentage of expected factors that were
	// available, counted per factor.
	Completeness float64    `json:"completeness"`
	Confidence   Confidence `json:"confidence"`
	Rating       Rating     `json:"rating,omitempty"`

	PreviousScore    *float64 `json:"previous_score,omitempty"`
	SmoothingApplied bool     `json:"smoothing_applied"`
	ResetEvents      []string `json:"reset_events,omitempty"`
	ChangeReasons    []string `json:"change_reasons,omitempty"`
}

// Displayable reports whether the record carries a score consumers may show.
func (r *ScoreRecord) Displayable() bool {
	return r.OverallScore != nil
}

// CategoryScore returns the named category score and whether any available
// factor contributed to it.
func (r *ScoreRecord) CategoryScore(c FactorCategory) (float64, bool) {
	v, ok := r.CategoryScores[c]
	return v, ok
}
