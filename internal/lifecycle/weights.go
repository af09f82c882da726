package lifecycle

import "github.com/investorcenter/icengine/internal/contracts"

// BaseWeights is the mature-stage weight of each factor. They sum to 1.0.
var BaseWeights = map[string]float64{
	contracts.FactorGrowth:            0.12,
	contracts.FactorProfitability:     0.11,
	contracts.FactorFinancialHealth:   0.09,
	contracts.FactorDividendQuality:   0.03,
	contracts.FactorValue:             0.12,
	contracts.FactorIntrinsicValue:    0.10,
	contracts.FactorHistoricalValue:   0.07,
	contracts.FactorMomentum:          0.10,
	contracts.FactorTechnical:         0.09,
	contracts.FactorSmartMoney:        0.08,
	contracts.FactorEarningsRevisions: 0.05,
	contracts.FactorSentiment:         0.04,
}

// stageMultipliers scales base weights per stage. Factors absent from a
// stage's table keep multiplier 1.0. Adjust renormalizes afterwards, so
// only the relative shifts matter.
var stageMultipliers = map[contracts.LifecycleStage]map[string]float64{
	contracts.StageHypergrowth: {
		contracts.FactorGrowth:            1.6,
		contracts.FactorMomentum:          1.4,
		contracts.FactorEarningsRevisions: 1.3,
		contracts.FactorSentiment:         1.2,
		contracts.FactorValue:             0.5,
		contracts.FactorHistoricalValue:   0.6,
		contracts.FactorDividendQuality:   0.2,
		contracts.FactorIntrinsicValue:    0.7,
	},
	contracts.StageGrowth: {
		contracts.FactorGrowth:            1.3,
		contracts.FactorMomentum:          1.2,
		contracts.FactorEarningsRevisions: 1.2,
		contracts.FactorValue:             0.8,
		contracts.FactorDividendQuality:   0.6,
	},
	contracts.StageMature: {},
	contracts.StageValue: {
		contracts.FactorValue:           1.5,
		contracts.FactorIntrinsicValue:  1.4,
		contracts.FactorHistoricalValue: 1.3,
		contracts.FactorDividendQuality: 1.5,
		contracts.FactorGrowth:          0.6,
		contracts.FactorMomentum:        0.7,
		contracts.FactorSentiment:       0.8,
	},
	contracts.StageTurnaround: {
		contracts.FactorFinancialHealth:   1.6,
		contracts.FactorSmartMoney:        1.4,
		contracts.FactorEarningsRevisions: 1.3,
		contracts.FactorMomentum:          1.2,
		contracts.FactorGrowth:            0.7,
		contracts.FactorProfitability:     0.8,
		contracts.FactorDividendQuality:   0.5,
	},
}

// Adjust returns the stage-adjusted weights, renormalized to sum to 1.0.
func Adjust(stage contracts.LifecycleStage) map[string]float64 {
	mults := stageMultipliers[stage]

	out := make(map[string]float64, len(BaseWeights))
	var total float64
	for factor, base := range BaseWeights {
		m, ok := mults[factor]
		if !ok {
			m = 1.0
		}
		w := base * m
		out[factor] = w
		total += w
	}
	for factor := range out {
		out[factor] /= total
	}
	return out
}
