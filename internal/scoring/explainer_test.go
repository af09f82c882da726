package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/investorcenter/icengine/internal/contracts"
)

func recordWithFactors(stage contracts.LifecycleStage, scores map[string]float64) *contracts.ScoreRecord {
	rec := &contracts.ScoreRecord{Stage: stage}
	for name, score := range scores {
		rec.Factors = append(rec.Factors, contracts.FactorResult{
			Name: name, Score: score, Available: true,
		})
	}
	return rec
}

func TestExplainChangeTopMovers(t *testing.T) {
	prev := recordWithFactors(contracts.StageMature, map[string]float64{
		contracts.FactorMomentum:  40,
		contracts.FactorValue:     60,
		contracts.FactorSentiment: 50,
	})
	cur := recordWithFactors(contracts.StageMature, map[string]float64{
		contracts.FactorMomentum:  62, // +22
		contracts.FactorValue:     52, // -8
		contracts.FactorSentiment: 51, // +1, below threshold
	})

	ExplainChange(cur, prev)
	require.Len(t, cur.ChangeReasons, 2)
	assert.Equal(t, "momentum improved 22.0 points", cur.ChangeReasons[0])
	assert.Equal(t, "value declined 8.0 points", cur.ChangeReasons[1])
}

func TestExplainChangeCoverage(t *testing.T) {
	prev := recordWithFactors(contracts.StageMature, map[string]float64{
		contracts.FactorValue: 60,
	})
	cur := recordWithFactors(contracts.StageMature, map[string]float64{
		contracts.FactorValue:     60,
		contracts.FactorSentiment: 70,
	})
	cur.Factors = append(cur.Factors, contracts.FactorResult{
		Name: contracts.FactorMomentum, Available: false,
	})
	prev.Factors = append(prev.Factors, contracts.FactorResult{
		Name: contracts.FactorMomentum, Score: 50, Available: true,
	})

	ExplainChange(cur, prev)
	assert.Contains(t, cur.ChangeReasons, "sentiment data became available")
	assert.Contains(t, cur.ChangeReasons, "momentum data became unavailable")
}

func TestExplainChangeStageTransition(t *testing.T) {
	prev := recordWithFactors(contracts.StageGrowth, nil)
	cur := recordWithFactors(contracts.StageMature, nil)

	ExplainChange(cur, prev)
	require.Len(t, cur.ChangeReasons, 1)
	assert.Equal(t, "lifecycle stage changed from growth to mature", cur.ChangeReasons[0])
}

func TestExplainChangeCapped(t *testing.T) {
	prev := recordWithFactors(contracts.StageMature, map[string]float64{
		contracts.FactorMomentum: 10, contracts.FactorValue: 10,
		contracts.FactorGrowth: 10, contracts.FactorSentiment: 10,
		contracts.FactorTechnical: 10,
	})
	cur := recordWithFactors(contracts.StageMature, map[string]float64{
		contracts.FactorMomentum: 90, contracts.FactorValue: 80,
		contracts.FactorGrowth: 70, contracts.FactorSentiment: 60,
		contracts.FactorTechnical: 50,
	})

	ExplainChange(cur, prev)
	assert.Len(t, cur.ChangeReasons, maxChangeReasons)
	assert.Equal(t, "momentum improved 80.0 points", cur.ChangeReasons[0])
}

func TestExplainChangeNoPrevious(t *testing.T) {
	cur := recordWithFactors(contracts.StageMature, map[string]float64{contracts.FactorValue: 60})
	ExplainChange(cur, nil)
	assert.Empty(t, cur.ChangeReasons)
}
