package lifecycle

import (
	"math"
	"testing"

	"github.com/investorcenter/icengine/internal/contracts"
)

func snap(growth, pe, margin *float64) *contracts.MetricSnapshot {
	return &contracts.MetricSnapshot{
		Ticker: "TEST",
		Fundamentals: &contracts.Fundamentals{
			RevenueGrowthYoY: growth,
			PERatio:          pe,
			NetMargin:        margin,
		},
	}
}

func f(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		s    *contracts.MetricSnapshot
		want contracts.LifecycleStage
	}{
		{"hypergrowth above 50", snap(f(62), f(80), f(2)), contracts.StageHypergrowth},
		{"growth above 20", snap(f(28), f(35), f(10)), contracts.StageGrowth},
		{"exactly 50 is growth not hypergrowth", snap(f(50), nil, nil), contracts.StageGrowth},
		{"exactly 20 falls through", snap(f(20), f(25), f(8)), contracts.StageMature},
		{"turnaround below -5", snap(f(-12), f(8), f(9)), contracts.StageTurnaround},
		{"exactly -5 falls through", snap(f(-5), f(25), f(8)), contracts.StageMature},
		{"value on cheap profitable", snap(f(3), f(9), f(11)), contracts.StageValue},
		{"cheap but thin margin is mature", snap(f(3), f(9), f(3)), contracts.StageMature},
		{"cheap but missing margin is mature", snap(f(3), f(9), nil), contracts.StageMature},
		{"missing pe reads expensive", snap(f(3), nil, f(11)), contracts.StageMature},
		{"missing growth can still be value", snap(nil, f(10), f(8)), contracts.StageValue},
		{"default mature", snap(f(10), f(18), f(12)), contracts.StageMature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.s); got.Stage != tt.want {
				t.Errorf("Classify() = %v, want %v", got.Stage, tt.want)
			}
		})
	}
}

func TestClassifyNoFundamentals(t *testing.T) {
	s := &contracts.MetricSnapshot{Ticker: "EMPTY"}
	if got := Classify(s); got.Stage != contracts.StageMature {
		t.Errorf("Classify(empty) = %v, want mature", got.Stage)
	}
}

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		name string
		s    *contracts.MetricSnapshot
		want float64
	}{
		{"hypergrowth deep in band", snap(f(75), nil, nil), 1.0},
		{"hypergrowth near threshold", snap(f(52), nil, nil), 0.74},
		{"growth mid band", snap(f(32), f(35), f(10)), 0.8},
		{"turnaround severe", snap(f(-30), f(8), f(9)), 1.0},
		{"turnaround mild", snap(f(-8), f(8), f(9)), 0.9},
		{"value cheap and fat margin", snap(f(3), f(6), f(12)), 1.0},
		{"mature typical", snap(f(10), f(18), f(12)), 0.8},
		{"mature fall-through", snap(f(18), f(25), f(-2)), 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.s)
			if math.Abs(got.Confidence-tt.want) > 1e-9 {
				t.Errorf("Classify() confidence = %v, want %v", got.Confidence, tt.want)
			}
			if got.Confidence < 0 || got.Confidence > 1 {
				t.Errorf("confidence %v outside [0,1]", got.Confidence)
			}
		})
	}
}

func TestBaseWeightsSumToOne(t *testing.T) {
	var sum float64
	for _, w := range BaseWeights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("base weights sum to %v, want 1.0", sum)
	}
	if len(BaseWeights) != 12 {
		t.Errorf("expected 12 factors, got %d", len(BaseWeights))
	}
}

func TestAdjustRenormalizes(t *testing.T) {
	stages := []contracts.LifecycleStage{
		contracts.StageHypergrowth,
		contracts.StageGrowth,
		contracts.StageMature,
		contracts.StageValue,
		contracts.StageTurnaround,
	}
	for _, stage := range stages {
		weights := Adjust(stage)
		if len(weights) != len(BaseWeights) {
			t.Errorf("%s: got %d weights, want %d", stage, len(weights), len(BaseWeights))
		}
		var sum float64
		for _, w := range weights {
			if w <= 0 {
				t.Errorf("%s: non-positive weight %v", stage, w)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("%s: adjusted weights sum to %v, want 1.0", stage, sum)
		}
	}
}

func TestAdjustShiftsDirection(t *testing.T) {
	mature := Adjust(contracts.StageMature)
	hyper := Adjust(contracts.StageHypergrowth)
	value := Adjust(contracts.StageValue)

	if hyper[contracts.FactorGrowth] <= mature[contracts.FactorGrowth] {
		t.Error("hypergrowth should weight growth above mature")
	}
	if hyper[contracts.FactorValue] >= mature[contracts.FactorValue] {
		t.Error("hypergrowth should weight value below mature")
	}
	if value[contracts.FactorValue] <= mature[contracts.FactorValue] {
		t.Error("value stage should weight value above mature")
	}
	if value[contracts.FactorGrowth] >= mature[contracts.FactorGrowth] {
		t.Error("value stage should weight growth below mature")
	}
}
