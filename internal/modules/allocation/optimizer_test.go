package allocation

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/logger"
)

const epsilon = 1e-9

func testOptimizer() *Optimizer {
	return NewOptimizer(logger.New(logger.Config{Level: "error"}))
}

func symMatrix(assets []string, rows [][]float64) CorrelationMatrix {
	n := len(assets)
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSym(i, j, rows[i][j])
		}
	}
	return CorrelationMatrix{Assets: assets, Matrix: m}
}

func TestOptimizeShiftsTowardBetterAsset(t *testing.T) {
	opt := testOptimizer()

	weights := map[string]float64{"EQUITY": 0.5, "BONDS": 0.5}
	stats := map[string]AssetStats{
		"EQUITY": {ExpectedReturn: 0.10, Volatility: 0.10},
		"BONDS":  {ExpectedReturn: 0.02, Volatility: 0.20},
	}
	corr := symMatrix([]string{"BONDS", "EQUITY"}, [][]float64{
		{1.0, 0.9},
		{0.9, 1.0},
	})

	rec, err := opt.Optimize(weights, stats, corr, Params{MaxStep: 0.05, RiskFreeRate: 0.02})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	// EQUITY: (0.10-0.02)/0.10 - 0.5*0.9 = 0.35; BONDS: 0 - 0.45 = -0.45.
	// Centered deltas scale so the largest move is exactly MaxStep.
	if math.Abs(rec.SuggestedWeights["EQUITY"]-0.55) > epsilon {
		t.Errorf("Expected EQUITY at 0.55, got %v", rec.SuggestedWeights["EQUITY"])
	}
	if math.Abs(rec.SuggestedWeights["BONDS"]-0.45) > epsilon {
		t.Errorf("Expected BONDS at 0.45, got %v", rec.SuggestedWeights["BONDS"])
	}

	// Two assets at 0.9 correlation: (1 - 0.9) / 2
	if math.Abs(rec.DiversificationScore-0.05) > epsilon {
		t.Errorf("Expected diversification score 0.05, got %v", rec.DiversificationScore)
	}

	if len(rec.Rationale) != 2 {
		t.Errorf("Expected a rationale entry per moved asset, got %v", rec.Rationale)
	}
}

func TestOptimizePreservesWeightSum(t *testing.T) {
	opt := testOptimizer()

	weights := map[string]float64{"A": 0.4, "B": 0.35, "C": 0.25}
	stats := map[string]AssetStats{
		"A": {ExpectedReturn: 0.08, Volatility: 0.15},
		"B": {ExpectedReturn: 0.03, Volatility: 0.05},
		"C": {ExpectedReturn: 0.12, Volatility: 0.30},
	}
	corr := symMatrix([]string{"A", "B", "C"}, [][]float64{
		{1.0, 0.2, 0.6},
		{0.2, 1.0, -0.1},
		{0.6, -0.1, 1.0},
	})

	rec, err := opt.Optimize(weights, stats, corr, Params{MaxStep: 0.05, RiskFreeRate: 0.02})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	sum := 0.0
	for a, w := range rec.SuggestedWeights {
		sum += w
		if w < -epsilon || w > 1+epsilon {
			t.Errorf("Weight for %s left [0, 1]: %v", a, w)
		}

		delta := math.Abs(w - weights[a])
		if delta > 0.05+epsilon {
			t.Errorf("Move for %s exceeds the step cap: %v", a, delta)
		}
	}
	if math.Abs(sum-1) > WeightTolerance {
		t.Errorf("Suggested weights sum to %v, expected 1", sum)
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	opt := testOptimizer()

	weights := map[string]float64{"A": 0.4, "B": 0.35, "C": 0.25}
	stats := map[string]AssetStats{
		"A": {ExpectedReturn: 0.08, Volatility: 0.15},
		"B": {ExpectedReturn: 0.03, Volatility: 0.05},
		"C": {ExpectedReturn: 0.12, Volatility: 0.30},
	}
	corr := symMatrix([]string{"C", "A", "B"}, [][]float64{
		{1.0, 0.6, -0.1},
		{0.6, 1.0, 0.2},
		{-0.1, 0.2, 1.0},
	})

	first, err := opt.Optimize(weights, stats, corr, Params{MaxStep: 0.05})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	second, err := opt.Optimize(weights, stats, corr, Params{MaxStep: 0.05})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	for a := range weights {
		if first.SuggestedWeights[a] != second.SuggestedWeights[a] {
			t.Errorf("Suggestion for %s differs between runs", a)
		}
	}
}

func TestOptimizeEquivalentAssets(t *testing.T) {
	opt := testOptimizer()

	// Identical assets give identical scores: nothing to move
	weights := map[string]float64{"A": 0.5, "B": 0.5}
	stats := map[string]AssetStats{
		"A": {ExpectedReturn: 0.05, Volatility: 0.10},
		"B": {ExpectedReturn: 0.05, Volatility: 0.10},
	}
	corr := symMatrix([]string{"A", "B"}, [][]float64{
		{1.0, 0.3},
		{0.3, 1.0},
	})

	rec, err := opt.Optimize(weights, stats, corr, Params{MaxStep: 0.05})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if rec.SuggestedWeights["A"] != 0.5 || rec.SuggestedWeights["B"] != 0.5 {
		t.Errorf("Expected unchanged weights, got %v", rec.SuggestedWeights)
	}
	if len(rec.Rationale) != 0 {
		t.Errorf("Expected empty rationale, got %v", rec.Rationale)
	}
}

func TestOptimizeValidation(t *testing.T) {
	opt := testOptimizer()

	goodStats := map[string]AssetStats{
		"A": {ExpectedReturn: 0.05, Volatility: 0.1},
		"B": {ExpectedReturn: 0.04, Volatility: 0.1},
	}
	goodCorr := symMatrix([]string{"A", "B"}, [][]float64{
		{1.0, 0.5},
		{0.5, 1.0},
	})

	tests := []struct {
		name    string
		weights map[string]float64
		stats   map[string]AssetStats
		corr    CorrelationMatrix
		wantErr error
	}{
		{
			name:    "No assets",
			weights: map[string]float64{},
			stats:   goodStats,
			corr:    goodCorr,
			wantErr: domain.ErrInconsistentAllocation,
		},
		{
			name:    "Weight above one",
			weights: map[string]float64{"A": 1.2, "B": -0.2},
			stats:   goodStats,
			corr:    goodCorr,
			wantErr: domain.ErrInconsistentAllocation,
		},
		{
			name:    "Sum not one",
			weights: map[string]float64{"A": 0.5, "B": 0.3},
			stats:   goodStats,
			corr:    goodCorr,
			wantErr: domain.ErrInconsistentAllocation,
		},
		{
			name:    "Non-finite weight",
			weights: map[string]float64{"A": math.NaN(), "B": 0.5},
			stats:   goodStats,
			corr:    goodCorr,
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "Matrix covers wrong assets",
			weights: map[string]float64{"A": 0.5, "X": 0.5},
			stats:   goodStats,
			corr:    goodCorr,
			wantErr: domain.ErrDimensionMismatch,
		},
		{
			name:    "Matrix dimension mismatch",
			weights: map[string]float64{"A": 0.5, "B": 0.5},
			stats:   goodStats,
			corr:    CorrelationMatrix{Assets: []string{"A", "B"}, Matrix: mat.NewSymDense(3, nil)},
			wantErr: domain.ErrDimensionMismatch,
		},
		{
			name:    "Correlation out of range",
			weights: map[string]float64{"A": 0.5, "B": 0.5},
			stats:   goodStats,
			corr: symMatrix([]string{"A", "B"}, [][]float64{
				{1.0, 1.5},
				{1.5, 1.0},
			}),
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "Missing stats",
			weights: map[string]float64{"A": 0.5, "B": 0.5},
			stats:   map[string]AssetStats{"A": {ExpectedReturn: 0.05, Volatility: 0.1}},
			corr:    goodCorr,
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := opt.Optimize(tt.weights, tt.stats, tt.corr, Params{MaxStep: 0.05})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestOptimizeRespectsBounds(t *testing.T) {
	opt := testOptimizer()

	// BONDS is already near zero; the shrink factor must keep it there
	// instead of pushing it negative.
	weights := map[string]float64{"EQUITY": 0.98, "BONDS": 0.02}
	stats := map[string]AssetStats{
		"EQUITY": {ExpectedReturn: 0.10, Volatility: 0.10},
		"BONDS":  {ExpectedReturn: 0.01, Volatility: 0.20},
	}
	corr := symMatrix([]string{"EQUITY", "BONDS"}, [][]float64{
		{1.0, 0.1},
		{0.1, 1.0},
	})

	rec, err := opt.Optimize(weights, stats, corr, Params{MaxStep: 0.10, RiskFreeRate: 0.02})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	for a, w := range rec.SuggestedWeights {
		if w < -epsilon || w > 1+epsilon {
			t.Errorf("Weight for %s left [0, 1]: %v", a, w)
		}
	}

	sum := rec.SuggestedWeights["EQUITY"] + rec.SuggestedWeights["BONDS"]
	if math.Abs(sum-1) > WeightTolerance {
		t.Errorf("Suggested weights sum to %v, expected 1", sum)
	}
}
