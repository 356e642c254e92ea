package allocation

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
)

const (
	// WeightTolerance is the numerical tolerance for the sum-to-one invariant.
	WeightTolerance = 1e-6

	// correlationPenalty weighs an asset's correlation to the rest of
	// the portfolio against its return-per-unit-risk in the marginal
	// contribution score.
	correlationPenalty = 0.5

	defaultMaxStep = 0.05
)

// Optimizer produces single-step reallocation suggestions.
//
// Heuristic: each asset gets a marginal contribution score
//
//	s_i = (mu_i - rf) / sigma_i - 0.5 * corr_i
//
// where corr_i is the weight-averaged correlation of asset i to the
// rest of the portfolio. Mass moves from below-average to above-average
// assets, scaled so no single weight changes by more than MaxStep and
// no weight leaves [0, 1]. Deltas are mean-centered, so the suggested
// weights sum to exactly what the current weights sum to. Deterministic
// for identical inputs: assets are processed in sorted name order.
type Optimizer struct {
	log zerolog.Logger
}

// NewOptimizer creates a new allocation optimizer
func NewOptimizer(log zerolog.Logger) *Optimizer {
	return &Optimizer{
		log: log.With().Str("component", "allocation").Logger(),
	}
}

// Optimize validates the inputs and produces a reallocation suggestion.
func (o *Optimizer) Optimize(weights map[string]float64, stats map[string]AssetStats, corr CorrelationMatrix, p Params) (*Recommendation, error) {
	assets, err := validateInputs(weights, stats, corr)
	if err != nil {
		return nil, err
	}

	maxStep := p.MaxStep
	if maxStep <= 0 {
		maxStep = defaultMaxStep
	}

	n := len(assets)
	w := make([]float64, n)
	for i, a := range assets {
		w[i] = weights[a]
	}

	// Map sorted asset positions onto the correlation matrix ordering
	idx := corrIndex(corr.Assets)
	pos := make([]int, n)
	for i, a := range assets {
		pos[i] = idx[a]
	}

	divScore := diversificationScore(w, pos, corr)

	// Marginal contribution score per asset
	scores := make([]float64, n)
	for i, a := range assets {
		st := stats[a]
		sigma := math.Max(st.Volatility, 1e-9)
		rpr := (st.ExpectedReturn - p.RiskFreeRate) / sigma
		scores[i] = rpr - correlationPenalty*portfolioCorrelation(i, w, pos, corr)
	}

	// Mean-centered deltas sum to zero, preserving the weight total.
	meanScore := 0.0
	for _, s := range scores {
		meanScore += s
	}
	meanScore /= float64(n)

	raw := make([]float64, n)
	maxRaw := 0.0
	for i, s := range scores {
		raw[i] = s - meanScore
		if math.Abs(raw[i]) > maxRaw {
			maxRaw = math.Abs(raw[i])
		}
	}

	// Scale so the largest move equals MaxStep, then shrink further if
	// any weight would leave [0, 1].
	scale := 0.0
	if maxRaw > 0 {
		scale = maxStep / maxRaw
		for i := range raw {
			if raw[i] < 0 && w[i]+raw[i]*scale < 0 {
				scale = math.Min(scale, w[i]/-raw[i])
			}
			if raw[i] > 0 && w[i]+raw[i]*scale > 1 {
				scale = math.Min(scale, (1-w[i])/raw[i])
			}
		}
	}

	suggested := make(map[string]float64, n)
	var rationale []string
	for i, a := range assets {
		delta := raw[i] * scale
		suggested[a] = w[i] + delta

		switch {
		case delta > WeightTolerance:
			rationale = append(rationale, fmt.Sprintf("increase %s: favorable risk-adjusted contribution", a))
		case delta < -WeightTolerance:
			rationale = append(rationale, fmt.Sprintf("reduce %s: weak return per unit risk or high correlation to portfolio", a))
		}
	}

	o.log.Debug().
		Int("assets", n).
		Float64("diversification_score", divScore).
		Float64("max_step", maxStep).
		Msg("Allocation optimization completed")

	return &Recommendation{
		CurrentWeights:       copyWeights(weights),
		SuggestedWeights:     suggested,
		DiversificationScore: divScore,
		Rationale:            rationale,
	}, nil
}

// validateInputs checks the allocation invariants and returns the
// asset names in deterministic sorted order.
func validateInputs(weights map[string]float64, stats map[string]AssetStats, corr CorrelationMatrix) ([]string, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("%w: no assets", domain.ErrInconsistentAllocation)
	}

	sum := 0.0
	for a, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: non-finite weight for %s", domain.ErrInvalidInput, a)
		}
		if w < 0 || w > 1 {
			return nil, fmt.Errorf("%w: weight %v for %s outside [0, 1]", domain.ErrInconsistentAllocation, w, a)
		}
		sum += w
	}
	if math.Abs(sum-1) > WeightTolerance {
		return nil, fmt.Errorf("%w: weights sum to %v, expected 1", domain.ErrInconsistentAllocation, sum)
	}

	if corr.Matrix == nil || corr.Matrix.SymmetricDim() != len(corr.Assets) {
		return nil, fmt.Errorf("%w: correlation matrix does not match its asset list", domain.ErrDimensionMismatch)
	}
	for i := 0; i < corr.Matrix.SymmetricDim(); i++ {
		for j := i; j < corr.Matrix.SymmetricDim(); j++ {
			v := corr.Matrix.At(i, j)
			if math.IsNaN(v) || v < -1-WeightTolerance || v > 1+WeightTolerance {
				return nil, fmt.Errorf("%w: correlation %v between %s and %s outside [-1, 1]",
					domain.ErrInvalidInput, v, corr.Assets[i], corr.Assets[j])
			}
		}
	}
	if len(corr.Assets) != len(weights) {
		return nil, fmt.Errorf("%w: correlation matrix covers %d assets, weights cover %d",
			domain.ErrDimensionMismatch, len(corr.Assets), len(weights))
	}
	for _, a := range corr.Assets {
		if _, ok := weights[a]; !ok {
			return nil, fmt.Errorf("%w: correlation matrix asset %s missing from weights", domain.ErrDimensionMismatch, a)
		}
	}
	for a := range weights {
		if _, ok := stats[a]; !ok {
			return nil, fmt.Errorf("%w: missing stats for asset %s", domain.ErrInvalidInput, a)
		}
	}

	assets := make([]string, 0, len(weights))
	for a := range weights {
		assets = append(assets, a)
	}
	sort.Strings(assets)
	return assets, nil
}

// diversificationScore maps the allocation-weighted average pairwise
// correlation in [-1, 1] onto [0, 1]; lower weighted correlation means
// a higher score. pos maps weight positions onto the matrix ordering.
func diversificationScore(w []float64, pos []int, corr CorrelationMatrix) float64 {
	var weightedCorr, totalWeight float64
	for i := range w {
		for j := range w {
			if i == j {
				continue
			}
			pairWeight := w[i] * w[j]
			weightedCorr += pairWeight * corr.Matrix.At(pos[i], pos[j])
			totalWeight += pairWeight
		}
	}

	avg := 0.0
	if totalWeight > 0 {
		avg = weightedCorr / totalWeight
	}

	return clamp((1-avg)/2, 0, 1)
}

// portfolioCorrelation is the weight-averaged correlation of asset i to
// every other asset. pos maps weight positions onto the matrix ordering.
func portfolioCorrelation(i int, w []float64, pos []int, corr CorrelationMatrix) float64 {
	var sum, totalWeight float64
	for j := range w {
		if j == i {
			continue
		}
		sum += w[j] * corr.Matrix.At(pos[i], pos[j])
		totalWeight += w[j]
	}
	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight
}

func corrIndex(assets []string) map[string]int {
	idx := make(map[string]int, len(assets))
	for i, a := range assets {
		idx[a] = i
	}
	return idx
}

func copyWeights(weights map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(weights))
	for k, v := range weights {
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
