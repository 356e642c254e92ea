package allocation

import "gonum.org/v1/gonum/mat"

// AssetStats summarizes one asset's risk/return profile, typically
// taken from a RiskMetricsCalculator run over that asset's series.
type AssetStats struct {
	ExpectedReturn float64 `json:"expected_return"` // Annualized
	Volatility     float64 `json:"volatility"`      // Annualized
}

// CorrelationMatrix pairs an ordered asset list with its symmetric
// pairwise correlation matrix.
type CorrelationMatrix struct {
	Assets []string
	Matrix *mat.SymDense
}

// Params carries the configuration for one optimization step.
type Params struct {
	MaxStep      float64 // Per-asset cap on a single reallocation (default 0.05)
	RiskFreeRate float64 // Annual, used in the risk-adjusted contribution score
}

// Recommendation is the optimizer's output: a single-step heuristic
// improvement, not a full mean-variance solution.
type Recommendation struct {
	CurrentWeights       map[string]float64 `json:"current_weights"`
	SuggestedWeights     map[string]float64 `json:"suggested_weights"`
	DiversificationScore float64            `json:"diversification_score"`
	Rationale            []string           `json:"rationale"`
}
