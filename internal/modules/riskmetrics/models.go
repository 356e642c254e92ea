package riskmetrics

import "github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/formulas"

// Params carries the configuration for one calculation. Values are
// passed explicitly per call; the calculator holds no ambient state.
type Params struct {
	RiskFreeRate   float64 // Annual risk-free rate (0.02 = 2%)
	Confidence     float64 // VaR/CVaR confidence level (0.95)
	MAR            float64 // Minimum acceptable return for Sortino (annual, default 0)
	PeriodsPerYear float64 // Override for the series frequency factor; 0 = use the series' own
}

// Result holds the risk and performance statistics for one fund series.
//
// Ratio fields are pointers: nil means the metric is undefined for this
// input (zero volatility, no downside observations, no benchmark) and
// must be rendered as N/A, never as a number.
type Result struct {
	FundID       string `json:"fund_id"`
	Observations int    `json:"observations"`

	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`

	AnnualizedVolatility *float64 `json:"annualized_volatility"`
	SharpeRatio          *float64 `json:"sharpe_ratio"`
	SortinoRatio         *float64 `json:"sortino_ratio"`
	TreynorRatio         *float64 `json:"treynor_ratio"`

	VaR  *float64 `json:"var"`  // Positive loss magnitude at the configured confidence
	CVaR *float64 `json:"cvar"` // Expected shortfall beyond VaR, same convention

	Drawdown formulas.DrawdownMetrics `json:"drawdown"`
}
