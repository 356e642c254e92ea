package riskmetrics

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/formulas"
)

// Calculator computes risk and performance statistics over a return
// series. It is stateless and safe for concurrent use.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a new risk metrics calculator
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("component", "riskmetrics").Logger(),
	}
}

// Calculate computes the full metric set for a series. The benchmark is
// optional; without it the Treynor ratio is left undefined. A series
// with a single observation yields total and annualized return only,
// with every variance-based field undefined.
func (c *Calculator) Calculate(series *returns.Series, benchmark *returns.Series, p Params) (*Result, error) {
	if series == nil || series.Len() == 0 {
		return nil, fmt.Errorf("%w: empty return series", domain.ErrInsufficientData)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if p.Confidence <= 0 || p.Confidence >= 1 {
		return nil, fmt.Errorf("%w: confidence level %v outside (0, 1)", domain.ErrInvalidInput, p.Confidence)
	}

	periodsPerYear := p.PeriodsPerYear
	if periodsPerYear <= 0 {
		periodsPerYear = series.Frequency.PeriodsPerYear()
	}

	rets := series.Values()

	result := &Result{
		FundID:           series.FundID,
		Observations:     len(rets),
		TotalReturn:      formulas.TotalReturn(rets),
		AnnualizedReturn: formulas.AnnualizedReturn(rets, periodsPerYear),
		Drawdown:         formulas.CalculateDrawdown(rets),
	}

	if len(rets) < 2 {
		return result, nil
	}

	vol := formulas.AnnualizedVolatility(rets, periodsPerYear)
	result.AnnualizedVolatility = &vol

	result.SharpeRatio = sharpe(result.AnnualizedReturn, p.RiskFreeRate, vol)
	result.SortinoRatio = sortino(rets, result.AnnualizedReturn, p.RiskFreeRate, p.MAR, periodsPerYear)

	varLoss, cvarLoss := historicalVaR(rets, p.Confidence)
	result.VaR = &varLoss
	result.CVaR = &cvarLoss

	if benchmark != nil {
		treynor, err := c.Treynor(series, benchmark, p.RiskFreeRate, periodsPerYear)
		if err != nil {
			return nil, err
		}
		result.TreynorRatio = treynor
	}

	c.log.Debug().
		Str("fund_id", series.FundID).
		Int("observations", len(rets)).
		Float64("annualized_return", result.AnnualizedReturn).
		Float64("annualized_volatility", vol).
		Msg("Calculated risk metrics")

	return result, nil
}

// Treynor computes the Treynor ratio of a series against a benchmark.
// The benchmark is mandatory here: calling without one is an error, not
// an undefined metric. Returns nil when beta cannot be computed (flat
// benchmark).
func (c *Calculator) Treynor(series *returns.Series, benchmark *returns.Series, riskFreeRate, periodsPerYear float64) (*float64, error) {
	if benchmark == nil || benchmark.Len() == 0 {
		return nil, fmt.Errorf("%w: Treynor ratio needs an aligned benchmark series", domain.ErrBenchmarkRequired)
	}
	if err := benchmark.Validate(); err != nil {
		return nil, err
	}
	if !series.Aligned(benchmark) {
		return nil, fmt.Errorf("%w: benchmark series not aligned with fund series (%d vs %d observations)",
			domain.ErrInvalidInput, benchmark.Len(), series.Len())
	}
	if series.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations for beta", domain.ErrInsufficientData)
	}

	if periodsPerYear <= 0 {
		periodsPerYear = series.Frequency.PeriodsPerYear()
	}

	fund := series.Values()
	bench := benchmark.Values()

	benchVar := formulas.Variance(bench)
	if benchVar == 0 {
		return nil, nil
	}

	beta := formulas.Covariance(fund, bench) / benchVar
	if beta == 0 {
		return nil, nil
	}

	annReturn := formulas.AnnualizedReturn(fund, periodsPerYear)
	treynor := (annReturn - riskFreeRate) / beta
	return &treynor, nil
}

// sharpe returns (annualized return - rf) / annualized volatility, or
// nil when volatility is exactly zero.
func sharpe(annualizedReturn, riskFreeRate, annualizedVol float64) *float64 {
	if annualizedVol == 0 {
		return nil
	}
	s := (annualizedReturn - riskFreeRate) / annualizedVol
	return &s
}

// sortino uses the same numerator as Sharpe but divides by annualized
// downside deviation, computed only from returns below the periodic
// minimum acceptable return. Nil when no downside observations exist.
func sortino(rets []float64, annualizedReturn, riskFreeRate, mar, periodsPerYear float64) *float64 {
	periodicMAR := mar / periodsPerYear

	var downsideSquaredSum float64
	downsideCount := 0
	for _, r := range rets {
		if r < periodicMAR {
			dev := r - periodicMAR
			downsideSquaredSum += dev * dev
			downsideCount++
		}
	}

	if downsideCount == 0 {
		return nil
	}

	downsideDev := math.Sqrt(downsideSquaredSum/float64(downsideCount)) * math.Sqrt(periodsPerYear)
	if downsideDev == 0 {
		return nil
	}

	s := (annualizedReturn - riskFreeRate) / downsideDev
	return &s
}

// historicalVaR computes VaR and CVaR at the given confidence level as
// positive loss magnitudes. VaR is the loss at the (1 - confidence)
// quantile of the empirical distribution with linear interpolation
// between order statistics; CVaR is the mean of all returns at or below
// that threshold. Both clamp at zero when the tail holds no losses.
func historicalVaR(rets []float64, confidence float64) (float64, float64) {
	alpha := 1 - confidence
	threshold := formulas.Quantile(alpha, rets)

	varLoss := math.Max(0, -threshold)

	var tailSum float64
	tailCount := 0
	for _, r := range rets {
		if r <= threshold {
			tailSum += r
			tailCount++
		}
	}

	cvarLoss := varLoss
	if tailCount > 0 {
		cvarLoss = math.Max(0, -(tailSum / float64(tailCount)))
	}
	if cvarLoss < varLoss {
		cvarLoss = varLoss
	}

	return varLoss, cvarLoss
}
