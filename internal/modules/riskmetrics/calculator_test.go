package riskmetrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/formulas"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/logger"
)

const epsilon = 1e-9

func testCalculator() *Calculator {
	return NewCalculator(logger.New(logger.Config{Level: "error"}))
}

func makeSeries(t *testing.T, fundID string, freq returns.Frequency, rets []float64) *returns.Series {
	t.Helper()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]returns.Point, len(rets))
	for i, r := range rets {
		points[i] = returns.Point{Timestamp: start.AddDate(0, 0, i), Return: r}
	}

	series, err := returns.NewSeries(fundID, freq, points)
	if err != nil {
		t.Fatalf("Failed to build series: %v", err)
	}
	return series
}

func TestCalculateConstantMonthlyReturns(t *testing.T) {
	calc := testCalculator()

	rets := make([]float64, 12)
	for i := range rets {
		rets[i] = 0.01
	}
	series := makeSeries(t, "PENSION-A", returns.Monthly, rets)

	result, err := calc.Calculate(series, nil, Params{
		RiskFreeRate: 0.02,
		Confidence:   0.95,
	})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.Observations != 12 {
		t.Errorf("Expected 12 observations, got %d", result.Observations)
	}

	wantAnnual := math.Pow(1.01, 12) - 1
	if math.Abs(result.AnnualizedReturn-wantAnnual) > epsilon {
		t.Errorf("AnnualizedReturn: expected %v, got %v", wantAnnual, result.AnnualizedReturn)
	}

	// Constant returns: zero volatility, so Sharpe and Sortino are undefined
	if result.AnnualizedVolatility == nil || *result.AnnualizedVolatility != 0 {
		t.Errorf("Expected zero volatility, got %v", result.AnnualizedVolatility)
	}
	if result.SharpeRatio != nil {
		t.Errorf("Expected undefined Sharpe ratio, got %v", *result.SharpeRatio)
	}
	if result.SortinoRatio != nil {
		t.Errorf("Expected undefined Sortino ratio (no downside), got %v", *result.SortinoRatio)
	}

	// All gains: no tail losses
	if result.VaR == nil || *result.VaR != 0 {
		t.Errorf("Expected zero VaR, got %v", result.VaR)
	}
	if result.CVaR == nil || *result.CVaR != 0 {
		t.Errorf("Expected zero CVaR, got %v", result.CVaR)
	}

	if result.Drawdown.MaxDrawdown != 0 || !result.Drawdown.Recovered {
		t.Errorf("Expected clean drawdown profile, got %+v", result.Drawdown)
	}

	// No benchmark supplied: Treynor stays undefined, not an error
	if result.TreynorRatio != nil {
		t.Errorf("Expected undefined Treynor ratio, got %v", *result.TreynorRatio)
	}
}

func TestCalculateSingleObservation(t *testing.T) {
	calc := testCalculator()
	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{0.05})

	result, err := calc.Calculate(series, nil, Params{Confidence: 0.95})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.Observations != 1 {
		t.Errorf("Expected 1 observation, got %d", result.Observations)
	}
	if math.Abs(result.TotalReturn-0.05) > epsilon {
		t.Errorf("Expected total return 0.05, got %v", result.TotalReturn)
	}

	// Variance-based metrics need at least two observations
	if result.AnnualizedVolatility != nil || result.SharpeRatio != nil ||
		result.SortinoRatio != nil || result.VaR != nil || result.CVaR != nil {
		t.Errorf("Expected variance-based metrics undefined, got %+v", result)
	}
}

func TestCalculateInputValidation(t *testing.T) {
	calc := testCalculator()
	valid := makeSeries(t, "PENSION-A", returns.Daily, []float64{0.01, -0.02, 0.03})

	tests := []struct {
		name    string
		series  *returns.Series
		params  Params
		wantErr error
	}{
		{
			name:    "Nil series",
			series:  nil,
			params:  Params{Confidence: 0.95},
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "Empty series",
			series:  &returns.Series{FundID: "X", Frequency: returns.Daily},
			params:  Params{Confidence: 0.95},
			wantErr: domain.ErrInsufficientData,
		},
		{
			name:    "Confidence too high",
			series:  valid,
			params:  Params{Confidence: 1.0},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "Confidence zero",
			series:  valid,
			params:  Params{Confidence: 0},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "Non-finite return",
			series: &returns.Series{FundID: "X", Frequency: returns.Daily, Points: []returns.Point{
				{Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Return: math.NaN()},
			}},
			params:  Params{Confidence: 0.95},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Calculate(tt.series, nil, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestVaRProperties(t *testing.T) {
	calc := testCalculator()
	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{
		0.012, -0.034, 0.008, -0.021, 0.015, 0.003, -0.045, 0.022,
		-0.011, 0.007, -0.028, 0.019, 0.001, -0.052, 0.031, -0.009,
	})

	at := func(confidence float64) *Result {
		result, err := calc.Calculate(series, nil, Params{Confidence: confidence})
		if err != nil {
			t.Fatalf("Calculate at %v failed: %v", confidence, err)
		}
		return result
	}

	r90 := at(0.90)
	r99 := at(0.99)

	// Losses reported as positive magnitudes
	if *r90.VaR < 0 || *r90.CVaR < 0 {
		t.Errorf("Expected non-negative loss magnitudes, got VaR=%v CVaR=%v", *r90.VaR, *r90.CVaR)
	}

	// Expected shortfall is never milder than the threshold loss
	if *r90.CVaR < *r90.VaR {
		t.Errorf("CVaR %v below VaR %v", *r90.CVaR, *r90.VaR)
	}
	if *r99.CVaR < *r99.VaR {
		t.Errorf("CVaR %v below VaR %v", *r99.CVaR, *r99.VaR)
	}

	// Deeper confidence digs deeper into the loss tail
	if *r99.VaR < *r90.VaR-epsilon {
		t.Errorf("VaR not monotone in confidence: 99%%=%v < 90%%=%v", *r99.VaR, *r90.VaR)
	}
}

func TestVaRAllLosses(t *testing.T) {
	calc := testCalculator()
	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{-0.02, -0.02, -0.02, -0.02})

	result, err := calc.Calculate(series, nil, Params{Confidence: 0.95})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if math.Abs(*result.VaR-0.02) > epsilon {
		t.Errorf("Expected VaR 0.02, got %v", *result.VaR)
	}
	if math.Abs(*result.CVaR-0.02) > epsilon {
		t.Errorf("Expected CVaR 0.02, got %v", *result.CVaR)
	}
}

func TestSortinoUsesDownsideOnly(t *testing.T) {
	calc := testCalculator()
	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{0.02, -0.01, 0.03, -0.02, 0.01})

	result, err := calc.Calculate(series, nil, Params{Confidence: 0.95})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.SortinoRatio == nil {
		t.Fatal("Expected a defined Sortino ratio with downside observations")
	}
	if result.SharpeRatio == nil {
		t.Fatal("Expected a defined Sharpe ratio")
	}

	// Downside deviation only counts losing periods, so it is smaller
	// than full volatility and the Sortino ratio exceeds Sharpe for a
	// positive excess return.
	if result.AnnualizedReturn > 0 && *result.SortinoRatio < *result.SharpeRatio {
		t.Errorf("Expected Sortino %v >= Sharpe %v", *result.SortinoRatio, *result.SharpeRatio)
	}
}

func TestTreynorRequiresBenchmark(t *testing.T) {
	calc := testCalculator()
	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{0.01, -0.02, 0.03})

	_, err := calc.Treynor(series, nil, 0.02, 252)
	if !errors.Is(err, domain.ErrBenchmarkRequired) {
		t.Errorf("Expected ErrBenchmarkRequired, got %v", err)
	}
}

func TestTreynorLengthMismatch(t *testing.T) {
	calc := testCalculator()
	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{0.01, -0.02, 0.03})
	benchmark := makeSeries(t, "INDEX", returns.Daily, []float64{0.01, -0.02})

	_, err := calc.Treynor(series, benchmark, 0.02, 252)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestTreynorFlatBenchmark(t *testing.T) {
	calc := testCalculator()
	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{0.01, -0.02, 0.03})
	benchmark := makeSeries(t, "INDEX", returns.Daily, []float64{0.005, 0.005, 0.005})

	// Zero benchmark variance: beta is undefined, not an error
	treynor, err := calc.Treynor(series, benchmark, 0.02, 252)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if treynor != nil {
		t.Errorf("Expected undefined Treynor ratio, got %v", *treynor)
	}
}

func TestTreynorSelfBenchmark(t *testing.T) {
	calc := testCalculator()

	rets := []float64{0.01, -0.02, 0.03, 0.01, -0.01, 0.02}
	series := makeSeries(t, "PENSION-A", returns.Daily, rets)
	benchmark := makeSeries(t, "INDEX", returns.Daily, rets)

	// A fund tracking its benchmark exactly has beta 1, so the Treynor
	// ratio collapses to the annualized excess return.
	treynor, err := calc.Treynor(series, benchmark, 0.02, 252)
	if err != nil {
		t.Fatalf("Treynor failed: %v", err)
	}
	if treynor == nil {
		t.Fatal("Expected a defined Treynor ratio")
	}

	want := formulas.AnnualizedReturn(rets, 252) - 0.02
	if math.Abs(*treynor-want) > epsilon {
		t.Errorf("Expected %v, got %v", want, *treynor)
	}
}

func TestCalculateWithBenchmark(t *testing.T) {
	calc := testCalculator()

	series := makeSeries(t, "PENSION-A", returns.Daily, []float64{0.01, -0.02, 0.03, 0.01})
	benchmark := makeSeries(t, "INDEX", returns.Daily, []float64{0.008, -0.015, 0.025, 0.012})

	result, err := calc.Calculate(series, benchmark, Params{RiskFreeRate: 0.02, Confidence: 0.95})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}

	if result.TreynorRatio == nil {
		t.Error("Expected a defined Treynor ratio with a benchmark")
	}
}
