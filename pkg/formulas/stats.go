package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Covariance calculates the sample covariance between two equal-length datasets
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation calculates the Pearson correlation coefficient between two datasets
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// CalculateReturns converts a NAV/price series to periodic returns
// Returns[i] = (Value[i] - Value[i-1]) / Value[i-1]
func CalculateReturns(values []float64) []float64 {
	if len(values) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			returns[i-1] = (values[i] - values[i-1]) / values[i-1]
		}
	}

	return returns
}

// TotalReturn compounds periodic returns into the cumulative return over
// the whole series: prod(1 + r_i) - 1
func TotalReturn(returns []float64) float64 {
	wealth := 1.0
	for _, r := range returns {
		wealth *= 1 + r
	}
	return wealth - 1
}

// AnnualizedReturn converts the compounded return of a periodic series to
// annual terms using the geometric method.
//
// Formula: (1 + total)^(periodsPerYear / n) - 1
func AnnualizedReturn(returns []float64, periodsPerYear float64) float64 {
	n := len(returns)
	if n == 0 {
		return 0
	}

	total := TotalReturn(returns)
	base := 1 + total
	if base <= 0 {
		// Total loss of capital; the geometric form is undefined below -100%
		return -1
	}

	return math.Pow(base, periodsPerYear/float64(n)) - 1
}

// AnnualizedVolatility scales the periodic standard deviation of returns
// to annual terms: stddev * sqrt(periodsPerYear)
func AnnualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	return StdDev(returns) * math.Sqrt(periodsPerYear)
}

// Quantile returns the p-quantile of data using linear interpolation
// between order statistics. The input is copied and sorted.
func Quantile(p float64, data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	return stat.Quantile(p, stat.LinInterp, sorted, nil)
}

// WealthPath builds the cumulative wealth curve of a return series,
// starting from 1.0. The result has len(returns)+1 points so drawdown
// analysis sees the starting level.
func WealthPath(returns []float64) []float64 {
	path := make([]float64, len(returns)+1)
	path[0] = 1.0
	for i, r := range returns {
		path[i+1] = path[i] * (1 + r)
	}
	return path
}
