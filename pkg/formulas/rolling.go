package formulas

import (
	"github.com/markcheno/go-talib"
)

// RollingMean computes the simple moving average of data over the given
// window. Positions before the window fills are backfilled with the
// first complete value so the output aligns 1:1 with the input.
func RollingMean(data []float64, window int) []float64 {
	if window < 2 || len(data) < window {
		return nil
	}

	out := talib.Sma(data, window)
	backfill(out, window-1)
	return out
}

// RollingStdDev computes the rolling standard deviation of data over the
// given window (population form, matching TA-Lib), aligned 1:1 with the
// input with the leading partial window backfilled.
func RollingStdDev(data []float64, window int) []float64 {
	if window < 2 || len(data) < window {
		return nil
	}

	out := talib.StdDev(data, window, 1.0)
	backfill(out, window-1)
	return out
}

// backfill copies the first computed value into the leading positions
// TA-Lib leaves as zero before the lookback period fills.
func backfill(out []float64, lookback int) {
	if lookback >= len(out) {
		return
	}
	first := out[lookback]
	for i := 0; i < lookback; i++ {
		out[i] = first
	}
}
