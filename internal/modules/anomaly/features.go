package anomaly

import (
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/formulas"
)

// BuildFeatures turns a return series into one feature vector per
// observation. The raw return is always the first column; rolling
// volatility and rolling z-score columns are appended per the config.
// Rows align 1:1 with the input returns.
func BuildFeatures(rets []float64, cfg FeatureConfig) [][]float64 {
	n := len(rets)
	features := make([][]float64, n)
	for i := range features {
		features[i] = []float64{rets[i]}
	}

	window := cfg.Window
	if window < 2 {
		window = DefaultFeatures().Window
	}

	// Rolling columns need a full window; with fewer points only the
	// raw return column is usable.
	if n < window {
		return features
	}

	var rollStd, rollMean []float64
	if cfg.IncludeVolatility || cfg.IncludeZScore {
		rollStd = formulas.RollingStdDev(rets, window)
	}
	if cfg.IncludeZScore {
		rollMean = formulas.RollingMean(rets, window)
	}

	if cfg.IncludeVolatility {
		for i := range features {
			features[i] = append(features[i], rollStd[i])
		}
	}

	if cfg.IncludeZScore {
		for i := range features {
			z := 0.0
			if rollStd[i] > 0 {
				z = (rets[i] - rollMean[i]) / rollStd[i]
			}
			features[i] = append(features[i], z)
		}
	}

	return features
}
