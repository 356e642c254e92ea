package anomaly

import "time"

// FeatureConfig controls which features represent each observation.
// The default (raw return + rolling deviation + rolling z-score) makes
// both magnitude outliers and volatility-regime outliers separable.
type FeatureConfig struct {
	Window            int  // Rolling window length (default 5)
	IncludeVolatility bool // Rolling standard deviation of returns
	IncludeZScore     bool // Return standardized against the trailing window
}

// DefaultFeatures returns the baseline feature configuration.
func DefaultFeatures() FeatureConfig {
	return FeatureConfig{
		Window:            5,
		IncludeVolatility: true,
		IncludeZScore:     true,
	}
}

// Params carries the configuration for one detection run.
type Params struct {
	Contamination float64 // Expected anomaly fraction in (0, 0.5]
	Seed          int64   // Seed for the tree ensemble; same seed = same output
	MinSamples    int     // Minimum series length (default 20)
	Trees         int     // Ensemble size (default 100)
	SubsampleSize int     // Per-tree subsample cap (default 256)
	Features      FeatureConfig
}

// PointResult is the verdict for a single observation. Higher scores
// mean shorter average isolation paths, i.e. more anomalous.
type PointResult struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
	IsAnomaly bool      `json:"is_anomaly"`
}

// Result is the outcome of one detection run.
type Result struct {
	FundID        string        `json:"fund_id"`
	Contamination float64       `json:"contamination"`
	NumAnomalies  int           `json:"num_anomalies"`
	Points        []PointResult `json:"points"`
}
