package formulas

// DrawdownMetrics represents drawdown analysis over a cumulative wealth path
type DrawdownMetrics struct {
	MaxDrawdown float64 `json:"max_drawdown"` // Largest peak-to-trough decline (0.25 = 25% below peak)
	Duration    int     `json:"duration"`     // Longest run of consecutive periods below the prior peak
	Recovered   bool    `json:"recovered"`    // Whether the path regained the pre-drawdown peak before the series ends
}

// CalculateDrawdown analyzes the drawdown profile of a return series.
//
// The series is compounded into a wealth path starting at 1.0; drawdown
// at each point is (peak - current) / peak against the running peak.
// Because the path is built from return ratios, the result is invariant
// to the starting capital reference.
func CalculateDrawdown(returns []float64) DrawdownMetrics {
	if len(returns) == 0 {
		return DrawdownMetrics{Recovered: true}
	}

	path := WealthPath(returns)

	maxDrawdown := 0.0
	peak := path[0]
	troughIdx := 0
	maxDDPeak := path[0]

	// Longest stretch of consecutive periods below the running peak
	longestBelow := 0
	currentBelow := 0

	for i := 1; i < len(path); i++ {
		v := path[i]
		if v >= peak {
			peak = v
			currentBelow = 0
			continue
		}

		currentBelow++
		if currentBelow > longestBelow {
			longestBelow = currentBelow
		}

		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDrawdown {
				maxDrawdown = dd
				maxDDPeak = peak
				troughIdx = i
			}
		}
	}

	// Recovery: after the deepest trough, did the path regain the peak
	// that preceded it? A series that never drew down counts as recovered.
	recovered := true
	if maxDrawdown > 0 {
		recovered = false
		for i := troughIdx + 1; i < len(path); i++ {
			if path[i] >= maxDDPeak {
				recovered = true
				break
			}
		}
	}

	return DrawdownMetrics{
		MaxDrawdown: maxDrawdown,
		Duration:    longestBelow,
		Recovered:   recovered,
	}
}
