package report

import (
	"time"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/allocation"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/anomaly"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/riskmetrics"
)

// Request is the shared input for one analytics report. All parameters
// are explicit; nothing is read from ambient configuration.
type Request struct {
	Series    *returns.Series
	Benchmark *returns.Series // Optional; enables the Treynor ratio

	Risk    riskmetrics.Params
	Anomaly anomaly.Params

	// Allocation inputs; the allocation section is included only when
	// weights are supplied.
	Weights          map[string]float64
	AssetStats       map[string]allocation.AssetStats
	Correlations     allocation.CorrelationMatrix
	AllocationParams allocation.Params
}

// DataPeriod is the observation range a report covers.
type DataPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SummaryStatistics describes the raw return distribution the report
// was computed from, independent of any annualization.
type SummaryStatistics struct {
	Observations int     `json:"observations"`
	MeanReturn   float64 `json:"mean_return"`
	StdDev       float64 `json:"std_dev"`
	MinReturn    float64 `json:"min_return"`
	MaxReturn    float64 `json:"max_return"`
}

// Report aggregates the engine outputs for one fund. Immutable once
// returned; a failed sub-computation aborts the whole report rather
// than leaving a section silently empty.
type Report struct {
	FundID      string                     `json:"fund_id"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Period      DataPeriod                 `json:"data_period"`
	Summary     SummaryStatistics          `json:"summary_statistics"`
	Risk        *riskmetrics.Result        `json:"risk"`
	Anomalies   *anomaly.Result            `json:"anomalies"`
	Allocation  *allocation.Recommendation `json:"allocation,omitempty"`
}
