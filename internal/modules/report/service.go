package report

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/allocation"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/anomaly"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/riskmetrics"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/formulas"
)

// Service composes the risk, anomaly and allocation computations into a
// single report. Pure composition: every sub-computation sees the same
// input, and the first failure aborts the report tagged with the stage
// that produced it. A partially filled report is worse than an explicit
// error.
type Service struct {
	risk      *riskmetrics.Calculator
	anomaly   *anomaly.Detector
	optimizer *allocation.Optimizer
	log       zerolog.Logger
}

// NewService creates a new report service
func NewService(risk *riskmetrics.Calculator, detector *anomaly.Detector, optimizer *allocation.Optimizer, log zerolog.Logger) *Service {
	return &Service{
		risk:      risk,
		anomaly:   detector,
		optimizer: optimizer,
		log:       log.With().Str("service", "report").Logger(),
	}
}

// Generate runs the full analytics pipeline for one request.
func (s *Service) Generate(req Request) (*Report, error) {
	riskResult, err := s.risk.Calculate(req.Series, req.Benchmark, req.Risk)
	if err != nil {
		return nil, fmt.Errorf("risk metrics: %w", err)
	}

	anomalyResult, err := s.anomaly.Detect(req.Series, req.Anomaly)
	if err != nil {
		return nil, fmt.Errorf("anomaly detection: %w", err)
	}

	var allocResult *allocation.Recommendation
	if len(req.Weights) > 0 {
		allocResult, err = s.optimizer.Optimize(req.Weights, req.AssetStats, req.Correlations, req.AllocationParams)
		if err != nil {
			return nil, fmt.Errorf("allocation: %w", err)
		}
	}

	s.log.Info().
		Str("fund_id", req.Series.FundID).
		Int("observations", req.Series.Len()).
		Bool("allocation_included", allocResult != nil).
		Msg("Generated analytics report")

	return &Report{
		FundID:      req.Series.FundID,
		GeneratedAt: time.Now().UTC(),
		Period:      dataPeriod(req.Series),
		Summary:     summarize(req.Series),
		Risk:        riskResult,
		Anomalies:   anomalyResult,
		Allocation:  allocResult,
	}, nil
}

// dataPeriod spans the first to last observation. The series is known
// to be non-empty here: the risk stage rejects empty input first.
func dataPeriod(series *returns.Series) DataPeriod {
	return DataPeriod{
		Start: series.Points[0].Timestamp,
		End:   series.Points[series.Len()-1].Timestamp,
	}
}

// summarize computes the raw periodic return distribution.
func summarize(series *returns.Series) SummaryStatistics {
	rets := series.Values()
	return SummaryStatistics{
		Observations: len(rets),
		MeanReturn:   formulas.Mean(rets),
		StdDev:       formulas.StdDev(rets),
		MinReturn:    floats.Min(rets),
		MaxReturn:    floats.Max(rets),
	}
}
