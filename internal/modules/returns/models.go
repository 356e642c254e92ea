package returns

import (
	"fmt"
	"math"
	"time"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/domain"
)

// Frequency identifies the sampling interval of a return series and
// determines the annualization factor.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

// PeriodsPerYear returns the annualization factor for the frequency
// (252 trading days, 52 weeks, 12 months, 4 quarters, 1 year).
func (f Frequency) PeriodsPerYear() float64 {
	switch f {
	case Daily:
		return 252
	case Weekly:
		return 52
	case Monthly:
		return 12
	case Quarterly:
		return 4
	case Annual:
		return 1
	default:
		return 252
	}
}

// Point is a single timestamped periodic return (fraction, not percentage).
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Return    float64   `json:"return"`
}

// Series is an ordered sequence of periodic returns for one fund.
// The engine treats a Series as immutable: computations copy what they
// need and never write back into it.
type Series struct {
	FundID    string    `json:"fund_id"`
	Frequency Frequency `json:"frequency"`
	Points    []Point   `json:"points"`
}

// NewSeries builds and validates a return series.
func NewSeries(fundID string, freq Frequency, points []Point) (*Series, error) {
	s := &Series{FundID: fundID, Frequency: freq, Points: points}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate enforces the series invariants: strictly increasing
// timestamps, no duplicates, finite return values.
func (s *Series) Validate() error {
	for i, p := range s.Points {
		if math.IsNaN(p.Return) || math.IsInf(p.Return, 0) {
			return fmt.Errorf("%w: non-finite return at index %d", domain.ErrInvalidInput, i)
		}
		if i > 0 && !s.Points[i-1].Timestamp.Before(p.Timestamp) {
			return fmt.Errorf("%w: timestamps not strictly increasing at index %d", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// Aligned reports whether two series cover the same observation
// timestamps in the same order. Cross-series statistics (beta, tracking)
// require alignment.
func (s *Series) Aligned(other *Series) bool {
	if other == nil || len(s.Points) != len(other.Points) {
		return false
	}
	for i := range s.Points {
		if !s.Points[i].Timestamp.Equal(other.Points[i].Timestamp) {
			return false
		}
	}
	return true
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Points)
}

// Values returns a copy of the return values in order.
func (s *Series) Values() []float64 {
	vals := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Return
	}
	return vals
}

// Timestamps returns a copy of the observation timestamps in order.
func (s *Series) Timestamps() []time.Time {
	ts := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		ts[i] = p.Timestamp
	}
	return ts
}
