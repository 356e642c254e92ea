package jobs

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/clients/navsource"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/formulas"
)

// NAVSource fetches daily NAV history for a fund symbol.
type NAVSource interface {
	GetNAVHistory(symbol string, period string) ([]navsource.NAVRecord, error)
}

// RefreshJob pulls NAV history for tracked funds, recomputes their
// periodic return series and stores both. This is the ETL step that
// assembles the input the analytics engine consumes; the engine itself
// never fetches data.
type RefreshJob struct {
	repo   *returns.Repository
	source NAVSource
	funds  []string
	period string
	log    zerolog.Logger
}

// NewRefreshJob creates a new returns refresh job
func NewRefreshJob(repo *returns.Repository, source NAVSource, funds []string, period string, log zerolog.Logger) *RefreshJob {
	if period == "" {
		period = "5y"
	}
	return &RefreshJob{
		repo:   repo,
		source: source,
		funds:  funds,
		period: period,
		log:    log.With().Str("job", "returns_refresh").Logger(),
	}
}

// Name implements scheduler.Job
func (j *RefreshJob) Name() string {
	return "returns_refresh"
}

// Run implements scheduler.Job. Funds that fail to refresh are logged
// and skipped so one bad symbol does not starve the rest.
func (j *RefreshJob) Run() error {
	refreshed := 0

	for _, fund := range j.funds {
		if err := j.refreshFund(fund); err != nil {
			j.log.Error().Err(err).Str("fund_id", fund).Msg("Failed to refresh fund")
			continue
		}
		refreshed++
	}

	j.log.Info().
		Int("refreshed", refreshed).
		Int("total", len(j.funds)).
		Msg("Returns refresh completed")

	if refreshed == 0 && len(j.funds) > 0 {
		return fmt.Errorf("no funds refreshed out of %d", len(j.funds))
	}

	return nil
}

// refreshFund fetches NAV history for one fund and rebuilds its return series.
func (j *RefreshJob) refreshFund(fundID string) error {
	records, err := j.source.GetNAVHistory(fundID, j.period)
	if err != nil {
		return fmt.Errorf("failed to fetch NAV history: %w", err)
	}

	if len(records) < 2 {
		j.log.Warn().Str("fund_id", fundID).Int("count", len(records)).Msg("Not enough NAV data to compute returns")
		return nil
	}

	navPoints := make([]returns.NAVPoint, len(records))
	navs := make([]float64, len(records))
	for i, rec := range records {
		navPoints[i] = returns.NAVPoint{Timestamp: rec.Date, NAV: rec.NAV}
		navs[i] = rec.NAV
	}

	if err := j.repo.SaveNAVHistory(fundID, navPoints); err != nil {
		return fmt.Errorf("failed to save NAV history: %w", err)
	}

	// Periodic return i is dated at the timestamp of observation i+1
	rets := formulas.CalculateReturns(navs)
	points := make([]returns.Point, len(rets))
	for i, r := range rets {
		points[i] = returns.Point{Timestamp: records[i+1].Date, Return: r}
	}

	series, err := returns.NewSeries(fundID, returns.Daily, points)
	if err != nil {
		return fmt.Errorf("failed to build return series: %w", err)
	}

	if err := j.repo.SaveSeries(series); err != nil {
		return fmt.Errorf("failed to save return series: %w", err)
	}

	return nil
}
