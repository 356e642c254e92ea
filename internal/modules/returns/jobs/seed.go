package jobs

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/internal/modules/returns"
	"github.com/shamirmadrismo/Pension-Fund-Perfomance-Analytics-Platform/pkg/formulas"
)

// SeedSyntheticNAV populates the store with generated NAV histories so a
// dev instance has data to analyze before the first real refresh. Each
// fund's random walk is seeded from its name, so reseeding reproduces
// the same paths. Funds that already have a return series are left alone.
func SeedSyntheticNAV(repo *returns.Repository, funds []string, days int, log zerolog.Logger) error {
	if days < 2 {
		days = 252
	}
	log = log.With().Str("job", "synthetic_seed").Logger()

	seeded := 0
	for _, fund := range funds {
		existing, err := repo.GetSeries(fund, returns.Daily)
		if err != nil {
			return fmt.Errorf("failed to check existing series for %s: %w", fund, err)
		}
		if existing != nil {
			continue
		}

		if err := seedFund(repo, fund, days); err != nil {
			return fmt.Errorf("failed to seed %s: %w", fund, err)
		}
		seeded++
	}

	log.Info().
		Int("seeded", seeded).
		Int("total", len(funds)).
		Int("days", days).
		Msg("Synthetic NAV seeding completed")

	return nil
}

// seedFund generates a geometric random walk NAV path and stores it with
// its derived return series.
func seedFund(repo *returns.Repository, fundID string, days int) error {
	rng := rand.New(rand.NewSource(fundSeed(fundID)))

	start := time.Now().UTC().AddDate(0, 0, -days).Truncate(24 * time.Hour)
	nav := 100.0

	navPoints := make([]returns.NAVPoint, days)
	navs := make([]float64, days)
	for i := 0; i < days; i++ {
		if i > 0 {
			// Mild upward drift with daily noise
			nav *= 1 + 0.0002 + 0.01*rng.NormFloat64()
		}
		navPoints[i] = returns.NAVPoint{Timestamp: start.AddDate(0, 0, i), NAV: nav}
		navs[i] = nav
	}

	if err := repo.SaveNAVHistory(fundID, navPoints); err != nil {
		return err
	}

	rets := formulas.CalculateReturns(navs)
	points := make([]returns.Point, len(rets))
	for i, r := range rets {
		points[i] = returns.Point{Timestamp: navPoints[i+1].Timestamp, Return: r}
	}

	series, err := returns.NewSeries(fundID, returns.Daily, points)
	if err != nil {
		return err
	}

	return repo.SaveSeries(series)
}

// fundSeed derives a stable per-fund seed from the fund identifier.
func fundSeed(fundID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(fundID))
	return int64(h.Sum64())
}
