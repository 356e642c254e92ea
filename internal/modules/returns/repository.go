package returns

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository stores NAV history and computed return series in SQLite.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new returns repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "returns").Logger(),
	}
}

// NAVPoint is a single NAV observation as produced by the data refresh.
type NAVPoint struct {
	Timestamp time.Time
	NAV       float64
}

// SaveNAVHistory upserts NAV observations for a fund.
func (r *Repository) SaveNAVHistory(fundID string, points []NAVPoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nav_history (fund_id, ts, nav) VALUES (?, ?, ?)
		ON CONFLICT(fund_id, ts) DO UPDATE SET nav = excluded.nav
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(fundID, p.Timestamp.Unix(), p.NAV); err != nil {
			return fmt.Errorf("failed to insert NAV point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

// GetNAVHistory loads the NAV history for a fund ordered by timestamp.
func (r *Repository) GetNAVHistory(fundID string) ([]NAVPoint, error) {
	rows, err := r.db.Query(`
		SELECT ts, nav FROM nav_history
		WHERE fund_id = ?
		ORDER BY ts ASC
	`, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query NAV history: %w", err)
	}
	defer rows.Close()

	var points []NAVPoint
	for rows.Next() {
		var ts int64
		var nav float64
		if err := rows.Scan(&ts, &nav); err != nil {
			return nil, fmt.Errorf("failed to scan NAV point: %w", err)
		}
		points = append(points, NAVPoint{Timestamp: time.Unix(ts, 0).UTC(), NAV: nav})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating NAV history: %w", err)
	}

	return points, nil
}

// SaveSeries replaces the stored return series for a fund.
func (r *Repository) SaveSeries(s *Series) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM fund_returns WHERE fund_id = ?`, s.FundID); err != nil {
		return fmt.Errorf("failed to clear return series: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO fund_returns (fund_id, ts, ret) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range s.Points {
		if _, err := stmt.Exec(s.FundID, p.Timestamp.Unix(), p.Return); err != nil {
			return fmt.Errorf("failed to insert return point: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	r.log.Debug().
		Str("fund_id", s.FundID).
		Int("points", len(s.Points)).
		Msg("Saved return series")

	return nil
}

// GetSeries loads the stored return series for a fund. Returns nil when
// no observations exist.
func (r *Repository) GetSeries(fundID string, freq Frequency) (*Series, error) {
	rows, err := r.db.Query(`
		SELECT ts, ret FROM fund_returns
		WHERE fund_id = ?
		ORDER BY ts ASC
	`, fundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query return series: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var ts int64
		var ret float64
		if err := rows.Scan(&ts, &ret); err != nil {
			return nil, fmt.Errorf("failed to scan return point: %w", err)
		}
		points = append(points, Point{Timestamp: time.Unix(ts, 0).UTC(), Return: ret})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return series: %w", err)
	}

	if len(points) == 0 {
		return nil, nil
	}

	return NewSeries(fundID, freq, points)
}

// ListFunds returns the fund identifiers that have NAV history.
func (r *Repository) ListFunds() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT fund_id FROM nav_history ORDER BY fund_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query funds: %w", err)
	}
	defer rows.Close()

	var funds []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan fund id: %w", err)
		}
		funds = append(funds, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating funds: %w", err)
	}

	return funds, nil
}
