package navsource

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Client fetches historical NAV data for fund symbols from the Yahoo
// Finance chart API. This is refresh-job plumbing only; the analytics
// engine never performs I/O itself.
type Client struct {
	client  *http.Client
	baseURL string
	log     zerolog.Logger
}

// NewClient creates a new NAV source client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: "https://query1.finance.yahoo.com/v8/finance/chart/",
		log:     log.With().Str("client", "navsource").Logger(),
	}
}

// NAVRecord is a single daily NAV observation.
type NAVRecord struct {
	Date time.Time
	NAV  float64
}

// chartResponse mirrors the Yahoo chart API payload, reduced to the
// fields the refresh job needs.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// GetNAVHistory fetches daily NAV history for a fund symbol.
//
// Supported periods: 1mo, 3mo, 6mo, 1y, 2y, 5y, 10y, ytd, max
func (c *Client) GetNAVHistory(symbol string, period string) ([]NAVRecord, error) {
	params := url.Values{}
	params.Add("interval", "1d")
	params.Add("range", period)

	reqURL := c.baseURL + url.QueryEscape(symbol) + "?" + params.Encode()

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch NAV history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("NAV source returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var result chartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("NAV source error: %v", result.Chart.Error)
	}

	if len(result.Chart.Result) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No NAV data returned")
		return []NAVRecord{}, nil
	}

	chartData := result.Chart.Result[0]
	if len(chartData.Indicators.Quote) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("No quote data in response")
		return []NAVRecord{}, nil
	}

	closes := chartData.Indicators.Quote[0].Close

	// Prefer adjusted close: distributions would otherwise show up as
	// spurious negative returns.
	var adjCloses []float64
	if len(chartData.Indicators.AdjClose) > 0 {
		adjCloses = chartData.Indicators.AdjClose[0].AdjClose
	}

	var records []NAVRecord
	for i, ts := range chartData.Timestamp {
		if i >= len(closes) {
			break
		}

		nav := closes[i]
		if i < len(adjCloses) && adjCloses[i] != 0 {
			nav = adjCloses[i]
		}

		// Yahoo sometimes returns null values as zeros
		if nav == 0 {
			continue
		}

		records = append(records, NAVRecord{
			Date: time.Unix(ts, 0).UTC(),
			NAV:  nav,
		})
	}

	c.log.Info().
		Str("symbol", symbol).
		Str("period", period).
		Int("count", len(records)).
		Msg("Fetched NAV history")

	return records, nil
}
