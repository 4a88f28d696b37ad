// Package fred loads the U.S. Treasury constant-maturity yield curve from
// FRED (H.15 daily series, CSV endpoint, no API key required).
package fred

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/meenmo/yieldcurve/curve"
)

// DefaultBaseURL is the keyless FRED CSV endpoint.
const DefaultBaseURL = "https://fred.stlouisfed.org/graph/fredgraph.csv"

// treasurySeries maps tenor labels to FRED H.15 series IDs, short end first.
var treasurySeries = []struct {
	Label  string
	Series string
}{
	{"1M", "DGS1MO"},
	{"3M", "DGS3MO"},
	{"6M", "DGS6MO"},
	{"1Y", "DGS1"},
	{"2Y", "DGS2"},
	{"3Y", "DGS3"},
	{"5Y", "DGS5"},
	{"7Y", "DGS7"},
	{"10Y", "DGS10"},
	{"20Y", "DGS20"},
	{"30Y", "DGS30"},
}

// Quote is one resolved curve point, keeping the human-readable label
// alongside the parsed observation.
type Quote struct {
	Label    string  `json:"tenor"`
	Maturity float64 `json:"maturity"`
	// Yield is in percent, as published by FRED.
	Yield float64 `json:"yield"`
}

// Client fetches and caches FRED series. Series are daily, so responses
// are cached in-process for an hour; the cache is internally locked and
// the client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *gocache.Cache
}

// NewClient returns a Client against the public FRED endpoint.
func NewClient() *Client {
	return NewClientWithHTTP(&http.Client{Timeout: 15 * time.Second}, DefaultBaseURL)
}

// NewClientWithHTTP allows injecting the HTTP client and base URL, e.g.
// an httptest server.
func NewClientWithHTTP(hc *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: hc,
		baseURL:    baseURL,
		cache:      gocache.New(time.Hour, 2*time.Hour),
	}
}

// Quotes fetches the latest value of every treasury series. Series with no
// published value (FRED reports "." on holidays and for discontinued
// ranges) are skipped; an error is returned only when fewer than two
// series resolve, since no curve can be fitted from fewer points.
func (c *Client) Quotes(ctx context.Context) ([]Quote, error) {
	quotes := make([]Quote, 0, len(treasurySeries))
	for _, s := range treasurySeries {
		yld, err := c.latestValue(ctx, s.Series)
		if err != nil {
			continue
		}
		years, err := curve.TenorToYears(s.Label)
		if err != nil {
			return nil, fmt.Errorf("fred.Quotes: %w", err)
		}
		quotes = append(quotes, Quote{Label: s.Label, Maturity: years, Yield: yld})
	}
	if len(quotes) < 2 {
		return nil, fmt.Errorf("fred.Quotes: only %d of %d series resolved", len(quotes), len(treasurySeries))
	}
	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Maturity < quotes[j].Maturity })
	return quotes, nil
}

// YieldCurve fetches the latest curve as observations ready for fitting,
// with yields converted from percent to decimals.
func (c *Client) YieldCurve(ctx context.Context) ([]curve.Observation, error) {
	quotes, err := c.Quotes(ctx)
	if err != nil {
		return nil, err
	}
	obs := make([]curve.Observation, len(quotes))
	for i, q := range quotes {
		obs[i] = curve.Observation{Maturity: q.Maturity, Yield: q.Yield / 100.0}
	}
	return obs, nil
}

// latestValue returns the most recent published value of a series, in
// percent.
func (c *Client) latestValue(ctx context.Context, seriesID string) (float64, error) {
	if v, ok := c.cache.Get(seriesID); ok {
		return v.(float64), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?id="+seriesID, nil)
	if err != nil {
		return 0, fmt.Errorf("fred: build request for %s: %w", seriesID, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fred: fetch %s: %w", seriesID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fred: fetch %s: status %d", seriesID, resp.StatusCode)
	}

	rows, err := csv.NewReader(resp.Body).ReadAll()
	if err != nil {
		return 0, fmt.Errorf("fred: parse %s: %w", seriesID, err)
	}

	// Rows are (date, value), oldest first, with "." for unpublished days;
	// walk backwards to the last real value.
	for i := len(rows) - 1; i >= 1; i-- {
		if len(rows[i]) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(rows[i][1], 64)
		if err != nil {
			continue
		}
		c.cache.Set(seriesID, v, gocache.DefaultExpiration)
		return v, nil
	}
	return 0, fmt.Errorf("fred: series %s has no published values", seriesID)
}
