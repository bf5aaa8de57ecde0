package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://finnhub.io/api/v1"
	quotePath      = "/quote"
	profilePath    = "/stock/profile2"
)

// Client implements marketdata.SnapshotProvider using the Finnhub API.
// Each symbol costs a quote request plus a best-effort profile request for
// the company name and industry.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	concurrency int
	now         func() time.Time
}

// NewClient creates a new Finnhub API client.
func NewClient(apiKey string) *Client {
	return NewClientWithHTTPClient(apiKey, &http.Client{
		Timeout: 10 * time.Second,
	})
}

// NewClientWithHTTPClient creates a new Finnhub client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(apiKey string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
		httpClient:  httpClient,
		concurrency: marketdata.DefaultConcurrency,
		now:         time.Now,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

// quoteResponse represents the Finnhub quote response.
type quoteResponse struct {
	Current       float64 `json:"c"`  // Current price
	Change        float64 `json:"d"`  // Change
	PercentChange float64 `json:"dp"` // Percent change
	High          float64 `json:"h"`  // High price of the day
	Low           float64 `json:"l"`  // Low price of the day
	Open          float64 `json:"o"`  // Open price of the day
	PreviousClose float64 `json:"pc"` // Previous close price
	Timestamp     int64   `json:"t"`  // Timestamp
}

// profileResponse represents the subset of the company profile we use.
type profileResponse struct {
	Currency        string `json:"currency"`
	Exchange        string `json:"exchange"`
	FinnhubIndustry string `json:"finnhubIndustry"`
	Name            string `json:"name"`
	Ticker          string `json:"ticker"`
}

func (c *Client) FetchSnapshot(ctx context.Context, symbols []string) (domain.Snapshot, error) {
	tickers, err := marketdata.FetchEach(ctx, symbols, c.concurrency, c.getTicker)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.NewSnapshot(tickers, c.now()), nil
}

func (c *Client) getTicker(ctx context.Context, symbol string) (domain.Ticker, error) {
	var quote quoteResponse
	if err := c.get(ctx, quotePath, symbol, &quote); err != nil {
		return domain.Ticker{}, err
	}

	// Finnhub returns 0 for all fields if the symbol is unknown.
	if quote.Current == 0 && quote.PreviousClose == 0 && quote.Timestamp == 0 {
		return domain.Ticker{}, fmt.Errorf("%w: no quote data found for symbol: %s", marketdata.ErrProvider, symbol)
	}

	tk := domain.Ticker{
		Symbol:       symbol,
		CurrentValue: quote.Current,
	}
	tk.Closes[0] = quote.PreviousClose

	var profile profileResponse
	if err := c.get(ctx, profilePath, symbol, &profile); err != nil {
		slog.WarnContext(ctx, "failed to get company profile, continuing with quote only", "symbol", symbol, "error", err)
		return tk, nil
	}
	tk.CompanyName = profile.Name
	tk.Sector = profile.FinnhubIndustry
	return tk, nil
}

func (c *Client) get(ctx context.Context, path, symbol string, out any) error {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", marketdata.ErrProvider, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "path", path)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: API returned status %d: %s", marketdata.ErrProvider, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", marketdata.ErrProvider, err)
	}
	return nil
}

var _ marketdata.SnapshotProvider = (*Client)(nil)
