package yfinance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "http://localhost:8000"
	snapshotPath   = "/api/v1/snapshot"
)

// Client implements SnapshotProvider using the yfinance-based Market Data Service.
// This is a lightweight Python microservice that provides stock market data via REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a new yfinance Market Data Service client with default settings.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a new client with a custom base URL (useful for K8s deployments).
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		now: time.Now,
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimRight(baseURL, "/")
}

type snapshotRequest struct {
	Symbols []string `json:"symbols"`
}

type snapshotResponse struct {
	Results []tickerResponse `json:"results"`
	Errors  []symbolError    `json:"errors"`
}

// tickerResponse is one symbol in the snapshot. Prices are decimal strings;
// closes run from yesterday backwards.
type tickerResponse struct {
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	Sector       string   `json:"sector"`
	Type         string   `json:"type"`
	Price        string   `json:"price"`
	Closes       []string `json:"closes"`
	YearAgoClose string   `json:"year_ago_close"`
	FiftyTwoHigh string   `json:"fifty_two_week_high"`
	FiftyTwoLow  string   `json:"fifty_two_week_low"`
}

type symbolError struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// errorResponse represents an error response from the API.
type errorResponse struct {
	Detail string `json:"detail"`
}

// FetchSnapshot requests every symbol in one batch call. Symbols the service
// reports as failed are logged and left out of the snapshot; the call only
// fails when the request itself does or when nothing could be priced.
func (c *Client) FetchSnapshot(ctx context.Context, symbols []string) (domain.Snapshot, error) {
	if len(symbols) == 0 {
		return domain.NewSnapshot(nil, c.now()), nil
	}

	jsonBody, err := json.Marshal(snapshotRequest{Symbols: symbols})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqURL := c.baseURL + snapshotPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonBody))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: failed to execute request: %v", marketdata.ErrProvider, err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "url", reqURL)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Detail != "" {
			return domain.Snapshot{}, fmt.Errorf("%w: API error: %s", marketdata.ErrProvider, errResp.Detail)
		}
		return domain.Snapshot{}, fmt.Errorf("%w: API returned status %d: %s", marketdata.ErrProvider, resp.StatusCode, string(body))
	}

	var snapResp snapshotResponse
	if err := json.NewDecoder(resp.Body).Decode(&snapResp); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: failed to decode response: %v", marketdata.ErrProvider, err)
	}

	for _, e := range snapResp.Errors {
		slog.Warn("symbol missing from snapshot", "symbol", e.Symbol, "error", e.Error)
	}

	tickers := make([]domain.Ticker, 0, len(snapResp.Results))
	for _, tr := range snapResp.Results {
		tk, err := tr.toTicker()
		if err != nil {
			slog.Warn("skipping unparsable ticker", "symbol", tr.Symbol, "error", err)
			continue
		}
		tickers = append(tickers, tk)
	}

	if len(tickers) == 0 && len(snapResp.Errors) > 0 {
		return domain.Snapshot{}, fmt.Errorf("%w: no symbol could be priced (%d errors)", marketdata.ErrProvider, len(snapResp.Errors))
	}

	return domain.NewSnapshot(tickers, c.now()), nil
}

func (tr tickerResponse) toTicker() (domain.Ticker, error) {
	price, err := parsePrice(tr.Price)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("failed to parse price: %w", err)
	}

	tk := domain.Ticker{
		Symbol:       tr.Symbol,
		CurrentValue: price,
		CompanyName:  tr.Name,
		Sector:       tr.Sector,
		AssetType:    mapAssetType(tr.Type),
	}
	tk.IsIndex = tk.AssetType == "Index"

	for i, raw := range tr.Closes {
		if i >= domain.LookbackDays {
			break
		}
		// A bad lookback close is a gap, not a failure.
		tk.Closes[i], _ = parsePrice(raw)
	}
	tk.Close365, _ = parsePrice(tr.YearAgoClose)
	tk.High52, _ = parsePrice(tr.FiftyTwoHigh)
	tk.Low52, _ = parsePrice(tr.FiftyTwoLow)
	return tk, nil
}

// parsePrice reads a decimal string; empty means unknown and yields 0.
func parsePrice(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := domain.NewDecimalFromString(s)
	if err != nil {
		return 0, err
	}
	return d.Float64(), nil
}

// mapAssetType maps the API type string to the labels used across the portfolio.
func mapAssetType(apiType string) string {
	switch strings.ToLower(apiType) {
	case "etf":
		return "ETF"
	case "index":
		return "Index"
	case "mutualfund", "mutual_fund", "fund":
		return "Mutual Fund"
	case "":
		return ""
	default:
		return "Stock"
	}
}

// Compile-time check that Client implements SnapshotProvider.
var _ marketdata.SnapshotProvider = (*Client)(nil)
