package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata"
)

const (
	defaultBaseURL = "https://api.twelvedata.com"
	quotePath      = "/quote"
)

// Client builds snapshots from the Twelve Data quote endpoint, one request
// per symbol. Quotes carry the previous close and the 52-week range but no
// deeper lookback or sector.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	concurrency int
	now         func() time.Time
}

func NewClient(apiKey string) *Client {
	return NewClientWithHTTPClient(apiKey, &http.Client{
		Timeout: 10 * time.Second,
	})
}

// NewClientWithHTTPClient creates a client with a custom HTTP client (for testing).
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

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Exchange      string `json:"exchange"`
	Currency      string `json:"currency"`
	Datetime      string `json:"datetime"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	FiftyTwoWeek  struct {
		Low  string `json:"low"`
		High string `json:"high"`
	} `json:"fifty_two_week"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (c *Client) FetchSnapshot(ctx context.Context, symbols []string) (domain.Snapshot, error) {
	tickers, err := marketdata.FetchEach(ctx, symbols, c.concurrency, c.getQuote)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.NewSnapshot(tickers, c.now()), nil
}

func (c *Client) getQuote(ctx context.Context, symbol string) (domain.Ticker, error) {
	params := url.Values{}
	params.Add("symbol", symbol)
	params.Add("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, quotePath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Ticker{}, fmt.Errorf("%w: failed to execute request: %v", marketdata.ErrProvider, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr, "symbol", symbol)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.Ticker{}, fmt.Errorf("%w: API returned status %d: %s", marketdata.ErrProvider, resp.StatusCode, string(body))
	}

	var quoteResp quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return domain.Ticker{}, fmt.Errorf("%w: failed to decode response: %v", marketdata.ErrProvider, err)
	}

	if quoteResp.Status == "error" {
		return domain.Ticker{}, fmt.Errorf("%w: quote request failed for symbol %s: %s", marketdata.ErrProvider, symbol, quoteResp.Message)
	}

	price := parsePrice(quoteResp.Close)
	if price <= 0 {
		return domain.Ticker{}, fmt.Errorf("%w: quote request returned no price data for symbol: %s", marketdata.ErrProvider, symbol)
	}

	tk := domain.Ticker{
		Symbol:       symbol,
		CurrentValue: price,
		High52:       parsePrice(quoteResp.FiftyTwoWeek.High),
		Low52:        parsePrice(quoteResp.FiftyTwoWeek.Low),
		CompanyName:  quoteResp.Name,
	}
	tk.Closes[0] = parsePrice(quoteResp.PreviousClose)
	return tk, nil
}

// parsePrice returns 0 for missing or malformed values.
func parsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

var _ marketdata.SnapshotProvider = (*Client)(nil)
