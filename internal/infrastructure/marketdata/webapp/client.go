package webapp

import (
	"bytes"
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

const actionGetTickers = "get_tickers"

// Client reads the ticker sheet published by a spreadsheet web app. The
// sheet is the whole universe of tracked tickers, so FetchSnapshot ignores
// the symbols hint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewClient creates a client for the web app deployed at baseURL.
func NewClient(baseURL string) *Client {
	return NewClientWithHTTPClient(baseURL, &http.Client{Timeout: 15 * time.Second})
}

// NewClientWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewClientWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		now:        time.Now,
	}
}

type tickersResponse struct {
	OK    bool        `json:"ok"`
	Data  []tickerRow `json:"data"`
	Error string      `json:"error"`
}

// tickerRow mirrors one sheet row; column headers are used verbatim as keys.
type tickerRow struct {
	Tickers        string      `json:"Tickers"`
	CurrentValue   sheetNumber `json:"Current Value"`
	YesterdayClose sheetNumber `json:"Yesterday Close"`
	Today2         sheetNumber `json:"Today - 2"`
	Today3         sheetNumber `json:"Today - 3"`
	Today4         sheetNumber `json:"Today - 4"`
	Today5         sheetNumber `json:"Today - 5"`
	Today6         sheetNumber `json:"Today - 6"`
	Today7         sheetNumber `json:"Today - 7"`
	Today365       sheetNumber `json:"Today - 365"`
	High52         sheetNumber `json:"High52"`
	Low52          sheetNumber `json:"Low52"`
	CompanyName    string      `json:"Company Name"`
	Sector         string      `json:"Sector"`
	AssetType      string      `json:"Asset Type"`
}

// sheetNumber accepts numbers, numeric strings and the error markers a
// spreadsheet emits for missing cells ("", "#N/A", null), which decode as 0.
type sheetNumber float64

func (n *sheetNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = sheetNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = sheetNumber(v)
	return nil
}

// FetchSnapshot calls {baseURL}?action=get_tickers and converts the rows.
func (c *Client) FetchSnapshot(ctx context.Context, _ []string) (domain.Snapshot, error) {
	reqURL, err := c.tickersURL()
	if err != nil {
		return domain.Snapshot{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to create request: %w", err)
	}

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
		return domain.Snapshot{}, fmt.Errorf("%w: web app returned status %d: %s", marketdata.ErrProvider, resp.StatusCode, string(body))
	}

	var payload tickersResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: failed to decode response: %v", marketdata.ErrProvider, err)
	}
	if !payload.OK {
		msg := payload.Error
		if msg == "" {
			msg = "ok=false"
		}
		return domain.Snapshot{}, fmt.Errorf("%w: web app error: %s", marketdata.ErrProvider, msg)
	}

	tickers := make([]domain.Ticker, 0, len(payload.Data))
	for _, row := range payload.Data {
		if strings.TrimSpace(row.Tickers) == "" {
			continue
		}
		tickers = append(tickers, row.toTicker())
	}

	slog.Debug("fetched ticker sheet", "rows", len(payload.Data), "tickers", len(tickers))
	return domain.NewSnapshot(tickers, c.now()), nil
}

func (c *Client) tickersURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid web app url: %w", err)
	}
	q := u.Query()
	q.Set("action", actionGetTickers)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (r tickerRow) toTicker() domain.Ticker {
	assetType := strings.TrimSpace(r.AssetType)
	return domain.Ticker{
		Symbol:       r.Tickers,
		CurrentValue: float64(r.CurrentValue),
		Closes: [domain.LookbackDays]float64{
			float64(r.YesterdayClose),
			float64(r.Today2),
			float64(r.Today3),
			float64(r.Today4),
			float64(r.Today5),
			float64(r.Today6),
			float64(r.Today7),
		},
		Close365:    float64(r.Today365),
		High52:      float64(r.High52),
		Low52:       float64(r.Low52),
		CompanyName: strings.TrimSpace(r.CompanyName),
		Sector:      strings.TrimSpace(r.Sector),
		AssetType:   assetType,
		IsIndex:     strings.EqualFold(assetType, "Index"),
	}
}

// Compile-time check that Client implements SnapshotProvider.
var _ marketdata.SnapshotProvider = (*Client)(nil)
