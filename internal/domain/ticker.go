package domain

import (
	"sort"
	"time"
)

// LookbackDays is the number of prior daily closes carried by a Ticker.
const LookbackDays = 7

// Ticker is the latest market data known for one instrument.
type Ticker struct {
	Symbol       string  `json:"symbol"`
	CurrentValue float64 `json:"current_value"`
	// Closes[0] is yesterday's close, Closes[6] the close seven days ago.
	// Zero means the provider had no value for that day.
	Closes      [LookbackDays]float64 `json:"closes"`
	Close365    float64               `json:"close_365,omitempty"`
	High52      float64               `json:"high_52,omitempty"`
	Low52       float64               `json:"low_52,omitempty"`
	CompanyName string                `json:"company_name,omitempty"`
	Sector      string                `json:"sector,omitempty"`
	AssetType   string                `json:"asset_type,omitempty"`
	IsIndex     bool                  `json:"is_index,omitempty"`
}

// PreviousClose is yesterday's close, or 0 when unknown.
func (t Ticker) PreviousClose() float64 {
	return t.Closes[0]
}

// Snapshot is an immutable, point-in-time set of tickers. A refresh builds a
// new Snapshot and replaces the old one; entries are never merged.
type Snapshot struct {
	FetchedAt time.Time
	tickers   map[string]Ticker
}

func NewSnapshot(tickers []Ticker, fetchedAt time.Time) Snapshot {
	m := make(map[string]Ticker, len(tickers))
	for _, t := range tickers {
		key := NormalizeSymbol(t.Symbol)
		if key == "" {
			continue
		}
		t.Symbol = key
		m[key] = t
	}
	return Snapshot{FetchedAt: fetchedAt, tickers: m}
}

func (s Snapshot) Lookup(symbol string) (Ticker, bool) {
	t, ok := s.tickers[NormalizeSymbol(symbol)]
	return t, ok
}

// Price returns the live price for symbol. ok is false when the symbol is
// missing or carries no positive price, which callers treat as "no live data".
func (s Snapshot) Price(symbol string) (float64, bool) {
	t, ok := s.Lookup(symbol)
	if !ok || t.CurrentValue <= 0 {
		return 0, false
	}
	return t.CurrentValue, true
}

func (s Snapshot) Len() int {
	return len(s.tickers)
}

// Tickers returns the entries sorted by symbol.
func (s Snapshot) Tickers() []Ticker {
	out := make([]Ticker, 0, len(s.tickers))
	for _, t := range s.tickers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
