package analytics

import (
	"github.com/jmanzanog/gainbase/internal/domain"
	"gonum.org/v1/gonum/stat"
)

type PricePoint struct {
	// DaysAgo is 0 for the current value.
	DaysAgo int     `json:"days_ago"`
	Value   float64 `json:"value"`
}

type PriceHistory struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
	// Positive is true when the last point is not below the first.
	Positive bool `json:"positive"`
	// Volatility is the sample standard deviation of day-to-day returns,
	// in percent; 0 with fewer than two returns.
	Volatility float64 `json:"volatility"`
}

// ComputePriceHistory lays out the ticker's lookback closes oldest first,
// ending with the current value. Missing closes are dropped.
func ComputePriceHistory(tk domain.Ticker) PriceHistory {
	h := PriceHistory{Symbol: tk.Symbol, Points: []PricePoint{}, Positive: true}

	for i := domain.LookbackDays - 1; i >= 0; i-- {
		if v := tk.Closes[i]; v > 0 {
			h.Points = append(h.Points, PricePoint{DaysAgo: i + 1, Value: v})
		}
	}
	if tk.CurrentValue > 0 {
		h.Points = append(h.Points, PricePoint{DaysAgo: 0, Value: tk.CurrentValue})
	}

	if n := len(h.Points); n >= 2 {
		h.Positive = h.Points[n-1].Value >= h.Points[0].Value
	}

	returns := make([]float64, 0, len(h.Points))
	for i := 1; i < len(h.Points); i++ {
		prev := h.Points[i-1].Value
		returns = append(returns, (h.Points[i].Value-prev)/prev*100)
	}
	if len(returns) >= 2 {
		h.Volatility = stat.StdDev(returns, nil)
	}
	return h
}
