package analytics

import (
	"sort"

	"github.com/jmanzanog/gainbase/internal/domain"
)

const labelOther = "Other"

// Holding is the open position in one symbol, valued against the snapshot.
type Holding struct {
	Symbol                 string  `json:"symbol"`
	CompanyName            string  `json:"company_name"`
	Quantity               float64 `json:"quantity"`
	AvgPrice               float64 `json:"avg_price"`
	CurrentPrice           float64 `json:"current_price"`
	LivePrice              bool    `json:"live_price"`
	InvestedValue          float64 `json:"invested_value"`
	CurrentValue           float64 `json:"current_value"`
	PnL                    float64 `json:"pnl"`
	PnLPercentage          float64 `json:"pnl_percentage"`
	ContributionPercentage float64 `json:"contribution_percentage"`
	AssetType              string  `json:"asset_type"`
	Sector                 string  `json:"sector"`
	Broker                 string  `json:"broker"`
	DayChange              float64 `json:"day_change"`
	DayChangePercentage    float64 `json:"day_change_percentage"`
	High52                 float64 `json:"high_52,omitempty"`
	Low52                  float64 `json:"low_52,omitempty"`
}

// ComputeHoldings lists open positions, largest current value first.
// Invested value uses the average-cost method: a SELL releases basis in
// proportion to the quantity sold.
func ComputeHoldings(txns []domain.Transaction, snap domain.Snapshot) []Holding {
	var out []Holding
	var total float64
	for _, p := range netPositions(txns) {
		if !p.open() {
			continue
		}
		h := newHolding(p, snap)
		total += h.CurrentValue
		out = append(out, h)
	}

	for i := range out {
		if total > 0 {
			out[i].ContributionPercentage = out[i].CurrentValue / total * 100
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CurrentValue != out[j].CurrentValue {
			return out[i].CurrentValue > out[j].CurrentValue
		}
		return out[i].Symbol < out[j].Symbol
	})
	if out == nil {
		return []Holding{}
	}
	return out
}

// HoldingFor returns the holding for symbol. A symbol that is not held but
// is present in the snapshot yields a zero-quantity holding carrying its
// market data; ok is false when neither source knows the symbol.
func HoldingFor(txns []domain.Transaction, snap domain.Snapshot, symbol string) (Holding, bool) {
	key := domain.NormalizeSymbol(symbol)
	for _, h := range ComputeHoldings(txns, snap) {
		if h.Symbol == key {
			return h, true
		}
	}

	tk, ok := snap.Lookup(key)
	if !ok {
		return Holding{}, false
	}
	h := Holding{
		Symbol:       tk.Symbol,
		CompanyName:  orDefault(tk.CompanyName, tk.Symbol),
		CurrentPrice: tk.CurrentValue,
		LivePrice:    tk.CurrentValue > 0,
		AssetType:    orDefault(tk.AssetType, labelOther),
		Sector:       orDefault(tk.Sector, labelOther),
		Broker:       "N/A",
		High52:       tk.High52,
		Low52:        tk.Low52,
	}
	h.DayChange, h.DayChangePercentage = dayChange(tk)
	return h, true
}

func newHolding(p *position, snap domain.Snapshot) Holding {
	price, live := p.price(snap)
	tk, _ := snap.Lookup(p.symbol)

	h := Holding{
		Symbol:        p.symbol,
		CompanyName:   orDefault(tk.CompanyName, p.symbol),
		Quantity:      p.quantity,
		AvgPrice:      p.invested / p.quantity,
		CurrentPrice:  price,
		LivePrice:     live,
		InvestedValue: p.invested,
		CurrentValue:  p.quantity * price,
		AssetType:     orDefault(tk.AssetType, labelOther),
		Sector:        orDefault(tk.Sector, labelOther),
		Broker:        orDefault(p.last.Broker, labelNoBroker),
		High52:        tk.High52,
		Low52:         tk.Low52,
	}
	h.PnL = h.CurrentValue - h.InvestedValue
	h.PnLPercentage = percentOf(h.PnL, h.InvestedValue)
	if live {
		h.DayChange, h.DayChangePercentage = dayChange(tk)
	}
	return h
}

// dayChange is the per-unit move since yesterday's close.
func dayChange(tk domain.Ticker) (float64, float64) {
	prev := tk.PreviousClose()
	if prev <= 0 {
		return 0, 0
	}
	diff := tk.CurrentValue - prev
	return diff, diff / prev * 100
}
