package analytics

import (
	"github.com/jmanzanog/gainbase/internal/domain"
)

// position accumulates one symbol's ledger entries in date order.
type position struct {
	symbol   string
	quantity float64
	// invested is the average-cost basis of the open quantity.
	invested float64
	last     domain.Transaction
}

func (p *position) apply(t domain.Transaction) {
	qty := t.Quantity.Float64()
	switch t.Type {
	case domain.TransactionTypeBuy:
		p.quantity += qty
		p.invested += t.Amount()
	case domain.TransactionTypeSell:
		if p.quantity > 0 {
			sold := qty
			if sold > p.quantity {
				sold = p.quantity
			}
			p.invested -= p.invested / p.quantity * sold
		}
		p.quantity -= qty
	}
	if p.quantity <= 0 {
		p.invested = 0
	}
	p.last = t
}

// open reports whether the position still holds a positive quantity.
func (p *position) open() bool {
	return p.quantity > 0
}

// price is the live price, or the most recent execution price when the
// snapshot has none.
func (p *position) price(snap domain.Snapshot) (float64, bool) {
	if live, ok := snap.Price(p.symbol); ok {
		return live, true
	}
	return p.last.Price.Float64(), false
}

// netPositions folds the ledger into per-symbol positions, in order of first appearance.
func netPositions(txns []domain.Transaction) []*position {
	index := make(map[string]*position)
	var out []*position
	for _, t := range sortedByDate(txns) {
		key := domain.NormalizeSymbol(t.Symbol)
		p, ok := index[key]
		if !ok {
			p = &position{symbol: key}
			index[key] = p
			out = append(out, p)
		}
		p.apply(t)
	}
	return out
}
