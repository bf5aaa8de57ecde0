// Package analytics derives portfolio metrics from a transaction ledger and a
// price snapshot. Every function is pure: inputs are never mutated, nothing is
// cached, and identical inputs produce identical outputs.
package analytics

import (
	"sort"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
)

// CashFlow is money moving out of (negative) or back into (positive) the
// investor's pocket on a given date.
type CashFlow struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// PriceLookup resolves a live price for a symbol; ok is false when none is known.
type PriceLookup func(symbol string) (price float64, ok bool)

type CashFlowResult struct {
	Flows      []CashFlow
	TotalCost  float64
	TotalValue float64
}

// BuildCashFlows replays the ledger in date order and appends a synthetic
// liquidation flow of the running valuation dated asOf.
//
// BUY lots are valued at the live price (falling back to the execution price).
// SELL lots reduce both cost and value at the execution price.
func BuildCashFlows(txns []domain.Transaction, prices PriceLookup, asOf time.Time) CashFlowResult {
	if len(txns) == 0 {
		return CashFlowResult{}
	}

	sorted := sortedByDate(txns)
	res := CashFlowResult{Flows: make([]CashFlow, 0, len(sorted)+1)}

	for _, t := range sorted {
		qty := t.Quantity.Float64()
		execPrice := t.Price.Float64()
		amount := qty * execPrice

		switch t.Type {
		case domain.TransactionTypeBuy:
			valuation := execPrice
			if live, ok := prices(t.Symbol); ok {
				valuation = live
			}
			res.TotalCost += amount
			res.TotalValue += qty * valuation
			res.Flows = append(res.Flows, CashFlow{Amount: -amount, Date: t.Date})
		case domain.TransactionTypeSell:
			res.TotalCost -= amount
			res.TotalValue -= amount
			res.Flows = append(res.Flows, CashFlow{Amount: amount, Date: t.Date})
		}
	}

	res.Flows = append(res.Flows, CashFlow{Amount: res.TotalValue, Date: asOf})
	return res
}

// sortedByDate returns a copy ordered by date; same-day entries keep their input order.
func sortedByDate(txns []domain.Transaction) []domain.Transaction {
	sorted := make([]domain.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

func snapshotPrices(snap domain.Snapshot) PriceLookup {
	return snap.Price
}
