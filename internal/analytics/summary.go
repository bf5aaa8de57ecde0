package analytics

import (
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
)

type Summary struct {
	TotalValue       float64 `json:"total_value"`
	TotalCost        float64 `json:"total_cost"`
	ProfitAmount     float64 `json:"profit_amount"`
	ProfitPercentage float64 `json:"profit_percentage"`
	TotalReturn      float64 `json:"total_return"`
	XIRR             float64 `json:"xirr"`
}

// ComputeSummary values the ledger against snap. asOf dates the synthetic
// liquidation flow used for XIRR; pass the same instant to get the same result.
func ComputeSummary(txns []domain.Transaction, snap domain.Snapshot, asOf time.Time) Summary {
	if len(txns) == 0 {
		return Summary{}
	}

	cf := BuildCashFlows(txns, snapshotPrices(snap), asOf)
	profit := cf.TotalValue - cf.TotalCost

	return Summary{
		TotalValue:       cf.TotalValue,
		TotalCost:        cf.TotalCost,
		ProfitAmount:     profit,
		ProfitPercentage: percentOf(profit, cf.TotalCost),
		TotalReturn:      profit,
		XIRR:             XIRR(cf.Flows),
	}
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}
