package analytics

import (
	"sort"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
)

type YearlyRecord struct {
	Year                     int               `json:"year"`
	TotalInvested            float64           `json:"total_invested"`
	ActiveMonths             int               `json:"active_months"`
	AverageMonthlyInvestment float64           `json:"average_monthly_investment"`
	PercentageIncrease       float64           `json:"percentage_increase"`
	AssetDistribution        []AllocationSlice `json:"asset_distribution"`
}

// ComputeYearlyAnalysis is ComputeYearlyAnalysisBy with no live prices and
// the instrument dimension.
func ComputeYearlyAnalysis(txns []domain.Transaction) []YearlyRecord {
	return ComputeYearlyAnalysisBy(txns, domain.Snapshot{}, DimensionInstrument)
}

// ComputeYearlyAnalysisBy groups BUY transactions by calendar year, most
// recent year first.
//
// The monthly average divides a year's BUY cost by the number of distinct
// months holding at least one BUY. PercentageIncrease compares against the
// nearest earlier year present in the ledger. Each year's asset
// distribution covers every transaction dated on or before 31 December of
// that year.
func ComputeYearlyAnalysisBy(txns []domain.Transaction, snap domain.Snapshot, dim Dimension) []YearlyRecord {
	type bucket struct {
		invested float64
		months   map[time.Month]struct{}
	}
	years := make(map[int]*bucket)
	for _, t := range txns {
		if t.Type != domain.TransactionTypeBuy {
			continue
		}
		y := t.Date.Year()
		b, ok := years[y]
		if !ok {
			b = &bucket{months: make(map[time.Month]struct{})}
			years[y] = b
		}
		b.invested += t.Amount()
		b.months[t.Date.Month()] = struct{}{}
	}

	keys := make([]int, 0, len(years))
	for y := range years {
		keys = append(keys, y)
	}
	sort.Ints(keys)

	out := make([]YearlyRecord, 0, len(keys))
	var prevAvg float64
	for i, y := range keys {
		b := years[y]
		rec := YearlyRecord{
			Year:                     y,
			TotalInvested:            b.invested,
			ActiveMonths:             len(b.months),
			AverageMonthlyInvestment: b.invested / float64(len(b.months)),
			AssetDistribution:        ComputeAllocation(transactionsThrough(txns, y), snap, dim),
		}
		if i > 0 && prevAvg != 0 {
			rec.PercentageIncrease = (rec.AverageMonthlyInvestment - prevAvg) / prevAvg * 100
		}
		prevAvg = rec.AverageMonthlyInvestment
		out = append(out, rec)
	}

	return reversed(out)
}

// Chronological returns a copy of records ordered oldest year first, the
// order chart and projection consumers expect.
func Chronological(records []YearlyRecord) []YearlyRecord {
	out := make([]YearlyRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func transactionsThrough(txns []domain.Transaction, year int) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range txns {
		if t.Date.Year() <= year {
			out = append(out, t)
		}
	}
	return out
}

func reversed(records []YearlyRecord) []YearlyRecord {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records
}
