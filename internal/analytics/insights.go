package analytics

import (
	"fmt"
	"sort"

	"github.com/jmanzanog/gainbase/internal/domain"
)

type InsightCategory string

const (
	InsightBuy     InsightCategory = "Buy"
	InsightSell    InsightCategory = "Sell/Hold"
	InsightObserve InsightCategory = "Observe"
)

type InsightKind string

const (
	InsightConcentration       InsightKind = "concentration"
	InsightProfitTaking        InsightKind = "profit"
	InsightTaxLoss             InsightKind = "tax-loss"
	InsightDCA                 InsightKind = "dca"
	InsightNearHigh            InsightKind = "high52"
	InsightNearLow             InsightKind = "low52"
	InsightWinningStreak       InsightKind = "winning-streak"
	InsightLosingStreak        InsightKind = "losing-streak"
	InsightSectorConcentration InsightKind = "sector-concentration"
)

// Thresholds, in percent unless noted.
const (
	concentrationThreshold       = 25.0
	profitTakingThreshold        = 30.0
	taxLossThreshold             = -15.0
	dcaThreshold                 = -10.0
	sectorConcentrationThreshold = 30.0
	nearHighRatio                = 0.98
	nearLowRatio                 = 1.02
)

type Insight struct {
	ID            string          `json:"id"`
	Kind          InsightKind     `json:"kind"`
	Category      InsightCategory `json:"category"`
	Title         string          `json:"title"`
	Symbol        string          `json:"symbol,omitempty"`
	Value         string          `json:"value"`
	InvestedValue float64         `json:"invested_value,omitempty"`
	PnLPercentage float64         `json:"pnl_percentage,omitempty"`
}

// ComputeInsights applies rule-based signals to the holdings. Rules are
// evaluated in a fixed order so the output is stable for the same input.
func ComputeInsights(holdings []Holding, snap domain.Snapshot) []Insight {
	out := []Insight{}
	if len(holdings) == 0 {
		return out
	}

	rule := func(kind InsightKind, cat InsightCategory, value string, match func(Holding) bool) {
		for _, h := range holdings {
			if match(h) {
				out = append(out, holdingInsight(kind, cat, value, h))
			}
		}
	}

	rule(InsightConcentration, InsightSell, "Sell/Hold", func(h Holding) bool {
		return h.ContributionPercentage > concentrationThreshold
	})
	rule(InsightProfitTaking, InsightSell, "Sell/Hold", func(h Holding) bool {
		return h.PnLPercentage > profitTakingThreshold
	})
	rule(InsightTaxLoss, InsightSell, "Sell/Hold", func(h Holding) bool {
		return h.PnLPercentage < taxLossThreshold
	})
	rule(InsightDCA, InsightBuy, "Buy More", func(h Holding) bool {
		return h.PnLPercentage < dcaThreshold
	})
	rule(InsightNearHigh, InsightObserve, "Near High", func(h Holding) bool {
		return h.High52 > 0 && h.CurrentPrice >= h.High52*nearHighRatio
	})

	for _, h := range holdings {
		tk, ok := snap.Lookup(h.Symbol)
		if !ok {
			continue
		}
		switch streak(h.CurrentPrice, tk) {
		case 1:
			out = append(out, holdingInsight(InsightWinningStreak, InsightObserve, "Winning", h))
		case -1:
			out = append(out, holdingInsight(InsightLosingStreak, InsightObserve, "Losing", h))
		}
	}

	rule(InsightNearLow, InsightBuy, "Buy More", func(h Holding) bool {
		return h.Low52 > 0 && h.CurrentPrice <= h.Low52*nearLowRatio
	})

	sectors := make(map[string]float64)
	for _, h := range holdings {
		sectors[orDefault(h.Sector, labelOther)] += h.ContributionPercentage
	}
	names := make([]string, 0, len(sectors))
	for name := range sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pct := sectors[name]
		if pct <= sectorConcentrationThreshold {
			continue
		}
		out = append(out, Insight{
			ID:       fmt.Sprintf("%s-%s", InsightSectorConcentration, name),
			Kind:     InsightSectorConcentration,
			Category: InsightObserve,
			Title:    name + " Sector",
			Value:    fmt.Sprintf("%.1f%%", pct),
		})
	}

	return out
}

func holdingInsight(kind InsightKind, cat InsightCategory, value string, h Holding) Insight {
	return Insight{
		ID:            fmt.Sprintf("%s-%s", kind, h.Symbol),
		Kind:          kind,
		Category:      cat,
		Title:         orDefault(h.CompanyName, h.Symbol),
		Symbol:        h.Symbol,
		Value:         value,
		InvestedValue: h.InvestedValue,
		PnLPercentage: h.PnLPercentage,
	}
}

// streak returns 1 for three consecutive rising closes ending at current,
// -1 for three falling ones and 0 otherwise or when any close is missing.
func streak(current float64, tk domain.Ticker) int {
	prices := []float64{current, tk.Closes[0], tk.Closes[1], tk.Closes[2]}
	for _, p := range prices {
		if p <= 0 {
			return 0
		}
	}
	switch {
	case prices[0] > prices[1] && prices[1] > prices[2] && prices[2] > prices[3]:
		return 1
	case prices[0] < prices[1] && prices[1] < prices[2] && prices[2] < prices[3]:
		return -1
	}
	return 0
}
