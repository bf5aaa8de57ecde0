package analytics

import (
	"testing"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(insights []Insight) []string {
	out := make([]string, 0, len(insights))
	for _, in := range insights {
		out = append(out, in.ID)
	}
	return out
}

func TestComputeInsights(t *testing.T) {
	holdings := []Holding{
		{Symbol: "BIG", CompanyName: "Big Co", ContributionPercentage: 40, PnLPercentage: 35, CurrentPrice: 99, High52: 100, Sector: "IT"},
		{Symbol: "DOWN", ContributionPercentage: 20, PnLPercentage: -20, CurrentPrice: 50, Low52: 49.5, Sector: "Energy"},
		{Symbol: "DIP", ContributionPercentage: 20, PnLPercentage: -12, CurrentPrice: 80, Sector: "Energy"},
		{Symbol: "FLAT", ContributionPercentage: 20, PnLPercentage: 2, CurrentPrice: 10, Sector: ""},
	}
	up := domain.Ticker{Symbol: "BIG", CurrentValue: 99}
	up.Closes = [domain.LookbackDays]float64{98, 97, 96}
	down := domain.Ticker{Symbol: "DIP", CurrentValue: 80}
	down.Closes = [domain.LookbackDays]float64{81, 82, 83}
	gap := domain.Ticker{Symbol: "FLAT", CurrentValue: 10}
	gap.Closes = [domain.LookbackDays]float64{9, 0, 7}
	snap := snapshot(up, down, gap)

	insights := ComputeInsights(holdings, snap)

	assert.Equal(t, []string{
		"concentration-BIG",
		"profit-BIG",
		"tax-loss-DOWN",
		"dca-DOWN",
		"dca-DIP",
		"high52-BIG",
		"winning-streak-BIG",
		"losing-streak-DIP",
		"low52-DOWN",
		"sector-concentration-Energy",
		"sector-concentration-IT",
	}, kinds(insights))

	first := insights[0]
	assert.Equal(t, InsightSell, first.Category)
	assert.Equal(t, "Big Co", first.Title)

	last := insights[len(insights)-1]
	assert.Equal(t, InsightObserve, last.Category)
	assert.Equal(t, "40.0%", last.Value)
	assert.Empty(t, last.Symbol)
}

func TestComputeInsights_Empty(t *testing.T) {
	insights := ComputeInsights(nil, domain.Snapshot{})
	assert.NotNil(t, insights)
	assert.Empty(t, insights)
}

func TestStreak(t *testing.T) {
	tk := domain.Ticker{}
	tk.Closes = [domain.LookbackDays]float64{3, 2, 1}
	assert.Equal(t, 1, streak(4, tk))
	assert.Equal(t, 0, streak(3, tk))

	tk.Closes = [domain.LookbackDays]float64{2, 3, 4}
	assert.Equal(t, -1, streak(1, tk))
	assert.Equal(t, 0, streak(0, tk))
}

func TestCompareBenchmarks(t *testing.T) {
	snap := snapshot(
		domain.Ticker{Symbol: "NIFTY", CompanyName: "Nifty 50", CurrentValue: 110, Close365: 100, IsIndex: true},
		domain.Ticker{Symbol: "SENSEX", CurrentValue: 130, Close365: 100, AssetType: "index"},
		domain.Ticker{Symbol: "NEW", CurrentValue: 50, AssetType: "Index"},
		domain.Ticker{Symbol: "TCS", CurrentValue: 500, Close365: 100, AssetType: "Stock"},
	)

	entries := CompareBenchmarks(15, snap)

	require.Len(t, entries, 4)
	assert.Equal(t, "SENSEX", entries[0].Label)
	assert.InDelta(t, 30.0, entries[0].Return, 1e-9)
	assert.True(t, entries[1].IsPortfolio)
	assert.Equal(t, PortfolioBenchmarkLabel, entries[1].Label)
	assert.Equal(t, "Nifty 50", entries[2].Label)
	assert.InDelta(t, 10.0, entries[2].Return, 1e-9)
	assert.Equal(t, "NEW", entries[3].Symbol)
	assert.Zero(t, entries[3].Return)
}

func TestComputePriceHistory(t *testing.T) {
	tk := domain.Ticker{Symbol: "TCS", CurrentValue: 110}
	tk.Closes = [domain.LookbackDays]float64{100, 0, 100, 0, 0, 0, 100}

	h := ComputePriceHistory(tk)

	require.Len(t, h.Points, 4)
	assert.Equal(t, 7, h.Points[0].DaysAgo)
	assert.Equal(t, 0, h.Points[3].DaysAgo)
	assert.True(t, h.Positive)
	// Returns are 0, 0, 10 percent.
	assert.InDelta(t, 5.7735026919, h.Volatility, 1e-6)
}

func TestComputePriceHistory_Sparse(t *testing.T) {
	h := ComputePriceHistory(domain.Ticker{Symbol: "X", CurrentValue: 5})
	require.Len(t, h.Points, 1)
	assert.True(t, h.Positive)
	assert.Zero(t, h.Volatility)

	tk := domain.Ticker{Symbol: "Y", CurrentValue: 90}
	tk.Closes[0] = 100
	h = ComputePriceHistory(tk)
	assert.False(t, h.Positive)
	assert.Zero(t, h.Volatility)
}
