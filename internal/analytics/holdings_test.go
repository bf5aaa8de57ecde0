package analytics

import (
	"testing"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHoldings(t *testing.T) {
	txns := []domain.Transaction{
		withBroker(buy("TCS", 10, 100, date(2023, 1, 1)), "Zerodha"),
		buy("TCS", 10, 200, date(2023, 2, 1)),
		sell("TCS", 5, 300, date(2023, 3, 1)),
		buy("INFY", 2, 1000, date(2023, 1, 15)),
		buy("GONE", 1, 10, date(2023, 1, 1)),
		sell("GONE", 1, 12, date(2023, 1, 2)),
	}
	tcs := domain.Ticker{Symbol: "TCS", CurrentValue: 250, CompanyName: "TCS Ltd", Sector: "IT", AssetType: "Stock", High52: 260, Low52: 90}
	tcs.Closes[0] = 200
	snap := snapshot(tcs)

	holdings := ComputeHoldings(txns, snap)

	require.Len(t, holdings, 2)
	h := holdings[0]
	assert.Equal(t, "TCS", h.Symbol)
	assert.Equal(t, "TCS Ltd", h.CompanyName)
	assert.InDelta(t, 15.0, h.Quantity, 1e-9)
	// Average cost 150 survives the partial sell.
	assert.InDelta(t, 150.0, h.AvgPrice, 1e-9)
	assert.InDelta(t, 2250.0, h.InvestedValue, 1e-9)
	assert.InDelta(t, 3750.0, h.CurrentValue, 1e-9)
	assert.InDelta(t, 1500.0, h.PnL, 1e-9)
	assert.InDelta(t, 1500.0/2250.0*100, h.PnLPercentage, 1e-9)
	assert.True(t, h.LivePrice)
	assert.Equal(t, "No Broker", h.Broker)
	assert.InDelta(t, 50.0, h.DayChange, 1e-9)
	assert.InDelta(t, 25.0, h.DayChangePercentage, 1e-9)

	infy := holdings[1]
	assert.Equal(t, "INFY", infy.Symbol)
	assert.False(t, infy.LivePrice)
	assert.InDelta(t, 1000.0, infy.CurrentPrice, 1e-9)
	assert.Equal(t, "Other", infy.Sector)
	assert.Equal(t, "Other", infy.AssetType)
	assert.Zero(t, infy.DayChange)

	var contribution float64
	for _, h := range holdings {
		contribution += h.ContributionPercentage
	}
	assert.InDelta(t, 100.0, contribution, 1e-9)
}

func TestComputeHoldings_Empty(t *testing.T) {
	holdings := ComputeHoldings(nil, domain.Snapshot{})
	assert.NotNil(t, holdings)
	assert.Empty(t, holdings)
}

func TestHoldingFor(t *testing.T) {
	txns := []domain.Transaction{buy("TCS", 1, 100, date(2023, 1, 1))}
	snap := snapshot(
		domain.Ticker{Symbol: "TCS", CurrentValue: 110},
		domain.Ticker{Symbol: "HDFC", CurrentValue: 1600, CompanyName: "HDFC Bank", Sector: "Finance", High52: 1800},
	)

	h, ok := HoldingFor(txns, snap, "tcs")
	require.True(t, ok)
	assert.InDelta(t, 1.0, h.Quantity, 1e-9)

	h, ok = HoldingFor(txns, snap, "HDFC")
	require.True(t, ok)
	assert.Zero(t, h.Quantity)
	assert.Equal(t, "HDFC Bank", h.CompanyName)
	assert.Equal(t, "Finance", h.Sector)
	assert.Equal(t, "N/A", h.Broker)
	assert.InDelta(t, 1800.0, h.High52, 1e-9)

	_, ok = HoldingFor(txns, snap, "MISSING")
	assert.False(t, ok)
}

func TestTopMovers(t *testing.T) {
	holdings := []Holding{
		{Symbol: "A", DayChangePercentage: 1},
		{Symbol: "B", DayChangePercentage: 5},
		{Symbol: "C", DayChangePercentage: -3},
		{Symbol: "D", DayChangePercentage: 2},
	}

	movers := TopMovers(holdings, 2)
	require.Len(t, movers, 2)
	assert.Equal(t, "B", movers[0].Symbol)
	assert.Equal(t, "D", movers[1].Symbol)
	assert.Equal(t, "A", holdings[0].Symbol)

	all := TopMovers(holdings, 0)
	require.Len(t, all, 4)
	assert.Equal(t, "C", all[3].Symbol)
}
