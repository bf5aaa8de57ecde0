package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSnapshot_CaseInsensitiveLookup(t *testing.T) {
	snap := NewSnapshot([]Ticker{
		{Symbol: "hdfcbank", CurrentValue: 1650, Sector: "Bank"},
		{Symbol: "", CurrentValue: 1},
	}, time.Now())

	assert.Equal(t, 1, snap.Len())

	tk, ok := snap.Lookup("HdfcBank")
	assert.True(t, ok)
	assert.Equal(t, "HDFCBANK", tk.Symbol)
	assert.Equal(t, "Bank", tk.Sector)

	price, ok := snap.Price(" HDFCBANK ")
	assert.True(t, ok)
	assert.Equal(t, 1650.0, price)
}

func TestSnapshot_PriceMissingOrZero(t *testing.T) {
	snap := NewSnapshot([]Ticker{{Symbol: "DEAD", CurrentValue: 0}}, time.Now())

	_, ok := snap.Price("DEAD")
	assert.False(t, ok)

	_, ok = snap.Price("NOPE")
	assert.False(t, ok)

	var empty Snapshot
	_, ok = empty.Price("ANY")
	assert.False(t, ok)
	assert.Empty(t, empty.Tickers())
}

func TestSnapshot_TickersSorted(t *testing.T) {
	snap := NewSnapshot([]Ticker{{Symbol: "TCS"}, {Symbol: "INFY"}, {Symbol: "ITC"}}, time.Now())

	var symbols []string
	for _, tk := range snap.Tickers() {
		symbols = append(symbols, tk.Symbol)
	}
	assert.Equal(t, []string{"INFY", "ITC", "TCS"}, symbols)
}

func TestTicker_PreviousClose(t *testing.T) {
	tk := Ticker{Closes: [LookbackDays]float64{99, 98}}
	assert.Equal(t, 99.0, tk.PreviousClose())
}
