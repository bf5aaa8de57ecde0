package analytics

import (
	"testing"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDimension(t *testing.T) {
	testCases := []struct {
		input    string
		expected Dimension
		wantErr  bool
	}{
		{"", DimensionInstrument, false},
		{"Company Name", DimensionInstrument, false},
		{"sector", DimensionSector, false},
		{"Asset Type", DimensionAssetType, false},
		{"asset_type", DimensionAssetType, false},
		{" BROKER ", DimensionBroker, false},
		{"currency", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseDimension(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func allocationFixture() ([]domain.Transaction, domain.Snapshot) {
	txns := []domain.Transaction{
		withBroker(buy("TCS", 2, 3000, date(2023, 1, 5)), "Zerodha"),
		withBroker(buy("INFY", 10, 1400, date(2023, 2, 5)), "Groww"),
		buy("NIFTYBEES", 100, 200, date(2023, 3, 5)),
		buy("WIPRO", 10, 400, date(2023, 4, 5)),
		sell("WIPRO", 10, 450, date(2023, 5, 5)),
	}
	snap := snapshot(
		domain.Ticker{Symbol: "TCS", CurrentValue: 3500, CompanyName: "Tata Consultancy", Sector: "IT", AssetType: "Stock"},
		domain.Ticker{Symbol: "INFY", CurrentValue: 1500, CompanyName: "Infosys", Sector: "IT", AssetType: "Stock"},
		domain.Ticker{Symbol: "NIFTYBEES", CurrentValue: 250, AssetType: "ETF"},
	)
	return txns, snap
}

func TestComputeAllocation_PercentagesSumToHundred(t *testing.T) {
	txns, snap := allocationFixture()

	for _, dim := range []Dimension{DimensionInstrument, DimensionSector, DimensionAssetType, DimensionBroker} {
		t.Run(string(dim), func(t *testing.T) {
			slices := ComputeAllocation(txns, snap, dim)
			require.NotEmpty(t, slices)

			var sum float64
			for _, s := range slices {
				sum += s.Percentage
			}
			assert.InDelta(t, 100.0, sum, 1e-9)

			for i := 1; i < len(slices); i++ {
				assert.GreaterOrEqual(t, slices[i-1].Value, slices[i].Value)
			}
		})
	}
}

func TestComputeAllocation_Instrument(t *testing.T) {
	txns, snap := allocationFixture()

	slices := ComputeAllocation(txns, snap, DimensionInstrument)

	require.Len(t, slices, 3)
	assert.Equal(t, "Unknown", slices[0].Label, "priced ticker without a company name")
	assert.InDelta(t, 25000.0, slices[0].Value, 1e-9)
	assert.Equal(t, "Infosys", slices[1].Label)
	assert.Equal(t, "Tata Consultancy", slices[2].Label)
	assert.InDelta(t, 7000.0/47000.0*100, slices[2].Percentage, 1e-9)
}

func TestComputeAllocation_InstrumentLabelFallback(t *testing.T) {
	txns := []domain.Transaction{
		buy("ABC", 1, 100, date(2023, 1, 1)),
		buy("XYZ", 1, 50, date(2023, 1, 1)),
	}
	snap := domain.NewSnapshot([]domain.Ticker{{Symbol: "ABC", CurrentValue: 120}}, date(2023, 6, 1))

	slices := ComputeAllocation(txns, snap, DimensionInstrument)

	require.Len(t, slices, 2)
	assert.Equal(t, "Unknown", slices[0].Label)
	assert.Equal(t, "XYZ", slices[1].Label, "symbols missing from the snapshot keep their symbol")
}

func TestComputeAllocation_DefaultLabels(t *testing.T) {
	txns, snap := allocationFixture()

	sectors := ComputeAllocation(txns, snap, DimensionSector)
	require.Len(t, sectors, 2)
	assert.Equal(t, "Unknown", sectors[0].Label)
	assert.Equal(t, "IT", sectors[1].Label)

	brokers := ComputeAllocation(txns, snap, DimensionBroker)
	labels := make([]string, 0, len(brokers))
	for _, b := range brokers {
		labels = append(labels, b.Label)
	}
	assert.ElementsMatch(t, []string{"No Broker", "Groww", "Zerodha"}, labels)
}

func TestComputeAllocation_UsesMostRecentBroker(t *testing.T) {
	txns := []domain.Transaction{
		withBroker(buy("TCS", 1, 100, date(2023, 1, 1)), "Old"),
		withBroker(buy("TCS", 1, 100, date(2023, 6, 1)), "New"),
	}

	slices := ComputeAllocation(txns, domain.Snapshot{}, DimensionBroker)

	require.Len(t, slices, 1)
	assert.Equal(t, "New", slices[0].Label)
}

func TestComputeAllocation_MergesSymbolCase(t *testing.T) {
	txns := []domain.Transaction{
		buy("tcs", 1, 100, date(2023, 1, 1)),
		buy("TCS", 1, 100, date(2023, 2, 1)),
	}

	slices := ComputeAllocation(txns, domain.Snapshot{}, DimensionInstrument)

	require.Len(t, slices, 1)
	assert.Equal(t, "TCS", slices[0].Label)
	assert.InDelta(t, 200.0, slices[0].Value, 1e-9)
}

func TestComputeAllocation_AllClosed(t *testing.T) {
	txns := []domain.Transaction{
		buy("TCS", 5, 100, date(2023, 1, 1)),
		sell("TCS", 5, 120, date(2023, 2, 1)),
	}

	slices := ComputeAllocation(txns, snapshot(domain.Ticker{Symbol: "TCS", CurrentValue: 130}), DimensionSector)

	assert.NotNil(t, slices)
	assert.Empty(t, slices)
}

func TestComputeAllocation_Empty(t *testing.T) {
	assert.Empty(t, ComputeAllocation(nil, domain.Snapshot{}, DimensionInstrument))
}
