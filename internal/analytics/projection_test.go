package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeProjection(t *testing.T) {
	testCases := []struct {
		name           string
		currentValue   float64
		rate           float64
		monthly        float64
		years          int
		wantFV         float64
		wantInvested   float64
		wantMultiplier float64
	}{
		{
			name:           "zero years keeps current value",
			currentValue:   5000,
			rate:           0.12,
			monthly:        1000,
			years:          0,
			wantFV:         5000,
			wantInvested:   5000,
			wantMultiplier: 1,
		},
		{
			name:           "zero rate is plain accumulation",
			currentValue:   0,
			rate:           0,
			monthly:        1000,
			years:          2,
			wantFV:         24000,
			wantInvested:   24000,
			wantMultiplier: 1,
		},
		{
			name:           "lump sum compounding",
			currentValue:   1000,
			rate:           0.1,
			monthly:        0,
			years:          2,
			wantFV:         1210,
			wantInvested:   1000,
			wantMultiplier: 1.21,
		},
		{
			name:           "annuity",
			currentValue:   0,
			rate:           0.1,
			monthly:        100,
			years:          2,
			wantFV:         1200*1.1 + 1200,
			wantInvested:   2400,
			wantMultiplier: (1200*1.1 + 1200) / 2400,
		},
		{
			name:           "nothing invested",
			currentValue:   0,
			rate:           0.1,
			monthly:        0,
			years:          10,
			wantFV:         0,
			wantInvested:   0,
			wantMultiplier: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := ComputeProjection(tc.currentValue, tc.rate, tc.monthly, tc.years)
			assert.InDelta(t, tc.wantFV, p.FutureValue, 1e-6)
			assert.InDelta(t, tc.wantInvested, p.TotalInvested, 1e-6)
			assert.InDelta(t, tc.wantMultiplier, p.Multiplier, 1e-9)
			assert.InDelta(t, p.FutureValue-p.TotalInvested, p.EstimatedGains, 1e-9)
		})
	}
}

func TestComputeProjection_PresentValue(t *testing.T) {
	p := ComputeProjection(1000, 0.1, 0, 3)
	assert.InDelta(t, 1331/math.Pow(1.06, 3), p.PresentValue, 1e-6)

	p = ComputeProjection(1000, 0.1, 0, 3, WithDiscountRate(0.1))
	assert.InDelta(t, 1000.0, p.PresentValue, 1e-6)
}

func TestComputeProjection_ClampsInputs(t *testing.T) {
	p := ComputeProjection(-100, 0.1, -50, -3)
	assert.Equal(t, 0, p.Years)
	assert.Zero(t, p.FutureValue)
	assert.Zero(t, p.MonthlyAmount)

	p = ComputeProjection(1, 0, 0, 1000)
	assert.Equal(t, MaxProjectionYears, p.Years)
}

func TestComputeProjection_RateBelowTotalLoss(t *testing.T) {
	for _, years := range []int{2, 3} {
		p := ComputeProjection(1000, -2, 0, years)
		assert.Equal(t, -1.0, p.AnnualRate)
		assert.Zero(t, p.FutureValue, "years=%d", years)
	}

	p := ComputeProjection(1000, -3, 100, 3)
	assert.InDelta(t, 1200.0, p.FutureValue, 1e-9, "only the last year's contributions survive")

	series := ComputeProjectionSeries(1000, -3, 100, 3)
	for _, pt := range series {
		assert.GreaterOrEqual(t, pt.Value, 0.0, "year %d", pt.Year)
	}
	assert.InDelta(t, p.FutureValue, series[len(series)-1].Value, 1e-9)
}

func TestComputeProjectionSeries_MatchesSingleShot(t *testing.T) {
	testCases := []struct {
		cv, rate, monthly float64
		years             int
	}{
		{100000, 0.12, 5000, 10},
		{0, 0, 1000, 2},
		{2500, -0.05, 100, 7},
		{1, 0.3, 0, 100},
	}

	for _, tc := range testCases {
		series := ComputeProjectionSeries(tc.cv, tc.rate, tc.monthly, tc.years)
		single := ComputeProjection(tc.cv, tc.rate, tc.monthly, tc.years)

		require.Len(t, series, tc.years+1)
		assert.Equal(t, 0, series[0].Year)
		assert.InDelta(t, tc.cv, series[0].Value, 1e-9)

		last := series[len(series)-1]
		assert.Equal(t, tc.years, last.Year)
		assert.InDelta(t, single.FutureValue, last.Value, math.Abs(single.FutureValue)*1e-12+1e-9)
		assert.InDelta(t, single.TotalInvested, last.TotalInvested, 1e-9)
		assert.InDelta(t, single.PresentValue, last.PresentValue, math.Abs(single.PresentValue)*1e-12+1e-9)
	}
}

func TestDefaultAssumptions(t *testing.T) {
	yearly := []YearlyRecord{
		{Year: 2024, AverageMonthlyInvestment: 7000},
		{Year: 2023, AverageMonthlyInvestment: 5000},
	}

	a := DefaultAssumptions(Summary{TotalValue: 100000, XIRR: 15}, yearly, DefaultReturnRate)
	assert.InDelta(t, 100000.0, a.CurrentValue, 1e-9)
	assert.InDelta(t, 0.15, a.AnnualRate, 1e-12)
	assert.InDelta(t, 7000.0, a.MonthlyAmount, 1e-9)

	a = DefaultAssumptions(Summary{TotalValue: 100, XIRR: -4}, nil, DefaultReturnRate)
	assert.Equal(t, DefaultReturnRate, a.AnnualRate)
	assert.Zero(t, a.MonthlyAmount)
}
