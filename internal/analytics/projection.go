package analytics

import "math"

const (
	// DefaultDiscountRate converts projected values into today's money.
	DefaultDiscountRate = 0.06
	// DefaultReturnRate is assumed when the portfolio has no positive XIRR.
	DefaultReturnRate = 0.12

	MaxProjectionYears = 100
)

type Projection struct {
	Years          int     `json:"years"`
	AnnualRate     float64 `json:"annual_rate"`
	MonthlyAmount  float64 `json:"monthly_amount"`
	FutureValue    float64 `json:"future_value"`
	TotalInvested  float64 `json:"total_invested"`
	EstimatedGains float64 `json:"estimated_gains"`
	Multiplier     float64 `json:"multiplier"`
	PresentValue   float64 `json:"present_value"`
}

type ProjectionPoint struct {
	Year          int     `json:"year"`
	Value         float64 `json:"value"`
	TotalInvested float64 `json:"total_invested"`
	PresentValue  float64 `json:"present_value"`
}

type projectionOptions struct {
	discountRate float64
}

type ProjectionOption func(*projectionOptions)

// WithDiscountRate overrides DefaultDiscountRate for PresentValue.
func WithDiscountRate(rate float64) ProjectionOption {
	return func(o *projectionOptions) {
		o.discountRate = rate
	}
}

// ComputeProjection compounds currentValue at rate for years, adding
// monthly×12 at the end of every year (an ordinary annuity). Negative
// amounts are treated as 0, rate is floored at -1 (a total loss) and years
// is clamped to [0, MaxProjectionYears].
func ComputeProjection(currentValue, rate, monthly float64, years int, opts ...ProjectionOption) Projection {
	o := applyOptions(opts)
	rate, currentValue, monthly, years = clampInputs(rate, currentValue, monthly, years)

	fv := futureValue(currentValue, rate, monthly, years)
	invested := investedAfter(currentValue, monthly, years)

	multiplier := 1.0
	if invested > 0 {
		multiplier = fv / invested
	}

	return Projection{
		Years:          years,
		AnnualRate:     rate,
		MonthlyAmount:  monthly,
		FutureValue:    fv,
		TotalInvested:  invested,
		EstimatedGains: fv - invested,
		Multiplier:     multiplier,
		PresentValue:   discount(fv, o.discountRate, years),
	}
}

// ComputeProjectionSeries returns one point per year from 0 to years
// inclusive. The last point matches ComputeProjection for the same inputs.
func ComputeProjectionSeries(currentValue, rate, monthly float64, years int, opts ...ProjectionOption) []ProjectionPoint {
	o := applyOptions(opts)
	rate, currentValue, monthly, years = clampInputs(rate, currentValue, monthly, years)

	out := make([]ProjectionPoint, 0, years+1)
	for y := 0; y <= years; y++ {
		v := futureValue(currentValue, rate, monthly, y)
		out = append(out, ProjectionPoint{
			Year:          y,
			Value:         v,
			TotalInvested: investedAfter(currentValue, monthly, y),
			PresentValue:  discount(v, o.discountRate, y),
		})
	}
	return out
}

// Assumptions are the projection inputs derived from the portfolio itself.
type Assumptions struct {
	CurrentValue  float64 `json:"current_value"`
	AnnualRate    float64 `json:"annual_rate"`
	MonthlyAmount float64 `json:"monthly_amount"`
}

// DefaultAssumptions uses the portfolio XIRR when positive (else
// fallbackRate) and the most recent year's average monthly investment.
// yearly is expected most recent first, as ComputeYearlyAnalysis returns it.
func DefaultAssumptions(summary Summary, yearly []YearlyRecord, fallbackRate float64) Assumptions {
	a := Assumptions{CurrentValue: summary.TotalValue, AnnualRate: fallbackRate}
	if summary.XIRR > 0 {
		a.AnnualRate = summary.XIRR / 100
	}
	if len(yearly) > 0 {
		a.MonthlyAmount = yearly[0].AverageMonthlyInvestment
	}
	return a
}

func futureValue(currentValue, rate, monthly float64, years int) float64 {
	yearly := monthly * 12
	if rate == 0 {
		return currentValue + yearly*float64(years)
	}
	growth := math.Pow(1+rate, float64(years))
	return currentValue*growth + yearly*(growth-1)/rate
}

func investedAfter(currentValue, monthly float64, years int) float64 {
	return currentValue + monthly*12*float64(years)
}

func discount(v, rate float64, years int) float64 {
	if rate <= -1 {
		return v
	}
	return v / math.Pow(1+rate, float64(years))
}

func clampInputs(rate, currentValue, monthly float64, years int) (float64, float64, float64, int) {
	if rate < -1 {
		rate = -1
	}
	if currentValue < 0 {
		currentValue = 0
	}
	if monthly < 0 {
		monthly = 0
	}
	if years < 0 {
		years = 0
	}
	if years > MaxProjectionYears {
		years = MaxProjectionYears
	}
	return rate, currentValue, monthly, years
}

func applyOptions(opts []ProjectionOption) projectionOptions {
	o := projectionOptions{discountRate: DefaultDiscountRate}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
