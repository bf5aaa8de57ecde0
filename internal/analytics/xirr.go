package analytics

import (
	"math"
	"time"
)

const (
	xirrGuess         = 0.1
	xirrTolerance     = 1e-7
	xirrNPVTolerance  = 1e-6
	xirrMaxIterations = 100

	bisectMaxIterations = 200
	bisectLowerBound    = -0.9999
	bisectUpperLimit    = 1e6

	daysPerYear = 365.0
)

// XIRR returns the annualised money-weighted return of flows, as a percentage.
//
// It never fails: fewer than two flows, flows of a single sign, or a rate the
// solvers cannot pin down all yield 0.
func XIRR(flows []CashFlow) float64 {
	if !hasMixedSigns(flows) {
		return 0
	}

	years := yearOffsets(flows)
	amounts := make([]float64, len(flows))
	for i, f := range flows {
		amounts[i] = f.Amount
	}

	if r, ok := newtonXIRR(amounts, years); ok {
		return r * 100
	}
	if r, ok := bisectXIRR(amounts, years); ok {
		return r * 100
	}
	return 0
}

func hasMixedSigns(flows []CashFlow) bool {
	if len(flows) < 2 {
		return false
	}
	var pos, neg bool
	for _, f := range flows {
		switch {
		case f.Amount > 0:
			pos = true
		case f.Amount < 0:
			neg = true
		}
	}
	return pos && neg
}

// yearOffsets measures every flow from the earliest one, in 365-day years.
func yearOffsets(flows []CashFlow) []float64 {
	first := flows[0].Date
	for _, f := range flows[1:] {
		if f.Date.Before(first) {
			first = f.Date
		}
	}
	out := make([]float64, len(flows))
	for i, f := range flows {
		out[i] = dayDiff(first, f.Date) / daysPerYear
	}
	return out
}

func dayDiff(from, to time.Time) float64 {
	return to.Sub(from).Hours() / 24
}

// npv and its derivative with respect to rate. ok is false when 1+rate <= 0,
// where fractional powers are undefined.
func npv(rate float64, amounts, years []float64) (value, deriv float64, ok bool) {
	base := 1 + rate
	if base <= 0 {
		return 0, 0, false
	}
	for i, a := range amounts {
		disc := math.Pow(base, years[i])
		value += a / disc
		deriv -= years[i] * a / (disc * base)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, 0, false
	}
	return value, deriv, true
}

func newtonXIRR(amounts, years []float64) (float64, bool) {
	rate := xirrGuess
	for i := 0; i < xirrMaxIterations; i++ {
		value, deriv, ok := npv(rate, amounts, years)
		if !ok {
			return 0, false
		}
		if math.Abs(value) < xirrNPVTolerance {
			return rate, true
		}
		if deriv == 0 || math.IsNaN(deriv) || math.IsInf(deriv, 0) {
			return 0, false
		}
		next := rate - value/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) || next <= -1 {
			return 0, false
		}
		if math.Abs(next-rate) < xirrTolerance {
			return next, true
		}
		rate = next
	}
	return 0, false
}

// bisectXIRR searches [bisectLowerBound, hi] for a sign change of the NPV,
// doubling hi until one is found or bisectUpperLimit is passed.
func bisectXIRR(amounts, years []float64) (float64, bool) {
	lo := bisectLowerBound
	fLo, _, ok := npv(lo, amounts, years)
	if !ok {
		return 0, false
	}

	hi := 1.0
	var fHi float64
	for {
		fHi, _, ok = npv(hi, amounts, years)
		if ok && math.Signbit(fHi) != math.Signbit(fLo) {
			break
		}
		hi *= 2
		if hi > bisectUpperLimit {
			return 0, false
		}
	}

	for i := 0; i < bisectMaxIterations; i++ {
		mid := (lo + hi) / 2
		fMid, _, ok := npv(mid, amounts, years)
		if !ok {
			return 0, false
		}
		if math.Abs(fMid) < xirrNPVTolerance || (hi-lo)/2 < xirrTolerance {
			return mid, true
		}
		if math.Signbit(fMid) == math.Signbit(fLo) {
			lo, fLo = mid, fMid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}
