package analytics

import "sort"

const DefaultMoversLimit = 10

// TopMovers returns up to limit holdings with the best day change first.
// Holdings without a live price carry no day change and sort with zero.
func TopMovers(holdings []Holding, limit int) []Holding {
	if limit <= 0 {
		limit = DefaultMoversLimit
	}
	out := make([]Holding, len(holdings))
	copy(out, holdings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DayChangePercentage > out[j].DayChangePercentage
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
