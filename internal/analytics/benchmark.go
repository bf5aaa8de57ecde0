package analytics

import (
	"sort"
	"strings"

	"github.com/jmanzanog/gainbase/internal/domain"
)

const PortfolioBenchmarkLabel = "Portfolio (XIRR)"

type BenchmarkEntry struct {
	Symbol      string  `json:"symbol,omitempty"`
	Label       string  `json:"label"`
	Return      float64 `json:"return"`
	IsPortfolio bool    `json:"is_portfolio"`
}

// CompareBenchmarks ranks the portfolio XIRR against the one-year return of
// every index in the snapshot, best first.
func CompareBenchmarks(portfolioXIRR float64, snap domain.Snapshot) []BenchmarkEntry {
	out := []BenchmarkEntry{{Label: PortfolioBenchmarkLabel, Return: portfolioXIRR, IsPortfolio: true}}
	for _, tk := range snap.Tickers() {
		if !isIndex(tk) {
			continue
		}
		out = append(out, BenchmarkEntry{
			Symbol: tk.Symbol,
			Label:  orDefault(tk.CompanyName, tk.Symbol),
			Return: OneYearReturn(tk),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Return > out[j].Return })
	return out
}

// OneYearReturn is the percentage move from the close 365 days ago, or 0
// when that close is unknown.
func OneYearReturn(tk domain.Ticker) float64 {
	if tk.Close365 <= 0 {
		return 0
	}
	return (tk.CurrentValue - tk.Close365) / tk.Close365 * 100
}

func isIndex(tk domain.Ticker) bool {
	return tk.IsIndex || strings.EqualFold(strings.TrimSpace(tk.AssetType), "Index")
}
