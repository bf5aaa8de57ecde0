package marketdata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jmanzanog/gainbase/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight requests for per-symbol quote APIs.
const DefaultConcurrency = 4

// QuoteFunc fetches the ticker for a single symbol.
type QuoteFunc func(ctx context.Context, symbol string) (domain.Ticker, error)

// FetchEach calls fetch for every distinct symbol with at most limit calls
// in flight. Symbols that fail are logged and left out; the call only fails
// when symbols were requested and none could be fetched. The result is
// sorted by symbol.
func FetchEach(ctx context.Context, symbols []string, limit int, fetch QuoteFunc) ([]domain.Ticker, error) {
	unique := dedupe(symbols)
	if len(unique) == 0 {
		return []domain.Ticker{}, nil
	}
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		mu      sync.Mutex
		tickers = make([]domain.Ticker, 0, len(unique))
		failed  = make(map[string]error)
	)

	var g errgroup.Group
	g.SetLimit(limit)

	for _, symbol := range unique {
		g.Go(func() error {
			tk, err := fetch(ctx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed[symbol] = err
				return nil
			}
			if tk.Symbol == "" {
				tk.Symbol = symbol
			}
			tickers = append(tickers, tk)
			return nil
		})
	}
	_ = g.Wait()

	for symbol, err := range failed {
		slog.WarnContext(ctx, "Failed to fetch quote", "symbol", symbol, "error", err)
	}

	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no quotes fetched for %d symbols", ErrProvider, len(unique))
	}

	sort.Slice(tickers, func(i, j int) bool { return tickers[i].Symbol < tickers[j].Symbol })
	return tickers, nil
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = domain.NormalizeSymbol(s)
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
