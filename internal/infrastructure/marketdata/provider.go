package marketdata

import (
	"context"
	"errors"

	"github.com/jmanzanog/gainbase/internal/domain"
)

// ErrProvider marks failures talking to an upstream price source.
var ErrProvider = errors.New("market data provider error")

// SnapshotProvider fetches the full set of tickers the portfolio is valued
// against. symbols is a hint: sources that publish a fixed sheet may ignore it.
type SnapshotProvider interface {
	FetchSnapshot(ctx context.Context, symbols []string) (domain.Snapshot, error)
}
