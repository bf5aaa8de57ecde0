package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmanzanog/gainbase/internal/analytics"
	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/ledgerio"
	"github.com/jmanzanog/gainbase/internal/infrastructure/marketdata"
)

// ErrSymbolNotHeld is returned by Holding for a symbol with no open position.
var ErrSymbolNotHeld = errors.New("symbol not held")

const requestDateLayout = "2006-01-02"

// TransactionRequest is the client-facing shape of a transaction. Date is
// YYYY-MM-DD; RFC3339 timestamps are accepted and truncated to the day.
type TransactionRequest struct {
	Symbol   string         `json:"symbol"`
	Type     string         `json:"type"`
	Quantity domain.Decimal `json:"quantity"`
	Price    domain.Decimal `json:"price"`
	Date     string         `json:"date"`
	Currency string         `json:"currency"`
	Broker   string         `json:"broker"`
}

func (r TransactionRequest) toTransaction() (domain.Transaction, error) {
	txType, err := domain.ParseTransactionType(r.Type)
	if err != nil {
		return domain.Transaction{}, err
	}
	date, err := parseRequestDate(r.Date)
	if err != nil {
		return domain.Transaction{}, err
	}
	t := domain.NewTransaction(r.Symbol, txType, r.Quantity, r.Price, date, r.Currency, r.Broker)
	if err := t.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	return t, nil
}

func parseRequestDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: missing date", domain.ErrInvalidTransaction)
	}
	if d, err := time.Parse(requestDateLayout, s); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidTransaction, s)
	}
	return d, nil
}

// ProjectionParams carries the optional overrides of a projection query.
// Nil fields fall back to the portfolio's own assumptions.
type ProjectionParams struct {
	Years   int
	Rate    *float64
	Monthly *float64
}

// HoldingDetail is a single holding with its recent price history.
type HoldingDetail struct {
	Holding analytics.Holding      `json:"holding"`
	History analytics.PriceHistory `json:"history"`
}

type Option func(*PortfolioService)

// WithClock replaces time.Now as the valuation date source.
func WithClock(now func() time.Time) Option {
	return func(s *PortfolioService) { s.now = now }
}

func WithDiscountRate(rate float64) Option {
	return func(s *PortfolioService) { s.discountRate = rate }
}

// WithDefaultReturnRate sets the projection rate used when the portfolio
// has no positive XIRR.
func WithDefaultReturnRate(rate float64) Option {
	return func(s *PortfolioService) { s.defaultReturnRate = rate }
}

// PortfolioService owns the transaction ledger and the latest market
// snapshot. Read models are computed on demand from both.
type PortfolioService struct {
	repo              domain.TransactionRepository
	marketData        marketdata.SnapshotProvider
	snapshot          atomic.Pointer[domain.Snapshot]
	now               func() time.Time
	discountRate      float64
	defaultReturnRate float64
}

func NewPortfolioService(repo domain.TransactionRepository, marketData marketdata.SnapshotProvider, opts ...Option) *PortfolioService {
	s := &PortfolioService{
		repo:              repo,
		marketData:        marketData,
		now:               time.Now,
		discountRate:      analytics.DefaultDiscountRate,
		defaultReturnRate: analytics.DefaultReturnRate,
	}
	for _, opt := range opts {
		opt(s)
	}
	empty := domain.NewSnapshot(nil, time.Time{})
	s.snapshot.Store(&empty)
	return s
}

func (s *PortfolioService) AddTransaction(ctx context.Context, req TransactionRequest) (*domain.Transaction, error) {
	t, err := req.toTransaction()
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, &t); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction added", "id", t.ID, "symbol", t.Symbol, "type", t.Type)
	return &t, nil
}

// UpdateTransaction replaces every field of an existing transaction.
func (s *PortfolioService) UpdateTransaction(ctx context.Context, id string, req TransactionRequest) (*domain.Transaction, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	t, err := req.toTransaction()
	if err != nil {
		return nil, err
	}
	t.ID = id

	if err := s.repo.Save(ctx, &t); err != nil {
		return nil, fmt.Errorf("failed to save transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction updated", "id", t.ID, "symbol", t.Symbol)
	return &t, nil
}

func (s *PortfolioService) RemoveTransaction(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to remove transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction removed", "id", id)
	return nil
}

func (s *PortfolioService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns the ledger ordered by date.
func (s *PortfolioService) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	txns, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// ImportCSV validates every row before saving any of them; a single bad row
// rejects the whole file.
func (s *PortfolioService) ImportCSV(ctx context.Context, r io.Reader) ([]domain.Transaction, error) {
	txns, err := ledgerio.ReadCSV(r)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveAll(ctx, txns); err != nil {
		return nil, fmt.Errorf("failed to save imported transactions: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported", "count", len(txns))
	return txns, nil
}

func (s *PortfolioService) ExportCSV(ctx context.Context, w io.Writer) error {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return err
	}
	return ledgerio.WriteCSV(w, txns)
}

// Backup writes the whole ledger as a JSON document into dir and returns
// the file path.
func (s *PortfolioService) Backup(ctx context.Context, dir string) (string, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return "", err
	}
	path, err := ledgerio.WriteBackupFile(dir, ledgerio.NewBackup(txns, s.now()))
	if err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}

// RefreshSnapshot fetches fresh market data for every symbol in the ledger
// and swaps it in. On failure the previous snapshot stays in place.
func (s *PortfolioService) RefreshSnapshot(ctx context.Context) error {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return err
	}

	snap, err := s.marketData.FetchSnapshot(ctx, ledgerSymbols(txns))
	if err != nil {
		slog.ErrorContext(ctx, "Snapshot refresh failed, keeping previous snapshot", "error", err)
		return fmt.Errorf("failed to refresh snapshot: %w", err)
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = s.now()
	}

	s.snapshot.Store(&snap)
	slog.InfoContext(ctx, "Snapshot refreshed", "tickers", snap.Len())
	return nil
}

// Snapshot returns the snapshot currently used for valuation.
func (s *PortfolioService) Snapshot() domain.Snapshot {
	return *s.snapshot.Load()
}

func (s *PortfolioService) Tickers() []domain.Ticker {
	return s.Snapshot().Tickers()
}

func (s *PortfolioService) Summary(ctx context.Context) (analytics.Summary, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.ComputeSummary(txns, s.Snapshot(), s.now()), nil
}

func (s *PortfolioService) Allocation(ctx context.Context, dim analytics.Dimension) ([]analytics.AllocationSlice, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeAllocation(txns, s.Snapshot(), dim), nil
}

// Yearly returns the yearly analysis, most recent year first unless
// ascending is set.
func (s *PortfolioService) Yearly(ctx context.Context, dim analytics.Dimension, ascending bool) ([]analytics.YearlyRecord, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	records := analytics.ComputeYearlyAnalysisBy(txns, s.Snapshot(), dim)
	if ascending {
		return analytics.Chronological(records), nil
	}
	return records, nil
}

func (s *PortfolioService) Projection(ctx context.Context, params ProjectionParams) (analytics.Projection, error) {
	a, err := s.assumptions(ctx, params)
	if err != nil {
		return analytics.Projection{}, err
	}
	return analytics.ComputeProjection(a.CurrentValue, a.AnnualRate, a.MonthlyAmount, params.Years,
		analytics.WithDiscountRate(s.discountRate)), nil
}

func (s *PortfolioService) ProjectionSeries(ctx context.Context, params ProjectionParams) ([]analytics.ProjectionPoint, error) {
	a, err := s.assumptions(ctx, params)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeProjectionSeries(a.CurrentValue, a.AnnualRate, a.MonthlyAmount, params.Years,
		analytics.WithDiscountRate(s.discountRate)), nil
}

func (s *PortfolioService) assumptions(ctx context.Context, params ProjectionParams) (analytics.Assumptions, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return analytics.Assumptions{}, err
	}
	snap := s.Snapshot()
	summary := analytics.ComputeSummary(txns, snap, s.now())
	a := analytics.DefaultAssumptions(summary, analytics.ComputeYearlyAnalysis(txns), s.defaultReturnRate)
	if params.Rate != nil {
		a.AnnualRate = *params.Rate
	}
	if params.Monthly != nil {
		a.MonthlyAmount = *params.Monthly
	}
	return a, nil
}

func (s *PortfolioService) Holdings(ctx context.Context) ([]analytics.Holding, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeHoldings(txns, s.Snapshot()), nil
}

func (s *PortfolioService) Holding(ctx context.Context, symbol string) (*HoldingDetail, error) {
	txns, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	snap := s.Snapshot()
	h, ok := analytics.HoldingFor(txns, snap, symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolNotHeld, domain.NormalizeSymbol(symbol))
	}

	detail := &HoldingDetail{Holding: h}
	if tk, ok := snap.Lookup(symbol); ok {
		detail.History = analytics.ComputePriceHistory(tk)
	} else {
		detail.History = analytics.PriceHistory{Symbol: h.Symbol, Points: []analytics.PricePoint{}, Positive: true}
	}
	return detail, nil
}

func (s *PortfolioService) Movers(ctx context.Context, limit int) ([]analytics.Holding, error) {
	holdings, err := s.Holdings(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.TopMovers(holdings, limit), nil
}

func (s *PortfolioService) Insights(ctx context.Context) ([]analytics.Insight, error) {
	holdings, err := s.Holdings(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.ComputeInsights(holdings, s.Snapshot()), nil
}

func (s *PortfolioService) Benchmark(ctx context.Context) ([]analytics.BenchmarkEntry, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.CompareBenchmarks(summary.XIRR, s.Snapshot()), nil
}

// ledgerSymbols returns the distinct symbols of txns, sorted.
func ledgerSymbols(txns []domain.Transaction) []string {
	seen := make(map[string]struct{}, len(txns))
	out := make([]string, 0, len(txns))
	for _, t := range txns {
		sym := domain.NormalizeSymbol(t.Symbol)
		if _, ok := seen[sym]; ok || sym == "" {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
