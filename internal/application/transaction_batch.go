package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jmanzanog/gainbase/internal/domain"
)

// AddTransactionResult represents the result of adding a single transaction.
// Index is the position of the request in the batch.
type AddTransactionResult struct {
	Index       int                 `json:"index"`
	Symbol      string              `json:"symbol"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// AddTransactionsBatchResult represents the result of a batch transaction creation.
type AddTransactionsBatchResult struct {
	Successful []AddTransactionResult `json:"successful"`
	Failed     []AddTransactionResult `json:"failed"`
}

// AddTransactionsBatch adds multiple transactions in one call. Requests are
// validated concurrently; the valid ones are saved together and invalid ones
// are reported without blocking the rest. When the batch introduces symbols
// the current snapshot does not know, a snapshot refresh is attempted.
func (s *PortfolioService) AddTransactionsBatch(ctx context.Context, requests []TransactionRequest) *AddTransactionsBatchResult {
	result := &AddTransactionsBatchResult{
		Successful: make([]AddTransactionResult, 0),
		Failed:     make([]AddTransactionResult, 0),
	}

	if len(requests) == 0 {
		return result
	}

	valid, failed := s.validateConcurrent(ctx, requests)
	result.Failed = append(result.Failed, failed...)

	if len(valid) == 0 {
		return result
	}

	txns := make([]domain.Transaction, len(valid))
	for i, r := range valid {
		txns[i] = *r.Transaction
	}

	if err := s.repo.SaveAll(ctx, txns); err != nil {
		slog.ErrorContext(ctx, "Failed to save transactions after batch add", "error", err)
		for _, r := range valid {
			result.Failed = append(result.Failed, AddTransactionResult{
				Index:  r.Index,
				Symbol: r.Symbol,
				Error:  fmt.Sprintf("failed to save transactions: %v", err),
			})
		}
		sortResults(result.Failed)
		return result
	}

	result.Successful = valid
	sortResults(result.Failed)

	slog.InfoContext(ctx, "Batch transactions added", "successful", len(result.Successful), "failed", len(result.Failed))

	if s.hasUnpricedSymbols(txns) {
		if err := s.RefreshSnapshot(ctx); err != nil {
			slog.WarnContext(ctx, "Snapshot refresh after batch add failed", "error", err)
		}
	}

	return result
}

// validateConcurrent converts every request using goroutines and channels
// and returns the valid and invalid results, each ordered by index.
func (s *PortfolioService) validateConcurrent(ctx context.Context, requests []TransactionRequest) ([]AddTransactionResult, []AddTransactionResult) {
	resultChan := make(chan AddTransactionResult, len(requests))
	var wg sync.WaitGroup

	for i, req := range requests {
		wg.Add(1)
		go func(i int, req TransactionRequest) {
			defer wg.Done()

			r := AddTransactionResult{Index: i, Symbol: domain.NormalizeSymbol(req.Symbol)}
			if err := ctx.Err(); err != nil {
				r.Error = err.Error()
				resultChan <- r
				return
			}

			t, err := req.toTransaction()
			if err != nil {
				r.Error = err.Error()
			} else {
				r.Transaction = &t
			}
			resultChan <- r
		}(i, req)
	}

	// Close channel when all goroutines complete
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	var valid, failed []AddTransactionResult
	for r := range resultChan {
		if r.Error != "" {
			failed = append(failed, r)
		} else {
			valid = append(valid, r)
		}
	}

	sortResults(valid)
	sortResults(failed)
	return valid, failed
}

func (s *PortfolioService) hasUnpricedSymbols(txns []domain.Transaction) bool {
	snap := s.Snapshot()
	for _, t := range txns {
		if _, ok := snap.Lookup(t.Symbol); !ok {
			return true
		}
	}
	return false
}

func sortResults(results []AddTransactionResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })
}
