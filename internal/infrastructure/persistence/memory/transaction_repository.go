package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jmanzanog/gainbase/internal/domain"
)

// TransactionRepository keeps the ledger in process memory. Stored values are
// copies, so callers cannot mutate the ledger through returned pointers.
type TransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]domain.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		transactions: make(map[string]domain.Transaction),
	}
}

func (r *TransactionRepository) Save(ctx context.Context, txn *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions[txn.ID] = *txn
	return nil
}

func (r *TransactionRepository) SaveAll(ctx context.Context, txns []domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range txns {
		r.transactions[t.ID] = t
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txn, exists := r.transactions[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}

	return &txn, nil
}

func (r *TransactionRepository) FindAll(ctx context.Context) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	txns := make([]domain.Transaction, 0, len(r.transactions))
	for _, t := range r.transactions {
		txns = append(txns, t)
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})

	return txns, nil
}

func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.transactions[id]; !exists {
		return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}

	delete(r.transactions, id)
	return nil
}

var _ domain.TransactionRepository = (*TransactionRepository)(nil)
