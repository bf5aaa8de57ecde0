package domain

import "context"

// TransactionRepository persists the ledger.
// All methods accept context.Context to enable proper timeout handling,
// cancellation propagation, and request-scoped values like tracing IDs.
type TransactionRepository interface {
	// Save inserts txn or replaces the stored transaction with the same ID.
	Save(ctx context.Context, txn *Transaction) error
	// SaveAll stores every transaction or none of them.
	SaveAll(ctx context.Context, txns []Transaction) error
	FindByID(ctx context.Context, id string) (*Transaction, error)
	// FindAll returns the ledger ordered by date, then id.
	FindAll(ctx context.Context) ([]Transaction, error)
	// Delete returns ErrTransactionNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
}
