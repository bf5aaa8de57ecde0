package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
)

const selectTransactions = `
        SELECT id, symbol, type, quantity, price, trade_date, currency, broker
        FROM transactions`

type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Save(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err := r.db.Dialect.UpsertTransaction(ctx, tx, t); err != nil {
			slog.Error("Failed to save transaction", "transaction_id", t.ID, "error", err)
			return fmt.Errorf("upsert transaction: %w", err)
		}
		return nil
	})
}

func (r *Repository) SaveAll(ctx context.Context, txns []domain.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for i := range txns {
			if err := r.db.Dialect.UpsertTransaction(ctx, tx, &txns[i]); err != nil {
				slog.Error("Failed to save transaction", "transaction_id", txns[i].ID, "index", i, "error", err)
				return fmt.Errorf("upsert transaction %s: %w", txns[i].ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := r.rebind(selectTransactions + " WHERE id = $1")

	row := r.db.QueryRowContext(ctx, query, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		slog.Debug("Transaction not found", "id", id)
		return nil, fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
	}
	if err != nil {
		slog.Error("Failed to find transaction", "id", id, "error", err)
		return nil, fmt.Errorf("querying transaction: %w", err)
	}
	return &t, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]domain.Transaction, error) {
	query := selectTransactions + " ORDER BY trade_date, id"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer func(rows *sql.Rows) {
		err := rows.Close()
		if err != nil {
			slog.Error("Failed to close rows", "error", err)
		}
	}(rows)

	txns := []domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return txns, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, r.rebind("DELETE FROM transactions WHERE id = $1"), id)
		if err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", domain.ErrTransactionNotFound, id)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var t domain.Transaction
	var txType string
	var tradeDate time.Time
	// Oracle stores empty strings as NULL.
	var currency, broker sql.NullString

	if err := row.Scan(&t.ID, &t.Symbol, &txType, &t.Quantity, &t.Price, &tradeDate, &currency, &broker); err != nil {
		return domain.Transaction{}, err
	}

	t.Type = domain.TransactionType(txType)
	t.Date = domain.TruncateDate(tradeDate)
	t.Currency = currency.String
	t.Broker = broker.String
	return t, nil
}

func (r *Repository) rebind(query string) string {
	if r.db.Dialect.Name() == "oracle" {
		for i := 1; i <= 10; i++ {
			query = strings.ReplaceAll(query, fmt.Sprintf("$%d", i), fmt.Sprintf(":%d", i))
		}
	}
	return query
}

var _ domain.TransactionRepository = (*Repository)(nil)
