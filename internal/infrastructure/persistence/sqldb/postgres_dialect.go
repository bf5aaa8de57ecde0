package sqldb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/persistence/sqldb/migrations"
	"github.com/pressly/goose/v3"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.PostgresFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "postgres"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

func (d *PostgresDialect) UpsertTransaction(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, symbol, type, quantity, price, trade_date, currency, broker)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			type = EXCLUDED.type,
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			trade_date = EXCLUDED.trade_date,
			currency = EXCLUDED.currency,
			broker = EXCLUDED.broker,
			updated_at = NOW()
	`
	_, err := tx.ExecContext(ctx, query, t.ID, t.Symbol, string(t.Type), t.Quantity, t.Price, t.Date, t.Currency, t.Broker)
	return err
}
