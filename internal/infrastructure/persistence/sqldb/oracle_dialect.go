package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/jmanzanog/gainbase/internal/infrastructure/persistence/sqldb/migrations"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) Migrate(ctx context.Context, db *sql.DB) error {
	// Goose does not support Oracle natively in a way that is easy to cross-compile with go-ora.
	// Read the SQL file and execute it statement by statement.
	content, err := migrations.OracleFS.ReadFile("oracle/20240101000000_init.sql")
	if err != nil {
		return fmt.Errorf("reading migration file: %w", err)
	}

	// Split statements by '/' which is standard in Oracle scripts
	statements := strings.Split(string(content), "/")

	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}

		if _, err := db.ExecContext(ctx, stmt); err != nil {
			// ORA-00955: name is already used by an existing object
			if !strings.Contains(err.Error(), "ORA-00955") {
				return fmt.Errorf("migrating: %s: %w", stmt, err)
			}
		}
	}
	return nil
}

func (d *OracleDialect) UpsertTransaction(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error {
	query := `MERGE INTO transactions t
             USING (SELECT :1 as id_val FROM dual) s
             ON (t.id = s.id_val)
             WHEN MATCHED THEN
               UPDATE SET
                 symbol = :2,
                 type = :3,
                 quantity = :4,
                 price = :5,
                 trade_date = :6,
                 currency = :7,
                 broker = :8,
                 updated_at = SYSTIMESTAMP
             WHEN NOT MATCHED THEN
               INSERT (id, symbol, type, quantity, price, trade_date, currency, broker)
               VALUES (:9, :10, :11, :12, :13, :14, :15, :16)`

	_, err := tx.ExecContext(ctx, query,
		t.ID,           // 1 (s.id_val)
		t.Symbol,       // 2 (UPDATE)
		string(t.Type), // 3
		t.Quantity,     // 4
		t.Price,        // 5
		t.Date,         // 6
		t.Currency,     // 7
		t.Broker,       // 8
		t.ID,           // 9 (INSERT)
		t.Symbol,       // 10
		string(t.Type), // 11
		t.Quantity,     // 12
		t.Price,        // 13
		t.Date,         // 14
		t.Currency,     // 15
		t.Broker,       // 16
	)
	return err
}
