package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type DB struct {
	*sql.DB
	Dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *DB {
	return &DB{
		DB:      db,
		Dialect: dialect,
	}
}

// DialectFor maps a DB_DRIVER value to its dialect and database/sql driver name.
func DialectFor(driver string) (Dialect, string, error) {
	switch driver {
	case "postgres":
		return &PostgresDialect{}, "pgx", nil
	case "oracle":
		return &OracleDialect{}, "oracle", nil
	default:
		return nil, "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Open connects with the named driver, verifies the connection and applies migrations.
// The caller must have imported the matching database/sql driver.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	dialect, sqlDriver, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	raw, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	raw.SetMaxOpenConns(10)
	raw.SetConnMaxIdleTime(5 * time.Minute)

	if err := raw.PingContext(ctx); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	if err := dialect.Migrate(ctx, raw); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}

	return New(raw, dialect), nil
}

func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}
