package sqldb

import (
	"context"
	"database/sql"

	"github.com/jmanzanog/gainbase/internal/domain"
)

type Dialect interface {
	Name() string
	Migrate(ctx context.Context, db *sql.DB) error
	UpsertTransaction(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
}
