package sqldb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmanzanog/gainbase/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionColumns = []string{"id", "symbol", "type", "quantity", "price", "trade_date", "currency", "broker"}

func newMockRepository(t *testing.T, dialect Dialect) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewRepository(New(db, dialect)), mock
}

func TestRepository_FindAll_MapsRows(t *testing.T) {
	repo, mock := newMockRepository(t, &PostgresDialect{})

	day := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(transactionColumns).
		AddRow("a", "TCS", "BUY", "10", "3500.50", day, "INR", "Zerodha").
		AddRow("b", "TCS", "SELL", []byte("2"), 3600.0, day.Add(26*time.Hour), nil, nil)
	mock.ExpectQuery(`FROM transactions ORDER BY trade_date, id`).WillReturnRows(rows)

	txns, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "a", txns[0].ID)
	assert.Equal(t, domain.TransactionTypeBuy, txns[0].Type)
	assert.True(t, txns[0].Price.Equal(domain.MustDecimal("3500.50")))
	assert.Equal(t, "Zerodha", txns[0].Broker)

	assert.Equal(t, domain.TransactionTypeSell, txns[1].Type)
	assert.True(t, txns[1].Quantity.Equal(domain.NewDecimalFromInt(2)))
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), txns[1].Date)
	assert.Empty(t, txns[1].Currency)
	assert.Empty(t, txns[1].Broker)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindAll_Empty(t *testing.T) {
	repo, mock := newMockRepository(t, &PostgresDialect{})
	mock.ExpectQuery(`FROM transactions`).WillReturnRows(sqlmock.NewRows(transactionColumns))

	txns, err := repo.FindAll(context.Background())

	assert.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)
}

func TestRepository_FindAll_QueryError(t *testing.T) {
	repo, mock := newMockRepository(t, &PostgresDialect{})
	mock.ExpectQuery(`FROM transactions`).WillReturnError(errors.New("connection reset"))

	_, err := repo.FindAll(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "querying transactions")
}

func TestRepository_FindByID(t *testing.T) {
	tests := []struct {
		name       string
		dialect    Dialect
		queryRegex string
	}{
		{"postgres placeholders", &PostgresDialect{}, `WHERE id = \$1`},
		{"oracle placeholders", &OracleDialect{}, `WHERE id = :1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t, tt.dialect)
			rows := sqlmock.NewRows(transactionColumns).
				AddRow("a", "INFY", "BUY", "1", "1500", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "INR", "")
			mock.ExpectQuery(tt.queryRegex).WithArgs("a").WillReturnRows(rows)

			txn, err := repo.FindByID(context.Background(), "a")
			require.NoError(t, err)
			assert.Equal(t, "INFY", txn.Symbol)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t, &PostgresDialect{})
	mock.ExpectQuery(`WHERE id = \$1`).WithArgs("missing").WillReturnRows(sqlmock.NewRows(transactionColumns))

	_, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestRepository_Save(t *testing.T) {
	repo, mock := newMockRepository(t, &PostgresDialect{})
	txn := sampleTransaction()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.Save(context.Background(), &txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveAll_RollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepository(t, &PostgresDialect{})
	first, second := sampleTransaction(), sampleTransaction()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO transactions`).WithArgs(first.ID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO transactions`).WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	err := repo.SaveAll(context.Background(), []domain.Transaction{first, second})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), second.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SaveAll_Empty(t *testing.T) {
	repo, mock := newMockRepository(t, &PostgresDialect{})

	assert.NoError(t, repo.SaveAll(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Delete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{"deleted", 1, nil},
		{"unknown id", 0, domain.ErrTransactionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockRepository(t, &OracleDialect{})

			mock.ExpectBegin()
			mock.ExpectExec(`DELETE FROM transactions WHERE id = :1`).WithArgs("a").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			if tt.wantErr != nil {
				mock.ExpectRollback()
			} else {
				mock.ExpectCommit()
			}

			err := repo.Delete(context.Background(), "a")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
