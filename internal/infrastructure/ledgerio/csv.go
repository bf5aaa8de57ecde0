// Package ledgerio moves the transaction ledger in and out of the service:
// spreadsheet-compatible CSV and the JSON backup document.
package ledgerio

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/jmanzanog/gainbase/internal/domain"
)

const dateLayout = "2006-01-02"

var ErrEmptyImport = errors.New("csv contains no transactions")

// csvRow is one spreadsheet line. Header names match the export so a
// round-tripped file imports unchanged.
type csvRow struct {
	ID       string         `csv:"ID"`
	Symbol   string         `csv:"Symbol"`
	Type     string         `csv:"Type"`
	Quantity domain.Decimal `csv:"Quantity"`
	Price    domain.Decimal `csv:"Price"`
	Date     csvDate        `csv:"Date"`
	Currency string         `csv:"Currency"`
	Broker   string         `csv:"Broker"`
}

type csvDate struct {
	time.Time
}

func (d csvDate) MarshalCSV() (string, error) {
	return d.Format(dateLayout), nil
}

// UnmarshalCSV accepts a plain date or a full RFC 3339 timestamp.
func (d *csvDate) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
}

// ReadCSV parses and validates a ledger export. Rows without an ID get a
// fresh one. The whole file is rejected on the first invalid row.
func ReadCSV(r io.Reader) ([]domain.Transaction, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("%w: parsing csv: %v", domain.ErrInvalidTransaction, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}

	txns := make([]domain.Transaction, 0, len(rows))
	for i, row := range rows {
		txType, err := domain.ParseTransactionType(row.Type)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		txn := domain.NewTransaction(row.Symbol, txType, row.Quantity, row.Price, row.Date.Time, row.Currency, row.Broker)
		if id := strings.TrimSpace(row.ID); id != "" {
			txn.ID = id
		}
		if err := txn.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteCSV writes the ledger with a header line, in the order given.
func WriteCSV(w io.Writer, txns []domain.Transaction) error {
	rows := make([]csvRow, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, csvRow{
			ID:       t.ID,
			Symbol:   t.Symbol,
			Type:     string(t.Type),
			Quantity: t.Quantity,
			Price:    t.Price,
			Date:     csvDate{t.Date},
			Currency: t.Currency,
			Broker:   t.Broker,
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
