package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
)

type TransactionType string

const (
	TransactionTypeBuy  TransactionType = "BUY"
	TransactionTypeSell TransactionType = "SELL"
)

// ParseTransactionType accepts any casing ("buy", "Sell").
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case TransactionTypeBuy, TransactionTypeSell:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, s)
	}
}

// Transaction is one trade in the ledger. It is replaced as a whole on edit.
type Transaction struct {
	ID       string          `json:"id"`
	Symbol   string          `json:"symbol"`
	Type     TransactionType `json:"type"`
	Quantity Decimal         `json:"quantity"`
	Price    Decimal         `json:"price"`
	Date     time.Time       `json:"date"`
	Currency string          `json:"currency"`
	Broker   string          `json:"broker,omitempty"`
}

func NewTransaction(symbol string, txType TransactionType, quantity, price Decimal, date time.Time, currency, broker string) Transaction {
	return Transaction{
		ID:       uuid.New().String(),
		Symbol:   NormalizeSymbol(symbol),
		Type:     txType,
		Quantity: quantity,
		Price:    price,
		Date:     TruncateDate(date),
		Currency: strings.ToUpper(strings.TrimSpace(currency)),
		Broker:   strings.TrimSpace(broker),
	}
}

// Validate reports the first contract violation wrapped in ErrInvalidTransaction.
func (t Transaction) Validate() error {
	switch {
	case t.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidTransaction)
	case NormalizeSymbol(t.Symbol) == "":
		return fmt.Errorf("%w: missing symbol", ErrInvalidTransaction)
	case t.Type != TransactionTypeBuy && t.Type != TransactionTypeSell:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, t.Type)
	case t.Quantity.Sign() <= 0:
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidTransaction, t.Quantity)
	case t.Price.Sign() < 0:
		return fmt.Errorf("%w: price must not be negative, got %s", ErrInvalidTransaction, t.Price)
	case t.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}

// Amount is quantity × execution price.
func (t Transaction) Amount() float64 {
	return t.Quantity.Float64() * t.Price.Float64()
}

// SignedQuantity is positive for BUY and negative for SELL.
func (t Transaction) SignedQuantity() float64 {
	if t.Type == TransactionTypeSell {
		return -t.Quantity.Float64()
	}
	return t.Quantity.Float64()
}

// NormalizeSymbol is the single place symbols are canonicalised; every
// lookup between the ledger and the price snapshot goes through it.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// TruncateDate drops the time of day, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
