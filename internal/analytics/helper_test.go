package analytics

import (
	"fmt"
	"time"

	"github.com/jmanzanog/gainbase/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var seq int

func txn(symbol string, typ domain.TransactionType, qty, price float64, on time.Time) domain.Transaction {
	seq++
	return domain.Transaction{
		ID:       fmt.Sprintf("t-%d", seq),
		Symbol:   symbol,
		Type:     typ,
		Quantity: domain.NewDecimalFromFloat(qty),
		Price:    domain.NewDecimalFromFloat(price),
		Date:     on,
		Currency: "INR",
	}
}

func buy(symbol string, qty, price float64, on time.Time) domain.Transaction {
	return txn(symbol, domain.TransactionTypeBuy, qty, price, on)
}

func sell(symbol string, qty, price float64, on time.Time) domain.Transaction {
	return txn(symbol, domain.TransactionTypeSell, qty, price, on)
}

func withBroker(t domain.Transaction, broker string) domain.Transaction {
	t.Broker = broker
	return t
}

func snapshot(tickers ...domain.Ticker) domain.Snapshot {
	return domain.NewSnapshot(tickers, date(2024, 6, 1))
}
