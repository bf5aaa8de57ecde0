package domain

import (
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Decimal wraps apd.Decimal so ledger quantities and prices keep their exact
// textual form through the database and JSON layers. The analytics engine
// works on float64 and converts with Float64.
type Decimal struct {
	apd.Decimal
}

// DefaultContext is used for ledger arithmetic.
var DefaultContext = apd.BaseContext.WithPrecision(20)

var Zero = NewDecimalFromInt(0)

func NewDecimalFromInt(v int64) Decimal {
	d := Decimal{}
	d.SetInt64(v)
	return d
}

func NewDecimalFromString(v string) (Decimal, error) {
	d := Decimal{}
	if _, _, err := d.SetString(v); err != nil {
		return d, fmt.Errorf("invalid decimal string %q: %w", v, err)
	}
	return d, nil
}

// NewDecimalFromFloat uses the shortest representation that round-trips,
// so 0.1 is stored as "0.1" rather than its binary expansion.
func NewDecimalFromFloat(v float64) Decimal {
	d := Decimal{}
	_, _, _ = d.SetString(strconv.FormatFloat(v, 'f', -1, 64))
	return d
}

// MustDecimal panics on malformed input. Intended for literals in tests and fixtures.
func MustDecimal(v string) Decimal {
	d, err := NewDecimalFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Decimal) String() string {
	return d.Decimal.Text('f')
}

// Float64 returns the nearest float64. Out-of-range values saturate the way
// strconv does; the ledger never carries such magnitudes.
func (d Decimal) Float64() float64 {
	f, err := d.Decimal.Float64()
	if err != nil {
		return 0
	}
	return f
}

func (d Decimal) Mul(other Decimal) (Decimal, error) {
	res := Decimal{}
	if _, err := DefaultContext.Mul(&res.Decimal, &d.Decimal, &other.Decimal); err != nil {
		return res, fmt.Errorf("mul operation failed: %w", err)
	}
	return res, nil
}

func (d Decimal) IsZero() bool {
	return d.Decimal.IsZero()
}

func (d Decimal) Sign() int {
	return d.Decimal.Sign()
}

func (d Decimal) Equal(other Decimal) bool {
	return d.Decimal.Cmp(&other.Decimal) == 0
}

// Value implements driver.Valuer.
func (d Decimal) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Decimal) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.SetInt64(0)
		return nil
	case []byte:
		_, _, err := d.SetString(string(v))
		return err
	case string:
		_, _, err := d.SetString(v)
		return err
	case int64:
		d.SetInt64(v)
		return nil
	case float64:
		_, err := d.SetFloat64(v)
		return err
	default:
		return fmt.Errorf("unsupported type for Decimal scan: %T", value)
	}
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts both bare numbers and quoted strings.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) > 1 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	_, _, err := d.SetString(s)
	return err
}

// MarshalCSV and UnmarshalCSV let gocsv read and write ledger spreadsheets.
func (d Decimal) MarshalCSV() (string, error) {
	return d.String(), nil
}

func (d *Decimal) UnmarshalCSV(s string) error {
	parsed, err := NewDecimalFromString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
