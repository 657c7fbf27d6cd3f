package credit

import (
	"encoding/json"

	"github.com/erp/credit/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InfinitySymbol is shown in place of an unbounded amount
const InfinitySymbol = "∞"

// Amount is a credit figure that is either a bounded decimal or unbounded.
// Unbounded amounts are never produced arithmetically.
type Amount struct {
	value     decimal.Decimal
	unbounded bool
}

// Bounded returns a finite amount
func Bounded(v decimal.Decimal) Amount {
	return Amount{value: v}
}

// Unbounded returns the infinite sentinel
func Unbounded() Amount {
	return Amount{unbounded: true}
}

// IsUnbounded reports whether the amount is the infinite sentinel
func (a Amount) IsUnbounded() bool {
	return a.unbounded
}

// Value returns the finite value. It is zero for an unbounded amount.
func (a Amount) Value() decimal.Decimal {
	if a.unbounded {
		return decimal.Zero
	}
	return a.value
}

// LessThan reports whether a finite amount is below x. An unbounded amount
// is never less than anything.
func (a Amount) LessThan(x decimal.Decimal) bool {
	return !a.unbounded && a.value.LessThan(x)
}

// Display renders "∞" or the amount grouped as #,##0.00
func (a Amount) Display() string {
	if a.unbounded {
		return InfinitySymbol
	}
	return valueobject.NewMoney(a.value).Grouped()
}

// Format renders the amount with a currency symbol, or label when unbounded
func (a Amount) Format(symbol, label string) string {
	if a.unbounded {
		return label
	}
	return valueobject.NewMoney(a.value).Format(symbol)
}

// MarshalJSON encodes an unbounded amount as null and a bounded one as a
// decimal string
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.unbounded {
		return []byte("null"), nil
	}
	return json.Marshal(a.value.StringFixed(2))
}

// UnmarshalJSON is the inverse of MarshalJSON
func (a *Amount) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Unbounded()
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Bounded(d)
	return nil
}
