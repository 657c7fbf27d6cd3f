package credit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Exposure is one confirmed or done order's claim on a credit line
type Exposure struct {
	OrderID    uuid.UUID
	OrderTotal decimal.Decimal
	// InvoiceResiduals holds the current residual of every posted customer
	// invoice of the order. Empty means the order is not invoiced yet.
	InvoiceResiduals []decimal.Decimal
}

// Contribution is what the order adds to credit used: the sum of its posted
// invoice residuals, or the full order total while uninvoiced.
func (e Exposure) Contribution() decimal.Decimal {
	if len(e.InvoiceResiduals) == 0 {
		return e.OrderTotal
	}
	sum := decimal.Zero
	for _, r := range e.InvoiceResiduals {
		sum = sum.Add(r)
	}
	return sum
}

// CalculateUsage sums the exposures into credit used
func CalculateUsage(exposures []Exposure) decimal.Decimal {
	used := decimal.Zero
	for _, e := range exposures {
		used = used.Add(e.Contribution())
	}
	return used
}
