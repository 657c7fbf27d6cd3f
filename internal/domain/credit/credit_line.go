package credit

import (
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Messages surfaced verbatim to the user
const (
	MsgNegativeLimit  = "Credit limit cannot be negative."
	MsgDuplicateLine  = "Credit line for this category already exists."
	MsgLineNotFoundFn = "No credit limit found for customer '%s' and category '%s'.\n\nPlease set up credit limit in customer form first."
)

// CreditLine is the configured credit ceiling of one customer in one product
// category. CreditUsed is the last computed exposure; only the usage
// recompute path writes it.
type CreditLine struct {
	shared.TenantAggregateRoot
	CustomerID        uuid.UUID
	ProductCategoryID uuid.UUID
	CreditLimit       decimal.Decimal
	IsInfiniteCredit  bool
	CreditUsed        decimal.Decimal
	// ExposureOrders is the number of orders counted into CreditUsed
	ExposureOrders int
	RecomputedAt   *time.Time
}

// NewCreditLine creates a credit line. An infinite line always stores a zero
// limit.
func NewCreditLine(tenantID, customerID, categoryID uuid.UUID, limit decimal.Decimal, infinite bool) (*CreditLine, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer is required")
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError("Product category is required")
	}
	if err := validateLimit(limit, infinite); err != nil {
		return nil, err
	}

	line := &CreditLine{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		ProductCategoryID:   categoryID,
		IsInfiniteCredit:    infinite,
		CreditLimit:         normalizeLimit(limit, infinite),
		CreditUsed:          decimal.Zero,
	}

	line.AddDomainEvent(NewCreditLineCreatedEvent(line))

	return line, nil
}

// SetLimit changes the limit or the infinite flag. Turning infinite on
// clears any entered limit.
func (l *CreditLine) SetLimit(limit decimal.Decimal, infinite bool) error {
	if err := validateLimit(limit, infinite); err != nil {
		return err
	}

	l.IsInfiniteCredit = infinite
	l.CreditLimit = normalizeLimit(limit, infinite)
	l.UpdatedAt = time.Now()

	l.AddDomainEvent(NewCreditLineUpdatedEvent(l))

	return nil
}

// MoveToCategory re-keys the line onto another category. Uniqueness of the
// new pair is the caller's concern.
func (l *CreditLine) MoveToCategory(categoryID uuid.UUID) error {
	if categoryID == uuid.Nil {
		return shared.NewValidationError("Product category is required")
	}
	if categoryID == l.ProductCategoryID {
		return nil
	}
	l.ProductCategoryID = categoryID
	l.CreditUsed = decimal.Zero
	l.ExposureOrders = 0
	l.RecomputedAt = nil
	l.UpdatedAt = time.Now()

	l.AddDomainEvent(NewCreditLineUpdatedEvent(l))

	return nil
}

// RecordUsage stores a freshly computed exposure over the given number of orders
func (l *CreditLine) RecordUsage(used decimal.Decimal, orders int, at time.Time) error {
	if used.IsNegative() {
		return shared.NewDomainError(shared.CodeConsistency, "Computed credit usage cannot be negative")
	}
	l.CreditUsed = used
	l.ExposureOrders = orders
	l.RecomputedAt = &at
	l.UpdatedAt = at
	return nil
}

// MarkDeleted raises CreditLineDeleted
func (l *CreditLine) MarkDeleted() {
	l.AddDomainEvent(NewCreditLineDeletedEvent(l))
}

// AssignedLimit returns the limit, or unbounded for an infinite line
func (l *CreditLine) AssignedLimit() Amount {
	if l.IsInfiniteCredit {
		return Unbounded()
	}
	return Bounded(l.CreditLimit)
}

// Remaining returns limit minus the stored usage, or unbounded
func (l *CreditLine) Remaining() Amount {
	return RemainingFor(l, l.CreditUsed)
}

// RemainingFor returns limit minus used for the line, or unbounded
func RemainingFor(l *CreditLine, used decimal.Decimal) Amount {
	if l.IsInfiniteCredit {
		return Unbounded()
	}
	return Bounded(l.CreditLimit.Sub(used))
}

func validateLimit(limit decimal.Decimal, infinite bool) error {
	if !infinite && limit.IsNegative() {
		return shared.NewValidationError(MsgNegativeLimit)
	}
	return nil
}

func normalizeLimit(limit decimal.Decimal, infinite bool) decimal.Decimal {
	if infinite {
		return decimal.Zero
	}
	return limit
}
