package credit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is the computed state of one credit line at a point in time
type Snapshot struct {
	TenantID          uuid.UUID       `json:"tenant_id"`
	CreditLineID      uuid.UUID       `json:"credit_line_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID uuid.UUID       `json:"product_category_id"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	IsInfiniteCredit  bool            `json:"is_infinite_credit"`
	CreditUsed        decimal.Decimal `json:"credit_used"`
	OrderCount        int             `json:"order_count"`
	ComputedAt        time.Time       `json:"computed_at"`
}

// NewSnapshot builds a snapshot from a line and a computed usage
func NewSnapshot(line *CreditLine, used decimal.Decimal, orders int, at time.Time) *Snapshot {
	return &Snapshot{
		TenantID:          line.TenantID,
		CreditLineID:      line.ID,
		CustomerID:        line.CustomerID,
		ProductCategoryID: line.ProductCategoryID,
		CreditLimit:       line.CreditLimit,
		IsInfiniteCredit:  line.IsInfiniteCredit,
		CreditUsed:        used,
		OrderCount:        orders,
		ComputedAt:        at,
	}
}

// SnapshotFromLine rebuilds a snapshot from the usage last persisted on the
// line, without touching the ledger. A line never recomputed reports asOf.
func SnapshotFromLine(line *CreditLine, asOf time.Time) *Snapshot {
	at := asOf
	if line.RecomputedAt != nil {
		at = *line.RecomputedAt
	}
	return NewSnapshot(line, line.CreditUsed, line.ExposureOrders, at)
}

// AssignedLimit returns the limit, or unbounded
func (s *Snapshot) AssignedLimit() Amount {
	if s.IsInfiniteCredit {
		return Unbounded()
	}
	return Bounded(s.CreditLimit)
}

// Remaining returns limit minus used, or unbounded
func (s *Snapshot) Remaining() Amount {
	if s.IsInfiniteCredit {
		return Unbounded()
	}
	return Bounded(s.CreditLimit.Sub(s.CreditUsed))
}

// RemainingDisplay renders remaining as "∞" or #,##0.00
func (s *Snapshot) RemainingDisplay() string {
	return s.Remaining().Display()
}

// Exceeds reports whether an order of the given total would overrun the
// remaining credit
func (s *Snapshot) Exceeds(orderTotal decimal.Decimal) bool {
	return s.Remaining().LessThan(orderTotal)
}

// SnapshotCache stores computed snapshots keyed by (tenant, customer,
// category). Implementations must treat a missing entry as a miss, not an
// error.
type SnapshotCache interface {
	Get(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*Snapshot, bool, error)
	Set(ctx context.Context, snapshot *Snapshot) error
	Invalidate(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) error
	InvalidateCustomer(ctx context.Context, tenantID, customerID uuid.UUID) error
}
