package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	creditapp "github.com/erp/credit/internal/application/credit"
	"github.com/erp/credit/internal/domain/catalog"
	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/shared/valueobject"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditUsage reads and rebuilds credit line snapshots
type CreditUsage interface {
	Snapshot(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.Snapshot, error)
	Recompute(ctx context.Context, tenantID, customerID, categoryID uuid.UUID, trigger string) (*credit.Snapshot, error)
}

// AgingReader computes a customer's aging profile as of a day
type AgingReader interface {
	Profile(ctx context.Context, tenantID, customerID uuid.UUID, asOf time.Time) (finance.AgingProfile, error)
}

const unlimitedLabel = "Unlimited"

// evaluation is everything a credit check looks at for one order
type evaluation struct {
	snapshot     *credit.Snapshot
	aging        finance.AgingProfile
	category     *catalog.Category
	businessUnit *catalog.Category
	gated        bool
	outcome      trade.CreditCheckOutcome
}

func (e *evaluation) requiredApprovals() []string {
	approvals := make([]string, 0, 2)
	if e.outcome.Exceeded {
		approvals = append(approvals, ApprovalSales)
	}
	if e.outcome.HasOverdue {
		approvals = append(approvals, ApprovalAccounting)
	}
	return approvals
}

// evaluate computes the outcome of checking order now. fresh forces a
// recompute of the credit line instead of reading the cached snapshot.
func (s *SalesOrderService) evaluate(ctx context.Context, order *trade.SalesOrder, fresh bool) (*evaluation, error) {
	if err := order.ValidateCreditInputs(); err != nil {
		return nil, err
	}

	ev := &evaluation{}
	var err error
	ev.category, err = s.categoryRepo.FindByIDForTenant(ctx, order.TenantID, *order.ProductCategoryID)
	if err != nil {
		return nil, err
	}

	if fresh {
		ev.snapshot, err = s.usage.Recompute(ctx, order.TenantID, order.CustomerID, ev.category.ID, creditapp.TriggerConfirmCheck)
	} else {
		ev.snapshot, err = s.usage.Snapshot(ctx, order.TenantID, order.CustomerID, ev.category.ID)
	}
	if err != nil {
		if errors.Is(err, creditapp.ErrNoCreditLine) {
			return nil, shared.NewValidationError(fmt.Sprintf(credit.MsgLineNotFoundFn, order.CustomerName, ev.category.Name))
		}
		return nil, err
	}

	ev.aging, err = s.aging.Profile(ctx, order.TenantID, order.CustomerID, s.clock())
	if err != nil {
		return nil, err
	}

	if order.BusinessUnitID != nil {
		ev.businessUnit, err = s.categoryRepo.FindByIDForTenant(ctx, order.TenantID, *order.BusinessUnitID)
		if err != nil {
			return nil, err
		}
	}
	ev.gated = s.gate.Applies(ev.businessUnit)

	ev.outcome = trade.CreditCheckOutcome{
		Exceeded:      ev.snapshot.Exceeds(order.TotalAmount),
		HasOverdue:    ev.aging.HasOverdue() && s.gate.RequiresApproval(ev.businessUnit),
		OverdueAmount: ev.aging.TotalOverdue,
	}
	return ev, nil
}

// statusMessage renders the notification posted after a credit check
func (s *SalesOrderService) statusMessage(order *trade.SalesOrder, ev *evaluation) string {
	snap := ev.snapshot
	var b strings.Builder
	b.WriteString("Credit & Overdue Check Results\n\n")
	fmt.Fprintf(&b, "Credit Limit: %s\n", snap.AssignedLimit().Format(s.symbol, unlimitedLabel))
	fmt.Fprintf(&b, "Used: %s\n", s.money(snap.CreditUsed))
	fmt.Fprintf(&b, "Available: %s\n", snap.Remaining().Format(s.symbol, unlimitedLabel))
	fmt.Fprintf(&b, "Overdue Amount: %s\n\n", s.money(ev.aging.TotalOverdue))
	fmt.Fprintf(&b, "Order Amount: %s\n\n", s.money(order.TotalAmount))

	if ev.outcome.Exceeded {
		b.WriteString("Credit limit exceeded - Sales approval required\n\n")
	}
	if ev.aging.HasOverdue() {
		b.WriteString(s.overdueLine(ev))
	}
	if !ev.outcome.Exceeded && !ev.outcome.HasOverdue {
		b.WriteString("All checks passed - Ready to confirm")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *SalesOrderService) overdueLine(ev *evaluation) string {
	bu := ev.businessUnit
	switch {
	case bu == nil:
		return "No business unit selected - Overdue check not applicable\n\n"
	case !ev.gated:
		return fmt.Sprintf("Business unit '%s' - Overdue check not applicable\n\n", bu.Name)
	case bu.OverrideCreditDays:
		return fmt.Sprintf("Override Credit Days CHECKED on '%s' - Accounting approval REQUIRED\n\n", bu.Name)
	default:
		return fmt.Sprintf("Override Credit Days UNCHECKED on '%s' - Accounting approval BYPASSED\n\n", bu.Name)
	}
}

func (s *SalesOrderService) money(d decimal.Decimal) string {
	return valueobject.NewMoney(d).Format(s.symbol)
}
