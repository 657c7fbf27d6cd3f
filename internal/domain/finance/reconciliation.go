package finance

import (
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reconciliation is a partial-reconcile link between a debit move (a customer
// invoice) and a credit move (a refund, a payment line, or an external
// reference). It lowers the debit invoice residual by AppliedAmount while it
// exists.
type Reconciliation struct {
	shared.TenantAggregateRoot
	DebitInvoiceID   uuid.UUID
	DebitCustomerID  uuid.UUID
	CreditInvoiceID  *uuid.UUID
	CreditCustomerID *uuid.UUID
	CreditReference  string
	Amount           decimal.Decimal
	AppliedAmount    decimal.Decimal
	Removed          bool
	RemovedAt        *time.Time
}

// NewReconciliation links a debit invoice to a credit move. Either a credit
// invoice or a free-form reference identifies the credit side.
func NewReconciliation(
	tenantID uuid.UUID,
	debit *Invoice,
	creditInvoice *Invoice,
	creditReference string,
	amount decimal.Decimal,
) (*Reconciliation, error) {
	if debit == nil {
		return nil, shared.NewDomainError("INVALID_DEBIT", "Debit invoice is required")
	}
	if !debit.IsCustomerInvoice() || !debit.IsPosted() {
		return nil, shared.NewDomainError("INVALID_DEBIT", "Only posted customer invoices can be reconciled")
	}
	if creditInvoice == nil && strings.TrimSpace(creditReference) == "" {
		return nil, shared.NewDomainError("INVALID_CREDIT", "A credit move or reference is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Reconciled amount must be positive")
	}

	r := &Reconciliation{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		DebitInvoiceID:      debit.ID,
		DebitCustomerID:     debit.CustomerID,
		CreditReference:     strings.TrimSpace(creditReference),
		Amount:              amount,
		AppliedAmount:       decimal.Zero,
	}
	if creditInvoice != nil {
		id, cust := creditInvoice.ID, creditInvoice.CustomerID
		r.CreditInvoiceID = &id
		r.CreditCustomerID = &cust
		if r.CreditReference == "" {
			r.CreditReference = creditInvoice.Number
		}
	}

	return r, nil
}

// RecordApplied stores how much of the debit residual the link consumed and
// raises ReconciliationCreated.
func (r *Reconciliation) RecordApplied(applied decimal.Decimal) {
	r.AppliedAmount = applied
	r.UpdatedAt = time.Now()
	r.AddDomainEvent(NewReconciliationCreatedEvent(r))
}

// Remove undoes the link
func (r *Reconciliation) Remove() error {
	if r.Removed {
		return shared.NewDomainError("INVALID_STATE", "Reconciliation has already been removed")
	}

	now := time.Now()
	r.Removed = true
	r.RemovedAt = &now
	r.UpdatedAt = now

	r.AddDomainEvent(NewReconciliationRemovedEvent(r))

	return nil
}

// AffectedCustomers returns the distinct customers on both sides of the link
func (r *Reconciliation) AffectedCustomers() []uuid.UUID {
	ids := []uuid.UUID{r.DebitCustomerID}
	if r.CreditCustomerID != nil && *r.CreditCustomerID != r.DebitCustomerID {
		ids = append(ids, *r.CreditCustomerID)
	}
	return ids
}
