package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the posting status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusPosted    InvoiceStatus = "POSTED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusPosted, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusDraft:
		return target == InvoiceStatusPosted || target == InvoiceStatusCancelled
	case InvoiceStatusPosted:
		return target == InvoiceStatusCancelled
	}
	return false
}

// MoveType distinguishes customer invoices from other journal entries
type MoveType string

const (
	MoveTypeCustomerInvoice MoveType = "out_invoice"
	MoveTypeCustomerRefund  MoveType = "out_refund"
)

// IsValid checks if the move type is known
func (t MoveType) IsValid() bool {
	return t == MoveTypeCustomerInvoice || t == MoveTypeCustomerRefund
}

// PaymentState is derived from residual vs total
type PaymentState string

const (
	PaymentStateNotPaid PaymentState = "not_paid"
	PaymentStatePartial PaymentState = "partial"
	PaymentStatePaid    PaymentState = "paid"
)

// ResidualSource records what moved an invoice residual
type ResidualSource string

const (
	ResidualSourcePayment        ResidualSource = "payment"
	ResidualSourcePaymentCancel  ResidualSource = "payment_cancel"
	ResidualSourceReconciliation ResidualSource = "reconciliation"
	ResidualSourceUnreconcile    ResidualSource = "unreconcile"
)

// Invoice is a customer journal entry with an unpaid residual. The residual
// is only ever changed through ReduceResidual and RestoreResidual, which keep
// it within [0, AmountTotal].
type Invoice struct {
	shared.TenantAggregateRoot
	Number            string
	MoveType          MoveType
	Status            InvoiceStatus
	CustomerID        uuid.UUID
	CustomerName      string
	SalesOrderID      *uuid.UUID
	InvoiceOrigin     string // originating sales order number
	ProductCategoryID *uuid.UUID
	AmountTotal       decimal.Decimal
	AmountResidual    decimal.Decimal
	InvoiceDate       time.Time
	DueDate           *time.Time
	PostedAt          *time.Time
	CancelledAt       *time.Time
}

// NewInvoice creates a draft invoice
func NewInvoice(
	tenantID uuid.UUID,
	number string,
	moveType MoveType,
	customerID uuid.UUID,
	customerName string,
	amount decimal.Decimal,
	invoiceDate time.Time,
) (*Invoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if !moveType.IsValid() {
		return nil, shared.NewDomainError("INVALID_MOVE_TYPE", fmt.Sprintf("Unknown move type: %s", moveType))
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		MoveType:            moveType,
		Status:              InvoiceStatusDraft,
		CustomerID:          customerID,
		CustomerName:        customerName,
		AmountTotal:         amount,
		AmountResidual:      amount,
		InvoiceDate:         shared.DateOnly(invoiceDate),
	}

	return inv, nil
}

// AttachOrigin links the invoice to the sales order it bills. The invoice
// inherits the order's product category.
func (i *Invoice) AttachOrigin(orderID uuid.UUID, orderNumber string, categoryID *uuid.UUID) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Origin can only be set on draft invoices")
	}
	i.SalesOrderID = &orderID
	i.InvoiceOrigin = orderNumber
	if categoryID != nil {
		c := *categoryID
		i.ProductCategoryID = &c
	}
	i.UpdatedAt = time.Now()
	return nil
}

// SetDueDate sets the date the invoice falls due
func (i *Invoice) SetDueDate(due *time.Time) error {
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot change due date of a cancelled invoice")
	}
	if due == nil {
		i.DueDate = nil
	} else {
		d := shared.DateOnly(*due)
		i.DueDate = &d
	}
	i.UpdatedAt = time.Now()
	return nil
}

// Post posts the invoice to the ledger. A due date is required so the
// invoice can age.
func (i *Invoice) Post() error {
	if !i.Status.CanTransitionTo(InvoiceStatusPosted) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post invoice in %s status", i.Status))
	}
	if i.DueDate == nil {
		return shared.NewValidationError("Due date is required to post an invoice")
	}

	now := time.Now()
	i.Status = InvoiceStatusPosted
	i.PostedAt = &now
	i.UpdatedAt = now

	i.AddDomainEvent(NewInvoicePostedEvent(i))

	return nil
}

// Cancel cancels the invoice. A posted invoice stops counting as exposure.
// While payments or reconciliations still hold part of the residual the
// invoice cannot be cancelled, since they could then never be undone.
func (i *Invoice) Cancel() error {
	if !i.Status.CanTransitionTo(InvoiceStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel invoice in %s status", i.Status))
	}
	if i.IsPosted() && i.AmountResidual.LessThan(i.AmountTotal) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot cancel invoice with applied payments or reconciliations. Cancel them first")
	}

	wasPosted := i.Status == InvoiceStatusPosted
	now := time.Now()
	i.Status = InvoiceStatusCancelled
	i.CancelledAt = &now
	i.UpdatedAt = now

	if wasPosted {
		i.AddDomainEvent(NewInvoiceCancelledEvent(i))
	}

	return nil
}

// ReduceResidual lowers the residual by min(amount, residual) and returns the
// amount actually applied.
func (i *Invoice) ReduceResidual(amount decimal.Decimal, source ResidualSource) (decimal.Decimal, error) {
	if !i.IsPosted() {
		return decimal.Zero, shared.NewDomainError("INVALID_STATE", "Residual can only change on posted invoices")
	}
	if !amount.IsPositive() {
		return decimal.Zero, shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if err := i.checkResidualBounds(); err != nil {
		return decimal.Zero, err
	}

	applied := decimal.Min(amount, i.AmountResidual)
	if applied.IsZero() {
		return decimal.Zero, nil
	}

	old := i.AmountResidual
	i.AmountResidual = i.AmountResidual.Sub(applied)
	i.UpdatedAt = time.Now()

	i.AddDomainEvent(NewInvoiceResidualChangedEvent(i, old, source))

	return applied, nil
}

// RestoreResidual adds amount back to the residual. Restoring past the
// invoice total means the ledger and this invoice disagree; that is reported
// as a consistency error and nothing changes.
func (i *Invoice) RestoreResidual(amount decimal.Decimal, source ResidualSource) error {
	if !i.IsPosted() {
		return shared.NewDomainError("INVALID_STATE", "Residual can only change on posted invoices")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if err := i.checkResidualBounds(); err != nil {
		return err
	}

	restored := i.AmountResidual.Add(amount)
	if restored.GreaterThan(i.AmountTotal) {
		return shared.NewDomainError(shared.CodeConsistency, fmt.Sprintf(
			"Invoice %s residual would exceed its total (%s > %s)",
			i.Number, restored.StringFixed(2), i.AmountTotal.StringFixed(2)))
	}

	old := i.AmountResidual
	i.AmountResidual = restored
	i.UpdatedAt = time.Now()

	i.AddDomainEvent(NewInvoiceResidualChangedEvent(i, old, source))

	return nil
}

func (i *Invoice) checkResidualBounds() error {
	if i.AmountResidual.IsNegative() || i.AmountResidual.GreaterThan(i.AmountTotal) {
		return shared.NewDomainError(shared.CodeConsistency, fmt.Sprintf(
			"Invoice %s residual %s is outside [0, %s]",
			i.Number, i.AmountResidual.StringFixed(2), i.AmountTotal.StringFixed(2)))
	}
	return nil
}

// IsCustomerInvoice returns true for out_invoice moves
func (i *Invoice) IsCustomerInvoice() bool {
	return i.MoveType == MoveTypeCustomerInvoice
}

// IsPosted returns true if the invoice is posted
func (i *Invoice) IsPosted() bool {
	return i.Status == InvoiceStatusPosted
}

// IsOpen returns true for posted customer invoices with a positive residual
func (i *Invoice) IsOpen() bool {
	return i.IsCustomerInvoice() && i.IsPosted() && i.AmountResidual.IsPositive()
}

// PaymentState derives the payment state from the residual
func (i *Invoice) PaymentState() PaymentState {
	switch {
	case i.AmountResidual.IsZero():
		return PaymentStatePaid
	case i.AmountResidual.LessThan(i.AmountTotal):
		return PaymentStatePartial
	}
	return PaymentStateNotPaid
}

// DaysOverdue returns whole days past the due date as of asOf, or 0
func (i *Invoice) DaysOverdue(asOf time.Time) int {
	if i.DueDate == nil {
		return 0
	}
	days := shared.DaysBetween(*i.DueDate, asOf)
	if days < 0 {
		return 0
	}
	return days
}
