package finance

import (
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeInvoice        = "Invoice"
	AggregateTypePayment        = "Payment"
	AggregateTypeReconciliation = "Reconciliation"
)

// Event type constants for invoices
const (
	EventTypeInvoicePosted          = "InvoicePosted"
	EventTypeInvoiceResidualChanged = "InvoiceResidualChanged"
	EventTypeInvoiceCancelled       = "InvoiceCancelled"
)

// InvoicePostedEvent is raised when a customer invoice is posted
type InvoicePostedEvent struct {
	shared.BaseDomainEvent
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	Number            string          `json:"number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	SalesOrderID      *uuid.UUID      `json:"sales_order_id,omitempty"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id,omitempty"`
	AmountTotal       decimal.Decimal `json:"amount_total"`
}

// NewInvoicePostedEvent creates a new InvoicePostedEvent
func NewInvoicePostedEvent(inv *Invoice) *InvoicePostedEvent {
	return &InvoicePostedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeInvoicePosted, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:         inv.ID,
		Number:            inv.Number,
		CustomerID:        inv.CustomerID,
		SalesOrderID:      inv.SalesOrderID,
		ProductCategoryID: inv.ProductCategoryID,
		AmountTotal:       inv.AmountTotal,
	}
}

// InvoiceResidualChangedEvent is raised whenever the unpaid residual moves
type InvoiceResidualChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id,omitempty"`
	OldResidual       decimal.Decimal `json:"old_residual"`
	NewResidual       decimal.Decimal `json:"new_residual"`
	Source            ResidualSource  `json:"source"`
}

// NewInvoiceResidualChangedEvent creates a new InvoiceResidualChangedEvent
func NewInvoiceResidualChangedEvent(inv *Invoice, oldResidual decimal.Decimal, source ResidualSource) *InvoiceResidualChangedEvent {
	return &InvoiceResidualChangedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeInvoiceResidualChanged, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:         inv.ID,
		CustomerID:        inv.CustomerID,
		ProductCategoryID: inv.ProductCategoryID,
		OldResidual:       oldResidual,
		NewResidual:       inv.AmountResidual,
		Source:            source,
	}
}

// InvoiceCancelledEvent is raised when a posted invoice is cancelled
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID         uuid.UUID  `json:"invoice_id"`
	CustomerID        uuid.UUID  `json:"customer_id"`
	ProductCategoryID *uuid.UUID `json:"product_category_id,omitempty"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:         inv.ID,
		CustomerID:        inv.CustomerID,
		ProductCategoryID: inv.ProductCategoryID,
	}
}
