package finance

import (
	"time"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===================== Invoices =====================

// CreateInvoiceInput holds the fields of a new invoice. A customer invoice
// created from a sales order inherits the order's product category and, when
// DueDate is empty, a due date from the order's payment term.
type CreateInvoiceInput struct {
	Number            string          `json:"number" binding:"required,max=50"`
	MoveType          string          `json:"move_type" binding:"omitempty,oneof=out_invoice out_refund"`
	CustomerID        uuid.UUID       `json:"customer_id" binding:"required"`
	SalesOrderID      *uuid.UUID      `json:"sales_order_id"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id"`
	Amount            decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	InvoiceDate       *time.Time      `json:"invoice_date"`
	DueDate           *time.Time      `json:"due_date"`
}

// InvoiceListFilter defines paging for invoice lists
type InvoiceListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                uuid.UUID       `json:"id"`
	Number            string          `json:"number"`
	MoveType          string          `json:"move_type"`
	Status            string          `json:"status"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	SalesOrderID      *uuid.UUID      `json:"sales_order_id,omitempty"`
	InvoiceOrigin     string          `json:"invoice_origin,omitempty"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id,omitempty"`
	AmountTotal       decimal.Decimal `json:"amount_total"`
	AmountResidual    decimal.Decimal `json:"amount_residual"`
	PaymentState      string          `json:"payment_state"`
	InvoiceDate       time.Time       `json:"invoice_date"`
	DueDate           *time.Time      `json:"due_date,omitempty"`
	PostedAt          *time.Time      `json:"posted_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToInvoiceResponse converts an invoice to its response
func ToInvoiceResponse(inv *finance.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                inv.ID,
		Number:            inv.Number,
		MoveType:          string(inv.MoveType),
		Status:            inv.Status.String(),
		CustomerID:        inv.CustomerID,
		CustomerName:      inv.CustomerName,
		SalesOrderID:      inv.SalesOrderID,
		InvoiceOrigin:     inv.InvoiceOrigin,
		ProductCategoryID: inv.ProductCategoryID,
		AmountTotal:       inv.AmountTotal,
		AmountResidual:    inv.AmountResidual,
		PaymentState:      string(inv.PaymentState()),
		InvoiceDate:       inv.InvoiceDate,
		DueDate:           inv.DueDate,
		PostedAt:          inv.PostedAt,
		CancelledAt:       inv.CancelledAt,
		Version:           inv.Version,
		CreatedAt:         inv.CreatedAt,
		UpdatedAt:         inv.UpdatedAt,
	}
}

// ===================== Payments =====================

// CreatePaymentInput holds the fields of a new payment
type CreatePaymentInput struct {
	Reference         string          `json:"reference" binding:"required,max=64"`
	PartnerType       string          `json:"partner_type" binding:"omitempty,oneof=customer supplier"`
	CustomerID        uuid.UUID       `json:"customer_id" binding:"required"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id"`
	Amount            decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	PaymentDate       *time.Time      `json:"payment_date"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID                uuid.UUID       `json:"id"`
	Reference         string          `json:"reference"`
	PartnerType       string          `json:"partner_type"`
	Status            string          `json:"status"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentDate       time.Time       `json:"payment_date"`
	AppliedInvoiceID  *uuid.UUID      `json:"applied_invoice_id,omitempty"`
	AppliedAmount     decimal.Decimal `json:"applied_amount"`
	PostedAt          *time.Time      `json:"posted_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToPaymentResponse converts a payment to its response
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:                p.ID,
		Reference:         p.Reference,
		PartnerType:       string(p.PartnerType),
		Status:            p.Status.String(),
		CustomerID:        p.CustomerID,
		ProductCategoryID: p.ProductCategoryID,
		Amount:            p.Amount,
		PaymentDate:       p.PaymentDate,
		AppliedInvoiceID:  p.AppliedInvoiceID,
		AppliedAmount:     p.AppliedAmount,
		PostedAt:          p.PostedAt,
		CancelledAt:       p.CancelledAt,
		Version:           p.Version,
		CreatedAt:         p.CreatedAt,
	}
}

// ===================== Reconciliation =====================

// ReconcileInput links a debit invoice to a credit move. Either
// CreditInvoiceID or CreditReference identifies the credit side.
type ReconcileInput struct {
	DebitInvoiceID  uuid.UUID       `json:"debit_invoice_id" binding:"required"`
	CreditInvoiceID *uuid.UUID      `json:"credit_invoice_id"`
	CreditReference string          `json:"credit_reference" binding:"max=100"`
	Amount          decimal.Decimal `json:"amount" binding:"decimal_gt0"`
}

// ReconciliationResponse represents a reconciliation link
type ReconciliationResponse struct {
	ID              uuid.UUID       `json:"id"`
	DebitInvoiceID  uuid.UUID       `json:"debit_invoice_id"`
	CreditInvoiceID *uuid.UUID      `json:"credit_invoice_id,omitempty"`
	CreditReference string          `json:"credit_reference"`
	Amount          decimal.Decimal `json:"amount"`
	AppliedAmount   decimal.Decimal `json:"applied_amount"`
	Removed         bool            `json:"removed"`
	RemovedAt       *time.Time      `json:"removed_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ToReconciliationResponse converts a reconciliation to its response
func ToReconciliationResponse(r *finance.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		ID:              r.ID,
		DebitInvoiceID:  r.DebitInvoiceID,
		CreditInvoiceID: r.CreditInvoiceID,
		CreditReference: r.CreditReference,
		Amount:          r.Amount,
		AppliedAmount:   r.AppliedAmount,
		Removed:         r.Removed,
		RemovedAt:       r.RemovedAt,
		CreatedAt:       r.CreatedAt,
	}
}

// ===================== Overdue =====================

// OverdueSummaryResponse is a customer's aging profile
type OverdueSummaryResponse struct {
	CustomerID uuid.UUID `json:"customer_id"`
	finance.AgingProfile
}
