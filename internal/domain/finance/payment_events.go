package finance

import (
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type constants for payments
const (
	EventTypePaymentPosted    = "PaymentPosted"
	EventTypePaymentCancelled = "PaymentCancelled"
)

// PaymentPostedEvent is raised when a payment is posted
type PaymentPostedEvent struct {
	shared.BaseDomainEvent
	PaymentID         uuid.UUID       `json:"payment_id"`
	PartnerType       PartnerType     `json:"partner_type"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
}

// NewPaymentPostedEvent creates a new PaymentPostedEvent
func NewPaymentPostedEvent(p *Payment) *PaymentPostedEvent {
	return &PaymentPostedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePaymentPosted, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:         p.ID,
		PartnerType:       p.PartnerType,
		CustomerID:        p.CustomerID,
		ProductCategoryID: p.ProductCategoryID,
		Amount:            p.Amount,
	}
}

// PaymentCancelledEvent is raised when a posted payment is cancelled
type PaymentCancelledEvent struct {
	shared.BaseDomainEvent
	PaymentID         uuid.UUID       `json:"payment_id"`
	PartnerType       PartnerType     `json:"partner_type"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id,omitempty"`
	AppliedInvoiceID  *uuid.UUID      `json:"applied_invoice_id,omitempty"`
	AppliedAmount     decimal.Decimal `json:"applied_amount"`
}

// NewPaymentCancelledEvent creates a new PaymentCancelledEvent
func NewPaymentCancelledEvent(p *Payment) *PaymentCancelledEvent {
	return &PaymentCancelledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePaymentCancelled, AggregateTypePayment, p.ID, p.TenantID),
		PaymentID:         p.ID,
		PartnerType:       p.PartnerType,
		CustomerID:        p.CustomerID,
		ProductCategoryID: p.ProductCategoryID,
		AppliedInvoiceID:  p.AppliedInvoiceID,
		AppliedAmount:     p.AppliedAmount,
	}
}
