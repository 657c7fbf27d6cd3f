package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusDraft     PaymentStatus = "DRAFT"
	PaymentStatusPosted    PaymentStatus = "POSTED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusDraft, PaymentStatusPosted, PaymentStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PartnerType says which side of the ledger the payment is on
type PartnerType string

const (
	PartnerTypeCustomer PartnerType = "customer"
	PartnerTypeSupplier PartnerType = "supplier"
)

// IsValid checks if the partner type is known
func (p PartnerType) IsValid() bool {
	return p == PartnerTypeCustomer || p == PartnerTypeSupplier
}

// Payment is an incoming or outgoing payment. A posted customer payment
// tagged with a product category is applied to the oldest open invoice of
// that customer and category.
type Payment struct {
	shared.TenantAggregateRoot
	Reference         string
	PartnerType       PartnerType
	Status            PaymentStatus
	CustomerID        uuid.UUID
	ProductCategoryID *uuid.UUID
	Amount            decimal.Decimal
	PaymentDate       time.Time
	AppliedInvoiceID  *uuid.UUID
	AppliedAmount     decimal.Decimal
	PostedAt          *time.Time
	CancelledAt       *time.Time
}

// NewPayment creates a draft payment
func NewPayment(
	tenantID uuid.UUID,
	reference string,
	partnerType PartnerType,
	customerID uuid.UUID,
	categoryID *uuid.UUID,
	amount decimal.Decimal,
	paymentDate time.Time,
) (*Payment, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot be empty")
	}
	if !partnerType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PARTNER_TYPE", fmt.Sprintf("Unknown partner type: %s", partnerType))
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	var cat *uuid.UUID
	if categoryID != nil && *categoryID != uuid.Nil {
		c := *categoryID
		cat = &c
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Reference:           reference,
		PartnerType:         partnerType,
		Status:              PaymentStatusDraft,
		CustomerID:          customerID,
		ProductCategoryID:   cat,
		Amount:              amount,
		PaymentDate:         shared.DateOnly(paymentDate),
		AppliedAmount:       decimal.Zero,
	}, nil
}

// AffectsCredit reports whether posting this payment should reduce a
// customer's credit exposure.
func (p *Payment) AffectsCredit() bool {
	return p.PartnerType == PartnerTypeCustomer && p.ProductCategoryID != nil
}

// Post posts the payment
func (p *Payment) Post() error {
	if p.Status != PaymentStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot post payment in %s status", p.Status))
	}

	now := time.Now()
	p.Status = PaymentStatusPosted
	p.PostedAt = &now
	p.UpdatedAt = now

	p.AddDomainEvent(NewPaymentPostedEvent(p))

	return nil
}

// RecordApplication remembers which invoice the payment reduced and by how
// much, so that cancelling can undo exactly that.
func (p *Payment) RecordApplication(invoiceID uuid.UUID, applied decimal.Decimal) error {
	if p.Status != PaymentStatusPosted {
		return shared.NewDomainError("INVALID_STATE", "Only posted payments can be applied")
	}
	if p.AppliedInvoiceID != nil {
		return shared.NewDomainError("ALREADY_APPLIED", "Payment has already been applied to an invoice")
	}
	if !applied.IsPositive() || applied.GreaterThan(p.Amount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Applied amount must be positive and not exceed the payment amount")
	}

	id := invoiceID
	p.AppliedInvoiceID = &id
	p.AppliedAmount = applied
	p.UpdatedAt = time.Now()
	return nil
}

// IsApplied returns true if the payment reduced an invoice residual
func (p *Payment) IsApplied() bool {
	return p.AppliedInvoiceID != nil && p.AppliedAmount.IsPositive()
}

// Cancel cancels the payment. A draft payment cancels quietly; a posted one
// raises PaymentCancelled so the applied amount can be restored.
func (p *Payment) Cancel() error {
	if p.Status == PaymentStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Payment is already cancelled")
	}

	wasPosted := p.Status == PaymentStatusPosted
	now := time.Now()
	p.Status = PaymentStatusCancelled
	p.CancelledAt = &now
	p.UpdatedAt = now

	if wasPosted {
		p.AddDomainEvent(NewPaymentCancelledEvent(p))
	}

	return nil
}
