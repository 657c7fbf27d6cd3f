package credit

import (
	"time"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recompute triggers, reported on spans and metrics
const (
	TriggerInvoicePosted          = "invoice_posted"
	TriggerInvoiceResidualChanged = "invoice_residual_changed"
	TriggerInvoiceCancelled       = "invoice_cancelled"
	TriggerPaymentPosted          = "payment_posted"
	TriggerPaymentCancelled       = "payment_cancelled"
	TriggerReconciliation         = "reconciliation"
	TriggerOrderConfirmed         = "order_confirmed"
	TriggerOrderCancelled         = "order_cancelled"
	TriggerLineChanged            = "credit_line_changed"
	TriggerManual                 = "manual"
	TriggerConfirmCheck           = "confirm_check"
)

// CreateCreditLineInput holds the fields of a new credit line
type CreateCreditLineInput struct {
	CustomerID        uuid.UUID       `json:"customer_id" binding:"required"`
	ProductCategoryID uuid.UUID       `json:"product_category_id" binding:"required"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	IsInfiniteCredit  bool            `json:"is_infinite_credit"`
}

// UpdateCreditLineInput changes a credit line. A nil category keeps the
// current one.
type UpdateCreditLineInput struct {
	ProductCategoryID *uuid.UUID      `json:"product_category_id"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	IsInfiniteCredit  bool            `json:"is_infinite_credit"`
}

// CreditLineResponse is a credit line with its computed figures
type CreditLineResponse struct {
	ID                     uuid.UUID       `json:"id"`
	CustomerID             uuid.UUID       `json:"customer_id"`
	ProductCategoryID      uuid.UUID       `json:"product_category_id"`
	CreditLimit            decimal.Decimal `json:"credit_limit"`
	IsInfiniteCredit       bool            `json:"is_infinite_credit"`
	CreditUsed             decimal.Decimal `json:"credit_used"`
	CreditRemaining        credit.Amount   `json:"credit_remaining"`
	CreditRemainingDisplay string          `json:"credit_remaining_display"`
	OrderCount             int             `json:"order_count"`
	ComputedAt             *time.Time      `json:"computed_at,omitempty"`
	Version                int             `json:"version"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// ToCreditLineResponse renders a line with the stored usage
func ToCreditLineResponse(line *credit.CreditLine) CreditLineResponse {
	remaining := line.Remaining()
	return CreditLineResponse{
		ID:                     line.ID,
		CustomerID:             line.CustomerID,
		ProductCategoryID:      line.ProductCategoryID,
		CreditLimit:            line.CreditLimit,
		IsInfiniteCredit:       line.IsInfiniteCredit,
		CreditUsed:             line.CreditUsed,
		CreditRemaining:        remaining,
		CreditRemainingDisplay: remaining.Display(),
		ComputedAt:             line.RecomputedAt,
		Version:                line.Version,
		CreatedAt:              line.CreatedAt,
		UpdatedAt:              line.UpdatedAt,
	}
}

// withSnapshot overlays the figures of a computed snapshot
func (r CreditLineResponse) withSnapshot(s *credit.Snapshot) CreditLineResponse {
	if s == nil {
		return r
	}
	remaining := s.Remaining()
	computedAt := s.ComputedAt
	r.CreditUsed = s.CreditUsed
	r.CreditRemaining = remaining
	r.CreditRemainingDisplay = remaining.Display()
	r.OrderCount = s.OrderCount
	r.ComputedAt = &computedAt
	return r
}

// CreatePaymentTermInput holds the fields of a new payment term
type CreatePaymentTermInput struct {
	Name    string `json:"name" binding:"required,min=1,max=100"`
	DueDays int    `json:"due_days" binding:"min=0"`
}

// PaymentTermResponse represents a payment term in API responses
type PaymentTermResponse struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	DueDays int       `json:"due_days"`
}

// CreateCreditPeriodInput maps a (category, state) pair to a payment term
type CreateCreditPeriodInput struct {
	ProductCategoryID uuid.UUID `json:"product_category_id" binding:"required"`
	StateCode         string    `json:"state_code" binding:"required,max=20"`
	PaymentTermID     uuid.UUID `json:"payment_term_id" binding:"required"`
}

// CreditPeriodResponse represents a credit period in API responses
type CreditPeriodResponse struct {
	ID                uuid.UUID `json:"id"`
	ProductCategoryID uuid.UUID `json:"product_category_id"`
	StateCode         string    `json:"state_code"`
	PaymentTermID     uuid.UUID `json:"payment_term_id"`
}
