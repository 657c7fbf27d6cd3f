package credit

import (
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentTerm is a named net-days payment term
type PaymentTerm struct {
	shared.TenantAggregateRoot
	Name    string
	DueDays int
}

// NewPaymentTerm creates a payment term
func NewPaymentTerm(tenantID uuid.UUID, name string, dueDays int) (*PaymentTerm, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Payment term name cannot be empty")
	}
	if dueDays < 0 {
		return nil, shared.NewValidationError("Payment term days cannot be negative")
	}
	return &PaymentTerm{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		DueDays:             dueDays,
	}, nil
}

// DueDate returns the date an invoice dated invoiceDate falls due
func (p *PaymentTerm) DueDate(invoiceDate time.Time) time.Time {
	return shared.DateOnly(invoiceDate).AddDate(0, 0, p.DueDays)
}

// CreditPeriod maps a (product category, customer state) pair to the payment
// term a new order gets by default.
type CreditPeriod struct {
	shared.TenantAggregateRoot
	ProductCategoryID uuid.UUID
	StateCode         string
	PaymentTermID     uuid.UUID
}

// NewCreditPeriod creates a credit period mapping
func NewCreditPeriod(tenantID, categoryID uuid.UUID, stateCode string, termID uuid.UUID) (*CreditPeriod, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError("Product category is required")
	}
	stateCode = strings.ToUpper(strings.TrimSpace(stateCode))
	if stateCode == "" {
		return nil, shared.NewValidationError("State is required")
	}
	if termID == uuid.Nil {
		return nil, shared.NewValidationError("Payment term is required")
	}
	return &CreditPeriod{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductCategoryID:   categoryID,
		StateCode:           stateCode,
		PaymentTermID:       termID,
	}, nil
}
