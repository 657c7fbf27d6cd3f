package credit

import (
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeCreditLine is the aggregate type for credit line events
const AggregateTypeCreditLine = "CreditLine"

// Event type constants
const (
	EventTypeCreditLineCreated = "CreditLineCreated"
	EventTypeCreditLineUpdated = "CreditLineUpdated"
	EventTypeCreditLineDeleted = "CreditLineDeleted"
)

// CreditLineCreatedEvent is raised when a credit line is configured
type CreditLineCreatedEvent struct {
	shared.BaseDomainEvent
	CreditLineID      uuid.UUID       `json:"credit_line_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID uuid.UUID       `json:"product_category_id"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	IsInfiniteCredit  bool            `json:"is_infinite_credit"`
}

// NewCreditLineCreatedEvent creates a new CreditLineCreatedEvent
func NewCreditLineCreatedEvent(l *CreditLine) *CreditLineCreatedEvent {
	return &CreditLineCreatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCreditLineCreated, AggregateTypeCreditLine, l.ID, l.TenantID),
		CreditLineID:      l.ID,
		CustomerID:        l.CustomerID,
		ProductCategoryID: l.ProductCategoryID,
		CreditLimit:       l.CreditLimit,
		IsInfiniteCredit:  l.IsInfiniteCredit,
	}
}

// CreditLineUpdatedEvent is raised when the limit, flag or category changes
type CreditLineUpdatedEvent struct {
	shared.BaseDomainEvent
	CreditLineID      uuid.UUID       `json:"credit_line_id"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID uuid.UUID       `json:"product_category_id"`
	CreditLimit       decimal.Decimal `json:"credit_limit"`
	IsInfiniteCredit  bool            `json:"is_infinite_credit"`
}

// NewCreditLineUpdatedEvent creates a new CreditLineUpdatedEvent
func NewCreditLineUpdatedEvent(l *CreditLine) *CreditLineUpdatedEvent {
	return &CreditLineUpdatedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCreditLineUpdated, AggregateTypeCreditLine, l.ID, l.TenantID),
		CreditLineID:      l.ID,
		CustomerID:        l.CustomerID,
		ProductCategoryID: l.ProductCategoryID,
		CreditLimit:       l.CreditLimit,
		IsInfiniteCredit:  l.IsInfiniteCredit,
	}
}

// CreditLineDeletedEvent is raised when a credit line is removed
type CreditLineDeletedEvent struct {
	shared.BaseDomainEvent
	CreditLineID      uuid.UUID `json:"credit_line_id"`
	CustomerID        uuid.UUID `json:"customer_id"`
	ProductCategoryID uuid.UUID `json:"product_category_id"`
}

// NewCreditLineDeletedEvent creates a new CreditLineDeletedEvent
func NewCreditLineDeletedEvent(l *CreditLine) *CreditLineDeletedEvent {
	return &CreditLineDeletedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeCreditLineDeleted, AggregateTypeCreditLine, l.ID, l.TenantID),
		CreditLineID:      l.ID,
		CustomerID:        l.CustomerID,
		ProductCategoryID: l.ProductCategoryID,
	}
}
