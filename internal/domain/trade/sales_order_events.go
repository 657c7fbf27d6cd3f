package trade

import (
	"github.com/erp/credit/internal/domain/identity"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSalesOrder = "SalesOrder"

// Event type constants
const (
	EventTypeSalesOrderCreated          = "SalesOrderCreated"
	EventTypeSalesOrderCreditChecked    = "SalesOrderCreditChecked"
	EventTypeSalesOrderOverrideApproved = "SalesOrderOverrideApproved"
	EventTypeSalesOrderConfirmed        = "SalesOrderConfirmed"
	EventTypeSalesOrderCancelled        = "SalesOrderCancelled"
)

// OverrideKind names which gate an override approved
type OverrideKind string

const (
	OverrideKindCredit  OverrideKind = "credit"
	OverrideKindOverdue OverrideKind = "overdue"
)

// SalesOrderCreatedEvent is raised when a new sales order is created
type SalesOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	CustomerID   uuid.UUID `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
}

// NewSalesOrderCreatedEvent creates a new SalesOrderCreatedEvent
func NewSalesOrderCreatedEvent(order *SalesOrder) *SalesOrderCreatedEvent {
	return &SalesOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreated, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerID:      order.CustomerID,
		CustomerName:    order.CustomerName,
	}
}

// SalesOrderCreditCheckedEvent is raised after a credit check
type SalesOrderCreditCheckedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	CreditExceeded bool            `json:"credit_exceeded"`
	HasOverdue     bool            `json:"has_overdue"`
	OverdueAmount  decimal.Decimal `json:"overdue_amount"`
}

// NewSalesOrderCreditCheckedEvent creates a new SalesOrderCreditCheckedEvent
func NewSalesOrderCreditCheckedEvent(order *SalesOrder) *SalesOrderCreditCheckedEvent {
	return &SalesOrderCreditCheckedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderCreditChecked, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		CustomerID:      order.CustomerID,
		CreditExceeded:  order.Approval.CreditExceeded,
		HasOverdue:      order.Approval.HasOverdue,
		OverdueAmount:   order.Approval.OverdueAmount,
	}
}

// SalesOrderOverrideApprovedEvent is raised when a sales or accounting
// person approves a gate
type SalesOrderOverrideApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID    `json:"order_id"`
	Kind       OverrideKind `json:"kind"`
	ApproverID uuid.UUID    `json:"approver_id"`
	Approver   string       `json:"approver"`
}

// NewSalesOrderOverrideApprovedEvent creates a new SalesOrderOverrideApprovedEvent
func NewSalesOrderOverrideApprovedEvent(order *SalesOrder, kind OverrideKind, actor identity.Actor) *SalesOrderOverrideApprovedEvent {
	return &SalesOrderOverrideApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSalesOrderOverrideApproved, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:         order.ID,
		Kind:            kind,
		ApproverID:      actor.UserID,
		Approver:        actor.Name,
	}
}

// SalesOrderConfirmedEvent is raised when a sales order is confirmed. The
// credit line of (customer, category) is recomputed in response.
type SalesOrderConfirmedEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID       `json:"order_id"`
	OrderNumber       string          `json:"order_number"`
	CustomerID        uuid.UUID       `json:"customer_id"`
	ProductCategoryID *uuid.UUID      `json:"product_category_id,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
}

// NewSalesOrderConfirmedEvent creates a new SalesOrderConfirmedEvent
func NewSalesOrderConfirmedEvent(order *SalesOrder) *SalesOrderConfirmedEvent {
	return &SalesOrderConfirmedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeSalesOrderConfirmed, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        order.CustomerID,
		ProductCategoryID: order.ProductCategoryID,
		TotalAmount:       order.TotalAmount,
	}
}

// SalesOrderCancelledEvent is raised when a sales order is cancelled
type SalesOrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID           uuid.UUID  `json:"order_id"`
	OrderNumber       string     `json:"order_number"`
	CustomerID        uuid.UUID  `json:"customer_id"`
	ProductCategoryID *uuid.UUID `json:"product_category_id,omitempty"`
	CancelReason      string     `json:"cancel_reason"`
	WasConfirmed      bool       `json:"was_confirmed"`
}

// NewSalesOrderCancelledEvent creates a new SalesOrderCancelledEvent
func NewSalesOrderCancelledEvent(order *SalesOrder, wasConfirmed bool) *SalesOrderCancelledEvent {
	return &SalesOrderCancelledEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeSalesOrderCancelled, AggregateTypeSalesOrder, order.ID, order.TenantID),
		OrderID:           order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        order.CustomerID,
		ProductCategoryID: order.ProductCategoryID,
		CancelReason:      order.CancelReason,
		WasConfirmed:      wasConfirmed,
	}
}
