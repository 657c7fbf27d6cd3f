package trade

import (
	"time"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Sales Order Requests ====================

// CreateSalesOrderRequest represents a request to create a sales order
type CreateSalesOrderRequest struct {
	CustomerID        uuid.UUID  `json:"customer_id" binding:"required"`
	BusinessUnitID    *uuid.UUID `json:"business_unit_id"`
	ProductCategoryID *uuid.UUID `json:"product_category_id"`
	PaymentTermID     *uuid.UUID `json:"payment_term_id"`
}

// SetCustomerRequest changes the order customer
type SetCustomerRequest struct {
	CustomerID uuid.UUID `json:"customer_id" binding:"required"`
}

// SetBusinessUnitRequest changes the business unit. A nil ID clears it.
type SetBusinessUnitRequest struct {
	BusinessUnitID *uuid.UUID `json:"business_unit_id"`
}

// SetProductCategoryRequest changes the product category. A nil ID clears it.
type SetProductCategoryRequest struct {
	ProductCategoryID *uuid.UUID `json:"product_category_id"`
}

// SetPaymentTermRequest changes the payment term
type SetPaymentTermRequest struct {
	PaymentTermID *uuid.UUID `json:"payment_term_id"`
}

// AddOrderLineRequest represents a request to add a line to an order
type AddOrderLineRequest struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	ProductName string          `json:"product_name" binding:"required,min=1,max=200"`
	Quantity    decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
}

// UpdateOrderLineRequest represents a request to change an order line
type UpdateOrderLineRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitPrice decimal.Decimal `json:"unit_price" binding:"decimal_gte0"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// ==================== Sales Order Responses ====================

// SalesOrderLineResponse represents an order line in API responses
type SalesOrderLineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// ApprovalStateResponse exposes the gating flags of an order
type ApprovalStateResponse struct {
	CreditChecked          bool            `json:"credit_checked"`
	CreditExceeded         bool            `json:"credit_exceeded"`
	CreditOverrideApproved bool            `json:"credit_override_approved"`
	HasOverdue             bool            `json:"has_overdue"`
	OverdueCheckApproved   bool            `json:"overdue_check_approved"`
	OverdueAmount          decimal.Decimal `json:"overdue_amount"`
}

// CreditInfo holds the computed credit figures shown on an order
type CreditInfo struct {
	AssignedLimit         credit.Amount   `json:"assigned_limit"`
	LimitUsed             decimal.Decimal `json:"limit_used"`
	LimitRemaining        credit.Amount   `json:"limit_remaining"`
	CustomerOverdueAmount decimal.Decimal `json:"customer_overdue_amount"`
	CreditInfoVisible     bool            `json:"credit_info_visible"`
	HasCreditLine         bool            `json:"has_credit_line"`
}

// SalesOrderResponse represents a sales order in API responses
type SalesOrderResponse struct {
	ID                uuid.UUID                `json:"id"`
	OrderNumber       string                   `json:"order_number"`
	CustomerID        uuid.UUID                `json:"customer_id"`
	CustomerName      string                   `json:"customer_name"`
	BusinessUnitID    *uuid.UUID               `json:"business_unit_id,omitempty"`
	ProductCategoryID *uuid.UUID               `json:"product_category_id,omitempty"`
	PaymentTermID     *uuid.UUID               `json:"payment_term_id,omitempty"`
	Lines             []SalesOrderLineResponse `json:"lines"`
	TotalAmount       decimal.Decimal          `json:"total_amount"`
	Status            string                   `json:"status"`
	Approval          ApprovalStateResponse    `json:"approval"`
	Credit            *CreditInfo              `json:"credit,omitempty"`
	VisibleActions    trade.VisibleActions     `json:"visible_actions"`
	Messages          []trade.OrderMessage     `json:"messages"`
	ConfirmedAt       *time.Time               `json:"confirmed_at,omitempty"`
	CancelledAt       *time.Time               `json:"cancelled_at,omitempty"`
	CancelReason      string                   `json:"cancel_reason,omitempty"`
	Version           int                      `json:"version"`
	CreatedAt         time.Time                `json:"created_at"`
	UpdatedAt         time.Time                `json:"updated_at"`
}

// CreditCheckResult is the structured outcome of a credit check
type CreditCheckResult struct {
	OrderID           uuid.UUID            `json:"order_id"`
	Limit             credit.Amount        `json:"limit"`
	Used              decimal.Decimal      `json:"used"`
	Remaining         credit.Amount        `json:"remaining"`
	OverdueAmount     decimal.Decimal      `json:"overdue_amount"`
	OrderAmount       decimal.Decimal      `json:"order_amount"`
	CreditExceeded    bool                 `json:"credit_exceeded"`
	HasOverdue        bool                 `json:"has_overdue"`
	RequiredApprovals []string             `json:"required_approvals"`
	Message           string               `json:"message"`
	VisibleActions    trade.VisibleActions `json:"visible_actions"`
}

// ApprovalRequirementsResponse previews the approvals an order would need
type ApprovalRequirementsResponse struct {
	OrderID            uuid.UUID       `json:"order_id"`
	Gated              bool            `json:"gated"`
	CreditExceeded     bool            `json:"credit_exceeded"`
	OverdueApproval    bool            `json:"overdue_approval"`
	Overdue1To60       decimal.Decimal `json:"overdue_1_60"`
	Remaining          credit.Amount   `json:"remaining"`
	OrderAmount        decimal.Decimal `json:"order_amount"`
	RequiredApprovals  []string        `json:"required_approvals"`
	Messages           []string        `json:"messages"`
	OverrideCreditDays bool            `json:"override_credit_days"`
}

// Approval names returned in required_approvals
const (
	ApprovalSales      = "sales"
	ApprovalAccounting = "accounting"
)

// ToSalesOrderResponse converts an order to its response. Credit figures and
// visible actions are filled in by the service.
func ToSalesOrderResponse(order *trade.SalesOrder) SalesOrderResponse {
	lines := make([]SalesOrderLineResponse, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, SalesOrderLineResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
		})
	}

	a := order.Approval
	messages := order.Messages
	if messages == nil {
		messages = []trade.OrderMessage{}
	}

	return SalesOrderResponse{
		ID:                order.ID,
		OrderNumber:       order.OrderNumber,
		CustomerID:        order.CustomerID,
		CustomerName:      order.CustomerName,
		BusinessUnitID:    order.BusinessUnitID,
		ProductCategoryID: order.ProductCategoryID,
		PaymentTermID:     order.PaymentTermID,
		Lines:             lines,
		TotalAmount:       order.TotalAmount,
		Status:            order.Status.String(),
		Approval: ApprovalStateResponse{
			CreditChecked:          a.CreditChecked,
			CreditExceeded:         a.CreditExceeded,
			CreditOverrideApproved: a.CreditOverrideApproved,
			HasOverdue:             a.HasOverdue,
			OverdueCheckApproved:   a.OverdueCheckApproved,
			OverdueAmount:          a.OverdueAmount,
		},
		Messages:     messages,
		ConfirmedAt:  order.ConfirmedAt,
		CancelledAt:  order.CancelledAt,
		CancelReason: order.CancelReason,
		Version:      order.Version,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}
