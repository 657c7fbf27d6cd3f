package handler

import (
	"context"

	tradeapp "github.com/erp/credit/internal/application/trade"
	"github.com/erp/credit/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SalesOrderService is the sales order use case surface
type SalesOrderService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req tradeapp.CreateSalesOrderRequest) (*tradeapp.SalesOrderResponse, error)
	SetCustomer(ctx context.Context, tenantID, orderID uuid.UUID, req tradeapp.SetCustomerRequest) (*tradeapp.SalesOrderResponse, error)
	SetBusinessUnit(ctx context.Context, tenantID, orderID uuid.UUID, req tradeapp.SetBusinessUnitRequest) (*tradeapp.SalesOrderResponse, error)
	SetProductCategory(ctx context.Context, tenantID, orderID uuid.UUID, req tradeapp.SetProductCategoryRequest) (*tradeapp.SalesOrderResponse, error)
	SetPaymentTerm(ctx context.Context, tenantID, orderID uuid.UUID, req tradeapp.SetPaymentTermRequest) (*tradeapp.SalesOrderResponse, error)
	AddLine(ctx context.Context, tenantID, orderID uuid.UUID, req tradeapp.AddOrderLineRequest) (*tradeapp.SalesOrderResponse, error)
	UpdateLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID, req tradeapp.UpdateOrderLineRequest) (*tradeapp.SalesOrderResponse, error)
	RemoveLine(ctx context.Context, tenantID, orderID, lineID uuid.UUID) (*tradeapp.SalesOrderResponse, error)
	CheckCredit(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*tradeapp.CreditCheckResult, error)
	ApproveSalesOverride(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*tradeapp.SalesOrderResponse, error)
	ApproveAccountingOverride(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*tradeapp.SalesOrderResponse, error)
	Confirm(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.Actor) (*tradeapp.SalesOrderResponse, error)
	Cancel(ctx context.Context, tenantID, orderID uuid.UUID, req tradeapp.CancelOrderRequest, actor identity.Actor) (*tradeapp.SalesOrderResponse, error)
	GetByID(ctx context.Context, tenantID, orderID uuid.UUID, actor identity.CapabilityChecker) (*tradeapp.SalesOrderResponse, error)
	ApprovalRequirements(ctx context.Context, tenantID, orderID uuid.UUID) (*tradeapp.ApprovalRequirementsResponse, error)
}

// SalesOrderHandler serves sales order editing and the credit approval flow
type SalesOrderHandler struct {
	BaseHandler
	orders SalesOrderService
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(orders SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{orders: orders}
}

// orderScope resolves the tenant and the :id order parameter
func (h *SalesOrderHandler) orderScope(c *gin.Context) (tenantID, orderID uuid.UUID, ok bool) {
	if tenantID, ok = h.tenantID(c); !ok {
		return
	}
	orderID, ok = h.pathUUID(c, "id", "order")
	return
}

func (h *SalesOrderHandler) respond(c *gin.Context, data any, err error) {
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Create opens a draft order
func (h *SalesOrderHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req tradeapp.CreateSalesOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID returns the order with credit figures and the visible actions
// of the requesting user
func (h *SalesOrderHandler) GetByID(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), tenantID, orderID, h.actor(c))
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) SetCustomer(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	var req tradeapp.SetCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.SetCustomer(c.Request.Context(), tenantID, orderID, req)
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) SetBusinessUnit(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	var req tradeapp.SetBusinessUnitRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.SetBusinessUnit(c.Request.Context(), tenantID, orderID, req)
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) SetProductCategory(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	var req tradeapp.SetProductCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.SetProductCategory(c.Request.Context(), tenantID, orderID, req)
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) SetPaymentTerm(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	var req tradeapp.SetPaymentTermRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.SetPaymentTerm(c.Request.Context(), tenantID, orderID, req)
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) AddLine(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	var req tradeapp.AddOrderLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.AddLine(c.Request.Context(), tenantID, orderID, req)
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) UpdateLine(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "line_id", "line")
	if !ok {
		return
	}
	var req tradeapp.UpdateOrderLineRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.UpdateLine(c.Request.Context(), tenantID, orderID, lineID, req)
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) RemoveLine(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	lineID, ok := h.pathUUID(c, "line_id", "line")
	if !ok {
		return
	}
	order, err := h.orders.RemoveLine(c.Request.Context(), tenantID, orderID, lineID)
	h.respond(c, order, err)
}

// CheckCredit evaluates the order against its credit line and the
// customer's overdue balance
func (h *SalesOrderHandler) CheckCredit(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	result, err := h.orders.CheckCredit(c.Request.Context(), tenantID, orderID, h.actor(c))
	h.respond(c, result, err)
}

// ApproveCreditOverride records the sales approval of an exceeded limit
func (h *SalesOrderHandler) ApproveCreditOverride(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	order, err := h.orders.ApproveSalesOverride(c.Request.Context(), tenantID, orderID, h.actor(c))
	h.respond(c, order, err)
}

// ApproveOverdue records the accounting approval of an overdue balance
func (h *SalesOrderHandler) ApproveOverdue(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	order, err := h.orders.ApproveAccountingOverride(c.Request.Context(), tenantID, orderID, h.actor(c))
	h.respond(c, order, err)
}

// Confirm re-validates credit and license server side before confirming
func (h *SalesOrderHandler) Confirm(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	order, err := h.orders.Confirm(c.Request.Context(), tenantID, orderID, h.actor(c))
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) Cancel(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	var req tradeapp.CancelOrderRequest
	// the body is optional
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.Cancel(c.Request.Context(), tenantID, orderID, req, h.actor(c))
	h.respond(c, order, err)
}

func (h *SalesOrderHandler) ApprovalRequirements(c *gin.Context) {
	tenantID, orderID, ok := h.orderScope(c)
	if !ok {
		return
	}
	reqs, err := h.orders.ApprovalRequirements(c.Request.Context(), tenantID, orderID)
	h.respond(c, reqs, err)
}
