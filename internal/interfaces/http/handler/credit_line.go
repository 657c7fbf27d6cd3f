package handler

import (
	"context"
	"time"

	creditapp "github.com/erp/credit/internal/application/credit"
	financeapp "github.com/erp/credit/internal/application/finance"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreditLineService is the credit line registry surface used by CreditHandler
type CreditLineService interface {
	Create(ctx context.Context, tenantID uuid.UUID, input creditapp.CreateCreditLineInput) (*creditapp.CreditLineResponse, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, input creditapp.UpdateCreditLineInput) (*creditapp.CreditLineResponse, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*creditapp.CreditLineResponse, error)
	ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]creditapp.CreditLineResponse, error)
	ForceRefresh(ctx context.Context, tenantID, id uuid.UUID) (*creditapp.CreditLineResponse, error)
}

// OverdueService renders a customer's aging profile
type OverdueService interface {
	Summary(ctx context.Context, tenantID, customerID uuid.UUID, asOf time.Time) (*financeapp.OverdueSummaryResponse, error)
}

// CreditHandler serves credit lines and the per-customer credit views
type CreditHandler struct {
	BaseHandler
	lines   CreditLineService
	overdue OverdueService
	now     func() time.Time
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(lines CreditLineService, overdue OverdueService) *CreditHandler {
	return &CreditHandler{lines: lines, overdue: overdue, now: time.Now}
}

// Create assigns a limit to a (customer, product category) pair
func (h *CreditHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var input creditapp.CreateCreditLineInput
	if !h.bindJSON(c, &input) {
		return
	}

	line, err := h.lines.Create(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, line)
}

// GetByID returns a line with its current usage
func (h *CreditHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "credit line")
	if !ok {
		return
	}

	line, err := h.lines.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

func (h *CreditHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "credit line")
	if !ok {
		return
	}
	var input creditapp.UpdateCreditLineInput
	if !h.bindJSON(c, &input) {
		return
	}

	line, err := h.lines.Update(c.Request.Context(), tenantID, id, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

func (h *CreditHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "credit line")
	if !ok {
		return
	}

	if err := h.lines.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Refresh drops the cached snapshot and recomputes the line
func (h *CreditHandler) Refresh(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "credit line")
	if !ok {
		return
	}

	line, err := h.lines.ForceRefresh(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// ListByCustomer returns every line of a customer
func (h *CreditHandler) ListByCustomer(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	customerID, ok := h.pathUUID(c, "id", "customer")
	if !ok {
		return
	}

	lines, err := h.lines.ListByCustomer(c.Request.Context(), tenantID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// Overdue returns the customer's aging buckets. The optional as_of query
// parameter (YYYY-MM-DD) moves the reference date.
func (h *CreditHandler) Overdue(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	customerID, ok := h.pathUUID(c, "id", "customer")
	if !ok {
		return
	}

	asOf := h.now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			h.BadRequest(c, "as_of must be a date in YYYY-MM-DD format")
			return
		}
		asOf = parsed
	}

	summary, err := h.overdue.Summary(c.Request.Context(), tenantID, customerID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
