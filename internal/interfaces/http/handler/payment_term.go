package handler

import (
	"context"

	creditapp "github.com/erp/credit/internal/application/credit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TermService manages payment terms and their (category, state) mapping
type TermService interface {
	CreateTerm(ctx context.Context, tenantID uuid.UUID, input creditapp.CreatePaymentTermInput) (*creditapp.PaymentTermResponse, error)
	ListTerms(ctx context.Context, tenantID uuid.UUID) ([]creditapp.PaymentTermResponse, error)
	SetCreditPeriod(ctx context.Context, tenantID uuid.UUID, input creditapp.CreateCreditPeriodInput) (*creditapp.CreditPeriodResponse, error)
	ListCreditPeriods(ctx context.Context, tenantID, categoryID uuid.UUID) ([]creditapp.CreditPeriodResponse, error)
}

// TermHandler serves payment terms and credit periods
type TermHandler struct {
	BaseHandler
	terms TermService
}

// NewTermHandler creates a new TermHandler
func NewTermHandler(terms TermService) *TermHandler {
	return &TermHandler{terms: terms}
}

func (h *TermHandler) CreateTerm(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var input creditapp.CreatePaymentTermInput
	if !h.bindJSON(c, &input) {
		return
	}

	term, err := h.terms.CreateTerm(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, term)
}

func (h *TermHandler) ListTerms(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	terms, err := h.terms.ListTerms(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, terms)
}

// SetCreditPeriod creates or replaces the term of a (category, state) pair
func (h *TermHandler) SetCreditPeriod(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var input creditapp.CreateCreditPeriodInput
	if !h.bindJSON(c, &input) {
		return
	}

	period, err := h.terms.SetCreditPeriod(c.Request.Context(), tenantID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, period)
}

// ListCreditPeriods requires the product_category_id query parameter
func (h *TermHandler) ListCreditPeriods(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	categoryID, err := uuid.Parse(c.Query("product_category_id"))
	if err != nil {
		h.BadRequest(c, "Invalid product category ID format")
		return
	}

	periods, err := h.terms.ListCreditPeriods(c.Request.Context(), tenantID, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, periods)
}
