package handler

import (
	"context"

	catalogapp "github.com/erp/credit/internal/application/catalog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CategoryService is the category use case surface used by CategoryHandler
type CategoryService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req catalogapp.CreateCategoryRequest) (*catalogapp.CategoryResponse, error)
	GetByID(ctx context.Context, tenantID, categoryID uuid.UUID) (*catalogapp.CategoryResponse, error)
	ListBusinessUnits(ctx context.Context, tenantID uuid.UUID) ([]catalogapp.CategoryResponse, error)
	ListChildren(ctx context.Context, tenantID, businessUnitID uuid.UUID) ([]catalogapp.CategoryResponse, error)
	Update(ctx context.Context, tenantID, categoryID uuid.UUID, req catalogapp.UpdateCategoryRequest) (*catalogapp.CategoryResponse, error)
}

// CategoryHandler serves business units and product categories
type CategoryHandler struct {
	BaseHandler
	categories CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categories CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Create adds a business unit, or a product category when parent_id is set
func (h *CategoryHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	var req catalogapp.CreateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "category")
	if !ok {
		return
	}

	category, err := h.categories.GetByID(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// ListBusinessUnits returns the top-level categories
func (h *CategoryHandler) ListBusinessUnits(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	units, err := h.categories.ListBusinessUnits(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// ListChildren returns the product categories of a business unit
func (h *CategoryHandler) ListChildren(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "category")
	if !ok {
		return
	}

	children, err := h.categories.ListChildren(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, children)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "category")
	if !ok {
		return
	}
	var req catalogapp.UpdateCategoryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	category, err := h.categories.Update(c.Request.Context(), tenantID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}
