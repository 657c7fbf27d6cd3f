package catalog

import (
	"time"

	"github.com/erp/credit/internal/domain/catalog"
	"github.com/google/uuid"
)

// CreateCategoryRequest represents a request to create a category. Without
// a parent the category is a business unit.
type CreateCategoryRequest struct {
	Code               string     `json:"code" binding:"required,min=1,max=50"`
	Name               string     `json:"name" binding:"required,min=1,max=100"`
	ParentID           *uuid.UUID `json:"parent_id"`
	OverrideCreditDays bool       `json:"override_credit_days"`
}

// UpdateCategoryRequest represents a request to update a category
type UpdateCategoryRequest struct {
	Name               *string `json:"name" binding:"omitempty,min=1,max=100"`
	OverrideCreditDays *bool   `json:"override_credit_days"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID                 uuid.UUID  `json:"id"`
	TenantID           uuid.UUID  `json:"tenant_id"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	ParentID           *uuid.UUID `json:"parent_id,omitempty"`
	IsBusinessUnit     bool       `json:"is_business_unit"`
	OverrideCreditDays bool       `json:"override_credit_days"`
	OverdueGated       bool       `json:"overdue_gated"`
	StashSlot          string     `json:"stash_slot,omitempty"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category, gate catalog.OverdueGate) CategoryResponse {
	resp := CategoryResponse{
		ID:                 c.ID,
		TenantID:           c.TenantID,
		Code:               c.Code,
		Name:               c.Name,
		ParentID:           c.ParentID,
		IsBusinessUnit:     c.IsBusinessUnit(),
		OverrideCreditDays: c.OverrideCreditDays,
		Status:             string(c.Status),
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
	if c.IsBusinessUnit() {
		resp.OverdueGated = gate.Applies(c)
	} else {
		resp.StashSlot = string(c.StashSlot())
	}
	return resp
}

// ToCategoryResponses converts a slice of domain Categories
func ToCategoryResponses(categories []catalog.Category, gate catalog.OverdueGate) []CategoryResponse {
	responses := make([]CategoryResponse, len(categories))
	for i := range categories {
		responses[i] = ToCategoryResponse(&categories[i], gate)
	}
	return responses
}
