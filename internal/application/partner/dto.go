package partner

import (
	"time"

	"github.com/erp/credit/internal/domain/partner"
	"github.com/google/uuid"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Code             string     `json:"code" binding:"required,min=1,max=50"`
	Name             string     `json:"name" binding:"required,min=1,max=200"`
	CustomerRank     *int       `json:"customer_rank" binding:"omitempty,min=0"`
	LicenseNumber    string     `json:"license_number" binding:"max=100"`
	LicenseValidUpto *time.Time `json:"license_valid_upto"`
	StateCode        string     `json:"state_code" binding:"max=20"`
	ParentID         *uuid.UUID `json:"parent_id"`
}

// UpdateCustomerRequest represents a request to update a customer.
// Nil fields are left unchanged.
type UpdateCustomerRequest struct {
	Name         *string    `json:"name" binding:"omitempty,min=1,max=200"`
	CustomerRank *int       `json:"customer_rank" binding:"omitempty,min=0"`
	StateCode    *string    `json:"state_code" binding:"omitempty,max=20"`
	ParentID     *uuid.UUID `json:"parent_id"`
}

// UpdateLicenseRequest replaces the license details of a customer
type UpdateLicenseRequest struct {
	LicenseNumber    string     `json:"license_number" binding:"max=100"`
	LicenseValidUpto *time.Time `json:"license_valid_upto"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID               uuid.UUID  `json:"id"`
	TenantID         uuid.UUID  `json:"tenant_id"`
	Code             string     `json:"code"`
	Name             string     `json:"name"`
	CustomerRank     int        `json:"customer_rank"`
	Status           string     `json:"status"`
	LicenseNumber    string     `json:"license_number"`
	LicenseValidUpto *time.Time `json:"license_valid_upto,omitempty"`
	LicenseIssues    []string   `json:"license_issues"`
	StateCode        string     `json:"state_code"`
	ParentID         *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	Version          int        `json:"version"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a domain Customer to CustomerResponse.
// License issues are evaluated as of today.
func ToCustomerResponse(c *partner.Customer, today time.Time) CustomerResponse {
	issues := c.LicenseIssues(today)
	if issues == nil {
		issues = []string{}
	}
	return CustomerResponse{
		ID:               c.ID,
		TenantID:         c.TenantID,
		Code:             c.Code,
		Name:             c.Name,
		CustomerRank:     c.CustomerRank,
		Status:           string(c.Status),
		LicenseNumber:    c.LicenseNumber,
		LicenseValidUpto: c.LicenseValidUpto,
		LicenseIssues:    issues,
		StateCode:        c.StateCode,
		ParentID:         c.ParentID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}

// ToCustomerResponses converts a slice of domain Customers
func ToCustomerResponses(customers []partner.Customer, today time.Time) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i], today)
	}
	return responses
}
