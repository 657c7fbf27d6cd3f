package catalog

import (
	"strings"
	"time"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryStatus represents the status of a category
type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "active"
	CategoryStatusInactive CategoryStatus = "inactive"
)

// StashSlot names the per-order storage used to park lines of a category
type StashSlot string

const (
	StashSlotNone       StashSlot = ""
	StashSlotSND        StashSlot = "snd"
	StashSlotFertilizer StashSlot = "fertilizer"
)

// Category is a node of the two level category tree. A root category is a
// business unit (e.g. FERTILIZER, SND); its children are the product
// categories that sales orders and credit lines are keyed by.
type Category struct {
	shared.TenantAggregateRoot
	Code     string
	Name     string
	ParentID *uuid.UUID
	Status   CategoryStatus
	// OverrideCreditDays decides whether an overdue receivable under this
	// business unit requires accounting approval (true) or is bypassed.
	OverrideCreditDays bool
}

// NewBusinessUnit creates a root category
func NewBusinessUnit(tenantID uuid.UUID, code, name string) (*Category, error) {
	if err := validateCategoryCode(code); err != nil {
		return nil, err
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		Status:              CategoryStatusActive,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// NewProductCategory creates a product category under a business unit
func NewProductCategory(tenantID uuid.UUID, code, name string, businessUnit *Category) (*Category, error) {
	if businessUnit == nil {
		return nil, shared.NewDomainError("INVALID_PARENT", "Business unit is required")
	}
	if !businessUnit.IsBusinessUnit() {
		return nil, shared.NewDomainError("INVALID_PARENT", "Product categories can only be created under a business unit")
	}
	if err := validateCategoryCode(code); err != nil {
		return nil, err
	}
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	parentID := businessUnit.ID
	category := &Category{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(code),
		Name:                name,
		ParentID:            &parentID,
		Status:              CategoryStatusActive,
	}

	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update updates the category's name
func (c *Category) Update(name string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.UpdatedAt = time.Now()

	return nil
}

// SetOverrideCreditDays toggles accounting approval for overdue customers
func (c *Category) SetOverrideCreditDays(enabled bool) {
	c.OverrideCreditDays = enabled
	c.UpdatedAt = time.Now()
}

// IsBusinessUnit reports whether this is a root category
func (c *Category) IsBusinessUnit() bool {
	return c.ParentID == nil
}

// BelongsTo reports whether the category sits directly under the business unit
func (c *Category) BelongsTo(businessUnitID uuid.UUID) bool {
	return c.ParentID != nil && *c.ParentID == businessUnitID
}

// IsActive returns true if category is active
func (c *Category) IsActive() bool {
	return c.Status == CategoryStatusActive
}

// StashSlot returns the line stash slot for this category, chosen by name
func (c *Category) StashSlot() StashSlot {
	name := strings.ToUpper(c.Name)
	switch {
	case strings.Contains(name, "SND"):
		return StashSlotSND
	case strings.Contains(name, "FERTILIZER"):
		return StashSlotFertilizer
	}
	return StashSlotNone
}

func validateCategoryCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Category code cannot exceed 50 characters")
	}
	return nil
}

func validateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
