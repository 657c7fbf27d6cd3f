package catalog

import (
	"context"

	"github.com/google/uuid"
)

// CategoryRepository defines the interface for category persistence
type CategoryRepository interface {
	// FindByIDForTenant finds a category by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Category, error)

	// FindByIDs finds multiple categories by their IDs
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Category, error)

	// FindChildren finds the product categories of a business unit
	FindChildren(ctx context.Context, tenantID, businessUnitID uuid.UUID) ([]Category, error)

	// FindBusinessUnits finds all root categories
	FindBusinessUnits(ctx context.Context, tenantID uuid.UUID) ([]Category, error)

	// Save creates or updates a category
	Save(ctx context.Context, category *Category) error

	// ExistsByCode checks if a category with the given code exists
	ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error)
}
