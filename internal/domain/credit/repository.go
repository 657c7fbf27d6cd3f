package credit

import (
	"context"

	"github.com/google/uuid"
)

// CreditLineRepository defines the interface for credit line persistence
type CreditLineRepository interface {
	// FindByIDForTenant finds a credit line by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CreditLine, error)

	// FindByCustomerAndCategory finds the line of a (customer, category)
	// pair, or shared.ErrNotFound
	FindByCustomerAndCategory(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*CreditLine, error)

	// FindByCustomer lists all lines of a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]CreditLine, error)

	// ExistsForPair checks if another line already uses the pair.
	// excludeID is ignored when uuid.Nil.
	ExistsForPair(ctx context.Context, tenantID, customerID, categoryID, excludeID uuid.UUID) (bool, error)

	// Save creates or updates a credit line
	Save(ctx context.Context, line *CreditLine) error

	// SaveWithLock updates a credit line with an optimistic version check
	SaveWithLock(ctx context.Context, line *CreditLine) error

	// DeleteForTenant deletes a credit line
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// DeleteByCustomer deletes every line of a customer and returns how many
	DeleteByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
}

// PaymentTermRepository defines the interface for payment term persistence
type PaymentTermRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*PaymentTerm, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]PaymentTerm, error)
	Save(ctx context.Context, term *PaymentTerm) error
}

// CreditPeriodRepository defines the interface for credit period persistence
type CreditPeriodRepository interface {
	// FindByCategoryAndState finds the mapping for a pair, or shared.ErrNotFound
	FindByCategoryAndState(ctx context.Context, tenantID, categoryID uuid.UUID, stateCode string) (*CreditPeriod, error)

	// FindByCategory lists the mappings of a category
	FindByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) ([]CreditPeriod, error)

	Save(ctx context.Context, period *CreditPeriod) error
}
