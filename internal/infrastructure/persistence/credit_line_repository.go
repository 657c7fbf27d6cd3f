package persistence

import (
	"context"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditLineRepository implements CreditLineRepository using GORM
type GormCreditLineRepository struct {
	db *gorm.DB
}

// NewGormCreditLineRepository creates a new GormCreditLineRepository
func NewGormCreditLineRepository(db *gorm.DB) *GormCreditLineRepository {
	return &GormCreditLineRepository{db: db}
}

// FindByIDForTenant finds a credit line by ID within a tenant
func (r *GormCreditLineRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*credit.CreditLine, error) {
	var model models.CreditLineModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCustomerAndCategory finds the line of a (customer, category) pair
func (r *GormCreditLineRepository) FindByCustomerAndCategory(ctx context.Context, tenantID, customerID, categoryID uuid.UUID) (*credit.CreditLine, error) {
	var model models.CreditLineModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ? AND product_category_id = ?", tenantID, customerID, categoryID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists all lines of a customer
func (r *GormCreditLineRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]credit.CreditLine, error) {
	var lineModels []models.CreditLineModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("created_at ASC").
		Find(&lineModels).Error; err != nil {
		return nil, err
	}
	lines := make([]credit.CreditLine, len(lineModels))
	for i := range lineModels {
		lines[i] = *lineModels[i].ToDomain()
	}
	return lines, nil
}

// ExistsForPair checks if another line already uses the pair
func (r *GormCreditLineRepository) ExistsForPair(ctx context.Context, tenantID, customerID, categoryID, excludeID uuid.UUID) (bool, error) {
	query := dbFrom(ctx, r.db).
		Model(&models.CreditLineModel{}).
		Where("tenant_id = ? AND customer_id = ? AND product_category_id = ?", tenantID, customerID, categoryID)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a credit line. The pair index turns a concurrent
// duplicate into ALREADY_EXISTS.
func (r *GormCreditLineRepository) Save(ctx context.Context, line *credit.CreditLine) error {
	return translateError(dbFrom(ctx, r.db).Save(models.CreditLineModelFromDomain(line)).Error)
}

// SaveWithLock updates a credit line with an optimistic version check
func (r *GormCreditLineRepository) SaveWithLock(ctx context.Context, line *credit.CreditLine) error {
	model := models.CreditLineModelFromDomain(line)
	return saveWithLock(ctx, r.db, line, model, func(v int) { model.Version = v },
		"tenant_id = ? AND id = ?", line.TenantID, line.ID)
}

// DeleteForTenant deletes a credit line
func (r *GormCreditLineRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := dbFrom(ctx, r.db).Delete(&models.CreditLineModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByCustomer deletes every line of a customer
func (r *GormCreditLineRepository) DeleteByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	result := dbFrom(ctx, r.db).Delete(&models.CreditLineModel{}, "tenant_id = ? AND customer_id = ?", tenantID, customerID)
	return result.RowsAffected, result.Error
}

// Ensure GormCreditLineRepository implements CreditLineRepository
var _ credit.CreditLineRepository = (*GormCreditLineRepository)(nil)
