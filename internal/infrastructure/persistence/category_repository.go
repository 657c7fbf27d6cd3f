package persistence

import (
	"context"
	"strings"

	"github.com/erp/credit/internal/domain/catalog"
	"github.com/erp/credit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByIDForTenant finds a category by ID within a tenant
func (r *GormCategoryRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple categories by their IDs
func (r *GormCategoryRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Category, error) {
	if len(ids) == 0 {
		return []catalog.Category{}, nil
	}
	return r.find(dbFrom(ctx, r.db).Where("tenant_id = ? AND id IN ?", tenantID, ids))
}

// FindChildren finds the product categories of a business unit
func (r *GormCategoryRepository) FindChildren(ctx context.Context, tenantID, businessUnitID uuid.UUID) ([]catalog.Category, error) {
	return r.find(dbFrom(ctx, r.db).
		Where("tenant_id = ? AND parent_id = ?", tenantID, businessUnitID).
		Order("name ASC"))
}

// FindBusinessUnits finds all root categories
func (r *GormCategoryRepository) FindBusinessUnits(ctx context.Context, tenantID uuid.UUID) ([]catalog.Category, error) {
	return r.find(dbFrom(ctx, r.db).
		Where("tenant_id = ? AND parent_id IS NULL", tenantID).
		Order("name ASC"))
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return translateError(dbFrom(ctx, r.db).Save(models.CategoryModelFromDomain(category)).Error)
}

// ExistsByCode checks if a category with the given code exists
func (r *GormCategoryRepository) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&models.CategoryModel{}).
		Where("tenant_id = ? AND code = ?", tenantID, strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormCategoryRepository) find(query *gorm.DB) ([]catalog.Category, error) {
	var categoryModels []models.CategoryModel
	if err := query.Find(&categoryModels).Error; err != nil {
		return nil, err
	}
	categories := make([]catalog.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = *categoryModels[i].ToDomain()
	}
	return categories, nil
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
