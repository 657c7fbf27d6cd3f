package persistence

import (
	"context"
	"strings"

	"github.com/erp/credit/internal/domain/credit"
	"github.com/erp/credit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentTermRepository implements PaymentTermRepository using GORM
type GormPaymentTermRepository struct {
	db *gorm.DB
}

// NewGormPaymentTermRepository creates a new GormPaymentTermRepository
func NewGormPaymentTermRepository(db *gorm.DB) *GormPaymentTermRepository {
	return &GormPaymentTermRepository{db: db}
}

// FindByIDForTenant finds a payment term by ID within a tenant
func (r *GormPaymentTermRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*credit.PaymentTerm, error) {
	var model models.PaymentTermModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForTenant lists the payment terms of a tenant, shortest first
func (r *GormPaymentTermRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]credit.PaymentTerm, error) {
	var termModels []models.PaymentTermModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ?", tenantID).
		Order("due_days ASC, name ASC").
		Find(&termModels).Error; err != nil {
		return nil, err
	}
	terms := make([]credit.PaymentTerm, len(termModels))
	for i := range termModels {
		terms[i] = *termModels[i].ToDomain()
	}
	return terms, nil
}

// Save creates or updates a payment term
func (r *GormPaymentTermRepository) Save(ctx context.Context, term *credit.PaymentTerm) error {
	return translateError(dbFrom(ctx, r.db).Save(models.PaymentTermModelFromDomain(term)).Error)
}

// GormCreditPeriodRepository implements CreditPeriodRepository using GORM
type GormCreditPeriodRepository struct {
	db *gorm.DB
}

// NewGormCreditPeriodRepository creates a new GormCreditPeriodRepository
func NewGormCreditPeriodRepository(db *gorm.DB) *GormCreditPeriodRepository {
	return &GormCreditPeriodRepository{db: db}
}

// FindByCategoryAndState finds the mapping for a (category, state) pair
func (r *GormCreditPeriodRepository) FindByCategoryAndState(ctx context.Context, tenantID, categoryID uuid.UUID, stateCode string) (*credit.CreditPeriod, error) {
	var model models.CreditPeriodModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_category_id = ? AND state_code = ?",
			tenantID, categoryID, strings.ToUpper(strings.TrimSpace(stateCode))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCategory lists the mappings of a category
func (r *GormCreditPeriodRepository) FindByCategory(ctx context.Context, tenantID, categoryID uuid.UUID) ([]credit.CreditPeriod, error) {
	var periodModels []models.CreditPeriodModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND product_category_id = ?", tenantID, categoryID).
		Order("state_code ASC").
		Find(&periodModels).Error; err != nil {
		return nil, err
	}
	periods := make([]credit.CreditPeriod, len(periodModels))
	for i := range periodModels {
		periods[i] = *periodModels[i].ToDomain()
	}
	return periods, nil
}

// Save creates or updates a credit period
func (r *GormCreditPeriodRepository) Save(ctx context.Context, period *credit.CreditPeriod) error {
	return translateError(dbFrom(ctx, r.db).Save(models.CreditPeriodModelFromDomain(period)).Error)
}

var (
	_ credit.PaymentTermRepository  = (*GormPaymentTermRepository)(nil)
	_ credit.CreditPeriodRepository = (*GormCreditPeriodRepository)(nil)
)
