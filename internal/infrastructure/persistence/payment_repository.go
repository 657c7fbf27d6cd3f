package persistence

import (
	"context"
	"strings"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	var model models.PaymentModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists payments of a customer
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]finance.Payment, error) {
	query := dbFrom(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	query = applyPaging(query, filter, PaymentSortFields, "payment_date")

	var paymentModels []models.PaymentModel
	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments, nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	return translateError(dbFrom(ctx, r.db).Save(models.PaymentModelFromDomain(payment)).Error)
}

// SaveWithLock updates a payment with an optimistic version check
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *finance.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return saveWithLock(ctx, r.db, payment, model, func(v int) { model.Version = v },
		"tenant_id = ? AND id = ?", payment.TenantID, payment.ID)
}

// ExistsByReference checks if a payment reference is taken
func (r *GormPaymentRepository) ExistsByReference(ctx context.Context, tenantID uuid.UUID, reference string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND reference = ?", tenantID, strings.TrimSpace(reference)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormReconciliationRepository implements ReconciliationRepository using GORM
type GormReconciliationRepository struct {
	db *gorm.DB
}

// NewGormReconciliationRepository creates a new GormReconciliationRepository
func NewGormReconciliationRepository(db *gorm.DB) *GormReconciliationRepository {
	return &GormReconciliationRepository{db: db}
}

// FindByIDForTenant finds a reconciliation by ID within a tenant
func (r *GormReconciliationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Reconciliation, error) {
	var model models.ReconciliationModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindActiveByDebitInvoice lists links on an invoice that are not removed
func (r *GormReconciliationRepository) FindActiveByDebitInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]finance.Reconciliation, error) {
	var recModels []models.ReconciliationModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND debit_invoice_id = ? AND removed = ?", tenantID, invoiceID, false).
		Order("created_at ASC").
		Find(&recModels).Error; err != nil {
		return nil, err
	}
	recs := make([]finance.Reconciliation, len(recModels))
	for i := range recModels {
		recs[i] = *recModels[i].ToDomain()
	}
	return recs, nil
}

// Save creates or updates a reconciliation
func (r *GormReconciliationRepository) Save(ctx context.Context, reconciliation *finance.Reconciliation) error {
	return translateError(dbFrom(ctx, r.db).Save(models.ReconciliationModelFromDomain(reconciliation)).Error)
}

// SaveWithLock updates a reconciliation with an optimistic version check
func (r *GormReconciliationRepository) SaveWithLock(ctx context.Context, reconciliation *finance.Reconciliation) error {
	model := models.ReconciliationModelFromDomain(reconciliation)
	return saveWithLock(ctx, r.db, reconciliation, model, func(v int) { model.Version = v },
		"tenant_id = ? AND id = ?", reconciliation.TenantID, reconciliation.ID)
}

var (
	_ finance.PaymentRepository        = (*GormPaymentRepository)(nil)
	_ finance.ReconciliationRepository = (*GormReconciliationRepository)(nil)
)
