package persistence

import (
	"context"

	"github.com/erp/credit/internal/domain/finance"
	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice with SELECT ... FOR UPDATE
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.Invoice, error) {
	var model models.InvoiceModel
	if err := dbFrom(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCustomer lists invoices of a customer
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]finance.Invoice, error) {
	query := dbFrom(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "move_type":
			query = query.Where("move_type = ?", value)
		case "sales_order_id":
			query = query.Where("sales_order_id = ?", value)
		}
	}
	query = applyPaging(query, filter, InvoiceSortFields, "invoice_date")

	var invoiceModels []models.InvoiceModel
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels), nil
}

// FindOpenByCustomer finds posted customer invoices with a positive residual,
// oldest due date first
func (r *GormInvoiceRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]finance.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ? AND move_type = ? AND status = ? AND amount_residual > 0",
			tenantID, customerID, finance.MoveTypeCustomerInvoice, finance.InvoiceStatusPosted).
		Order("due_date ASC, invoice_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels), nil
}

// FindPostedBySalesOrders finds posted customer invoices of the given orders,
// oldest posting first
func (r *GormInvoiceRepository) FindPostedBySalesOrders(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) ([]finance.Invoice, error) {
	if len(orderIDs) == 0 {
		return []finance.Invoice{}, nil
	}
	var invoiceModels []models.InvoiceModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND sales_order_id IN ? AND move_type = ? AND status = ?",
			tenantID, orderIDs, finance.MoveTypeCustomerInvoice, finance.InvoiceStatusPosted).
		Order("posted_at ASC, created_at ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(invoiceModels), nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *finance.Invoice) error {
	return translateError(dbFrom(ctx, r.db).Save(models.InvoiceModelFromDomain(invoice)).Error)
}

// SaveWithLock updates an invoice with an optimistic version check
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *finance.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return saveWithLock(ctx, r.db, invoice, model, func(v int) { model.Version = v },
		"tenant_id = ? AND id = ?", invoice.TenantID, invoice.ID)
}

// ExistsByNumber checks if an invoice number is taken
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND number = ?", tenantID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func invoicesToDomain(invoiceModels []models.InvoiceModel) []finance.Invoice {
	invoices := make([]finance.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ finance.InvoiceRepository = (*GormInvoiceRepository)(nil)
