package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/erp/credit/internal/domain/shared"
	"github.com/erp/credit/internal/domain/trade"
	"github.com/erp/credit/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const orderNumberPrefix = "SO"

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByIDForTenant finds a sales order by ID for a specific tenant
func (r *GormSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds orders by their IDs. Missing IDs are skipped.
func (r *GormSalesOrderRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]trade.SalesOrder, error) {
	if len(ids) == 0 {
		return []trade.SalesOrder{}, nil
	}
	var orderModels []models.SalesOrderModel
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(orderModels), nil
}

// FindByOrderNumber finds a sales order by order number for a tenant
func (r *GormSalesOrderRepository) FindByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := dbFrom(ctx, r.db).
		Preload("Items").
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByCustomer finds sales orders for a customer
func (r *GormSalesOrderRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]trade.SalesOrder, error) {
	query := dbFrom(ctx, r.db).
		Model(&models.SalesOrderModel{}).
		Preload("Items").
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID)
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "product_category_id":
			query = query.Where("product_category_id = ?", value)
		}
	}
	query = applyPaging(query, filter, SalesOrderSortFields, "created_at")

	var orderModels []models.SalesOrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(orderModels), nil
}

// FindCreditExposure finds the orders of a (customer, category) pair in the
// given statuses, oldest confirmation first
func (r *GormSalesOrderRepository) FindCreditExposure(ctx context.Context, tenantID, customerID, categoryID uuid.UUID, statuses []trade.OrderStatus) ([]trade.SalesOrder, error) {
	if len(statuses) == 0 {
		return []trade.SalesOrder{}, nil
	}
	var orderModels []models.SalesOrderModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND customer_id = ? AND product_category_id = ? AND status IN ?",
			tenantID, customerID, categoryID, statuses).
		Order("confirmed_at ASC, created_at ASC").
		Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(orderModels), nil
}

// Save creates or updates a sales order and replaces its items
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		model := models.SalesOrderModelFromDomain(order)
		items := model.Items
		model.Items = nil
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return translateError(err)
		}
		return replaceOrderItems(tx, order.ID, items)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormSalesOrderRepository) SaveWithLock(ctx context.Context, order *trade.SalesOrder) error {
	return dbFrom(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		model := models.SalesOrderModelFromDomain(order)
		items := model.Items
		model.Items = nil
		if err := saveWithLock(ctx, tx, order, model, func(v int) { model.Version = v },
			"tenant_id = ? AND id = ?", order.TenantID, order.ID); err != nil {
			return err
		}
		return replaceOrderItems(tx, order.ID, items)
	})
}

// replaceOrderItems deletes the items no longer on the order and upserts the rest
func replaceOrderItems(tx *gorm.DB, orderID uuid.UUID, items []models.SalesOrderItemModel) error {
	query := tx.Where("order_id = ?", orderID)
	if len(items) > 0 {
		ids := make([]uuid.UUID, len(items))
		for i := range items {
			ids[i] = items[i].ID
		}
		query = query.Where("id NOT IN ?", ids)
	}
	if err := query.Delete(&models.SalesOrderItemModel{}).Error; err != nil {
		return err
	}

	for i := range items {
		if err := tx.Save(&items[i]).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

// ExistsByOrderNumber checks if an order number exists for a tenant
func (r *GormSalesOrderRepository) ExistsByOrderNumber(ctx context.Context, tenantID uuid.UUID, orderNumber string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&models.SalesOrderModel{}).
		Where("tenant_id = ? AND order_number = ?", tenantID, orderNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateOrderNumber returns the next SO number of the tenant (SO0001, SO0002, ...)
func (r *GormSalesOrderRepository) GenerateOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var last models.SalesOrderModel
	err := dbFrom(ctx, r.db).
		Select("order_number").
		Where("tenant_id = ? AND order_number LIKE ?", tenantID, orderNumberPrefix+"%").
		Order("LENGTH(order_number) DESC, order_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	next := 1
	if err == nil {
		if n, parseErr := strconv.Atoi(strings.TrimPrefix(last.OrderNumber, orderNumberPrefix)); parseErr == nil {
			next = n + 1
		}
	}

	// Hand-entered numbers may sit above the sequence.
	for i := 0; i < 100; i++ {
		orderNumber := fmt.Sprintf("%s%04d", orderNumberPrefix, next)
		exists, err := r.ExistsByOrderNumber(ctx, tenantID, orderNumber)
		if err != nil {
			return "", err
		}
		if !exists {
			return orderNumber, nil
		}
		next++
	}
	return "", shared.NewDomainError(shared.CodeConcurrencyConflict, "Could not allocate an order number")
}

func ordersToDomain(orderModels []models.SalesOrderModel) []trade.SalesOrder {
	orders := make([]trade.SalesOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
